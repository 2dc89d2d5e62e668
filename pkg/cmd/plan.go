package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// plan creates a CLI command that prints the order migrations would be
// applied in: main migrations sorted by dependency, then post-apply hooks.
//
// Example usage:
//
//	cirrus plan
func plan(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Print migrations in dependency order",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			coll, err := loadCollection(ctx, p)
			if err != nil {
				return err
			}

			sorted, err := coll.Sorted()
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			n := 0
			for _, m := range sorted {
				n++
				fmt.Fprintf(w, "%3d. %s", n, m.ID)

				if deps := m.Dependencies(); len(deps) > 0 {
					ids := make([]string, len(deps))
					for i, d := range deps {
						ids[i] = d.ID
					}
					fmt.Fprintf(w, " (after %s)", strings.Join(ids, ", "))
				}
				fmt.Fprintln(w)
			}

			for _, m := range coll.PostApply {
				n++
				fmt.Fprintf(w, "%3d. %s (post-apply)\n", n, m.ID)
			}

			return nil
		},
	}
}
