package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/pseudomuto/cirrus/pkg/migrator"
	"github.com/urfave/cli/v3"
)

// list creates a CLI command that loads every migration and prints a summary
// of each, main migrations first and post-apply hooks after.
//
// Example usage:
//
//	cirrus --location s3://acme-migrations/core list
func list(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List discovered migrations",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			coll, err := loadCollection(ctx, p)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			writeSection(w, "Migrations", coll.Migrations)
			writeSection(w, "Post-apply hooks", coll.PostApply)
			return nil
		},
	}
}

func writeSection(w io.Writer, title string, ms []*migrator.Migration) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(ms))
	for _, m := range ms {
		steps := 0
		for _, g := range m.Steps {
			steps += len(g.Steps)
		}

		mode := "transactional"
		if !m.UseTransactions {
			mode = "non-transactional"
		}

		fmt.Fprintf(w, "  %s (%s, %s, %s)\n", m.ID, plural(steps, "step"), plural(len(m.Steps), "group"), mode)
	}
}
