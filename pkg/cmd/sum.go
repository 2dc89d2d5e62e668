package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/consts"
	"github.com/urfave/cli/v3"
)

// sum creates a CLI command that writes the sum file of all migrations, to
// stdout or to the file named by --out. Keeping the output under version
// control lets `cirrus verify` detect migrations changed after the fact.
//
// Example usage:
//
//	cirrus sum --out cirrus.sum
func sum(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "sum",
		Usage: "Write the sum file for all migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "write to this file instead of stdout",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			coll, err := loadCollection(ctx, p)
			if err != nil {
				return err
			}

			sumFile, err := coll.SumFile(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to compute sum file")
			}

			out := cmd.String("out")
			if out == "" {
				_, err := sumFile.WriteTo(cmd.Root().Writer)
				return err
			}

			f, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.ModeFile)
			if err != nil {
				return errors.Wrapf(err, "failed to create sum file: %s", out)
			}
			defer func() { _ = f.Close() }()

			if _, err := sumFile.WriteTo(f); err != nil {
				return errors.Wrap(err, "failed to write sum file")
			}

			fmt.Fprintf(cmd.Root().Writer, "Wrote %s for %s to %s\n",
				plural(len(sumFile.Entries()), "file"), plural(coll.Len(), "migration"), out)
			return nil
		},
	}
}
