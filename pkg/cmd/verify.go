package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/migrator"
	"github.com/urfave/cli/v3"
)

// verify creates a CLI command that compares the current migrations against
// a sum file written by `cirrus sum`. It fails on the first added, removed or
// modified file.
//
// Example usage:
//
//	cirrus verify --sum cirrus.sum
func verify(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check migrations against a sum file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "sum",
				Aliases:  []string{"s"},
				Usage:    "the sum file to verify against",
				Required: true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("sum")
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "failed to open sum file: %s", path)
			}
			defer func() { _ = f.Close() }()

			expected, err := migrator.ReadSumFile(f)
			if err != nil {
				return errors.Wrapf(err, "failed to read sum file: %s", path)
			}

			coll, err := loadCollection(ctx, p)
			if err != nil {
				return err
			}

			actual, err := coll.SumFile(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to compute sum file")
			}

			if err := actual.Verify(expected); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Verified %s against %s\n", plural(len(actual.Entries()), "file"), path)
			return nil
		},
	}
}
