package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/migrator"
	"github.com/urfave/cli/v3"
)

// show creates a CLI command that prints a single migration in full: its
// directives, dependencies and every step with forward and rollback SQL.
// Only the requested migration is loaded.
//
// Example usage:
//
//	cirrus show 0002-create-users
func show(p commandParams) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a migration's directives and steps",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := strings.TrimSpace(cmd.Args().First())
			if id == "" {
				return errors.New("a migration id is required")
			}

			coll, err := discover(ctx, p)
			if err != nil {
				return err
			}

			m, ok := coll.Get(id)
			if !ok {
				return errors.Errorf("migration not found: %s", id)
			}

			if err := m.Load(ctx); err != nil {
				return err
			}

			writeMigration(cmd.Root().Writer, m)
			return nil
		},
	}
}

func writeMigration(w io.Writer, m *migrator.Migration) {
	deps := make([]string, 0, len(m.Dependencies()))
	for _, d := range m.Dependencies() {
		deps = append(deps, d.ID)
	}

	fmt.Fprintf(w, "ID:            %s\n", m.ID)
	fmt.Fprintf(w, "Path:          %s\n", m.Path)
	fmt.Fprintf(w, "Rollback:      %s\n", m.RollbackPath())
	fmt.Fprintf(w, "Post-apply:    %t\n", m.IsPostApplyHook)
	fmt.Fprintf(w, "Transactional: %t\n", m.UseTransactions)
	fmt.Fprintf(w, "Depends on:    %s\n", orNone(strings.Join(deps, ", ")))

	if m.Description != "" {
		fmt.Fprintf(w, "\nDescription:\n%s\n", indent(m.Description, "  "))
	}

	if len(m.Directives) > 0 {
		fmt.Fprintf(w, "\nDirectives:\n%s", indent(m.Directives.String(), "  "))
	}

	for i, g := range m.Steps {
		mode := "transactional"
		if !g.Transactional {
			mode = "non-transactional"
		}

		fmt.Fprintf(w, "\nGroup %d (%s):\n", i+1, mode)
		for j, step := range g.Steps {
			fmt.Fprintf(w, "  Step %d\n", j+1)
			forward, rollback := none, none
			if step.HasForward() {
				forward = step.Forward
			}
			if step.HasRollback() {
				rollback = *step.Rollback
			}

			fmt.Fprintf(w, "    forward:\n%s\n", indent(forward, "      "))
			fmt.Fprintf(w, "    rollback:\n%s\n", indent(rollback, "      "))
		}
	}
}

const none = "(none)"

func orNone(s string) string {
	if s == "" {
		return none
	}

	return s
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}

	return strings.Join(lines, "")
}
