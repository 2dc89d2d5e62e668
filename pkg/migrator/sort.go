package migrator

import (
	"github.com/pkg/errors"
)

const (
	unvisited = iota
	visiting
	visited
)

// Sorted returns the main migrations ordered so that every migration comes
// after its dependencies. Migrations without a dependency relationship keep
// their discovery order. Post-apply hooks are not included; they run after
// the sorted list in discovery order.
//
// Every main migration must be loaded. A dependency cycle is reported as a
// *BadMigrationError naming the cycle.
func (c *Collection) Sorted() ([]*Migration, error) {
	state := make(map[*Migration]int, len(c.Migrations))
	for _, m := range c.Migrations {
		if !m.Loaded() {
			return nil, errors.Errorf("migration not loaded: %s", m.ID)
		}
		state[m] = unvisited
	}

	sorted := make([]*Migration, 0, len(c.Migrations))
	var stack []*Migration

	var visit func(m *Migration) error
	visit = func(m *Migration) error {
		switch state[m] {
		case visited:
			return nil
		case visiting:
			return cycleError(stack, m)
		}

		state[m] = visiting
		stack = append(stack, m)

		for _, dep := range m.Dependencies() {
			// Dependencies on post-apply hooks are satisfied by running order.
			if _, ok := state[dep]; !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[m] = visited
		sorted = append(sorted, m)
		return nil
	}

	for _, m := range c.Migrations {
		if err := visit(m); err != nil {
			return nil, err
		}
	}

	return sorted, nil
}

func cycleError(stack []*Migration, m *Migration) error {
	start := 0
	for i, s := range stack {
		if s == m {
			start = i
			break
		}
	}

	cycle := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		cycle = append(cycle, s.ID)
	}
	cycle = append(cycle, m.ID)

	return &BadMigrationError{Path: m.Path, Cycle: cycle}
}
