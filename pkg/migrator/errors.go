package migrator

import (
	"fmt"
	"strings"

	"github.com/pseudomuto/cirrus/pkg/store"
)

type (
	// NotFoundError is returned when a migration's forward file does not exist.
	NotFoundError struct {
		Path string
	}

	// BadMigrationError is returned when a migration's dependencies cannot be
	// satisfied, either because a declared ID is not in the discovery batch or
	// because the dependencies form a cycle.
	BadMigrationError struct {
		Path    string
		Missing []string
		Cycle   []string
	}

	// ValidationError is returned when a migration is malformed.
	ValidationError struct {
		Path   string
		Reason string
		Err    error
	}

	// DuplicateMigrationError is returned when two discovered migrations share
	// an ID.
	DuplicateMigrationError struct {
		ID     string
		First  string
		Second string
	}
)

func (e *NotFoundError) Error() string {
	return "migration not found: " + e.Path
}

// Unwrap allows errors.Is(err, store.ErrNotFound).
func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

func (e *BadMigrationError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("dependency cycle in %s: %s", e.Path, strings.Join(e.Cycle, " -> "))
	}

	return fmt.Sprintf("could not resolve dependencies in %s: %s", e.Path, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid migration %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *DuplicateMigrationError) Error() string {
	return fmt.Sprintf("duplicate migration id %q: %s and %s", e.ID, e.First, e.Second)
}
