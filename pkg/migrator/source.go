package migrator

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/store"
)

type (
	// Source provides the raw SQL of a migration and its optional rollback.
	Source interface {
		// ForwardText returns the forward SQL. A missing file is a *NotFoundError.
		ForwardText(ctx context.Context) (string, error)

		// RollbackText returns the rollback SQL, or nil when there is none.
		RollbackText(ctx context.Context) (*string, error)
	}

	// StoreSource is a Source reading from a store.Store. Successful reads are
	// cached, so each file is fetched at most once.
	StoreSource struct {
		store        store.Store
		path         string
		rollbackPath string

		mu             sync.Mutex
		forward        *string
		rollback       *string
		rollbackLoaded bool
	}
)

// NewStoreSource returns a Source for the migration at p. The rollback is read
// from RollbackPath(p).
func NewStoreSource(s store.Store, p string) *StoreSource {
	return &StoreSource{
		store:        s,
		path:         p,
		rollbackPath: RollbackPath(p),
	}
}

// RollbackPath returns p with its final extension replaced by
// ".rollback<ext>", e.g. "a/0001.sql" becomes "a/0001.rollback.sql".
func RollbackPath(p string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + ".rollback" + ext
}

// ForwardText implements Source.
func (s *StoreSource) ForwardText(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forward != nil {
		return *s.forward, nil
	}

	text, err := store.ReadFile(ctx, s.store, s.path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", &NotFoundError{Path: s.path}
		}
		return "", errors.Wrapf(err, "failed to read migration: %s", s.path)
	}

	s.forward = &text
	return text, nil
}

// RollbackText implements Source. A missing rollback file is not an error.
func (s *StoreSource) RollbackText(ctx context.Context) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rollbackLoaded {
		return s.rollback, nil
	}

	text, err := store.ReadFile(ctx, s.store, s.rollbackPath)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.rollback = nil
	case err != nil:
		return nil, errors.Wrapf(err, "failed to read rollback: %s", s.rollbackPath)
	default:
		s.rollback = &text
	}

	s.rollbackLoaded = true
	return s.rollback, nil
}
