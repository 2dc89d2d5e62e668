package migrator

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Collection is the result of a discovery batch.
type Collection struct {
	// Migrations are the main migrations in discovery order.
	Migrations []*Migration

	// PostApply are the post-apply hooks in discovery order.
	PostApply []*Migration

	index map[string]*Migration
}

// Get returns the migration with the given ID.
func (c *Collection) Get(id string) (*Migration, bool) {
	m, ok := c.index[id]
	return m, ok
}

// All returns the main migrations followed by the post-apply hooks.
func (c *Collection) All() []*Migration {
	return slices.Concat(c.Migrations, c.PostApply)
}

// Len returns the number of migrations, including post-apply hooks.
func (c *Collection) Len() int {
	return len(c.Migrations) + len(c.PostApply)
}

// Load loads every migration, at most concurrency at a time. The first error
// cancels the remaining loads and is returned. Migrations that were already
// loaded are not fetched again.
func (c *Collection) Load(ctx context.Context, concurrency int) error {
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for _, m := range c.All() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return m.Load(ctx)
		})
	}

	return g.Wait()
}
