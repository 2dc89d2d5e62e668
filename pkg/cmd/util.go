package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/config"
	"github.com/pseudomuto/cirrus/pkg/migrator"
	"github.com/pseudomuto/cirrus/pkg/store"
	"go.uber.org/fx"
)

type commandParams struct {
	fx.In

	Config *config.Config
	Store  store.Store
}

// discover lists the configured locations without loading anything.
func discover(ctx context.Context, p commandParams) (*migrator.Collection, error) {
	if len(p.Config.Locations) == 0 {
		return nil, errors.New("no migration locations configured: set locations in cirrus.yaml or pass --location")
	}

	pairing := migrator.PairingLenient
	if p.Config.StrictPairing {
		pairing = migrator.PairingStrict
	}

	return migrator.Discover(ctx, p.Store, p.Config.Locations,
		migrator.WithLogger(slog.Default()),
		migrator.WithPairing(pairing),
		migrator.WithDuplicates(migrator.DuplicatePolicy(p.Config.Duplicates)),
	)
}

// loadCollection discovers and loads every migration.
func loadCollection(ctx context.Context, p commandParams) (*migrator.Collection, error) {
	coll, err := discover(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := coll.Load(ctx, p.Config.Concurrency); err != nil {
		return nil, errors.Wrap(err, "failed to load migrations")
	}

	return coll, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}

	return fmt.Sprintf("%d %ss", n, word)
}
