package migrator

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/consts"
	"github.com/pseudomuto/cirrus/pkg/store"
)

// Discover lists every location in s and returns the migrations found, without
// loading them. Only the files directly under each location are considered:
// names ending in .sql, excluding rollback files. Files starting with
// "post-apply" become post-apply hooks.
//
// Main migrations keep listing order within a location and location order
// across locations. Post-apply hooks follow the same rule in their own list.
//
// Example usage:
//
//	coll, err := migrator.Discover(ctx, store.New(cfg), []string{
//		"s3://acme-migrations/core",
//		"./db/migrations",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := coll.Load(ctx, 4); err != nil {
//		log.Fatal(err)
//	}
//
//	for _, m := range coll.All() {
//		fmt.Println(m.ID, len(m.Steps))
//	}
func Discover(ctx context.Context, s store.Store, locations []string, opts ...Option) (*Collection, error) {
	o := newOptions(opts)
	if o.duplicates != DuplicateError && o.duplicates != DuplicateKeepFirst {
		return nil, errors.Errorf("invalid duplicate policy: %q", o.duplicates)
	}
	if o.pairing != PairingLenient && o.pairing != PairingStrict {
		return nil, errors.Errorf("invalid pairing policy: %d", int(o.pairing))
	}

	coll := &Collection{index: make(map[string]*Migration)}

	for _, location := range locations {
		location = normalizeLocation(location)

		files, err := s.List(ctx, location)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list location: %s", location)
		}

		found := 0
		for _, file := range files {
			name := path.Base(file)
			if !strings.HasSuffix(name, consts.MigrationExt) || strings.HasSuffix(name, consts.RollbackExt) {
				continue
			}

			m := &Migration{
				ID:              strings.TrimSuffix(name, consts.MigrationExt),
				Path:            location + "/" + name,
				SourceDir:       location,
				IsPostApplyHook: strings.HasPrefix(name, consts.PostApplyPrefix),
				index:           coll.index,
				parser:          o.parser,
				pairing:         o.pairing,
			}
			m.source = NewStoreSource(s, m.Path)

			if prev, ok := coll.index[m.ID]; ok {
				if o.duplicates == DuplicateError {
					return nil, &DuplicateMigrationError{ID: m.ID, First: prev.Path, Second: m.Path}
				}

				o.logger.Warn("Skipping duplicate migration",
					"id", m.ID, "kept", prev.Path, "skipped", m.Path)
				continue
			}

			coll.index[m.ID] = m
			if m.IsPostApplyHook {
				coll.PostApply = append(coll.PostApply, m)
			} else {
				coll.Migrations = append(coll.Migrations, m)
			}
			found++
		}

		o.logger.Debug("Discovered migrations",
			"location", location, "count", found, "pairing", o.pairing.String())
	}

	return coll, nil
}

// normalizeLocation strips a single trailing slash.
func normalizeLocation(location string) string {
	if len(location) > 1 {
		return strings.TrimSuffix(location, "/")
	}

	return location
}
