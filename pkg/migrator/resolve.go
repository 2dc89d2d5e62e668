package migrator

// ResolveDependencies maps the declared dependency ids of m to migrations in
// all, the index of the discovery batch. Empty ids are skipped and repeats are
// returned once, in declaration order. Any id not in all produces a
// *BadMigrationError listing every missing id.
func ResolveDependencies(m *Migration, ids []string, all map[string]*Migration) ([]*Migration, error) {
	var (
		deps    []*Migration
		missing []string
		seen    = make(map[string]struct{}, len(ids))
	)

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		dep, ok := all[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		deps = append(deps, dep)
	}

	if len(missing) > 0 {
		return nil, &BadMigrationError{Path: m.Path, Missing: missing}
	}

	return deps, nil
}
