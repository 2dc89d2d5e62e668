package consts

import "os"

const (
	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// MigrationExt is the extension every forward migration file carries.
	MigrationExt = ".sql"

	// RollbackExt is the suffix of a rollback file. Rollback files are never
	// discovered on their own; they are read through their forward migration.
	RollbackExt = ".rollback" + MigrationExt

	// PostApplyPrefix marks a migration as a post-apply hook.
	PostApplyPrefix = "post-apply"

	// DefaultConfigFile is the configuration file the CLI looks for.
	DefaultConfigFile = "cirrus.yaml"

	// DefaultConcurrency is the number of migrations loaded in parallel.
	DefaultConcurrency = 4
)
