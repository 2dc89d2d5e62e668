// Package migrator discovers SQL migrations in one or more locations, loads
// them lazily from a store.Store and resolves the dependencies between them.
//
// A migration is a file named <id>.sql. An optional <id>.rollback.sql next to
// it holds the statements that undo it, paired with the forward statements by
// position. Files whose name starts with "post-apply" are hooks that run after
// every other migration.
//
// The leading comment block of a migration may carry directives:
//
//	-- Create the users table
//	-- depends: 0001-init 0002-accounts
//	-- transactional: false
//	CREATE TABLE users (id INT);
//	CREATE INDEX users_id ON users (id);
//
// Typical usage:
//
//	coll, err := migrator.Discover(ctx, st, []string{"s3://acme/migrations"})
//	if err != nil {
//		return err
//	}
//
//	if err := coll.Load(ctx, 4); err != nil {
//		return err
//	}
//
//	plan, err := coll.Sorted()
//	if err != nil {
//		return err
//	}
//
// Discovery only lists files. Nothing is fetched until Load is called, and
// each file is fetched at most once no matter how many times a migration is
// loaded.
package migrator
