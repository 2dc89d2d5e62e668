package migrator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	. "github.com/pseudomuto/cirrus/pkg/migrator"
	"github.com/pseudomuto/cirrus/pkg/parser"
	"github.com/stretchr/testify/require"
)

func discoverOne(t *testing.T, st *countingStore, id string, opts ...Option) *Migration {
	t.Helper()

	coll, err := Discover(context.Background(), st, []string{"/db"}, opts...)
	require.NoError(t, err)

	m, ok := coll.Get(id)
	require.True(t, ok, "migration %s not discovered", id)
	return m
}

func TestMigration_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("transactional migration", func(t *testing.T) {
		st := newStore(t, map[string]string{
			"/db/0001-users.sql": `-- Create the users table
-- transactional: true
CREATE TABLE users (id INT);
CREATE INDEX users_id ON users (id);
INSERT INTO users VALUES (1);`,
			"/db/0001-users.rollback.sql": "DELETE FROM users;\nDROP INDEX users_id;\nDROP TABLE users;",
		})

		m := discoverOne(t, st, "0001-users")
		require.NoError(t, m.Load(ctx))

		require.True(t, m.Loaded())
		require.True(t, m.UseTransactions)
		require.Equal(t, "Create the users table", m.Description)
		require.Equal(t, parser.Directives{"transactional": "true"}, m.Directives)
		require.Empty(t, m.DependsOn)
		require.Empty(t, m.Dependencies())

		require.Len(t, m.Steps, 1)
		require.True(t, m.Steps[0].Transactional)
		require.Len(t, m.Steps[0].Steps, 3)
		require.Equal(t, "CREATE TABLE users (id INT);", m.Steps[0].Steps[0].Forward)
		require.Equal(t, ptr("DELETE FROM users;"), m.Steps[0].Steps[0].Rollback)
	})

	t.Run("non-transactional migration", func(t *testing.T) {
		st := newStore(t, map[string]string{
			"/db/0002-index.sql": `-- transactional: FALSE
CREATE INDEX CONCURRENTLY a ON t (a);
CREATE INDEX CONCURRENTLY b ON t (b);
CREATE INDEX CONCURRENTLY c ON t (c);`,
		})

		m := discoverOne(t, st, "0002-index")
		require.NoError(t, m.Load(ctx))

		require.False(t, m.UseTransactions)
		require.Len(t, m.Steps, 3)
		for _, g := range m.Steps {
			require.False(t, g.Transactional)
			require.Len(t, g.Steps, 1)
		}
	})

	t.Run("missing rollback pairs with nil", func(t *testing.T) {
		st := newStore(t, map[string]string{
			"/db/0003.sql": "CREATE TABLE a (id INT);\nCREATE TABLE b (id INT);",
		})

		m := discoverOne(t, st, "0003")
		require.NoError(t, m.Load(ctx))

		require.Len(t, m.Steps, 1)
		for _, step := range m.Steps[0].Steps {
			require.NotEmpty(t, step.Forward)
			require.Nil(t, step.Rollback)
		}
	})

	t.Run("empty file loads with no steps", func(t *testing.T) {
		st := newStore(t, map[string]string{"/db/0004.sql": "  \n"})

		m := discoverOne(t, st, "0004")
		require.NoError(t, m.Load(ctx))
		require.True(t, m.UseTransactions)
		require.Empty(t, m.Steps)
		require.Empty(t, m.Description)
	})

	t.Run("resolves dependencies", func(t *testing.T) {
		st := newStore(t, map[string]string{
			"/db/0001.sql": "SELECT 1;",
			"/db/0002.sql": "SELECT 2;",
			"/db/0003.sql": "-- depends: 0001\n-- depends: 0002 0001\nSELECT 3;",
		})

		coll, err := Discover(ctx, st, []string{"/db"})
		require.NoError(t, err)

		m, _ := coll.Get("0003")
		require.NoError(t, m.Load(ctx))

		first, _ := coll.Get("0001")
		second, _ := coll.Get("0002")
		require.Equal(t, []string{"0001", "0002", "0001"}, m.DependsOn)
		require.Equal(t, []*Migration{first, second}, m.Dependencies())

		// Dependencies are resolved without loading them.
		require.False(t, first.Loaded())
	})

	t.Run("unknown dependency", func(t *testing.T) {
		st := newStore(t, map[string]string{
			"/db/0002.sql": "-- depends: missing-id\nSELECT 2;",
		})

		m := discoverOne(t, st, "0002")
		err := m.Load(ctx)

		var bad *BadMigrationError
		require.True(t, errors.As(err, &bad))
		require.Equal(t, "/db/0002.sql", bad.Path)
		require.Equal(t, []string{"missing-id"}, bad.Missing)
		require.ErrorContains(t, err, "/db/0002.sql")

		require.False(t, m.Loaded())
		require.Empty(t, m.Steps)
	})

	t.Run("invalid transactional value", func(t *testing.T) {
		st := newStore(t, map[string]string{
			"/db/0005.sql": "-- transactional: sometimes\nSELECT 1;",
		})

		m := discoverOne(t, st, "0005")
		err := m.Load(ctx)

		var invalid *ValidationError
		require.True(t, errors.As(err, &invalid))
		require.Equal(t, "/db/0005.sql", invalid.Path)
		require.True(t, errors.Is(err, parser.ErrInvalidDirective))
		require.False(t, m.Loaded())
	})

	t.Run("missing forward file", func(t *testing.T) {
		st := newStore(t, map[string]string{"/db/0006.sql": "SELECT 1;"})
		m := discoverOne(t, st, "0006")

		st.failOpen("/db/0006.sql", &NotFoundError{Path: "/db/0006.sql"})
		err := m.Load(ctx)

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		require.False(t, m.Loaded())
	})

	t.Run("unterminated string", func(t *testing.T) {
		st := newStore(t, map[string]string{"/db/0007.sql": "SELECT 'oops;"})

		m := discoverOne(t, st, "0007")
		require.ErrorContains(t, m.Load(ctx), "failed to parse migration: /db/0007.sql")
	})

	t.Run("custom parser keeps unknown directives", func(t *testing.T) {
		st := newStore(t, map[string]string{
			"/db/0008.sql": "-- owner: data-team\n-- depends:\nSELECT 1;",
		})

		p := parser.New(parser.WithDirectives(parser.DirectiveTransactional, parser.DirectiveDepends, "owner"))
		m := discoverOne(t, st, "0008", WithParser(p))
		require.NoError(t, m.Load(ctx))
		require.Equal(t, "data-team", m.Directives.Get("owner", ""))
		require.Empty(t, m.Description)
	})
}

func TestMigration_LoadPairing(t *testing.T) {
	ctx := context.Background()
	files := map[string]string{
		"/db/0001.sql":          "CREATE TABLE a (id INT);\nCREATE TABLE b (id INT);",
		"/db/0001.rollback.sql": "DROP TABLE b;",
		"/db/0002.sql":          "CREATE TABLE c (id INT);",
	}

	t.Run("lenient", func(t *testing.T) {
		m := discoverOne(t, newStore(t, files), "0001")
		require.NoError(t, m.Load(ctx))
		require.Len(t, m.Steps[0].Steps, 2)
		require.Nil(t, m.Steps[0].Steps[1].Rollback)
	})

	t.Run("strict rejects mismatched counts", func(t *testing.T) {
		m := discoverOne(t, newStore(t, files), "0001", WithPairing(PairingStrict))
		err := m.Load(ctx)

		var invalid *ValidationError
		require.True(t, errors.As(err, &invalid))
		require.Equal(t, "2 forward statements but 1 rollback statements", invalid.Reason)
	})

	t.Run("strict allows a missing rollback", func(t *testing.T) {
		m := discoverOne(t, newStore(t, files), "0002", WithPairing(PairingStrict))
		require.NoError(t, m.Load(ctx))
	})
}

func TestMigration_LoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, map[string]string{
		"/db/0001.sql":          "CREATE TABLE a (id INT);",
		"/db/0001.rollback.sql": "DROP TABLE a;",
	})

	m := discoverOne(t, st, "0001")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = m.Load(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, m.Load(ctx))
	require.Equal(t, 1, st.count("/db/0001.sql"))
	require.Equal(t, 1, st.count("/db/0001.rollback.sql"))
}

func TestMigration_Load_NotFromDiscover(t *testing.T) {
	m := &Migration{ID: "0001", Path: "/db/0001.sql"}

	err := m.Load(context.Background())

	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid))
	require.EqualError(t, err, "invalid migration /db/0001.sql: migration was not created by Discover")
	require.False(t, m.Loaded())
}
