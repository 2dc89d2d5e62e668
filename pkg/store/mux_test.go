package store_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/config"
	. "github.com/pseudomuto/cirrus/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestMux(t *testing.T) {
	local := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(local, "/db/0001.sql", []byte("SELECT 1;"), 0o644))

	remote := &fakeS3{buckets: map[string]map[string]string{
		"acme": {"core/0002.sql": "SELECT 2;"},
	}}

	m := NewMux()
	m.Handle(SchemeFile, NewFS(local))
	m.Handle(SchemeS3, NewS3FromClient(remote))

	ctx := context.Background()

	t.Run("plain paths use the file store", func(t *testing.T) {
		files, err := m.List(ctx, "/db")
		require.NoError(t, err)
		require.Equal(t, []string{"/db/0001.sql"}, files)

		data, err := ReadFile(ctx, m, files[0])
		require.NoError(t, err)
		require.Equal(t, "SELECT 1;", data)
	})

	t.Run("routes by scheme", func(t *testing.T) {
		files, err := m.List(ctx, "s3://acme/core")
		require.NoError(t, err)
		require.Equal(t, []string{"s3://acme/core/0002.sql"}, files)

		data, err := ReadFile(ctx, m, files[0])
		require.NoError(t, err)
		require.Equal(t, "SELECT 2;", data)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := m.List(ctx, "gs://bucket/prefix")
		require.ErrorContains(t, err, `unsupported scheme "gs"`)

		_, err = m.Open(ctx, "gs://bucket/prefix/a.sql")
		require.ErrorContains(t, err, `unsupported scheme "gs"`)
	})
}

func TestLazy(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/db/0001.sql", []byte("SELECT 1;"), 0o644))

	var calls atomic.Int32
	s := Lazy(func(context.Context) (Store, error) {
		calls.Add(1)
		return NewFS(fs), nil
	})

	require.Zero(t, calls.Load())

	ctx := context.Background()
	_, err := s.List(ctx, "/db")
	require.NoError(t, err)
	_, err = ReadFile(ctx, s, "/db/0001.sql")
	require.NoError(t, err)

	require.EqualValues(t, 1, calls.Load())

	t.Run("factory errors are sticky", func(t *testing.T) {
		broken := Lazy(func(context.Context) (Store, error) {
			return nil, errors.New("no credentials")
		})

		_, err := broken.List(ctx, "s3://acme/core")
		require.ErrorContains(t, err, "no credentials")

		_, err = broken.Open(ctx, "s3://acme/core/a.sql")
		require.ErrorContains(t, err, "no credentials")
	})
}

func TestNew(t *testing.T) {
	m := New(&config.Config{Azure: config.Azure{}})

	// The azure factory fails without an account, and only when first used.
	_, err := m.List(context.Background(), "azblob://schemas/reporting")
	require.ErrorContains(t, err, "account or endpoint is required")
}
