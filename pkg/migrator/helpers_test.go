package migrator_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// countingStore records how often each path is opened.
type countingStore struct {
	store.Store

	mu    sync.Mutex
	opens map[string]int
	fail  map[string]error
}

func newStore(t *testing.T, files map[string]string) *countingStore {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	return &countingStore{
		Store: store.NewFS(fs),
		opens: make(map[string]int),
		fail:  make(map[string]error),
	}
}

func (s *countingStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	s.opens[path]++
	err := s.fail[path]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return s.Store.Open(ctx, path)
}

func (s *countingStore) failOpen(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail[path] = err
}

func (s *countingStore) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.opens[path]
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T {
	return &v
}
