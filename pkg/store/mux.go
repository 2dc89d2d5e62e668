package store

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/config"
)

type (
	// Mux routes each call to the Store registered for the URL scheme of the
	// location or path. Paths without a scheme go to the "file" store.
	Mux struct {
		mu     sync.RWMutex
		stores map[string]Store
	}

	// Factory lazily creates the store for a scheme.
	Factory func(ctx context.Context) (Store, error)

	lazyStore struct {
		once    sync.Once
		factory Factory
		store   Store
		err     error
	}
)

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{stores: make(map[string]Store)}
}

// New builds a Mux serving file, s3 and azblob locations from cfg. The cloud
// clients are created on first use so that purely local runs never need
// cloud credentials.
func New(cfg *config.Config) *Mux {
	m := NewMux()
	m.Handle(SchemeFile, NewFS(nil))
	m.Handle(SchemeS3, Lazy(func(ctx context.Context) (Store, error) {
		return NewS3(ctx, cfg.S3)
	}))
	m.Handle(SchemeAzure, Lazy(func(context.Context) (Store, error) {
		return NewAzure(cfg.Azure)
	}))

	return m
}

// Lazy returns a Store that calls factory once, on first use.
func Lazy(factory Factory) Store {
	return &lazyStore{factory: factory}
}

// Handle registers s for scheme, replacing any previous registration.
func (m *Mux) Handle(scheme string, s Store) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stores[scheme] = s
}

// List implements Store.
func (m *Mux) List(ctx context.Context, location string) ([]string, error) {
	s, err := m.route(location)
	if err != nil {
		return nil, err
	}

	return s.List(ctx, location)
}

// Open implements Store.
func (m *Mux) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s, err := m.route(path)
	if err != nil {
		return nil, err
	}

	return s.Open(ctx, path)
}

func (m *Mux) route(path string) (Store, error) {
	scheme, _, _ := SplitURL(path)
	if scheme == "" {
		scheme = SchemeFile
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stores[scheme]
	if !ok {
		return nil, errors.Errorf("unsupported scheme %q: %s", scheme, path)
	}

	return s, nil
}

func (l *lazyStore) get(ctx context.Context) (Store, error) {
	l.once.Do(func() {
		l.store, l.err = l.factory(ctx)
	})

	return l.store, l.err
}

func (l *lazyStore) List(ctx context.Context, location string) ([]string, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}

	return s.List(ctx, location)
}

func (l *lazyStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}

	return s.Open(ctx, path)
}
