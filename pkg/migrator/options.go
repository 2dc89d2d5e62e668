package migrator

import (
	"log/slog"

	"github.com/pseudomuto/cirrus/pkg/parser"
)

type (
	// DuplicatePolicy decides what discovery does with a second migration whose
	// ID is already in the batch.
	DuplicatePolicy string

	// Option configures discovery and loading.
	Option func(*options)

	options struct {
		logger     *slog.Logger
		parser     *parser.Parser
		pairing    PairingPolicy
		duplicates DuplicatePolicy
	}
)

const (
	// DuplicateError fails discovery with a *DuplicateMigrationError.
	DuplicateError DuplicatePolicy = "error"

	// DuplicateKeepFirst keeps the first migration and logs a warning.
	DuplicateKeepFirst DuplicatePolicy = "keep-first"
)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParser sets the parser used to read migration files.
func WithParser(p *parser.Parser) Option {
	return func(o *options) {
		if p != nil {
			o.parser = p
		}
	}
}

// WithPairing sets the statement pairing policy. Defaults to PairingLenient.
func WithPairing(p PairingPolicy) Option {
	return func(o *options) { o.pairing = p }
}

// WithDuplicates sets the duplicate ID policy. Defaults to DuplicateError.
func WithDuplicates(p DuplicatePolicy) Option {
	return func(o *options) { o.duplicates = p }
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:     slog.Default(),
		parser:     parser.New(),
		pairing:    PairingLenient,
		duplicates: DuplicateError,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}
