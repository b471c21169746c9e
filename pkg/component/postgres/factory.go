package postgres

import (
	"context"
	"fmt"

	"github.com/kart-io/docpipe/pkg/component/storage"
	options "github.com/kart-io/docpipe/pkg/options/postgres"
)

// Options is re-exported from pkg/options/postgres for convenience.
type Options = options.Options

// NewOptions is re-exported from pkg/options/postgres for convenience.
var NewOptions = options.NewOptions

// Factory creates PostgreSQL clients from a fixed set of options.
// It implements the storage.Factory interface so client creation can
// be injected and mocked.
type Factory struct {
	opts *Options
}

// NewFactory creates a PostgreSQL client factory. The factory can
// produce any number of clients sharing the same configuration.
func NewFactory(opts *Options) *Factory {
	return &Factory{
		opts: opts,
	}
}

// Create builds and verifies a new PostgreSQL client. The context
// bounds the connection attempt.
// Implements the storage.Factory interface.
func (f *Factory) Create(ctx context.Context) (storage.Client, error) {
	if f.opts == nil {
		return nil, fmt.Errorf("postgres options cannot be nil")
	}

	client, err := NewWithContext(ctx, f.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres client: %w", err)
	}

	return client, nil
}

// Options returns the options used by this factory.
func (f *Factory) Options() *Options {
	return f.opts
}

// Clone creates a new factory with a copy of the current options,
// handy for deriving configurations from a base set.
func (f *Factory) Clone() *Factory {
	optsCopy := *f.opts
	return &Factory{
		opts: &optsCopy,
	}
}
