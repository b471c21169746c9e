// Package options contains flags and options for initializing the
// document pipeline server.
package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docpipe/internal/docpipe"
	cacheopts "github.com/kart-io/docpipe/pkg/options/cache"
	llmopts "github.com/kart-io/docpipe/pkg/options/llm"
	logopts "github.com/kart-io/docpipe/pkg/options/logger"
	milvusopts "github.com/kart-io/docpipe/pkg/options/milvus"
	postgresopts "github.com/kart-io/docpipe/pkg/options/postgres"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPAddr is the HTTP listen address.
	HTTPAddr string `json:"http-addr" mapstructure:"http-addr"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// PostgresOptions contains PostgreSQL configuration.
	PostgresOptions *postgresopts.Options `json:"postgres" mapstructure:"postgres"`

	// CacheOptions contains the embedding cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// MilvusOptions contains Milvus configuration for the mirror index.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// PipelineOptions contains processing and search configuration.
	PipelineOptions *docpipe.Options `json:"pipeline" mapstructure:"pipeline"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPAddr:         ":8083",
		LogOptions:       logopts.NewOptions(),
		PostgresOptions:  postgresopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		EmbeddingOptions: llmopts.NewProviderOptions(),
		PipelineOptions:  docpipe.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// AddFlags adds server flags to the flagset.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.HTTPAddr, "http-addr", o.HTTPAddr, "HTTP listen address.")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")

	o.LogOptions.AddFlags(fs)
	o.PostgresOptions.AddFlags(fs)
	o.CacheOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs, "embedding.")
	o.PipelineOptions.AddFlags(fs)
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.CacheOptions.Complete(); err != nil {
		return err
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return err
	}
	if err := o.PostgresOptions.Complete(); err != nil {
		return err
	}
	return o.PipelineOptions.Complete()
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	var errs []error

	if o.HTTPAddr == "" {
		errs = append(errs, errors.New("http-addr is required"))
	}
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.PostgresOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.PipelineOptions.Validate()...)
	if o.PipelineOptions.MilvusCollection != "" {
		errs = append(errs, o.MilvusOptions.Validate()...)
	}

	return errors.Join(errs...)
}

// Config builds a docpipe.Config based on ServerOptions.
func (o *ServerOptions) Config() (*docpipe.Config, error) {
	return &docpipe.Config{
		HTTPAddr:         o.HTTPAddr,
		LogOptions:       o.LogOptions,
		PostgresOptions:  o.PostgresOptions,
		CacheOptions:     o.CacheOptions,
		MilvusOptions:    o.MilvusOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		PipelineOptions:  o.PipelineOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
