// Package docpipe wires the document processing pipeline: stores,
// embedding client, orchestrator, sweeper, and the HTTP API.
package docpipe

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docpipe/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options configures the processing pipeline and search behavior.
type Options struct {
	// ChunkSize is the target chunk size in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the trailing overlap carried into the next chunk.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// MinChunkSize drops trailing chunks shorter than this.
	MinChunkSize int `json:"min-chunk-size" mapstructure:"min-chunk-size"`

	// AutoProcess globally enables automatic processing on creation.
	// When false, every new document is assigned manual mode.
	AutoProcess bool `json:"auto-process" mapstructure:"auto-process"`

	// BatchSizeThreshold routes documents above this size (bytes) to
	// batch mode regardless of type.
	BatchSizeThreshold int64 `json:"batch-size-threshold" mapstructure:"batch-size-threshold"`

	// ImmediateTypes lists document types processed right after creation.
	ImmediateTypes []string `json:"immediate-types" mapstructure:"immediate-types"`

	// BatchTypes lists document types deferred to the periodic sweep.
	BatchTypes []string `json:"batch-types" mapstructure:"batch-types"`

	// MaxRetries bounds automatic retries of failed processing.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// RetryDelay is the fixed delay before an automatic retry.
	RetryDelay time.Duration `json:"retry-delay" mapstructure:"retry-delay"`

	// SweepInterval is the period of the batch sweep loop. Zero disables
	// the loop.
	SweepInterval time.Duration `json:"sweep-interval" mapstructure:"sweep-interval"`

	// SearchLimit is the default NN result cap.
	SearchLimit int `json:"search-limit" mapstructure:"search-limit"`

	// SearchThreshold is the default minimum cosine similarity.
	SearchThreshold float64 `json:"search-threshold" mapstructure:"search-threshold"`

	// DataDir is where uploaded document files live, keyed by filename.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// MilvusCollection enables the Milvus mirror index when non-empty.
	MilvusCollection string `json:"milvus-collection" mapstructure:"milvus-collection"`

	// Notification mail settings. SMTPHost empty means log-only
	// notifications.
	SMTPHost string   `json:"smtp-host" mapstructure:"smtp-host"`
	SMTPPort int      `json:"smtp-port" mapstructure:"smtp-port"`
	SMTPFrom string   `json:"smtp-from" mapstructure:"smtp-from"`
	SMTPTo   []string `json:"smtp-to" mapstructure:"smtp-to"`
}

// NewOptions creates pipeline options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:          2000,
		ChunkOverlap:       200,
		MinChunkSize:       100,
		AutoProcess:        true,
		BatchSizeThreshold: 5 * 1024 * 1024,
		ImmediateTypes:     []string{"income_statement", "balance_sheet"},
		BatchTypes:         []string{"other", "cashflow"},
		MaxRetries:         3,
		RetryDelay:         5 * time.Minute,
		SweepInterval:      24 * time.Hour,
		SearchLimit:        10,
		SearchThreshold:    0.7,
		DataDir:            "data",
		SMTPPort:           25,
	}
}

// AddFlags adds pipeline flags to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"pipeline.chunk-size", o.ChunkSize, "Target chunk size in characters.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"pipeline.chunk-overlap", o.ChunkOverlap, "Chunk overlap in characters.")
	fs.IntVar(&o.MinChunkSize, options.Join(prefixes...)+"pipeline.min-chunk-size", o.MinChunkSize, "Minimum size of a trailing chunk.")
	fs.BoolVar(&o.AutoProcess, options.Join(prefixes...)+"pipeline.auto-process", o.AutoProcess, "Enable automatic processing of new documents.")
	fs.Int64Var(&o.BatchSizeThreshold, options.Join(prefixes...)+"pipeline.batch-size-threshold", o.BatchSizeThreshold, "Documents above this size (bytes) are batched.")
	fs.StringSliceVar(&o.ImmediateTypes, options.Join(prefixes...)+"pipeline.immediate-types", o.ImmediateTypes, "Document types processed immediately.")
	fs.StringSliceVar(&o.BatchTypes, options.Join(prefixes...)+"pipeline.batch-types", o.BatchTypes, "Document types deferred to the sweep.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"pipeline.max-retries", o.MaxRetries, "Maximum automatic retries for failed processing.")
	fs.DurationVar(&o.RetryDelay, options.Join(prefixes...)+"pipeline.retry-delay", o.RetryDelay, "Delay before an automatic retry.")
	fs.DurationVar(&o.SweepInterval, options.Join(prefixes...)+"pipeline.sweep-interval", o.SweepInterval, "Batch sweep interval (0 disables).")
	fs.IntVar(&o.SearchLimit, options.Join(prefixes...)+"pipeline.search-limit", o.SearchLimit, "Default search result limit.")
	fs.Float64Var(&o.SearchThreshold, options.Join(prefixes...)+"pipeline.search-threshold", o.SearchThreshold, "Default minimum cosine similarity.")
	fs.StringVar(&o.DataDir, options.Join(prefixes...)+"pipeline.data-dir", o.DataDir, "Directory holding uploaded document files.")
	fs.StringVar(&o.MilvusCollection, options.Join(prefixes...)+"pipeline.milvus-collection", o.MilvusCollection, "Milvus mirror collection (empty disables the mirror).")
	fs.StringVar(&o.SMTPHost, options.Join(prefixes...)+"pipeline.smtp-host", o.SMTPHost, "SMTP host for operator notifications (empty uses the log).")
	fs.IntVar(&o.SMTPPort, options.Join(prefixes...)+"pipeline.smtp-port", o.SMTPPort, "SMTP port.")
	fs.StringVar(&o.SMTPFrom, options.Join(prefixes...)+"pipeline.smtp-from", o.SMTPFrom, "Notification sender address.")
	fs.StringSliceVar(&o.SMTPTo, options.Join(prefixes...)+"pipeline.smtp-to", o.SMTPTo, "Notification recipient addresses.")
}

// Validate validates the pipeline options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be in [0, chunk-size)"))
	}
	if o.MinChunkSize < 0 {
		errs = append(errs, fmt.Errorf("min-chunk-size must not be negative"))
	}
	if o.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max-retries must not be negative"))
	}
	if o.SearchLimit <= 0 {
		errs = append(errs, fmt.Errorf("search-limit must be positive"))
	}
	if o.SearchThreshold < 0 || o.SearchThreshold > 1 {
		errs = append(errs, fmt.Errorf("search-threshold must be in [0, 1]"))
	}
	if o.SMTPHost != "" {
		if o.SMTPFrom == "" {
			errs = append(errs, fmt.Errorf("smtp-from is required when smtp-host is set"))
		}
		if len(o.SMTPTo) == 0 {
			errs = append(errs, fmt.Errorf("smtp-to is required when smtp-host is set"))
		}
	}
	return errs
}

// Complete completes the pipeline options with derived defaults.
func (o *Options) Complete() error {
	if o.RetryDelay <= 0 {
		o.RetryDelay = 5 * time.Minute
	}
	if o.SMTPPort <= 0 {
		o.SMTPPort = 25
	}
	return nil
}
