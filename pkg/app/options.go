// Package app defines the option contracts consumed by the
// application bootstrap in pkg/infra/app.
package app

import "github.com/spf13/pflag"

// CliOptions is the interface command-line option structs implement.
// The bootstrap completes, validates and binds flags through it.
type CliOptions interface {
	// AddFlags adds the options' flags to the command flagset.
	AddFlags(fs *pflag.FlagSet)
	// Validate checks that the combined options are usable.
	Validate() error
	// Complete fills in defaults derived from other options.
	Complete() error
}
