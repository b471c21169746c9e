// Package options defines the generic options interface and common utilities.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates prefixes with "." and appends a trailing "." when
// the result is non-empty. It builds flag names like "postgres.host"
// or "prefix.postgres.host".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions is the interface component option structs implement.
type IOptions interface {
	// Validate validates all the required options.
	Validate() []error

	// AddFlags adds the options' flags to the flagset, optionally
	// namespaced by the given prefixes.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
