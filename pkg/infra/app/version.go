// Package app provides application bootstrapping with Cobra, Viper, and Pflag.
package app

import (
	"github.com/kart-io/version"
	"github.com/spf13/pflag"
)

// GetVersion returns the git version string of the running binary.
func GetVersion() string {
	return version.Get().GitVersion
}

// GetVersionInfo returns the full build information.
func GetVersionInfo() version.Info {
	return version.Get()
}

// AddVersionFlags registers the --version flag on the flagset.
func AddVersionFlags(fs *pflag.FlagSet) {
	version.AddFlags(fs)
}

// PrintAndExitIfRequested prints version information and exits when
// the --version flag was set.
func PrintAndExitIfRequested() {
	version.PrintAndExitIfRequested()
}
