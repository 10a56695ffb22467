// Package version provides the pypm tool version.
package version

// Version is the pypm tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/nullpx/pypm/pkg/version.Version=2.0.1"
var Version = "dev"
