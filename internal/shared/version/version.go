// Package version carries build metadata stamped in with -ldflags.
package version

import "fmt"

var (
	Current   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns "version (commit, built at)".
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Current, Commit, BuildTime)
}
