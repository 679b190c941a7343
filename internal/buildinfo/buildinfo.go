package buildinfo

import "fmt"

var (
	// Version is set via ldflags at build time.
	Version = "dev"
	// Commit is set via ldflags at build time.
	Commit = "none"
	// Date is set via ldflags at build time.
	Date = "unknown"
)

// String formats the build metadata for --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
