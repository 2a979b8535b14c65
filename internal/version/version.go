package version

import "fmt"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full renders version, commit and build time on one line for `version` output and logs.
func Full() string {
	return fmt.Sprintf("innometrics-backend %s (commit %s, built %s)", Version, Commit, BuildTime)
}
