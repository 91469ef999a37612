package version

import (
	"fmt"
	"runtime"
)

// Binary is the name printed in front of every version line.
const Binary = "focus-timer"

var (
	// Version is the semantic version of the timer. It can be overridden via ldflags.
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

// Platform returns the Go toolchain and target the binary was built with.
func Platform() string {
	return fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Full returns the version line printed by `focus-timer version`.
func Full() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", Binary, Version, Commit, BuildTime, Platform())
}
