// Package version reports which focus-timer build is running.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at release time.
// The Go toolchain and target platform come from the runtime, so a bug
// report pasted from `focus-timer version` identifies the exact binary.
package version
