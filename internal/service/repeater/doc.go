// Package repeater runs a function at a fixed period in a background goroutine.
//
// A Repeater is gated by an atomic flag checked on every iteration and its Stop
// waits until the goroutine has exited, so callers can rely on no further
// invocations once Stop returns.
package repeater
