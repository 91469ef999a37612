// Package timer runs the countdown state machine behind a single owner goroutine.
//
// Engine serializes every command and every tick or flash signal through one
// loop, drives the periodic repeaters from the machine state and fans events
// out to display surfaces. Run wires the engine to configuration, the terminal
// surface and the optional alarm hook for the focus-timer binary.
package timer
