// Package timer contains core domain types for the countdown and alarm logic.
//
// It defines Config (the requested duration), State, Snapshot and Event, and
// Machine: a synchronous state machine that applies commands and ticks and
// reports the events each of them produced. Machine has no goroutines and no
// clock of its own; the caller decides when a tick or flash happens.
package timer
