// Package instance keeps a single focus timer running per machine.
package instance
