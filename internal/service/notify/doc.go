// Package notify starts a user-configured program when the alarm goes off.
package notify
