// Package config defines the timer settings and provides helpers to load,
// validate and save them in YAML format.
//
// Values from the file can be overridden by FOCUS_TIMER_* environment
// variables, optionally loaded from a .env file first.
package config
