// Package logger wraps zap to offer:
//   - a global sugared logger with a console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Debugf, InfoKV, WarnKV, etc.).
//
// Stdout belongs to the countdown display, so log lines never go there.
// Services accept a context and extract the logger from it.
package logger
