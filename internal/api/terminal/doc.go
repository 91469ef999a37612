// Package terminal implements the display surface of the focus timer on a text terminal.
//
// Renderer turns engine events into text and, on a real terminal, into an
// in-place countdown and a colored flash. Controller reads input lines and
// translates them into engine commands.
package terminal
