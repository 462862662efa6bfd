// Package render measures and fits styled terminal strings. Widths are
// display cells with escape sequences ignored.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VisibleWidth returns the display width of value, excluding ANSI codes.
func VisibleWidth(value string) int {
	return ansi.StringWidth(value)
}

// PadRight appends spaces until value reaches width visible cells.
func PadRight(value string, width int) string {
	padding := width - VisibleWidth(value)
	if padding <= 0 {
		return value
	}

	return value + strings.Repeat(" ", padding)
}

// Fit truncates value to width visible cells, keeping escape sequences
// intact and ending with an ellipsis when cut.
func Fit(value string, width int) string {
	if width <= 0 {
		return ""
	}

	return ansi.Truncate(value, width, "…")
}

// Plain strips escape sequences.
func Plain(value string) string {
	return ansi.Strip(value)
}
