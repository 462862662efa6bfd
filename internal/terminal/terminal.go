// Package terminal provides terminal detection and capabilities.
//
// This package handles:
//   - TTY detection for stdin and stdout
//   - NO_COLOR and TERM=dumb support
//   - Terminal dimensions, with a COLUMNS override
package terminal

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// Default dimensions when the size cannot be read.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Info holds terminal capability information.
type Info struct {
	IsTTY      bool
	StdinIsTTY bool
	NoColor    bool
	Width      int
	Height     int
	ForceFlag  bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current environment.
func Detect() *Info {
	stdoutFD := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(stdoutFD)

	width, height := DefaultWidth, DefaultHeight

	if isTTY {
		if w, h, err := term.GetSize(stdoutFD); err == nil && w > 0 {
			width, height = w, h
		}
	}

	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		width = cols
	}

	// https://no-color.org/
	_, noColor := os.LookupEnv("NO_COLOR")

	if os.Getenv("TERM") == "dumb" {
		noColor = true
	}

	return &Info{
		IsTTY:      isTTY,
		StdinIsTTY: term.IsTerminal(int(os.Stdin.Fd())),
		NoColor:    noColor,
		Width:      width,
		Height:     height,
	}
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// InteractiveEnabled returns true if interactive prompts are allowed. Both
// ends must be a terminal: stdout to show the question, stdin to answer it.
func (t *Info) InteractiveEnabled() bool {
	return t.IsTTY && t.StdinIsTTY
}

// SpinnersEnabled returns true if spinners should be used.
func (t *Info) SpinnersEnabled() bool {
	return t.IsTTY && !t.NoColor
}
