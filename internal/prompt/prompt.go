// Package prompt provides interactive prompts for the sunoctl CLI.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/output"
)

var errCanceled = errors.New("prompt canceled")

// IsCanceled reports whether err means the user closed input (Ctrl-D).
func IsCanceled(err error) bool {
	return errors.Is(err, errCanceled)
}

// Prompter handles interactive prompts.
type Prompter struct {
	out    *output.Writer
	reader *bufio.Reader
}

// New creates a Prompter reading from stdin.
func New(out *output.Writer) *Prompter {
	return NewWithReader(out, os.Stdin)
}

// NewWithReader creates a Prompter reading from r.
func NewWithReader(out *output.Writer, r io.Reader) *Prompter {
	return &Prompter{
		out:    out,
		reader: bufio.NewReader(r),
	}
}

// CanPrompt returns true if interactive prompts are available.
func (p *Prompter) CanPrompt() bool {
	return p.out.Terminal().InteractiveEnabled() && !p.out.NoInput
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) == "" {
			p.out.Println()
			return "", errCanceled
		}

		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
	}

	return strings.TrimSpace(input), nil
}

// Text prompts for a line of text. An empty answer returns defaultValue.
func (p *Prompter) Text(message, defaultValue string) (string, error) {
	if defaultValue != "" {
		p.out.Print("%s [%s]: ", message, defaultValue)
	} else {
		p.out.Print("%s: ", message)
	}

	input, err := p.readLine()
	if err != nil {
		return "", err
	}

	if input == "" {
		return defaultValue, nil
	}

	return input, nil
}

// Required prompts until a non-empty answer is given.
func (p *Prompter) Required(message string) (string, error) {
	for {
		input, err := p.Text(message, "")
		if err != nil {
			return "", err
		}

		if input != "" {
			return input, nil
		}

		p.out.Warning("A value is required")
	}
}

// Confirm prompts for a yes/no confirmation.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	p.out.Print("%s [%s]: ", message, defaultStr)

	input, err := p.readLine()
	if err != nil {
		return defaultValue, err
	}

	switch strings.ToLower(input) {
	case "":
		return defaultValue, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Select prompts the user to select from a list of options and returns the
// chosen index.
func (p *Prompter) Select(message string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options to select from")
	}

	p.out.Println(message)

	for i, opt := range options {
		p.out.Print("  [%d] %s\n", i+1, opt)
	}

	p.out.Println()

	for {
		p.out.Print("Select [1-%d]: ", len(options))

		input, err := p.readLine()
		if err != nil {
			return -1, err
		}

		if input == "" {
			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(options) {
			p.out.Warning("Invalid selection. Please enter a number between 1 and %d", len(options))
			continue
		}

		return num - 1, nil
	}
}

// Request asks for the song details when base has no prompt. A base that
// already carries a prompt is returned unchanged.
func (p *Prompter) Request(base generation.Request) (generation.Request, error) {
	if strings.TrimSpace(base.Prompt) != "" {
		return base, nil
	}

	req := base

	prompt, err := p.Required("Song prompt")
	if err != nil {
		return req, err
	}

	style, err := p.Text("Style (optional)", req.Style)
	if err != nil {
		return req, err
	}

	title, err := p.Text("Title (optional)", req.Title)
	if err != nil {
		return req, err
	}

	instrumental, err := p.Confirm("Instrumental", req.Instrumental)
	if err != nil {
		return req, err
	}

	req.Prompt = prompt
	req.Style = style
	req.Title = title
	req.Instrumental = instrumental

	return req, nil
}
