package generation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sunoctl/sunoctl/internal/client"
)

// Length limits, counted in characters.
const (
	MaxPromptLength = 500
	MaxStyleLength  = 200
	MaxTitleLength  = 80
)

var (
	// ErrInvalidRequest is wrapped by every validation failure.
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("a generation request is already in progress")
)

// ValidationError describes which field of a Request was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidRequest.
func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// Request is one song generation request. It is passed by value and never
// modified after submission.
type Request struct {
	Prompt       string `json:"prompt" yaml:"prompt" toml:"prompt"`
	Style        string `json:"style,omitempty" yaml:"style,omitempty" toml:"style,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Instrumental bool   `json:"instrumental" yaml:"instrumental" toml:"instrumental"`
	AutoDownload bool   `json:"download" yaml:"download" toml:"download"`
}

// Validate checks the prompt is non-blank and every field is within its
// length limit. It performs no I/O. Whitespace only matters for the blank
// check; fields are sent as written.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &ValidationError{Field: "prompt", Reason: "must not be empty"}
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"prompt", r.Prompt, MaxPromptLength},
		{"style", r.Style, MaxStyleLength},
		{"title", r.Title, MaxTitleLength},
	}

	for _, l := range limits {
		if n := utf8.RuneCountInString(l.value); n > l.max {
			return &ValidationError{
				Field:  l.field,
				Reason: fmt.Sprintf("is %d characters, limit is %d", n, l.max),
			}
		}
	}

	return nil
}

func (r Request) wire() *client.GenerateRequest {
	return &client.GenerateRequest{
		Prompt:       r.Prompt,
		Style:        r.Style,
		Title:        r.Title,
		Instrumental: r.Instrumental,
		Download:     r.AutoDownload,
	}
}
