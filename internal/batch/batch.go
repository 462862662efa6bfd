// Package batch reads files describing several songs to generate in one run.
//
// A batch file is YAML (.yaml, .yml) or TOML (.toml):
//
//	defaults:
//	  style: lo-fi
//	  instrumental: true
//	songs:
//	  - prompt: rainy window
//	    title: Drizzle
//	  - prompt: night drive
//	    instrumental: false
//
// Per-song fields override the file defaults, which override the defaults
// supplied by the caller.
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sunoctl/sunoctl/internal/generation"
)

// MaxSongs caps the number of entries in one file.
const MaxSongs = 50

// ErrEmpty is returned for a file without songs.
var ErrEmpty = errors.New("batch file contains no songs")

// Defaults holds values applied to songs that leave a field unset.
type Defaults struct {
	Style        string `yaml:"style" toml:"style"`
	Instrumental *bool  `yaml:"instrumental" toml:"instrumental"`
	Download     *bool  `yaml:"download" toml:"download"`
}

// Song is one entry of a batch file.
type Song struct {
	Prompt       string `yaml:"prompt" toml:"prompt"`
	Style        string `yaml:"style" toml:"style"`
	Title        string `yaml:"title" toml:"title"`
	Instrumental *bool  `yaml:"instrumental" toml:"instrumental"`
	Download     *bool  `yaml:"download" toml:"download"`
}

// File is a parsed batch file.
type File struct {
	Defaults Defaults `yaml:"defaults" toml:"defaults"`
	Songs    []Song   `yaml:"songs" toml:"songs"`
}

// EntryError reports an invalid song by its 1-based position.
type EntryError struct {
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("song %d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Load reads and parses path, choosing the format from its extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	return Parse(data, formatOf(path))
}

// Format is a batch file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

func formatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}

	return FormatYAML
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*File, error) {
	var f File

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(trimmed, &f); err != nil {
			return nil, fmt.Errorf("parse toml batch: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(trimmed))
		dec.KnownFields(true)

		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse yaml batch: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported batch format %q", format)
	}

	if len(f.Songs) == 0 {
		return nil, ErrEmpty
	}

	if len(f.Songs) > MaxSongs {
		return nil, fmt.Errorf("batch file has %d songs, limit is %d", len(f.Songs), MaxSongs)
	}

	return &f, nil
}

// Requests resolves every song against the file defaults and then base, and
// validates the result. All invalid entries are reported together.
func (f *File) Requests(base generation.Request) ([]generation.Request, error) {
	reqs := make([]generation.Request, 0, len(f.Songs))

	var errs []error

	for i, song := range f.Songs {
		req := generation.Request{
			Prompt:       song.Prompt,
			Style:        firstNonEmpty(song.Style, f.Defaults.Style, base.Style),
			Title:        song.Title,
			Instrumental: pick(song.Instrumental, f.Defaults.Instrumental, base.Instrumental),
			AutoDownload: pick(song.Download, f.Defaults.Download, base.AutoDownload),
		}

		if err := req.Validate(); err != nil {
			errs = append(errs, &EntryError{Index: i + 1, Err: err})
			continue
		}

		reqs = append(reqs, req)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return reqs, nil
}

func pick(song, file *bool, base bool) bool {
	switch {
	case song != nil:
		return *song
	case file != nil:
		return *file
	default:
		return base
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
