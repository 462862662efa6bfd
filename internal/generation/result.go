package generation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	clierrors "github.com/sunoctl/sunoctl/internal/errors"
)

// FailureKind separates failures that never reached the backend from those
// that did.
type FailureKind int

const (
	// FailureSubmission means the backend was called and the call failed.
	FailureSubmission FailureKind = iota
	// FailureConnectivity means the backend was not reachable, so no call was made.
	FailureConnectivity
)

func (k FailureKind) String() string {
	if k == FailureConnectivity {
		return "connectivity"
	}

	return "submission"
}

// Song is the payload of a successful generation.
type Song struct {
	URL           string
	FilePath      string
	DownloadError string
}

// Failure is the payload of a failed generation.
type Failure struct {
	Kind     FailureKind
	Category clierrors.Category
	// Status is the HTTP status when Category is CategoryHTTP.
	Status int
	Reason string
}

// Result is the terminal outcome of one submission. Exactly one of Song or
// Failure is present; use the accessors to read it.
type Result struct {
	ID          string
	Prompt      string
	Style       string
	Title       string
	Simulated   bool
	CompletedAt time.Time

	song    *Song
	failure *Failure
}

// NewSuccess builds a successful result for req. A song without a URL is
// rejected, so no success can exist without one.
func NewSuccess(req Request, song Song) (Result, error) {
	if song.URL == "" {
		return Result{}, fmt.Errorf("success without url: %w", clierrors.ErrMalformed)
	}

	r := newResult(req)
	r.song = &song

	return r, nil
}

// NewFailure builds a failed result for req.
func NewFailure(req Request, failure Failure) Result {
	r := newResult(req)
	r.failure = &failure

	return r
}

func newResult(req Request) Result {
	return Result{
		ID:          uuid.NewString(),
		Prompt:      req.Prompt,
		Style:       req.Style,
		Title:       req.Title,
		CompletedAt: time.Now(),
	}
}

// Succeeded reports whether the result holds a song.
func (r Result) Succeeded() bool {
	return r.song != nil
}

// Song returns the song and true for a successful result.
func (r Result) Song() (Song, bool) {
	if r.song == nil {
		return Song{}, false
	}

	return *r.song, true
}

// Failure returns the failure and true for a failed result.
func (r Result) Failure() (Failure, bool) {
	if r.failure == nil {
		return Failure{}, false
	}

	return *r.failure, true
}

type resultJSON struct {
	ID            string `json:"id"`
	Success       bool   `json:"success"`
	URL           string `json:"url,omitempty"`
	Prompt        string `json:"prompt"`
	Style         string `json:"style,omitempty"`
	Title         string `json:"title,omitempty"`
	FilePath      string `json:"file_path,omitempty"`
	DownloadError string `json:"download_error,omitempty"`
	Error         string `json:"error,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
	ErrorCategory string `json:"error_category,omitempty"`
	Simulated     bool   `json:"simulated,omitempty"`
	CompletedAt   string `json:"completed_at"`
}

// MarshalJSON renders the result in the backend's response shape, with the
// failure reason under "error".
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		ID:          r.ID,
		Prompt:      r.Prompt,
		Style:       r.Style,
		Title:       r.Title,
		Simulated:   r.Simulated,
		CompletedAt: r.CompletedAt.UTC().Format(time.RFC3339),
	}

	if song, ok := r.Song(); ok {
		out.Success = true
		out.URL = song.URL
		out.FilePath = song.FilePath
		out.DownloadError = song.DownloadError
	}

	if failure, ok := r.Failure(); ok {
		out.Error = failure.Reason
		out.ErrorKind = failure.Kind.String()
		out.ErrorCategory = failure.Category.String()
	}

	return json.Marshal(out)
}
