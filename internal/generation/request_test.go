package generation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	clierrors "github.com/sunoctl/sunoctl/internal/errors"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantField string
	}{
		{name: "minimal", req: Request{Prompt: "a song"}},
		{name: "all fields at limits", req: Request{
			Prompt: strings.Repeat("p", MaxPromptLength),
			Style:  strings.Repeat("s", MaxStyleLength),
			Title:  strings.Repeat("t", MaxTitleLength),
		}},
		{name: "multibyte counted as characters", req: Request{Prompt: strings.Repeat("é", MaxPromptLength)}},
		{name: "empty prompt", req: Request{Prompt: ""}, wantField: "prompt"},
		{name: "whitespace prompt", req: Request{Prompt: " \t "}, wantField: "prompt"},
		{name: "prompt too long", req: Request{Prompt: strings.Repeat("p", MaxPromptLength+1)}, wantField: "prompt"},
		{name: "style too long", req: Request{Prompt: "x", Style: strings.Repeat("s", MaxStyleLength+1)}, wantField: "style"},
		{name: "title too long", req: Request{Prompt: "x", Title: strings.Repeat("t", MaxTitleLength+1)}, wantField: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}

				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}

			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}

			if !errors.Is(err, ErrInvalidRequest) {
				t.Error("validation error should match ErrInvalidRequest")
			}
		})
	}
}

func TestRequestWireKeepsWhitespace(t *testing.T) {
	req := Request{Prompt: "  lofi  ", Style: " chill ", Title: "", Instrumental: true, AutoDownload: true}

	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	wire := req.wire()
	if wire.Prompt != "  lofi  " || wire.Style != " chill " || wire.Title != "" || !wire.Instrumental || !wire.Download {
		t.Fatalf("wire() = %+v", wire)
	}
}

func TestNewSuccessRequiresURL(t *testing.T) {
	_, err := NewSuccess(Request{Prompt: "x"}, Song{})
	if !errors.Is(err, clierrors.ErrMalformed) {
		t.Fatalf("NewSuccess() error = %v, want ErrMalformed", err)
	}
}

func TestResultAccessors(t *testing.T) {
	ok, err := NewSuccess(Request{Prompt: "x"}, Song{URL: "https://x/1"})
	if err != nil {
		t.Fatal(err)
	}

	if !ok.Succeeded() || ok.ID == "" {
		t.Fatalf("success result = %+v", ok)
	}

	if _, has := ok.Failure(); has {
		t.Fatal("success must not carry a failure")
	}

	bad := NewFailure(Request{Prompt: "x"}, Failure{Reason: "nope"})
	if bad.Succeeded() {
		t.Fatal("failure reported success")
	}

	if _, has := bad.Song(); has {
		t.Fatal("failure must not carry a song")
	}
}

func TestResultMarshalJSON(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	ok, _ := NewSuccess(Request{Prompt: "A happy techno song", Title: "Robots"}, Song{URL: "https://x/1", FilePath: "/d/Robots.mp3"})
	ok.ID = "r-1"
	ok.CompletedAt = at

	got, err := json.Marshal(ok)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"id":"r-1","success":true,"url":"https://x/1","prompt":"A happy techno song","title":"Robots","file_path":"/d/Robots.mp3","completed_at":"2026-01-02T03:04:05Z"}`
	if string(got) != want {
		t.Fatalf("json = %s\nwant   %s", got, want)
	}

	bad := NewFailure(Request{Prompt: "p"}, Failure{Kind: FailureConnectivity, Category: clierrors.CategoryTimeout, Reason: "down"})
	bad.ID = "r-2"
	bad.CompletedAt = at

	got, _ = json.Marshal(bad)

	want = `{"id":"r-2","success":false,"prompt":"p","error":"down","error_kind":"connectivity","error_category":"timeout","completed_at":"2026-01-02T03:04:05Z"}`
	if string(got) != want {
		t.Fatalf("json = %s\nwant   %s", got, want)
	}
}
