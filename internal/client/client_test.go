package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	c := New("https://backend.example/")

	if c.baseURL != "https://backend.example" {
		t.Errorf("baseURL = %q, want %q", c.baseURL, "https://backend.example")
	}

	if c.httpClient == nil {
		t.Error("httpClient should not be nil")
	}

	if got := New("").BaseURL(); got != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", got, DefaultBaseURL)
	}
}

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		want       StatusResponse
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "logged in",
			statusCode: http.StatusOK,
			body:       `{"status":"running","connected":true,"logged_in":true,"error":null}`,
			want:       StatusResponse{Status: "running", Connected: true, LoggedIn: true},
		},
		{
			name:       "not connected with error",
			statusCode: http.StatusOK,
			body:       `{"status":"running","connected":false,"logged_in":false,"error":"Chrome not running"}`,
			want:       StatusResponse{Status: "running", Error: "Chrome not running"},
		},
		{
			name:       "service unavailable",
			statusCode: http.StatusServiceUnavailable,
			body:       `{"detail":"automation not initialized"}`,
			wantErr:    true,
			errMsg:     "get status failed with status 503",
		},
		{
			name:       "malformed body",
			statusCode: http.StatusOK,
			body:       `{"connected": tru`,
			wantErr:    true,
			errMsg:     "failed to parse status response",
		},
		{
			name:       "empty body",
			statusCode: http.StatusOK,
			body:       ``,
			wantErr:    true,
			errMsg:     "unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/status" {
					t.Errorf("path = %q, want /status", r.URL.Path)
				}

				if r.Method != http.MethodGet {
					t.Errorf("method = %q, want GET", r.Method)
				}

				if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "sunoctl/") {
					t.Errorf("User-Agent = %q, want sunoctl/ prefix", got)
				}

				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			got, err := New(server.URL).Status(context.Background())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want to contain %q", err.Error(), tt.errMsg)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if *got != tt.want {
				t.Errorf("Status() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestClient_StatusErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Song generation failed"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Generate(context.Background(), &GenerateRequest{Prompt: "x"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}

	if statusErr.StatusCode() != 500 {
		t.Errorf("StatusCode() = %d, want 500", statusErr.StatusCode())
	}

	if statusErr.Reason() != "Internal Server Error" {
		t.Errorf("Reason() = %q", statusErr.Reason())
	}

	if statusErr.Detail() != "Song generation failed" {
		t.Errorf("Detail() = %q", statusErr.Detail())
	}
}

func TestStatusError_DetailVariants(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"detail":"boom"}`, want: "boom"},
		{body: `{"error":"bad"}`, want: "bad"},
		{body: `{"detail":[{"msg":"field required"}]}`, want: ""},
		{body: `<html>oops</html>`, want: ""},
		{body: ``, want: ""},
	}

	for _, tt := range tests {
		e := &StatusError{Operation: "x", Code: 500, Body: tt.body}
		if got := e.Detail(); got != tt.want {
			t.Errorf("Detail(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestClient_Generate(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("path = %q, want /generate", r.URL.Path)
		}

		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}

		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}

		_, _ = w.Write([]byte(`{
			"success": true,
			"url": "https://suno.com/song/abc",
			"prompt": "A happy techno song",
			"title": "Robots",
			"file_path": "/downloads/Robots.mp3"
		}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Generate(context.Background(), &GenerateRequest{
		Prompt:       "A happy techno song",
		Style:        "Electronic",
		Title:        "Robots",
		Instrumental: true,
		Download:     true,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if gotBody["prompt"] != "A happy techno song" || gotBody["style"] != "Electronic" || gotBody["title"] != "Robots" {
		t.Errorf("request body = %v", gotBody)
	}

	if gotBody["instrumental"] != true || gotBody["download"] != true {
		t.Errorf("request flags = %v", gotBody)
	}

	if !resp.Success || resp.URL != "https://suno.com/song/abc" || resp.FilePath != "/downloads/Robots.mp3" {
		t.Errorf("response = %+v", resp)
	}
}

func TestClient_GenerateOmitsEmptyOptionalFields(t *testing.T) {
	var raw string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		_, _ = w.Write([]byte(`{"success":false,"error":"Not logged in"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Generate(context.Background(), &GenerateRequest{Prompt: "lofi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(raw, "style") || strings.Contains(raw, "title") {
		t.Errorf("body = %s, want style and title omitted", raw)
	}

	if !strings.Contains(raw, `"instrumental":false`) {
		t.Errorf("body = %s, want explicit instrumental flag", raw)
	}

	if resp.Success || resp.Error != "Not logged in" {
		t.Errorf("response = %+v", resp)
	}
}

func TestClient_GenerateNilRequest(t *testing.T) {
	if _, err := New("http://unused").Generate(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}

		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer server.Close()

	health, err := New(server.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}

	if health.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", health.Status)
	}
}

func TestClient_StatusHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(server.URL).Status(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
}
