package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Backend is a scriptable stand-in for the automation server. Its zero
// configuration reports a ready browser session and answers every
// generation with a fixed song URL.
type Backend struct {
	*httptest.Server

	mu            sync.Mutex
	status        string
	generate      string
	generateCode  int
	requests      []map[string]any
	generateCount int
	statusCount   int
}

// NewBackend starts a fake automation server that is closed with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		status:       `{"status":"running","connected":true,"logged_in":true}`,
		generate:     `{"success":true,"url":"https://suno.com/song/test-song","prompt":"test"}`,
		generateCode: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy"}`)
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		b.statusCount++
		body := b.status
		b.mu.Unlock()

		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("POST /generate", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)

		b.mu.Lock()
		b.generateCount++
		b.requests = append(b.requests, payload)
		body, code := b.generate, b.generateCode
		b.mu.Unlock()

		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)

	return b
}

// SetStatus replaces the GET /status body.
func (b *Backend) SetStatus(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status = body
}

// SetGenerate replaces the POST /generate status code and body.
func (b *Backend) SetGenerate(code int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generateCode = code
	b.generate = body
}

// GenerateCalls returns how many generation requests were received.
func (b *Backend) GenerateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.generateCount
}

// StatusCalls returns how many status requests were received.
func (b *Backend) StatusCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.statusCount
}

// Requests returns the decoded generation request bodies in arrival order.
func (b *Backend) Requests() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]map[string]any(nil), b.requests...)
}
