package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/monitor"
)

func newBackend(t *testing.T, generateCalls *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"running","connected":true,"logged_in":true}`))
	})
	mux.HandleFunc("POST /generate", func(w http.ResponseWriter, _ *http.Request) {
		generateCalls.Add(1)
		_, _ = w.Write([]byte(`{"success":true,"url":"https://suno.com/song/real","prompt":"ambient"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func waitForState(t *testing.T, s *Session, want monitor.State) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Connection().State == want {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("connection state = %v, want %v", s.Connection().State, want)
}

func TestSession_EndToEnd(t *testing.T) {
	var calls atomic.Int32

	server := newBackend(t, &calls)

	s := NewForBackendURL(server.URL, Options{
		MonitorInterval: 10 * time.Millisecond,
		SimulationDelay: 5 * time.Millisecond,
		DownloadDir:     "/tmp/songs",
	})

	if s.ID() == "" {
		t.Fatal("session ID should be set")
	}

	if s.Connection().State != monitor.Checking {
		t.Fatalf("initial state = %v, want Checking", s.Connection().State)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	waitForState(t, s, monitor.ConnectedWithSession)

	res, err := s.Submit(context.Background(), generation.Request{Prompt: "ambient"})
	if err != nil || !res.Succeeded() {
		t.Fatalf("Submit() = %+v, %v", res, err)
	}

	if s.Simulation() {
		t.Fatal("simulation should default to off")
	}

	if !s.ToggleSimulation() {
		t.Fatal("ToggleSimulation() should return true")
	}

	simRes, err := s.Submit(context.Background(), generation.Request{Prompt: "fake"})
	if err != nil || !simRes.Simulated {
		t.Fatalf("simulated Submit() = %+v, %v", simRes, err)
	}

	if calls.Load() != 1 {
		t.Fatalf("generate calls = %d, want 1", calls.Load())
	}

	hist := s.History()
	if len(hist) != 2 || hist[0].Prompt != "fake" || hist[1].Prompt != "ambient" {
		t.Fatalf("History() = %+v", hist)
	}

	if s.Busy() || s.Phase() != generation.PhaseSucceeded {
		t.Fatalf("Busy() = %v Phase() = %v", s.Busy(), s.Phase())
	}
}

func TestSession_ToggleDoesNotAffectMonitor(t *testing.T) {
	var calls atomic.Int32

	server := newBackend(t, &calls)
	s := NewForBackendURL(server.URL, Options{Simulate: true})

	if !s.Simulation() {
		t.Fatal("Simulate option should start active")
	}

	snap, err := s.RefreshConnection(context.Background())
	if err != nil || snap.State != monitor.ConnectedWithSession {
		t.Fatalf("RefreshConnection() = %v, %v", snap.State, err)
	}

	s.ToggleSimulation()

	if s.Connection().State != monitor.ConnectedWithSession {
		t.Fatal("toggling simulation changed the connection state")
	}
}
