// Package session assembles the orchestration core (monitor, simulation
// switch, generation orchestrator, history) behind one object that the CLI
// and the terminal UI share.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sunoctl/sunoctl/internal/client"
	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/history"
	"github.com/sunoctl/sunoctl/internal/monitor"
	"github.com/sunoctl/sunoctl/internal/observability"
	"github.com/sunoctl/sunoctl/internal/simulation"
)

// Backend is everything the core needs from the automation server.
type Backend interface {
	monitor.StatusChecker
	generation.Generator
}

// Options configures a Session. Zero values fall back to package defaults.
type Options struct {
	MonitorInterval time.Duration
	MonitorTimeout  time.Duration
	GenerateTimeout time.Duration
	SimulationDelay time.Duration
	Simulate        bool
	DownloadDir     string
	Logger          *slog.Logger
}

// Session is the orchestration core for one process.
type Session struct {
	id       string
	interval time.Duration
	logger   *slog.Logger

	monitor *monitor.Monitor
	sim     *simulation.Controller
	gen     *generation.Orchestrator
	history *history.Store
}

// New wires a session around backend. Nothing runs until Start.
func New(backend Backend, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = observability.Discard()
	}

	interval := opts.MonitorInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	s := &Session{
		id:       uuid.NewString(),
		interval: interval,
		sim:      simulation.New(opts.Simulate),
		history:  history.New(),
	}
	s.logger = logger.With(slog.String("session.id", s.id))

	s.monitor = monitor.New(backend,
		monitor.WithTimeout(opts.MonitorTimeout),
		monitor.WithLogger(s.logger),
	)

	genOpts := []generation.Option{
		generation.WithTimeout(opts.GenerateTimeout),
		generation.WithDownloadDir(opts.DownloadDir),
		generation.WithLogger(s.logger),
	}
	if opts.SimulationDelay > 0 {
		genOpts = append(genOpts, generation.WithSimulationDelay(opts.SimulationDelay))
	}

	s.gen = generation.New(backend, s.monitor, s.sim, s.history, genOpts...)

	return s
}

// NewForBackendURL is New with an HTTP client for baseURL.
func NewForBackendURL(baseURL string, opts Options) *Session {
	return New(client.New(baseURL), opts)
}

// ID identifies this session in logs.
func (s *Session) ID() string { return s.id }

// Start begins background connectivity polling.
func (s *Session) Start(ctx context.Context) error {
	return s.monitor.Start(ctx, s.interval)
}

// Stop ends background polling.
func (s *Session) Stop() {
	s.monitor.Stop()
}

// Connection returns the latest connectivity snapshot.
func (s *Session) Connection() monitor.Snapshot {
	return s.monitor.Current()
}

// RefreshConnection runs a status check now.
func (s *Session) RefreshConnection(ctx context.Context) (monitor.Snapshot, error) {
	return s.monitor.Refresh(ctx)
}

// Simulation reports whether simulation mode is active.
func (s *Session) Simulation() bool {
	return s.sim.IsActive()
}

// ToggleSimulation flips simulation mode and returns the new value.
func (s *Session) ToggleSimulation() bool {
	active := s.sim.Toggle()
	s.logger.Info("simulation mode toggled", slog.String("event.type", "simulation.toggle"), slog.Bool("active", active))

	return active
}

// Submit runs one generation request. See generation.Orchestrator.Submit.
func (s *Session) Submit(ctx context.Context, req generation.Request) (generation.Result, error) {
	return s.gen.Submit(ctx, req)
}

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool {
	return s.gen.Busy()
}

// Phase returns the lifecycle position of the latest submission.
func (s *Session) Phase() generation.Phase {
	return s.gen.Phase()
}

// History returns the session's successful results, newest first.
func (s *Session) History() []generation.Result {
	return s.history.All()
}
