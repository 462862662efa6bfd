// Package generation owns the lifecycle of song generation requests.
//
// An Orchestrator accepts one submission at a time. Each submission ends in
// exactly one Result: a synthesized success in simulation mode, a fast
// connectivity failure when the backend is not reachable, or the outcome of
// one POST /generate call. Only successes are recorded in history.
package generation

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sunoctl/sunoctl/internal/client"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/monitor"
	"github.com/sunoctl/sunoctl/internal/observability"
)

const (
	// DefaultTimeout bounds one generation call.
	DefaultTimeout = 5 * time.Minute
	// DefaultSimulationDelay is the artificial latency of a simulated submission.
	DefaultSimulationDelay = 2 * time.Second

	simulatedURLPrefix = "https://suno.com/song/simulated-"
)

// Generator performs the backend generation call.
type Generator interface {
	Generate(ctx context.Context, req *client.GenerateRequest) (*client.GenerateResponse, error)
}

// ConnectivitySource exposes the latest connectivity reading.
type ConnectivitySource interface {
	Current() monitor.Snapshot
}

// FlagSource reports whether simulation mode is active.
type FlagSource interface {
	IsActive() bool
}

// Recorder stores successful results.
type Recorder interface {
	Push(Result)
}

// Phase is the lifecycle position of the most recent submission.
type Phase int

const (
	// PhaseIdle means nothing has been submitted yet.
	PhaseIdle Phase = iota
	// PhaseSubmitting means a submission is in flight.
	PhaseSubmitting
	// PhaseSucceeded means the last submission produced a song.
	PhaseSucceeded
	// PhaseFailed means the last submission ended in a failure.
	PhaseFailed
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Orchestrator submits generation requests one at a time.
type Orchestrator struct {
	backend Generator
	conn    ConnectivitySource
	sim     FlagSource
	store   Recorder

	timeout     time.Duration
	simDelay    time.Duration
	downloadDir string
	logger      *slog.Logger
	now         func() time.Time

	busy atomic.Bool

	mu    sync.Mutex
	phase Phase
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds each backend generation call.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSimulationDelay sets the latency of simulated submissions.
func WithSimulationDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.simDelay = d
		}
	}
}

// WithDownloadDir sets the directory used for simulated file paths.
func WithDownloadDir(dir string) Option {
	return func(o *Orchestrator) { o.downloadDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for CompletedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator. store may be nil when results need not be kept.
func New(backend Generator, conn ConnectivitySource, sim FlagSource, store Recorder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		conn:     conn,
		sim:      sim,
		store:    store,
		timeout:  DefaultTimeout,
		simDelay: DefaultSimulationDelay,
		logger:   observability.Discard(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	o.logger = o.logger.With(slog.String("component", "generation"))

	return o
}

// Busy reports whether a submission is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Phase returns the lifecycle position of the most recent submission.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.phase
}

// Submit runs one generation request to completion.
//
// Invalid requests fail with an error wrapping ErrInvalidRequest and a
// concurrent call fails with ErrBusy; neither performs I/O. Every other
// outcome, including backend failures, is returned as a Result with a nil
// error.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	if !o.busy.CompareAndSwap(false, true) {
		o.logger.Debug("submission rejected, another is in flight", slog.String("event.type", "generation.busy"))
		return Result{}, ErrBusy
	}
	defer o.busy.Store(false)

	o.setPhase(PhaseSubmitting)

	simulated := o.sim.IsActive()

	ctx, span := observability.Tracer("sunoctl.generation").Start(ctx, "generation.submit")
	span.SetAttributes(
		attribute.Bool("generation.simulated", simulated),
		attribute.Bool("generation.instrumental", req.Instrumental),
		attribute.Bool("generation.download", req.AutoDownload),
	)

	o.logger.Info("generation submitted",
		slog.String("event.type", "generation.submit"),
		slog.Bool("simulated", simulated),
		slog.String("title", req.Title),
	)

	var res Result

	switch {
	case simulated:
		res = o.simulate(ctx, req)
	default:
		if snap := o.conn.Current(); !snap.State.Reachable() {
			res = NewFailure(req, Failure{
				Kind:     FailureConnectivity,
				Category: snap.Category,
				Status:   snap.StatusCode,
				Reason:   "Backend not reachable: " + snap.Message,
			})
		} else {
			res = o.callBackend(ctx, req)
		}
	}

	res.CompletedAt = o.now()

	if song, ok := res.Song(); ok {
		if o.store != nil {
			o.store.Push(res)
		}

		o.setPhase(PhaseSucceeded)
		span.SetAttributes(attribute.String("generation.url", song.URL))
		observability.EndSpan(span, nil)

		o.logger.Info("generation succeeded",
			slog.String("event.type", "generation.success"),
			slog.String("result.id", res.ID),
			slog.String("url", song.URL),
			slog.Bool("simulated", res.Simulated),
		)

		return res, nil
	}

	failure, _ := res.Failure()

	o.setPhase(PhaseFailed)
	span.SetAttributes(
		attribute.String("generation.failure.kind", failure.Kind.String()),
		attribute.String("generation.failure.category", failure.Category.String()),
	)
	observability.EndSpan(span, errFailure(failure))

	o.logger.Warn("generation failed",
		slog.String("event.type", "generation.failure"),
		slog.String("result.id", res.ID),
		slog.String("failure.kind", failure.Kind.String()),
		slog.String("error.category", failure.Category.String()),
		slog.String("reason", failure.Reason),
	)

	return res, nil
}

func (o *Orchestrator) callBackend(ctx context.Context, req Request) Result {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.backend.Generate(callCtx, req.wire())
	if err != nil {
		return classifiedFailure(req, err)
	}

	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "Backend reported the generation as unsuccessful"
		}

		return NewFailure(req, Failure{Kind: FailureSubmission, Category: clierrors.CategoryUnknown, Reason: reason})
	}

	// A success carries the backend's echo. Only a missing prompt falls back
	// to the request.
	echo := Request{Prompt: resp.Prompt, Style: resp.Style, Title: resp.Title}
	if echo.Prompt == "" {
		echo.Prompt = req.Prompt
	}

	res, err := NewSuccess(echo, Song{
		URL:           resp.URL,
		FilePath:      resp.FilePath,
		DownloadError: resp.DownloadError,
	})
	if err != nil {
		return classifiedFailure(req, err)
	}

	return res
}

// simulate waits out the simulated latency and fabricates a success. Only a
// canceled ctx can make it fail.
func (o *Orchestrator) simulate(ctx context.Context, req Request) Result {
	if err := sleep(ctx, o.simDelay); err != nil {
		return classifiedFailure(req, err)
	}

	id := uuid.NewString()

	res, err := NewSuccess(req, Song{
		URL:      simulatedURLPrefix + id,
		FilePath: filepath.Join(o.downloadDir, "simulated-"+id+".mp3"),
	})
	if err != nil {
		return classifiedFailure(req, err)
	}

	res.ID = id
	res.Simulated = true

	return res
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

func classifiedFailure(req Request, err error) Result {
	c := clierrors.Classify(err)

	return NewFailure(req, Failure{
		Kind:     FailureSubmission,
		Category: c.Category,
		Status:   c.Status,
		Reason:   c.Message,
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type failureError struct{ f Failure }

func (e failureError) Error() string { return e.f.Reason }

func errFailure(f Failure) error { return failureError{f: f} }
