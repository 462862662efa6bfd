// Package monitor polls the automation backend's status endpoint and keeps
// the latest connectivity reading.
//
// A Monitor runs one check immediately on Start and then one per interval.
// Checks never overlap: a tick that fires while a check is still running is
// skipped. Stop cancels the schedule but lets an in-flight check finish; its
// result is thrown away.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sunoctl/sunoctl/internal/client"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/observability"
)

// DefaultTimeout bounds a single status check.
const DefaultTimeout = 5 * time.Second

var (
	// ErrAlreadyRunning is returned by Start on a running monitor.
	ErrAlreadyRunning = errors.New("monitor already running")
	// ErrCheckInFlight is returned by Refresh when a check is already running.
	ErrCheckInFlight = errors.New("status check already in flight")
)

// StatusChecker performs one status request.
type StatusChecker interface {
	Status(ctx context.Context) (*client.StatusResponse, error)
}

// Snapshot is a point-in-time copy of the monitor state.
type Snapshot struct {
	State State
	// Message is the diagnostic shown next to the state.
	Message string
	// Category classifies the last failed check; CategoryUnknown otherwise.
	Category clierrors.Category
	// StatusCode is the HTTP status of the last non-2xx answer.
	StatusCode int
	CheckedAt  time.Time
	// Checks counts committed checks; Skipped counts ticks dropped because a
	// check was still running.
	Checks  int
	Skipped int
}

// Monitor tracks backend connectivity.
type Monitor struct {
	checker StatusChecker
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	inFlight atomic.Bool

	mu      sync.Mutex
	snap    Snapshot
	running bool
	epoch   uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithTimeout sets the per-check timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a monitor in the Checking state. It does nothing until Start
// or Refresh is called.
func New(checker StatusChecker, opts ...Option) *Monitor {
	m := &Monitor{
		checker: checker,
		timeout: DefaultTimeout,
		logger:  observability.Discard(),
		now:     time.Now,
		snap: Snapshot{
			State:   Checking,
			Message: "Checking connection...",
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With(slog.String("component", "monitor"))

	return m
}

// Current returns the latest snapshot.
func (m *Monitor) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snap
}

// Start begins polling every interval until Stop is called or ctx is done.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %s", interval)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	m.epoch++
	m.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.loop(loopCtx, interval, m.epoch, m.done)

	m.logger.Debug("monitor started", slog.String("event.type", "monitor.start"), slog.Duration("interval", interval))

	return nil
}

// Stop cancels polling and waits for the schedule goroutine to exit. A check
// still in flight is not aborted, but its result is discarded.
func (m *Monitor) Stop() {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()
		return
	}

	m.running = false
	m.epoch++
	m.cancel()
	done := m.done
	m.mu.Unlock()

	<-done

	m.logger.Debug("monitor stopped", slog.String("event.type", "monitor.stop"))
}

// Refresh runs one check now and returns the resulting snapshot. It shares
// the in-flight guard with the schedule, so it returns ErrCheckInFlight with
// the current snapshot when a check is already running.
func (m *Monitor) Refresh(ctx context.Context) (Snapshot, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return m.Current(), ErrCheckInFlight
	}
	defer m.inFlight.Store(false)

	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	m.commit(epoch, m.check(ctx))

	return m.Current(), nil
}

func (m *Monitor) loop(ctx context.Context, interval time.Duration, epoch uint64, done chan struct{}) {
	defer close(done)
	defer m.finish(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.tick(ctx, epoch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx, epoch)
		}
	}
}

func (m *Monitor) tick(ctx context.Context, epoch uint64) {
	if !m.inFlight.CompareAndSwap(false, true) {
		m.mu.Lock()
		m.snap.Skipped++
		m.mu.Unlock()

		m.logger.Debug("status check skipped, previous check still running", slog.String("event.type", "monitor.skip"))

		return
	}

	// Stop must not abort the check, so it only inherits values from ctx.
	checkCtx := context.WithoutCancel(ctx)

	go func() {
		defer m.inFlight.Store(false)
		m.commit(epoch, m.check(checkCtx))
	}()
}

// check performs one bounded status request and derives a snapshot from it.
func (m *Monitor) check(ctx context.Context) Snapshot {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	ctx, span := observability.Tracer("sunoctl.monitor").Start(ctx, "monitor.check")

	resp, err := m.checker.Status(ctx)
	snap := Derive(resp, err)
	snap.CheckedAt = m.now()

	span.SetAttributes(
		attribute.String("monitor.state", snap.State.String()),
		attribute.String("monitor.category", snap.Category.String()),
	)
	observability.EndSpan(span, err)

	if err != nil {
		m.logger.Debug("status check failed",
			slog.String("event.type", "monitor.check.error"),
			slog.String("error.category", snap.Category.String()),
			slog.String("error", err.Error()),
		)
	}

	return snap
}

// finish marks the monitor idle when the loop exits because its parent ctx
// ended, so Start can be called again without Stop. Like Stop, it retires the
// loop's epoch.
func (m *Monitor) finish(done chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done == done && m.running {
		m.running = false
		m.epoch++
	}
}

// commit stores snap unless the monitor was stopped or restarted after the
// check began.
func (m *Monitor) commit(epoch uint64, snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		m.logger.Debug("discarding status check result after stop", slog.String("event.type", "monitor.discard"))
		return
	}

	prev := m.snap
	snap.Checks = prev.Checks + 1
	snap.Skipped = prev.Skipped
	m.snap = snap

	if prev.State != snap.State {
		m.logger.Info("connection state changed",
			slog.String("event.type", "monitor.transition"),
			slog.String("from", prev.State.String()),
			slog.String("to", snap.State.String()),
			slog.String("message", snap.Message),
		)
	}
}
