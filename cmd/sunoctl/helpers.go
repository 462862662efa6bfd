package main

import (
	"context"
	"errors"

	"github.com/sunoctl/sunoctl/internal/config"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/monitor"
	"github.com/sunoctl/sunoctl/internal/observability"
	"github.com/sunoctl/sunoctl/internal/session"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the configuration resolved by the root command, with
// flag overrides applied. Commands run outside the root (tests) load it fresh.
func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}

	return config.Load()
}

// newSession builds the orchestration core from configuration.
func newSession(ctx context.Context, cfg *config.Config) *session.Session {
	return session.NewForBackendURL(cfg.BackendURL(), session.Options{
		MonitorInterval: cfg.MonitorInterval(),
		MonitorTimeout:  cfg.MonitorTimeout(),
		GenerateTimeout: cfg.GenerateTimeout(),
		SimulationDelay: cfg.SimulationDelay(),
		Simulate:        cfg.SimulationEnabled(),
		DownloadDir:     cfg.DownloadDir(),
		Logger:          observability.FromContext(ctx),
	})
}

// defaultRequest returns an empty request carrying the configured toggles.
func defaultRequest(cfg *config.Config) generation.Request {
	return generation.Request{
		Instrumental: cfg.DefaultInstrumental(),
		AutoDownload: cfg.DefaultDownload(),
	}
}

// primeConnection runs one synchronous status check so the first submission
// sees a real reading instead of Checking. Simulation skips the network.
func primeConnection(ctx context.Context, s *session.Session) monitor.Snapshot {
	if s.Simulation() {
		return s.Connection()
	}

	snap, _ := s.RefreshConnection(ctx)

	return snap
}

// submitError maps a rejected submission onto a CLI error.
func submitError(err error) error {
	switch {
	case errors.Is(err, generation.ErrInvalidRequest):
		return clierrors.InvalidPrompt(err)
	case errors.Is(err, generation.ErrBusy):
		return clierrors.GenerationBusy()
	default:
		return err
	}
}

// resultError maps a failed result onto a CLI error; successes map to nil.
func resultError(res generation.Result, backendURL string, snap monitor.Snapshot) error {
	failure, failed := res.Failure()
	if !failed {
		return nil
	}

	if failure.Kind == generation.FailureConnectivity {
		if snap.State == monitor.Checking {
			return clierrors.BackendUnreachable(backendURL, "")
		}

		return clierrors.BackendUnreachable(backendURL, snap.Message)
	}

	return clierrors.GenerationFailed(failure.Reason, failure.Category)
}
