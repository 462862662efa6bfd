package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunoctl/sunoctl/internal/client"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/monitor"
	"github.com/sunoctl/sunoctl/internal/observability"
	"github.com/sunoctl/sunoctl/internal/output"
)

// StatusInfo is the JSON shape of one connectivity reading.
type StatusInfo struct {
	BackendURL string    `json:"backend_url"`
	State      string    `json:"state"`
	Label      string    `json:"label"`
	Message    string    `json:"message"`
	Category   string    `json:"category,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

func statusInfo(backendURL string, snap monitor.Snapshot) StatusInfo {
	info := StatusInfo{
		BackendURL: backendURL,
		State:      snap.State.String(),
		Label:      snap.State.Label(),
		Message:    snap.Message,
		StatusCode: snap.StatusCode,
		CheckedAt:  snap.CheckedAt,
	}

	if snap.State == monitor.Offline {
		info.Category = snap.Category.String()
	}

	return info
}

func newStatusCmd() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the automation server is ready",
		Long: `Check the automation server once and report its connection state: offline,
connected but not logged into Suno.ai, or connected and logged in.

With --watch the server is polled until interrupted and every state change
is printed. The command exits with code 3 when the server is offline.`,
		Example: `  sunoctl status
  sunoctl status --json
  sunoctl status --watch --interval 2s`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := configFrom(ctx)
			backendURL := cfg.BackendURL()

			if interval <= 0 {
				interval = cfg.MonitorInterval()
			}

			m := monitor.New(client.New(backendURL),
				monitor.WithTimeout(cfg.MonitorTimeout()),
				monitor.WithLogger(observability.FromContext(ctx)),
			)

			if watch {
				return watchStatus(ctx, out, m, backendURL, interval)
			}

			snap, err := m.Refresh(ctx)
			if err != nil {
				return err
			}

			if out.JSON {
				if err := out.PrintJSON(statusInfo(backendURL, snap)); err != nil {
					return err
				}
			} else {
				printStatus(out, backendURL, snap)
			}

			if snap.State == monitor.Offline {
				return clierrors.BackendUnreachable(backendURL, snap.Message)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling and print every state change")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval for --watch (default from monitor.interval)")

	return cmd
}

func printStatus(out *output.Writer, backendURL string, snap monitor.Snapshot) {
	out.KeyValue([][2]string{
		{"Backend", backendURL},
		{"State", snap.State.Label()},
		{"Checked", snap.CheckedAt.Format(time.TimeOnly)},
	})

	switch snap.State {
	case monitor.ConnectedWithSession:
		out.Success("%s", snap.Message)
	case monitor.ConnectedNoSession:
		out.Warning("%s", snap.Message)
	}
}

// watchStatus polls until ctx ends and prints a line whenever the state or
// its diagnostic changes. In JSON mode each change is one JSON document.
func watchStatus(ctx context.Context, out *output.Writer, m *monitor.Monitor, backendURL string, interval time.Duration) error {
	if err := m.Start(ctx, interval); err != nil {
		return err
	}
	defer m.Stop()

	if !out.JSON {
		out.Muted("Watching %s every %s (Ctrl+C to stop)", backendURL, interval)
	}

	ticker := time.NewTicker(min(interval, 250*time.Millisecond))
	defer ticker.Stop()

	var (
		printed bool
		last    monitor.Snapshot
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		snap := m.Current()
		if snap.Checks == 0 || (printed && snap.State == last.State && snap.Message == last.Message) {
			continue
		}

		printed, last = true, snap

		if out.JSON {
			if err := out.PrintJSON(statusInfo(backendURL, snap)); err != nil {
				return err
			}

			continue
		}

		line := snap.CheckedAt.Format(time.TimeOnly) + "  " + snap.State.Label() + ": " + snap.Message

		switch snap.State {
		case monitor.ConnectedWithSession:
			out.Success("%s", line)
		case monitor.ConnectedNoSession:
			out.Warning("%s", line)
		default:
			out.Failure("%s", line)
		}
	}
}
