package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestPostRunCleanup(t *testing.T) {
	postErr := errors.New("post-run failed")

	tests := []struct {
		name       string
		postRun    func(*cobra.Command, []string) error
		cleanupErr error
		wantIs     error
		wantMsg    string
	}{
		{
			name:       "cleanup failure names the resource",
			cleanupErr: errors.New("flush failed"),
			wantMsg:    "cleanup telemetry resources: flush failed",
		},
		{
			name:    "post-run error wins and cleanup still runs",
			postRun: func(*cobra.Command, []string) error { return postErr },
			wantIs:  postErr,
		},
		{
			name: "both succeed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := false
			wrapped := wrapNamedPostRunCleanup(tt.postRun, "telemetry resources", func() error {
				cleaned = true
				return tt.cleanupErr
			})

			err := wrapped(&cobra.Command{}, nil)

			if !cleaned {
				t.Error("cleanup was not called")
			}

			switch {
			case tt.wantIs != nil:
				if !errors.Is(err, tt.wantIs) {
					t.Fatalf("error = %v, want %v", err, tt.wantIs)
				}
			case tt.wantMsg != "":
				if err == nil || err.Error() != tt.wantMsg {
					t.Fatalf("error = %v, want %q", err, tt.wantMsg)
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWrapPostRunCleanup_DefaultsToLoggerLabel(t *testing.T) {
	wrapped := wrapPostRunCleanup(nil, func() error { return errors.New("close log file") })

	err := wrapped(&cobra.Command{}, nil)
	if err == nil || !strings.HasPrefix(err.Error(), "cleanup logger resources") {
		t.Fatalf("error = %v, want logger resources label", err)
	}
}

func TestPickFlagOrEnv(t *testing.T) {
	t.Setenv("SUNOCTL_LOG_FORMAT", " text ")

	if got := pickFlagOrEnv("json", "SUNOCTL_LOG_FORMAT", "json"); got != "json" {
		t.Errorf("flag value = %q, want json", got)
	}

	if got := pickFlagOrEnv("  ", "SUNOCTL_LOG_FORMAT", "json"); got != "text" {
		t.Errorf("env value = %q, want text", got)
	}

	if got := pickFlagOrEnv("", "SUNOCTL_UNSET_FOR_TEST", "auto"); got != "auto" {
		t.Errorf("fallback = %q, want auto", got)
	}
}

func TestPickBoolFlagOrEnv(t *testing.T) {
	for _, tt := range []struct {
		env  string
		want bool
	}{
		{env: "1", want: true},
		{env: "TRUE", want: true},
		{env: "yes", want: true},
		{env: "0", want: false},
		{env: "", want: false},
	} {
		t.Setenv("SUNOCTL_JSON", tt.env)

		if got := pickBoolFlagOrEnv(false, "SUNOCTL_JSON"); got != tt.want {
			t.Errorf("SUNOCTL_JSON=%q: got %v, want %v", tt.env, got, tt.want)
		}
	}

	t.Setenv("SUNOCTL_JSON", "")

	if !pickBoolFlagOrEnv(true, "SUNOCTL_JSON") {
		t.Error("flag true must win over an empty env")
	}
}

func TestIsInteractiveCommand(t *testing.T) {
	for path, want := range map[string]bool{
		"sunoctl ui":       true,
		"sunoctl generate": false,
		"sunoctl status":   false,
		"sunoctl uimode":   false,
	} {
		if got := isInteractiveCommand(path); got != want {
			t.Errorf("isInteractiveCommand(%q) = %v, want %v", path, got, want)
		}
	}
}
