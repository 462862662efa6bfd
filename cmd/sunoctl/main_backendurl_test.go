package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/sunoctl/sunoctl/internal/config"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
)

func TestRootCmd_BackendURLFlagIsNotPersisted(t *testing.T) {
	isolate(t)
	t.Setenv("SUNOCTL_BACKEND_URL", "http://from-env.local:8000")

	root := newRootCmd()
	root.SetArgs([]string{"--backend-url", "http://from-flag.local:9000/", "--log-stderr", "off", "version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("root.Execute() error = %v", err)
	}

	if got := config.Load().BackendURL(); got != "http://from-env.local:8000" {
		t.Fatalf("BackendURL() after run = %q, want env value", got)
	}
}

func TestRootCmd_BackendURLFlagRejectsInvalidValue(t *testing.T) {
	isolate(t)

	root := newRootCmd()
	root.SetArgs([]string{"--backend-url", "localhost:8000", "version"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for invalid --backend-url")
	}

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %T: %v", err, err)
	}

	if cliErr.Code != clierrors.ExitUsage {
		t.Fatalf("exit code = %d, want %d", cliErr.Code, clierrors.ExitUsage)
	}

	if !strings.Contains(cliErr.Message, "Invalid backend URL") {
		t.Fatalf("error message = %q, want Invalid backend URL", cliErr.Message)
	}
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	isolate(t)

	root := newRootCmd()
	root.SetArgs([]string{"--log-level", "verbose", "version"})

	err := root.Execute()

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) || cliErr.Code != clierrors.ExitUsage {
		t.Fatalf("error = %v, want usage CLIError", err)
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		want     []string
	}{
		{
			name:     "cli error with cause and hint",
			err:      clierrors.InvalidPrompt(errors.New("prompt: must not be empty")),
			wantCode: clierrors.ExitUsage,
			want:     []string{"Invalid generation request", "  prompt: must not be empty", "at most 500 characters"},
		},
		{
			name:     "backend unreachable",
			err:      clierrors.BackendUnreachable("http://localhost:8000", "connection refused"),
			wantCode: clierrors.ExitNetwork,
			want:     []string{"Backend not reachable at http://localhost:8000 (connection refused)", "--simulate"},
		},
		{
			name:     "unknown command",
			err:      errors.New(`unknown command "genrate" for "sunoctl"`),
			wantCode: clierrors.ExitUsage,
			want:     []string{"unknown command", "Run 'sunoctl --help' for usage"},
		},
		{
			name:     "arg count",
			err:      errors.New("accepts 1 arg(s), received 2"),
			wantCode: clierrors.ExitUsage,
			want:     []string{"accepts 1 arg(s)"},
		},
		{
			name:     "anything else",
			err:      errors.New("disk full"),
			wantCode: clierrors.ExitGeneral,
			want:     []string{"disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf := testWriter()

			if got := handleError(out, tt.err); got != tt.wantCode {
				t.Errorf("handleError() = %d, want %d", got, tt.wantCode)
			}

			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}
