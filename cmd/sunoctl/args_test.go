package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	clierrors "github.com/sunoctl/sunoctl/internal/errors"
)

// TestAllRunnableCommandsHaveArgsValidator walks the entire command tree and
// fails if any runnable command (one with RunE or Run) is missing an Args
// validator. This prevents future commands from shipping without validators.
func TestAllRunnableCommandsHaveArgsValidator(t *testing.T) {
	root := newRootCmd()

	var missing []string

	for _, cmd := range collectAllCommands(root) {
		if !cmd.Runnable() {
			continue
		}

		if cmd.Args == nil {
			missing = append(missing, cmd.CommandPath())
		}
	}

	if len(missing) > 0 {
		t.Errorf("runnable commands missing Args validator:\n  %s\n\nAdd Args: noArgs (or another validator) to each command.",
			strings.Join(missing, "\n  "))
	}
}

// collectAllCommands returns every command in the tree (including root).
func collectAllCommands(root *cobra.Command) []*cobra.Command {
	var all []*cobra.Command

	var walk func(cmd *cobra.Command)

	walk = func(cmd *cobra.Command) {
		all = append(all, cmd)
		for _, child := range cmd.Commands() {
			walk(child)
		}
	}

	walk(root)

	return all
}

// TestUnknownFlagReturnsCLIError verifies that SetFlagErrorFunc wraps flag
// errors as CLIError with the correct code, message, and hint.
func TestUnknownFlagReturnsCLIError(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"version", "--bogus"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for unknown flag, got nil")
	}

	var cliErr *clierrors.CLIError
	if !clierrors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %T: %v", err, err)
	}

	if cliErr.Code != clierrors.ExitUsage {
		t.Errorf("exit code = %d, want %d (ExitUsage)", cliErr.Code, clierrors.ExitUsage)
	}

	if !strings.Contains(cliErr.Message, "unknown flag") {
		t.Errorf("message = %q, want to contain 'unknown flag'", cliErr.Message)
	}

	if !strings.Contains(cliErr.Hint, "--help") {
		t.Errorf("hint = %q, want to contain '--help'", cliErr.Hint)
	}

	if !strings.Contains(cliErr.Hint, "sunoctl version") {
		t.Errorf("hint = %q, want to contain command path 'sunoctl version'", cliErr.Hint)
	}
}

// TestPositionalArgLimits verifies that extra positional arguments fail with
// a usage exit code before any command logic runs.
func TestPositionalArgLimits(t *testing.T) {
	tests := []struct {
		args    []string
		wantMsg string
	}{
		{args: []string{"version", "extra"}, wantMsg: "'sunoctl version' accepts no arguments"},
		{args: []string{"status", "now"}, wantMsg: "'sunoctl status' accepts no arguments"},
		{args: []string{"doctor", "all"}, wantMsg: "'sunoctl doctor' accepts no arguments"},
		{args: []string{"generate", "one", "two"}, wantMsg: "accepts at most 1 arg(s)"},
		{args: []string{"batch"}, wantMsg: "accepts 1 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			isolate(t)

			root := newRootCmd()
			root.SetArgs(tt.args)

			err := root.Execute()
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantMsg)
			}

			out, _ := testWriter()
			if code := handleError(out, err); code != clierrors.ExitUsage {
				t.Errorf("exit code = %d, want %d (ExitUsage)", code, clierrors.ExitUsage)
			}
		})
	}
}
