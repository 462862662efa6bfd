// Package main is the entry point for the sunoctl CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sunoctl/sunoctl/internal/buildinfo"
	"github.com/sunoctl/sunoctl/internal/config"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/observability"
	"github.com/sunoctl/sunoctl/internal/output"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	// Restore cursor visibility on panic; a spinner may have hidden it.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprint(os.Stderr, "\033[?25h")
			panic(r)
		}
	}()

	buildinfo.Version = version
	buildinfo.Commit = commit

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := output.Default()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return handleError(out, err)
	}

	return 0
}

// handleError formats and displays a CLI error, returning the appropriate exit code.
// For CLIError types, it displays the message and hint with styled output.
// For Cobra errors (unknown command, flags), it prints them with suggestions.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.As(err, &cliErr) {
		out.Failure("%s", cliErr.Message)

		// Validation and batch errors carry the per-field detail in Cause.
		if cliErr.Cause != nil {
			for _, line := range strings.Split(cliErr.Cause.Error(), "\n") {
				out.Error("  %s\n", line)
			}
		}

		if cliErr.Hint != "" {
			out.Info("%s", cliErr.Hint)
		}

		return cliErr.Code
	}

	errStr := err.Error()

	// Format: "unknown command \"xyz\" for \"sunoctl\"\n\nDid you mean this?\n\t..."
	if strings.HasPrefix(errStr, "unknown command") {
		out.Failure("%s", errStr)

		if !strings.Contains(errStr, "--help") {
			out.Info("Run 'sunoctl --help' for usage")
		}

		return clierrors.ExitUsage
	}

	// Flag errors are normally wrapped by SetFlagErrorFunc; this catches the rest.
	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "required flag") ||
		strings.HasPrefix(errStr, "accepts ") {
		out.Failure("%s", errStr)
		out.Info("Run 'sunoctl --help' for usage")

		return clierrors.ExitUsage
	}

	out.Failure("%s", errStr)

	return clierrors.ExitGeneral
}

func newRootCmd() *cobra.Command {
	var (
		jsonOutput bool
		quiet      bool
		noColor    bool
		noInput    bool
		backendURL string
		simulate   bool
		logLevel   string
		logFormat  string
		logFile    string
		logStderr  string
	)

	out := output.Default()

	rootCmd := &cobra.Command{
		Use:   "sunoctl",
		Short: "Generate Suno songs through a local automation server",
		Long: `sunoctl drives a local Suno.ai browser-automation server. It watches
whether the server is reachable and logged in, submits song generation
requests one at a time, and can simulate generations when no server is
running.

Get started:
  sunoctl init          Configure sunoctl for first use
  sunoctl status        Check the automation server
  sunoctl generate      Generate a song
  sunoctl ui            Open the terminal UI
  sunoctl doctor        Diagnose common issues`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out.JSON = pickBoolFlagOrEnv(jsonOutput, "SUNOCTL_JSON")
			out.Quiet = pickBoolFlagOrEnv(quiet, "SUNOCTL_QUIET")
			out.NoInput = pickBoolFlagOrEnv(noInput, "SUNOCTL_NO_INPUT") || pickBoolFlagOrEnv(false, "CI")

			if noColor {
				out.SetNoColor(true)

				color.NoColor = true
			}

			cfg := config.Load()

			if cmd.Flags().Changed("backend-url") {
				parsed, err := config.ParseBackendURL(backendURL)
				if err != nil {
					flagErr := clierrors.InvalidBackendURL(backendURL, err)
					flagErr.Code = clierrors.ExitUsage

					return flagErr
				}

				cfg.Override("backend.url", parsed)
			}

			if simulate {
				cfg.Override("simulation.enabled", true)
			}

			sessionID := uuid.NewString()

			logCfg := observability.Config{
				Level:          pickFlagOrEnv(logLevel, "SUNOCTL_LOG_LEVEL", "info"),
				Format:         pickFlagOrEnv(logFormat, "SUNOCTL_LOG_FORMAT", "json"),
				LogFile:        pickFlagOrEnv(logFile, "SUNOCTL_LOG_FILE", ""),
				StderrMode:     pickFlagOrEnv(logStderr, "SUNOCTL_LOG_STDERR", "auto"),
				InteractiveTTY: out.Terminal().IsTTY && isInteractiveCommand(cmd.CommandPath()),
				SessionID:      sessionID,
				CommandPath:    cmd.CommandPath(),
				Version:        version,
			}

			logger, cleanup, err := observability.NewLogger(&logCfg)
			if err != nil {
				return &clierrors.CLIError{
					Message: fmt.Sprintf("Invalid logging configuration: %v", err),
					Hint:    "Use --log-level (error|warn|info|debug), --log-format (json|text), --log-stderr (auto|on|off), and/or --log-file",
					Code:    clierrors.ExitUsage,
				}
			}

			slog.SetDefault(logger)

			ctx := out.WithContext(cmd.Context())
			ctx = observability.WithLogger(ctx, logger)
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)

			if cleanup != nil {
				cmd.PostRunE = wrapPostRunCleanup(cmd.PostRunE, cleanup)
			}

			// Tracing is opt-in via OTEL_ENABLED.
			telemetryShutdown, telemetryErr := observability.SetupTelemetry(ctx, &observability.TelemetryConfig{
				Enabled:    observability.IsTelemetryEnabled(),
				Version:    version,
				SessionID:  sessionID,
				BackendURL: cfg.BackendURL(),
			})
			if telemetryErr != nil {
				logger.Warn("telemetry initialization failed", slog.String("error", telemetryErr.Error()))
			}

			if telemetryShutdown != nil {
				cmd.PostRunE = wrapNamedPostRunCleanup(cmd.PostRunE, "telemetry resources", func() error {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()

					return telemetryShutdown(shutdownCtx)
				})
			}

			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Minimal output (for CI)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Automation server URL (overrides backend.url)")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Start in simulation mode (no backend calls)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json, text")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Optional structured log file path")
	rootCmd.PersistentFlags().StringVar(&logStderr, "log-stderr", "", "Structured logging to stderr: auto, on, off")

	rootCmd.SuggestionsMinimumDistance = 2

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &clierrors.CLIError{
			Message: err.Error(),
			Hint:    fmt.Sprintf("Run '%s --help' for available flags", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	})

	// Primary commands
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newUICmd())

	// Resource commands
	rootCmd.AddCommand(newConfigCmd())

	// Utility commands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newPathsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func wrapPostRunCleanup(postRun func(*cobra.Command, []string) error, cleanup func() error) func(*cobra.Command, []string) error {
	return wrapNamedPostRunCleanup(postRun, "logger resources", cleanup)
}

func wrapNamedPostRunCleanup(postRun func(*cobra.Command, []string) error, name string, cleanup func() error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if postRun != nil {
			if err := postRun(cmd, args); err != nil {
				_ = cleanup()
				return err
			}
		}

		if err := cleanup(); err != nil {
			return fmt.Errorf("cleanup %s: %w", name, err) //nolint:rawerror // internal cleanup, not user-facing
		}

		return nil
	}
}

func pickBoolFlagOrEnv(flagValue bool, envKey string) bool {
	if flagValue {
		return true
	}

	v := strings.ToLower(strings.TrimSpace(os.Getenv(envKey)))

	return v == "1" || v == "true" || v == "yes"
}

func pickFlagOrEnv(flagValue, envKey, fallback string) string {
	trimmed := strings.TrimSpace(flagValue)
	if trimmed != "" {
		return trimmed
	}

	if envValue := strings.TrimSpace(os.Getenv(envKey)); envValue != "" {
		return envValue
	}

	return fallback
}

// isInteractiveCommand reports whether the command owns the terminal, in
// which case logs go to a file instead of stderr.
func isInteractiveCommand(path string) bool {
	return path == "sunoctl ui" || strings.HasPrefix(path, "sunoctl ui ")
}

// noArgs returns a Cobra positional-arg validator that rejects any arguments
// with a clear, user-friendly message (unlike cobra.NoArgs which says "unknown command").
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &clierrors.CLIError{
			Message: fmt.Sprintf("'%s' accepts no arguments", cmd.CommandPath()),
			Hint:    fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	}

	return nil
}

// VersionInfo represents version information for JSON output.
type VersionInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	Date       string `json:"date"`
	Prerelease bool   `json:"prerelease"`
}

func versionInfo() VersionInfo {
	info := VersionInfo{Version: version, Commit: commit, Date: date}

	if v, err := buildinfo.Semver(); err == nil {
		info.Version = v.String()
		info.Prerelease = v.Prerelease() != ""
	} else {
		info.Prerelease = true
	}

	return info
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show version information",
		Long:    `Display the sunoctl binary version, git commit, and build date.`,
		Example: `  sunoctl version
  sunoctl version --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			info := versionInfo()

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.Print("sunoctl %s\n", info.Version)
			out.Print("  commit: %s\n", info.Commit)
			out.Print("  built:  %s\n", info.Date)

			if info.Prerelease && info.Version != "dev" {
				out.Muted("  pre-release build")
			}

			return nil
		},
	}
}

