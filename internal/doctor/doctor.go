// Package doctor provides diagnostic checks for sunoctl and its backend.
//
// The default checks cover:
//   - backend health endpoint reachability and latency
//   - automation browser and Suno.ai session status
//   - download directory writability
//   - config file readability
//   - CLI build version
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/sunoctl/sunoctl/internal/buildinfo"
	"github.com/sunoctl/sunoctl/internal/client"
	"github.com/sunoctl/sunoctl/internal/monitor"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// String returns the lowercase status name used in JSON output.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText lets results encode their status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result holds the outcome of a single check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Backend is the subset of the API client the checks use.
type Backend interface {
	BaseURL() string
	Health(ctx context.Context) (*client.HealthResponse, error)
	Status(ctx context.Context) (*client.StatusResponse, error)
}

// Options configures the default checks.
type Options struct {
	DownloadDir string
	ConfigFile  string
	// Timeout bounds each network check. Zero means 5s.
	Timeout time.Duration
}

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a runner with the default checks registered.
func New(backend Backend, opts Options) *Runner {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r := &Runner{}

	r.AddCheck("Backend Health", func(ctx context.Context) Result {
		return checkBackendHealth(ctx, backend, timeout)
	})
	r.AddCheck("Automation Session", func(ctx context.Context) Result {
		return checkAutomationSession(ctx, backend, timeout)
	})
	r.AddCheck("Download Directory", func(context.Context) Result {
		return checkDownloadDir(opts.DownloadDir)
	})
	r.AddCheck("Config File", func(context.Context) Result {
		return checkConfigFile(opts.ConfigFile)
	})
	r.AddCheck("CLI Version", func(context.Context) Result {
		return checkCLIVersion()
	})

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

func checkBackendHealth(ctx context.Context, backend Backend, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := backend.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return Result{
			Status:  StatusFail,
			Message: backend.BaseURL(),
			Detail:  err.Error(),
		}
	}

	if resp.Status != "healthy" {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s reported %q (%dms)", backend.BaseURL(), resp.Status, elapsed.Milliseconds()),
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%dms)", backend.BaseURL(), elapsed.Milliseconds()),
	}
}

func checkAutomationSession(ctx context.Context, backend Backend, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := backend.Status(ctx)
	snap := monitor.Derive(resp, err)

	switch snap.State {
	case monitor.ConnectedWithSession:
		return Result{Status: StatusPass, Message: snap.Message}
	case monitor.ConnectedNoSession:
		return Result{
			Status:  StatusWarn,
			Message: snap.Message,
			Detail:  "Log into Suno.ai in the automation browser before generating",
		}
	default:
		return Result{
			Status:  StatusFail,
			Message: snap.State.Label(),
			Detail:  snap.Message,
		}
	}
}

func checkDownloadDir(dir string) Result {
	if dir == "" {
		return Result{Status: StatusWarn, Message: "Not configured"}
	}

	info, err := os.Stat(dir)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s (missing)", dir),
			Detail:  "The backend creates it on first download",
		}
	case err != nil:
		return Result{Status: StatusFail, Message: dir, Detail: err.Error()}
	case !info.IsDir():
		return Result{Status: StatusFail, Message: dir, Detail: "Path exists but is not a directory"}
	}

	probe, err := os.CreateTemp(dir, ".sunoctl-doctor-*")
	if err != nil {
		return Result{Status: StatusFail, Message: fmt.Sprintf("%s (not writable)", dir), Detail: err.Error()}
	}

	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return Result{Status: StatusPass, Message: dir}
}

func checkConfigFile(path string) Result {
	if path == "" {
		return Result{Status: StatusPass, Message: "Using defaults"}
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Result{Status: StatusPass, Message: fmt.Sprintf("%s (not created, using defaults)", path)}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))

	if err := v.ReadInConfig(); err != nil {
		return Result{
			Status:  StatusFail,
			Message: path,
			Detail:  err.Error(),
		}
	}

	return Result{Status: StatusPass, Message: fmt.Sprintf("%s (%d keys)", path, len(v.AllKeys()))}
}

func configType(path string) string {
	if ext := filepath.Ext(path); len(ext) > 1 {
		return ext[1:]
	}

	return "yaml"
}

func checkCLIVersion() Result {
	if buildinfo.IsDev() {
		return Result{
			Status:  StatusWarn,
			Message: "Development build",
		}
	}

	v, err := buildinfo.Semver()
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: buildinfo.Version,
			Detail:  err.Error(),
		}
	}

	if v.Prerelease() != "" {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (pre-release)", v),
		}
	}

	return Result{Status: StatusPass, Message: "v" + v.String()}
}

// RenderResults formats diagnostic results to the given output writer.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	for _, r := range results {
		width := maxNameLen + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", width, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", width, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", width, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", r.Status.Symbol(), width, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "\u2713" // ✓
	xMark       = "\u2717" // ✗
	warningMark = "\u26A0" // ⚠
)
