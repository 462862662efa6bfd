// Package errors provides structured CLI error types for sunoctl.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// so every command reports failures the same way. Classify maps raw network
// failures onto the categories shown to users by the monitor and the
// generation orchestrator.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for CLI errors.
const (
	ExitSuccess   = 0  // Successful execution
	ExitGeneral   = 1  // General error
	ExitNetwork   = 3  // Backend unreachable or returned an error
	ExitConfig    = 4  // Configuration error
	ExitTimeout   = 5  // Backend call timed out
	ExitExecution = 6  // Generation failed
	ExitUsage     = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// CannotPrompt returns an error when interactive prompts are unavailable.
func CannotPrompt(flag string) *CLIError {
	return &CLIError{
		Message: "Cannot prompt in non-interactive mode",
		Hint:    fmt.Sprintf("Pass %s instead", flag),
		Code:    ExitUsage,
	}
}

// InvalidPrompt returns an error for a generation request that failed validation.
func InvalidPrompt(cause error) *CLIError {
	return &CLIError{
		Message: "Invalid generation request",
		Hint:    "Prompts must be non-empty and at most 500 characters; styles at most 200; titles at most 80",
		Cause:   cause,
		Code:    ExitUsage,
	}
}

// GenerationBusy returns an error when a submission is already in flight.
func GenerationBusy() *CLIError {
	return &CLIError{
		Message: "A generation request is already in progress",
		Hint:    "Wait for the current song to finish before submitting another",
		Code:    ExitGeneral,
	}
}

// BackendUnreachable returns an error when the automation backend cannot be reached.
func BackendUnreachable(url, diagnostic string) *CLIError {
	msg := fmt.Sprintf("Backend not reachable at %s", url)
	if diagnostic != "" {
		msg = fmt.Sprintf("%s (%s)", msg, diagnostic)
	}

	return &CLIError{
		Message: msg,
		Hint:    "Start the automation server or pass --simulate to work offline",
		Code:    ExitNetwork,
	}
}

// GenerationFailed returns an error for a generation attempt that ended in failure.
// The classification decides the exit code and hint.
func GenerationFailed(reason string, category Category) *CLIError {
	e := &CLIError{
		Message: "Song generation failed",
		Code:    ExitExecution,
	}

	if reason != "" {
		e.Message = fmt.Sprintf("Song generation failed: %s", reason)
	}

	switch category {
	case CategoryTimeout:
		e.Code = ExitTimeout
		e.Hint = "Increase generate.timeout or check the automation browser"
	case CategoryConnectionRefused:
		e.Code = ExitNetwork
		e.Hint = "Start the automation server or pass --simulate to work offline"
	case CategoryHTTP:
		e.Code = ExitNetwork
		e.Hint = "Check the automation server logs"
	case CategoryMalformedResponse:
		e.Hint = "The backend may be an incompatible version"
	default:
		if containsAny(reason, "login", "logged in", "session") {
			e.Hint = "Log in through the automation browser window, then retry"
		} else {
			e.Hint = "Run with --log-level=debug for more details"
		}
	}

	return e
}

// BatchFileInvalid returns an error for an unreadable or invalid batch file.
func BatchFileInvalid(path string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid batch file: %s", path),
		Hint:    "Batch files are YAML (.yaml, .yml) or TOML (.toml) with a top-level 'songs' list",
		Cause:   cause,
		Code:    ExitUsage,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your sunoctl config directory or run 'sunoctl doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// InvalidBackendURL returns an error for a malformed backend URL.
func InvalidBackendURL(raw string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid backend URL: %q", raw),
		Hint:    "Use an absolute http(s) URL such as http://localhost:8000",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}

	return false
}
