package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// Category is the user-facing class of a failed backend call.
type Category int

const (
	// CategoryUnknown is any failure not matched by a more specific category.
	CategoryUnknown Category = iota
	// CategoryTimeout means the backend did not answer within the deadline.
	CategoryTimeout
	// CategoryConnectionRefused means nothing accepted the connection (or DNS failed).
	CategoryConnectionRefused
	// CategoryHTTP means the backend answered with a non-2xx status.
	CategoryHTTP
	// CategoryMalformedResponse means the backend answered 2xx with an unusable body.
	CategoryMalformedResponse
)

// String returns the stable lowercase name used in logs and JSON output.
func (c Category) String() string {
	switch c {
	case CategoryTimeout:
		return "timeout"
	case CategoryConnectionRefused:
		return "connection_refused"
	case CategoryHTTP:
		return "http_error"
	case CategoryMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ErrMalformed marks a response body that decoded but violated the backend contract.
var ErrMalformed = errors.New("malformed backend response")

// HTTPStatusError is implemented by errors carrying a non-2xx backend response.
type HTTPStatusError interface {
	error
	StatusCode() int
	Reason() string
	Detail() string
}

// Classification is the result of Classify.
type Classification struct {
	Category Category
	// Status is the HTTP status code; only set for CategoryHTTP.
	Status  int
	Message string
}

// Classify maps a failed network attempt to a category and a message fit for
// display. A nil error classifies as CategoryUnknown with an empty message.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: CategoryUnknown}
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		msg := fmt.Sprintf("Backend returned HTTP %d", statusErr.StatusCode())
		if reason := statusErr.Reason(); reason != "" {
			msg += " " + reason
		}

		if detail := statusErr.Detail(); detail != "" {
			msg += ": " + detail
		}

		return Classification{Category: CategoryHTTP, Status: statusErr.StatusCode(), Message: msg}
	}

	if isMalformed(err) {
		return Classification{
			Category: CategoryMalformedResponse,
			Message:  "Backend returned a response that could not be understood",
		}
	}

	if isTimeout(err) {
		return Classification{
			Category: CategoryTimeout,
			Message:  "Backend did not respond in time",
		}
	}

	if isRefused(err) {
		return Classification{
			Category: CategoryConnectionRefused,
			Message:  "Could not connect to the backend. Is the automation server running?",
		}
	}

	if errors.Is(err, context.Canceled) {
		return Classification{Category: CategoryUnknown, Message: "Request was canceled"}
	}

	return Classification{Category: CategoryUnknown, Message: err.Error()}
}

func isMalformed(err error) bool {
	if errors.Is(err, ErrMalformed) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}

	var typeErr *json.UnmarshalTypeError

	return errors.As(err, &typeErr)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr) && opErr.Op == "dial"
}
