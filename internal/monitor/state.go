package monitor

import (
	"github.com/sunoctl/sunoctl/internal/client"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
)

// State is the connectivity signal derived from each status check.
type State int

const (
	// Checking is the state before the first check completes.
	Checking State = iota
	// Offline means the backend is unreachable, erroring, or has no browser.
	Offline
	// ConnectedNoSession means the backend's browser is up but not logged in.
	ConnectedNoSession
	// ConnectedWithSession means the backend is ready to generate.
	ConnectedWithSession
)

// String returns a short machine-friendly name.
func (s State) String() string {
	switch s {
	case Offline:
		return "offline"
	case ConnectedNoSession:
		return "connected"
	case ConnectedWithSession:
		return "ready"
	default:
		return "checking"
	}
}

// Label returns the human-readable description of the state.
func (s State) Label() string {
	switch s {
	case Offline:
		return "Offline"
	case ConnectedNoSession:
		return "Connected, not logged in"
	case ConnectedWithSession:
		return "Connected and logged in"
	default:
		return "Checking"
	}
}

// Reachable reports whether the backend answered and its browser is up.
func (s State) Reachable() bool {
	return s == ConnectedNoSession || s == ConnectedWithSession
}

// Derive maps one status response (or its error) to a snapshot. A non-empty
// error field in a 2xx body replaces the default diagnostic.
func Derive(resp *client.StatusResponse, err error) Snapshot {
	if err != nil {
		c := clierrors.Classify(err)

		return Snapshot{
			State:      Offline,
			Message:    c.Message,
			Category:   c.Category,
			StatusCode: c.Status,
		}
	}

	if resp == nil {
		return Snapshot{
			State:    Offline,
			Message:  "Backend returned an empty status",
			Category: clierrors.CategoryMalformedResponse,
		}
	}

	var snap Snapshot

	switch {
	case !resp.Connected:
		snap = Snapshot{State: Offline, Message: "Backend is running but the automation browser is not connected"}
	case !resp.LoggedIn:
		snap = Snapshot{State: ConnectedNoSession, Message: "Connected to browser but not logged into Suno.ai"}
	default:
		snap = Snapshot{State: ConnectedWithSession, Message: "Successfully connected and logged into Suno.ai"}
	}

	if resp.Error != "" {
		snap.Message = resp.Error
	}

	return snap
}
