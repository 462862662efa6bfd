// Package simulation holds the process-wide switch that replaces backend
// calls with synthesized results.
package simulation

import "sync/atomic"

// Controller is the simulation flag. The zero value is inactive and ready to use.
type Controller struct {
	active atomic.Bool
}

// New returns a controller seeded with the given initial state.
func New(active bool) *Controller {
	c := &Controller{}
	c.active.Store(active)

	return c
}

// Toggle flips the flag and returns the new value.
func (c *Controller) Toggle() bool {
	for {
		old := c.active.Load()
		if c.active.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// IsActive reports whether simulation mode is on.
func (c *Controller) IsActive() bool {
	return c.active.Load()
}

// Set forces the flag to v.
func (c *Controller) Set(v bool) {
	c.active.Store(v)
}
