// Package history keeps the most recent successful songs of a session.
package history

import (
	"sync"

	"github.com/sunoctl/sunoctl/internal/generation"
)

// Capacity is the number of results kept. Older entries are evicted.
const Capacity = 10

// Store is a fixed-size ring of results, newest first on read. It is safe
// for concurrent use. Nothing is written to disk.
type Store struct {
	mu    sync.RWMutex
	ring  [Capacity]generation.Result
	start int // index of the oldest entry
	count int
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Push records r as the newest entry, evicting the oldest when full.
func (s *Store) Push(r generation.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count < Capacity {
		s.ring[(s.start+s.count)%Capacity] = r
		s.count++

		return
	}

	s.ring[s.start] = r
	s.start = (s.start + 1) % Capacity
}

// All returns a copy of every entry, newest first.
func (s *Store) All() []generation.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]generation.Result, 0, s.count)
	for i := s.count - 1; i >= 0; i-- {
		out = append(out, s.ring[(s.start+i)%Capacity])
	}

	return out
}

// Latest returns the newest entry.
func (s *Store) Latest() (generation.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.count == 0 {
		return generation.Result{}, false
	}

	return s.ring[(s.start+s.count-1)%Capacity], true
}

// Len returns the number of entries, never more than Capacity.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.count
}
