package status

import (
	"maps"

	"github.com/sasha-s/go-deadlock"
)

// Snapshot holds the status of every server as of the last completed poll.
type Snapshot struct {
	mu       deadlock.RWMutex
	statuses map[string]Status
}

// NewSnapshot returns an empty snapshot, in which every server is offline.
func NewSnapshot() *Snapshot {
	return &Snapshot{statuses: make(map[string]Status)}
}

// Get returns the status of the server with the name passed, or Offline if it was not part of the last poll.
func (s *Snapshot) Get(name string) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[name]
	if !ok {
		return Offline
	}
	return st
}

// Replace swaps the statuses of the snapshot for the ones passed. Servers missing from statuses are offline
// afterwards.
func (s *Snapshot) Replace(statuses map[string]Status) {
	statuses = maps.Clone(statuses)
	if statuses == nil {
		statuses = make(map[string]Status)
	}
	s.mu.Lock()
	s.statuses = statuses
	s.mu.Unlock()
}

// All returns a copy of every status in the snapshot.
func (s *Snapshot) All() map[string]Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.statuses)
}
