// Package memory is an in-process SnapshotWriter used by tests and by
// deployments without a configured spreadsheet.
package memory

import (
	"context"
	"sync"

	"rastreador/internal/ledger"
	ports "rastreador/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	last   ledger.Snapshot
	writes int
}

var _ ports.SnapshotWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteSnapshot keeps the latest snapshot.
func (s *Store) WriteSnapshot(_ context.Context, snap ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = snap
	s.writes++
	return nil
}

// Last returns the most recently written snapshot.
func (s *Store) Last() ledger.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Writes returns how many snapshots have been written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
