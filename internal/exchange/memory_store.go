package exchange

import (
	"context"
	"sync"
)

// MemoryStore is a process-local SnapshotStore.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

func (s *MemoryStore) Get(_ context.Context, base string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[base]
	if !ok {
		return nil, nil
	}
	return snapshot, nil
}

// Put replaces the snapshot for its base. Stored snapshots are never mutated.
func (s *MemoryStore) Put(_ context.Context, snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.BaseCurrency] = snapshot
	return nil
}
