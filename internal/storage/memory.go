package storage

import (
	"context"
	"slices"
	"sync"

	"tracker/internal/ledger"
)

// MemoryPersister keeps the snapshot in process memory.
type MemoryPersister struct {
	mu    sync.Mutex
	snap  ledger.Snapshot
	saves int

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

func NewMemoryPersister(seed ledger.Snapshot) *MemoryPersister {
	return &MemoryPersister{snap: cloneSnapshot(seed)}
}

func (m *MemoryPersister) Load(_ context.Context) (ledger.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSnapshot(m.snap), nil
}

func (m *MemoryPersister) Save(_ context.Context, s ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.snap = cloneSnapshot(s)
	m.saves++
	return nil
}

// Saves reports how many successful writes happened.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneSnapshot(s ledger.Snapshot) ledger.Snapshot {
	out := ledger.Snapshot{Transactions: slices.Clone(s.Transactions)}
	if s.Taxonomy != nil {
		out.Taxonomy = s.Taxonomy.Clone()
	}
	return out
}
