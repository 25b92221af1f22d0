package certify

import (
	"context"
	"fmt"
	"sync"
)

// RecordStore is the keyed certificate record store. FindByID returns
// ErrRecordNotFound (possibly wrapped) when no record exists for the
// identity; any other error is treated as a store fault and aborts the
// pipeline.
type RecordStore interface {
	FindByID(ctx context.Context, id string) (Record, error)
	Put(ctx context.Context, rec Record) error
}

// Compile-time interface check
var _ RecordStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory RecordStore keyed by identity. Used in tests
// and offline runs; production deployments use the bun-backed store in
// internal/storage/bunstore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// FindByID looks up a record by identity.
func (m *MemoryStore) FindByID(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrRecordNotFound, id)
	}
	return rec, nil
}

// Put stores a record, overwriting any existing one for the same identity.
func (m *MemoryStore) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.ID] = rec
	return nil
}

// Len reports the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
