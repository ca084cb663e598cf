package store

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// MemoryStore keeps sessions in process memory. Records are copied on the
// way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]SessionRecord
}

var _ SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]SessionRecord)}
}

func (m *MemoryStore) Save(_ context.Context, rec *SessionRecord) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	stampRecord(rec)

	cp := *rec
	cp.Data = slices.Clone(rec.Data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = cp
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	rec.Data = slices.Clone(rec.Data)
	return &rec, nil
}

func (m *MemoryStore) List(_ context.Context) ([]SessionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SessionSummary, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.SessionSummary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}
