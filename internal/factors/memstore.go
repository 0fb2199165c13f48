package factors

import (
	"context"
	"sync"
)

// MemoryStore is a Store backed by a map. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[Key]CostFactor
}

// NewMemoryStore returns a store holding rows. Later rows replace earlier
// rows with the same key.
func NewMemoryStore(rows ...CostFactor) *MemoryStore {
	s := &MemoryStore{rows: make(map[Key]CostFactor, len(rows))}
	for _, f := range rows {
		s.Put(f)
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

// Lookup returns the value of the active row stored under exactly key.
func (s *MemoryStore) Lookup(_ context.Context, key Key) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.rows[key]
	if !ok || !f.Active {
		return 0, false, nil
	}
	return f.Value(), true, nil
}

// Put stores f at its scope, replacing any previous row.
func (s *MemoryStore) Put(f CostFactor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[f.Key()] = f
}

// Set stores an active multiplier at the given scope.
func (s *MemoryStore) Set(key Key, multiplier float64) {
	s.Put(CostFactor{
		Name:        key.Name,
		Theme:       key.Theme,
		RevenueSize: key.RevenueSize,
		Multiplier:  multiplier,
		Active:      true,
	})
}
