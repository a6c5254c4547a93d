package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used when no Redis is configured.
// The mutex keeps concurrent get-then-set sequences from observing a
// half-written entry; duplicate fetches for the same key remain a
// benign last-writer-wins race.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers can't mutate the stored slice.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.entries[key] = v
	return nil
}
