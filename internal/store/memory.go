package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and dry runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string

	// SaveCalls counts Save invocations, including overwrites.
	SaveCalls int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func key(engineer, kind string) string { return engineer + "\x00" + kind }

// Save stores content under (engineer, kind), replacing any previous value.
func (s *MemoryStore) Save(_ context.Context, engineer, kind, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(engineer, kind)] = content
	s.SaveCalls++
	return nil
}

// Load returns the stored content for (engineer, kind).
func (s *MemoryStore) Load(_ context.Context, engineer, kind string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.data[key(engineer, kind)]
	return content, ok, nil
}
