// Package memory is an in-memory blob.Store implementation. Intended for
// tests only — nothing is persisted across process restarts.
package memory

import (
	"context"
	"sync"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
)

// Store is a mutex-guarded in-memory map keyed by blob key.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Put stores data under key, replacing any existing copy with the same
// bytes (objects are immutable by convention; this does not enforce it).
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

// Get returns the bytes stored under key, or blob.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Head reports whether key exists.
func (s *Store) Head(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}
