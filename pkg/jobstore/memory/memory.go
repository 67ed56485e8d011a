// Package memory is an in-memory jobstore.Store, adapted from the
// teacher's pkg/persistence/memory for TESTING ONLY.
package memory

import (
	"math/big"
	"sync"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	"github.com/openrankprotocol/openrank-go/pkg/jobstore"
)

// Store is an in-memory jobstore.Store. All data is lost on process
// exit; thread-safe via sync.RWMutex; deep-copies on read/write.
type Store struct {
	mu      sync.RWMutex
	results map[string][]blob.JobResult
	closed  bool
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{results: make(map[string][]blob.JobResult)}
}

func (s *Store) SaveJobResults(computeID *big.Int, results []blob.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return jobstore.ErrClosed
	}
	s.results[computeID.String()] = append([]blob.JobResult(nil), results...)
	return nil
}

func (s *Store) LoadJobResults(computeID *big.Int) ([]blob.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, jobstore.ErrClosed
	}
	results, ok := s.results[computeID.String()]
	if !ok {
		return nil, nil
	}
	return append([]blob.JobResult(nil), results...), nil
}

func (s *Store) HealthCheck() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return jobstore.ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
