// Package badger is the production jobstore.Store backend, adapted
// from the teacher's pkg/persistence/badger: a Badger-backed key/value
// store with a background value-log GC loop, repurposed from key-share
// JSON blobs to per-compute-id job-result lists.
package badger

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	"github.com/openrankprotocol/openrank-go/pkg/jobstore"
)

const keyPrefix = "jobresults:"

// Store is a Badger-backed jobstore.Store.
type Store struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

// New opens (or creates) a Badger database at dataPath and starts a
// background value-log GC loop.
func New(dataPath string, logger *zap.Logger) (*Store, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("jobstore/badger: resolve path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &loggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("jobstore/badger: open %s: %w", absPath, err)
	}

	s := &Store{db: db, logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	s.gcCancel = cancel
	s.gcWg.Add(1)
	go s.runGC(ctx)

	logger.Sugar().Infow("badger jobstore initialized", "path", absPath)
	return s, nil
}

func (s *Store) SaveJobResults(computeID *big.Int, results []blob.JobResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return jobstore.ErrClosed
	}

	data, err := blob.EncodeJobResults(results)
	if err != nil {
		return fmt.Errorf("jobstore/badger: encode results for %s: %w", computeID, err)
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyPrefix+computeID.String()), data)
	})
}

func (s *Store) LoadJobResults(computeID *big.Int) ([]blob.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, jobstore.ErrClosed
	}

	var data []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + computeID.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badgerdb.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore/badger: load results for %s: %w", computeID, err)
	}

	results, err := blob.DecodeJobResults(data)
	if err != nil {
		return nil, fmt.Errorf("jobstore/badger: decode results for %s: %w", computeID, err)
	}
	return results, nil
}

func (s *Store) HealthCheck() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return jobstore.ErrClosed
	}
	return s.db.View(func(txn *badgerdb.Txn) error { return nil })
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.gcCancel()
	s.gcWg.Wait()
	return s.db.Close()
}

func (s *Store) runGC(ctx context.Context) {
	defer s.gcWg.Done()
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		again:
			err := s.db.RunValueLogGC(0.5)
			if err == nil {
				goto again
			}
		}
	}
}

// loggerAdapter adapts zap.Logger to badger.Logger.
type loggerAdapter struct {
	logger *zap.Logger
}

var _ badgerdb.Logger = (*loggerAdapter)(nil)

func (l *loggerAdapter) Errorf(format string, args ...interface{})   { l.logger.Sugar().Errorf(format, args...) }
func (l *loggerAdapter) Warningf(format string, args ...interface{}) { l.logger.Sugar().Warnf(format, args...) }
func (l *loggerAdapter) Infof(format string, args ...interface{})    { l.logger.Sugar().Infof(format, args...) }
func (l *loggerAdapter) Debugf(format string, args ...interface{})   { l.logger.Sugar().Debugf(format, args...) }
