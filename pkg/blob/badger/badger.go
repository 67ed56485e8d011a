// Package badger is the on-disk, content-addressed cache backend for
// blob.Store, fronting the remote store (pkg/blob/s3) the way the local
// filesystem cache under ./trust/, ./seed/, ./scores/, ./meta/ does in
// the original: presence of a key is taken as authoritative, and
// integrity re-verification is not performed on read.
package badger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
)

// Store is a Badger-backed blob.Store used as a local cache.
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
		return nil, fmt.Errorf("blob/badger: resolve path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &loggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("blob/badger: open %s: %w", absPath, err)
	}

	s := &Store{db: db, logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	s.gcCancel = cancel
	s.gcWg.Add(1)
	go s.runGC(ctx)

	logger.Sugar().Infow("badger blob cache initialized", "path", absPath)
	return s, nil
}

func (s *Store) runGC(ctx context.Context) {
	defer s.gcWg.Done()
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.db.RunValueLogGC(0.5); err != nil && err != badgerdb.ErrNoRewrite {
				s.logger.Sugar().Warnw("badger blob cache GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Put stores data under key. Objects are immutable by convention, so a
// repeat Put for a key already present is a harmless overwrite.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("blob/badger: store is closed")
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Get returns the bytes stored under key, or blob.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("blob/badger: store is closed")
	}

	var data []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badgerdb.ErrKeyNotFound {
			return blob.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Head reports whether key exists, without reading its value.
func (s *Store) Head(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, fmt.Errorf("blob/badger: store is closed")
	}

	found := false
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Close stops the GC loop and closes the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.gcCancel()
	s.gcWg.Wait()
	return s.db.Close()
}

// loggerAdapter routes Badger's internal logging through zap.
type loggerAdapter struct {
	logger *zap.Logger
}

func (l *loggerAdapter) Errorf(format string, args ...interface{}) {
	l.logger.Sugar().Errorf(format, args...)
}
func (l *loggerAdapter) Warningf(format string, args ...interface{}) {
	l.logger.Sugar().Warnf(format, args...)
}
func (l *loggerAdapter) Infof(format string, args ...interface{}) {
	l.logger.Sugar().Infof(format, args...)
}
func (l *loggerAdapter) Debugf(format string, args ...interface{}) {
	l.logger.Sugar().Debugf(format, args...)
}
