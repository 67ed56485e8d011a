// Package redis is a Redis-backed jobstore.Store, adapted from the
// teacher's pkg/persistence/redis: namespaced keys, a schema-version
// guard, connection health-checked at construction.
package redis

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
	"github.com/openrankprotocol/openrank-go/pkg/jobstore"
)

const (
	keyPrefixResults     = "openrank:jobresults:"
	keySchemaVersion     = "openrank:metadata:schema_version"
	currentSchemaVersion = "v1"
)

// Store is a Redis-backed jobstore.Store.
type Store struct {
	client *redis.Client
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// Config holds the Redis connection parameters.
type Config struct {
	Address  string
	Password string
	DB       int
}

// New dials Redis, verifies connectivity, and initializes the schema
// version.
func New(cfg *Config, logger *zap.Logger) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("jobstore/redis: config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("jobstore/redis: address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("jobstore/redis: connect to %s: %w", cfg.Address, err)
	}

	s := &Store{client: client, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("jobstore/redis: init schema: %w", err)
	}

	logger.Sugar().Infow("redis jobstore initialized", "address", cfg.Address, "db", cfg.DB)
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	existing, err := s.client.Get(ctx, keySchemaVersion).Result()
	if err == redis.Nil {
		return s.client.Set(ctx, keySchemaVersion, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if existing != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected %s)", existing, currentSchemaVersion)
	}
	return nil
}

func (s *Store) SaveJobResults(computeID *big.Int, results []blob.JobResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return jobstore.ErrClosed
	}

	data, err := blob.EncodeJobResults(results)
	if err != nil {
		return fmt.Errorf("jobstore/redis: encode results for %s: %w", computeID, err)
	}

	ctx := context.Background()
	key := keyPrefixResults + computeID.String()
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("jobstore/redis: save results for %s: %w", computeID, err)
	}
	return nil
}

func (s *Store) LoadJobResults(computeID *big.Int) ([]blob.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, jobstore.ErrClosed
	}

	ctx := context.Background()
	key := keyPrefixResults + computeID.String()
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore/redis: load results for %s: %w", computeID, err)
	}

	results, err := blob.DecodeJobResults(data)
	if err != nil {
		return nil, fmt.Errorf("jobstore/redis: decode results for %s: %w", computeID, err)
	}
	return results, nil
}

func (s *Store) HealthCheck() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return jobstore.ErrClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("jobstore/redis: health check: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("jobstore/redis: close: %w", err)
	}
	return nil
}
