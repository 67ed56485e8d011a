// Package blob implements the content-addressed object store surface
// used to move trust/seed/score CSVs and job metadata JSON between the
// Computer, Challenger, and Proof services, plus the CSV and JSON codecs
// that interpret those bytes.
package blob

import "context"

// Store is the opaque get/put/head surface every backend implements.
// Keys are content-derived (see TrustKey, SeedKey, ScoresKey, MetaKey) and objects are immutable once
// written: callers never overwrite an existing key with different bytes.
type Store interface {
	// Put writes data under key. Idempotent: writing the same bytes under
	// the same key twice is not an error.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the bytes stored under key. Returns ErrNotFound if the
	// key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Head reports whether key exists without fetching its bytes.
	Head(ctx context.Context, key string) (bool, error)
}
