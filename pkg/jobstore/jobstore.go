// Package jobstore persists the proof server's mirror of job-result
// metadata, keyed by compute_id, adapted from the teacher's
// pkg/persistence INodePersistence interface and its three backends.
package jobstore

import (
	"fmt"
	"math/big"

	"github.com/openrankprotocol/openrank-go/pkg/blob"
)

// Store persists the ordered (scores_blob_id, commitment) list for a
// compute_id so the proof service (§4.I) can rebuild trees without
// asking the coordinator. Implementations must be safe for concurrent
// use.
type Store interface {
	// SaveJobResults persists results for computeID, overwriting any
	// prior entry.
	SaveJobResults(computeID *big.Int, results []blob.JobResult) error

	// LoadJobResults retrieves the results for computeID. Returns nil,
	// nil if no entry exists — "not found" is not an error.
	LoadJobResults(computeID *big.Int) ([]blob.JobResult, error)

	// HealthCheck verifies the store is reachable and operational.
	HealthCheck() error

	// Close cleanly shuts down the store. Idempotent.
	Close() error
}

// ErrClosed is returned by any operation on a closed Store.
var ErrClosed = fmt.Errorf("jobstore: store is closed")

func key(computeID *big.Int) string {
	return computeID.String()
}
