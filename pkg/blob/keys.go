package blob

import (
	"encoding/hex"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNotFound is returned by Store.Get when the key has no object.
var ErrNotFound = errors.New("blob: not found")

// TrustKey derives the content-addressed key for a trust CSV blob.
func TrustKey(csv []byte) string { return "trust/" + contentHex(csv) }

// SeedKey derives the content-addressed key for a seed/input-score CSV blob.
func SeedKey(csv []byte) string { return "seed/" + contentHex(csv) }

// ScoresKey derives the content-addressed key for an output-scores CSV blob.
func ScoresKey(csv []byte) string { return "scores/" + contentHex(csv) }

// MetaKey derives the content-addressed key for a job metadata JSON blob.
func MetaKey(data []byte) string { return "meta/" + contentHex(data) }

// ContentHash returns the bare lowercase keccak256 hex digest of data,
// without a key prefix — the form used for a JobResult's scores_id field
// and for the results_id posted on-chain by submitMetaComputeResult.
func ContentHash(data []byte) string { return contentHex(data) }

func contentHex(data []byte) string {
	h := crypto.Keccak256Hash(data)
	return hex.EncodeToString(h[:])
}
