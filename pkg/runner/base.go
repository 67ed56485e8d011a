// Package runner implements the compute and verification runners that
// wrap pkg/trust and pkg/algorithm into the §4.D/§4.E operations: ingest
// trust/seed entries, run a ranking algorithm, and build the per-sub-job
// commitment tree over the ordered results.
package runner

import (
	"fmt"

	"github.com/openrankprotocol/openrank-go/pkg/algorithm"
	"github.com/openrankprotocol/openrank-go/pkg/merkle"
	"github.com/openrankprotocol/openrank-go/pkg/trust"
)

// Algorithm identifies which ranking algorithm compute() should invoke.
type Algorithm uint32

const (
	// AlgorithmPositiveTrust runs the EigenTrust-style power iteration.
	AlgorithmPositiveTrust Algorithm = 0
	// AlgorithmFixedWalk runs the SybilRank-style fixed-length walk.
	AlgorithmFixedWalk Algorithm = 1
)

// ErrDomainIndex is returned when an operation references a string ID
// that the runner's dictionary has never assigned an index to.
var ErrDomainIndex = fmt.Errorf("runner: domain index not found")

// Params bundles the per-sub-job algorithm parameters, folded from the
// job description's Params map (see blob.JobDescription).
type Params struct {
	PositiveTrust algorithm.PositiveTrustParams
	Walk          algorithm.WalkParams
}

// BaseRunner owns the graph (L, s, dictionary) shared by both the
// compute and verification runners. A fresh BaseRunner is created per
// sub-job; it is discarded once the sub-job's result has been produced
// or verified.
type BaseRunner struct {
	Graph *trust.Graph
}

// NewBaseRunner returns an empty runner.
func NewBaseRunner() *BaseRunner {
	return &BaseRunner{Graph: trust.NewGraph()}
}

// UpdateTrust applies a batch of trust entries.
func (r *BaseRunner) UpdateTrust(entries []trust.TrustEntry) {
	r.Graph.UpdateTrust(entries)
}

// UpdateSeed applies a batch of seed entries.
func (r *BaseRunner) UpdateSeed(entries []trust.ScoreEntry) {
	r.Graph.UpdateSeed(entries)
}

// normalizedGraph applies pre-processing then normalization, returning
// the (L, s) pair a ranking algorithm actually runs over. The runner's
// own Graph is left with its pre-processed (but not normalized) L/s, so
// repeated calls remain idempotent per trust.Preprocess's guarantee.
func (r *BaseRunner) normalizedGraph() (trust.LocalTrust, trust.Seed) {
	trust.Preprocess(r.Graph)
	return trust.NormalizeLocalTrust(r.Graph.L), trust.NormalizeVector(r.Graph.S)
}

// runAlgorithm invokes the selected algorithm over the runner's
// normalized graph and returns the ascending-index ordered output.
func runAlgorithm(l trust.LocalTrust, s trust.Seed, algo Algorithm, params Params) ([]algorithm.IndexValue, error) {
	switch algo {
	case AlgorithmFixedWalk:
		x := algorithm.RunFixedWalk(l, s, params.Walk)
		return algorithm.OrderedOutput(x), nil
	default:
		x, err := algorithm.RunPositiveTrust(l, s, params.PositiveTrust)
		if err != nil {
			return nil, err
		}
		return algorithm.OrderedOutput(x), nil
	}
}

// buildTree constructs the fixed Merkle tree whose leaf at position k is
// keccak256(value_at_index_k.to_big_endian_bytes()), over values already
// in ascending-index order.
func buildTree(ordered []algorithm.IndexValue) (*merkle.FixedTree, error) {
	leaves := make([]merkle.Hash, len(ordered))
	for i, iv := range ordered {
		leaves[i] = merkle.HashScoreLeaf(iv.Value)
	}
	return merkle.NewFixedTree(leaves)
}
