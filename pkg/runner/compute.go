package runner

import (
	"fmt"

	"github.com/openrankprotocol/openrank-go/pkg/algorithm"
	"github.com/openrankprotocol/openrank-go/pkg/merkle"
	"github.com/openrankprotocol/openrank-go/pkg/trust"
)

// ComputeRunner produces a sub-job's scores and commitment: it ingests
// trust/seed entries, invokes the selected algorithm, and builds the
// per-sub-job compute tree over the ordered results.
type ComputeRunner struct {
	*BaseRunner

	ordered []algorithm.IndexValue
	tree    *merkle.FixedTree
}

// NewComputeRunner returns an empty compute runner.
func NewComputeRunner() *ComputeRunner {
	return &ComputeRunner{BaseRunner: NewBaseRunner()}
}

// Compute runs algo over the runner's ingested (L, s) and stores the
// ordered (index, value) results for Scores/BuildComputeTree/Root.
func (r *ComputeRunner) Compute(algo Algorithm, params Params) error {
	l, s := r.normalizedGraph()
	ordered, err := runAlgorithm(l, s, algo, params)
	if err != nil {
		return fmt.Errorf("runner: compute: %w", err)
	}
	r.ordered = ordered
	r.tree = nil
	return nil
}

// BuildComputeTree constructs the fixed Merkle tree over the most recent
// Compute call's ordered results. Compute must be called first.
func (r *ComputeRunner) BuildComputeTree() error {
	if r.ordered == nil {
		return fmt.Errorf("runner: build compute tree: compute has not run")
	}
	tree, err := buildTree(r.ordered)
	if err != nil {
		return fmt.Errorf("runner: build compute tree: %w", err)
	}
	r.tree = tree
	return nil
}

// Scores returns the most recent Compute call's results as externally
// named (id, value) entries, in ascending-index order.
func (r *ComputeRunner) Scores() ([]trust.ScoreEntry, error) {
	if r.ordered == nil {
		return nil, fmt.Errorf("runner: scores: compute has not run")
	}
	return algorithm.ToScoreEntries(r.ordered, r.Graph.Dictionary), nil
}

// Root returns the compute tree's root. BuildComputeTree must be called
// first.
func (r *ComputeRunner) Root() (merkle.Hash, error) {
	if r.tree == nil {
		return merkle.Hash{}, fmt.Errorf("runner: root: compute tree has not been built")
	}
	return r.tree.Root()
}
