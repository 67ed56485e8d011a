package runner

import (
	"fmt"
	"sort"

	"github.com/openrankprotocol/openrank-go/pkg/algorithm"
	"github.com/openrankprotocol/openrank-go/pkg/merkle"
	"github.com/openrankprotocol/openrank-go/pkg/trust"
)

// ComputeID identifies a registration within a VerificationRunner. In
// the challenger's sub-job loop this is the sub-job's index written
// big-endian into the low bytes of the 32-byte value (not hashed),
// keeping registrations addressable the same way compute results are
// addressed on-chain.
type ComputeID = merkle.Hash

// registration holds one compute-id's claimed commitment and scores,
// pending verification.
type registration struct {
	commitment merkle.Hash
	scores     []trust.ScoreEntry
	hasCommit  bool
	hasScores  bool
}

// VerificationRunner is the superset of ComputeRunner's operations used
// by the challenger: it replays the same trust/seed ingestion and
// pre-processing, but instead of running the algorithm it verifies a
// claimed result.
type VerificationRunner struct {
	*BaseRunner

	params        Params
	algo          Algorithm
	registrations map[ComputeID]*registration
}

// NewVerificationRunner returns an empty verification runner. Verify uses
// params.PositiveTrust for the positive-trust convergence check whatever
// algo is; algo is stored but does not change the check.
func NewVerificationRunner(algo Algorithm, params Params) *VerificationRunner {
	return &VerificationRunner{
		BaseRunner:    NewBaseRunner(),
		algo:          algo,
		params:        params,
		registrations: make(map[ComputeID]*registration),
	}
}

func (r *VerificationRunner) reg(id ComputeID) *registration {
	reg, ok := r.registrations[id]
	if !ok {
		reg = &registration{}
		r.registrations[id] = reg
	}
	return reg
}

// RegisterCommitment records the claimed commitment hash for compute_id.
func (r *VerificationRunner) RegisterCommitment(id ComputeID, commitment merkle.Hash) {
	reg := r.reg(id)
	reg.commitment = commitment
	reg.hasCommit = true
}

// RegisterScores records the claimed score entries for compute_id.
func (r *VerificationRunner) RegisterScores(id ComputeID, scores []trust.ScoreEntry) {
	reg := r.reg(id)
	reg.scores = scores
	reg.hasScores = true
}

// Verify builds the compute tree from the registered scores (the same
// construction as ComputeRunner.BuildComputeTree), computes its root r',
// and returns (r' == registered_commitment) && convergence_check(scores).
//
// Entries in the registered scores that reference an ID never assigned a
// dense index by this runner's dictionary (via UpdateTrust/UpdateSeed)
// cause ErrDomainIndex.
func (r *VerificationRunner) Verify(id ComputeID) (bool, error) {
	reg, ok := r.registrations[id]
	if !ok || !reg.hasCommit || !reg.hasScores {
		return false, fmt.Errorf("runner: verify %x: commitment and scores must both be registered first", id)
	}

	candidate, ordered, err := r.resolveCandidate(reg.scores)
	if err != nil {
		return false, err
	}

	tree, err := buildTree(ordered)
	if err != nil {
		return false, fmt.Errorf("runner: verify %x: build compute tree: %w", id, err)
	}
	root, err := tree.Root()
	if err != nil {
		return false, fmt.Errorf("runner: verify %x: tree root: %w", id, err)
	}

	if root != reg.commitment {
		return false, nil
	}

	l, s := r.normalizedGraph()
	return algorithm.ConvergenceCheck(l, s, candidate, r.params.PositiveTrust), nil
}

// resolveCandidate maps externally named score entries back to the
// runner's dense indices, returning both the sparse vector used by the
// convergence check and the ascending-index ordered list used to
// rebuild the compute tree.
func (r *VerificationRunner) resolveCandidate(scores []trust.ScoreEntry) (trust.Seed, []algorithm.IndexValue, error) {
	candidate := make(trust.Seed, len(scores))
	ordered := make([]algorithm.IndexValue, 0, len(scores))
	for _, e := range scores {
		idx, ok := r.Graph.Dictionary.Lookup(e.ID)
		if !ok {
			return nil, nil, fmt.Errorf("runner: resolve candidate: %w: unknown id %q", ErrDomainIndex, e.ID)
		}
		// Registered scores are mirrored faithfully, including a literal
		// zero value, rather than going through Seed.Set (which would
		// silently drop a zero-valued entry from the reconstructed tree).
		candidate[idx] = e.Value
		ordered = append(ordered, algorithm.IndexValue{Index: idx, Value: e.Value})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	return candidate, ordered, nil
}
