package runner

import (
	"testing"

	"github.com/openrankprotocol/openrank-go/pkg/merkle"
	"github.com/openrankprotocol/openrank-go/pkg/trust"
	"github.com/stretchr/testify/require"
)

func sameGraphTrust() []trust.TrustEntry {
	return []trust.TrustEntry{
		{From: "a", To: "b", Value: 1},
		{From: "b", To: "a", Value: 1},
	}
}

func sameGraphSeed() []trust.ScoreEntry {
	return []trust.ScoreEntry{{ID: "a", Value: 1}}
}

func TestVerificationRunner_AcceptsGenuineResult(t *testing.T) {
	compute := NewComputeRunner()
	compute.UpdateTrust(sameGraphTrust())
	compute.UpdateSeed(sameGraphSeed())
	require.NoError(t, compute.Compute(AlgorithmPositiveTrust, Params{}))
	require.NoError(t, compute.BuildComputeTree())
	scores, err := compute.Scores()
	require.NoError(t, err)
	root, err := compute.Root()
	require.NoError(t, err)

	verify := NewVerificationRunner(AlgorithmPositiveTrust, Params{})
	verify.UpdateTrust(sameGraphTrust())
	verify.UpdateSeed(sameGraphSeed())

	id := merkle.HashLeaf([]byte{0, 0, 0, 0})
	verify.RegisterCommitment(id, root)
	verify.RegisterScores(id, scores)

	ok, err := verify.Verify(id)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerificationRunner_RejectsMismatchedCommitment(t *testing.T) {
	compute := NewComputeRunner()
	compute.UpdateTrust(sameGraphTrust())
	compute.UpdateSeed(sameGraphSeed())
	require.NoError(t, compute.Compute(AlgorithmPositiveTrust, Params{}))
	scores, err := compute.Scores()
	require.NoError(t, err)

	verify := NewVerificationRunner(AlgorithmPositiveTrust, Params{})
	verify.UpdateTrust(sameGraphTrust())
	verify.UpdateSeed(sameGraphSeed())

	id := merkle.HashLeaf([]byte{0, 0, 0, 0})
	verify.RegisterCommitment(id, merkle.HashLeaf([]byte("wrong-root")))
	verify.RegisterScores(id, scores)

	ok, err := verify.Verify(id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerificationRunner_RejectsDivergentScores(t *testing.T) {
	compute := NewComputeRunner()
	compute.UpdateTrust(sameGraphTrust())
	compute.UpdateSeed(sameGraphSeed())
	require.NoError(t, compute.Compute(AlgorithmPositiveTrust, Params{}))
	require.NoError(t, compute.BuildComputeTree())

	bogus := []trust.ScoreEntry{{ID: "a", Value: 0.5}, {ID: "b", Value: 0.5}}

	verify := NewVerificationRunner(AlgorithmPositiveTrust, Params{})
	verify.UpdateTrust(sameGraphTrust())
	verify.UpdateSeed(sameGraphSeed())

	id := merkle.HashLeaf([]byte{0, 0, 0, 1})

	bogusTree, err := merkle.NewFixedTree([]merkle.Hash{merkle.HashScoreLeaf(0.5), merkle.HashScoreLeaf(0.5)})
	require.NoError(t, err)
	bogusRoot, err := bogusTree.Root()
	require.NoError(t, err)

	verify.RegisterCommitment(id, bogusRoot)
	verify.RegisterScores(id, bogus)

	ok, err := verify.Verify(id)
	require.NoError(t, err)
	require.False(t, ok, "a non-converged candidate vector must fail the convergence check even if the root matches")
}

func TestVerificationRunner_UnknownIDReturnsDomainIndexError(t *testing.T) {
	verify := NewVerificationRunner(AlgorithmPositiveTrust, Params{})
	verify.UpdateTrust(sameGraphTrust())
	verify.UpdateSeed(sameGraphSeed())

	id := merkle.HashLeaf([]byte{0, 0, 0, 2})
	verify.RegisterCommitment(id, merkle.Hash{})
	verify.RegisterScores(id, []trust.ScoreEntry{{ID: "nobody", Value: 1}})

	_, err := verify.Verify(id)
	require.ErrorIs(t, err, ErrDomainIndex)
}

func TestVerificationRunner_VerifyRequiresBothRegistrations(t *testing.T) {
	verify := NewVerificationRunner(AlgorithmPositiveTrust, Params{})
	id := merkle.HashLeaf([]byte{0, 0, 0, 3})
	_, err := verify.Verify(id)
	require.Error(t, err)
}
