package trust

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreprocess_EmptySeedFallsBackToUniform(t *testing.T) {
	g := NewGraph()
	g.UpdateTrust([]TrustEntry{
		{From: "a", To: "b", Value: 1},
		{From: "b", To: "a", Value: 1},
	})

	Preprocess(g)

	require.Len(t, g.S, g.Dictionary.Count())
	for _, v := range g.S {
		require.Equal(t, float32(1), v)
	}
}

func TestPreprocess_ZeroOutboundSumRedistributesToSeed(t *testing.T) {
	g := NewGraph()
	g.UpdateTrust([]TrustEntry{
		{From: "a", To: "b", Value: 1},
	})
	g.UpdateSeed([]ScoreEntry{{ID: "a", Value: 1}})

	bIdx := g.Dictionary.IndexFor("b")
	_, hadRow := g.L[bIdx]
	require.False(t, hadRow, "b has no outbound row yet")

	Preprocess(g)

	row, ok := g.L[bIdx]
	require.True(t, ok, "b must be given a row once preprocessed")
	require.InDelta(t, g.S.Sum(), row.Sum, 1e-6)
}

func TestPreprocess_PrunesUnreachableRows(t *testing.T) {
	g := NewGraph()
	g.UpdateTrust([]TrustEntry{
		{From: "a", To: "b", Value: 1},
		{From: "x", To: "y", Value: 1}, // disconnected from the seed component
	})
	g.UpdateSeed([]ScoreEntry{{ID: "a", Value: 1}})

	xIdx := g.Dictionary.IndexFor("x")

	Preprocess(g)

	_, ok := g.L[xIdx]
	require.False(t, ok, "x is unreachable from the seed and must be dropped")
}

func TestPreprocess_Idempotent(t *testing.T) {
	g := NewGraph()
	g.UpdateTrust([]TrustEntry{
		{From: "a", To: "b", Value: 1},
		{From: "b", To: "c", Value: 1},
	})
	g.UpdateSeed([]ScoreEntry{{ID: "a", Value: 1}})

	Preprocess(g)
	first := snapshotSums(g.L)

	Preprocess(g)
	second := snapshotSums(g.L)

	require.Equal(t, first, second)
}

func snapshotSums(l LocalTrust) map[uint64]float32 {
	out := make(map[uint64]float32, len(l))
	for from, row := range l {
		out[from] = row.Sum
	}
	return out
}
