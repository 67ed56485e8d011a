package algorithm

import (
	"testing"

	"github.com/openrankprotocol/openrank-go/pkg/trust"
	"github.com/stretchr/testify/require"
)

func twoNodeGraph() (trust.LocalTrust, trust.Seed) {
	l := trust.LocalTrust{
		0: {Trust: map[uint64]float32{1: 1}, Sum: 1},
		1: {Trust: map[uint64]float32{0: 1}, Sum: 1},
	}
	s := trust.Seed{0: 1}
	return trust.NormalizeLocalTrust(l), trust.NormalizeVector(s)
}

func TestRunPositiveTrust_ConvergesOnTwoNodeCycle(t *testing.T) {
	l, s := twoNodeGraph()

	x, err := RunPositiveTrust(l, s, PositiveTrustParams{})
	require.NoError(t, err)
	require.InDelta(t, 1.0, x.Sum(), 1e-4)
}

func TestConvergenceCheck_AgreesWithRunResult(t *testing.T) {
	l, s := twoNodeGraph()

	x, err := RunPositiveTrust(l, s, PositiveTrustParams{})
	require.NoError(t, err)
	require.True(t, ConvergenceCheck(l, s, x, PositiveTrustParams{}))
}

func TestConvergenceCheck_RejectsArbitraryVector(t *testing.T) {
	l, s := twoNodeGraph()

	bogus := trust.Seed{0: 0.99, 1: 0.01}
	require.False(t, ConvergenceCheck(l, s, bogus, PositiveTrustParams{}))
}

func TestPositiveTrustParams_DefaultsAndOverrides(t *testing.T) {
	require.Equal(t, float32(PreTrustWeight), PositiveTrustParams{}.alpha())
	require.Equal(t, float32(0.8), PositiveTrustParams{Alpha: 0.8}.alpha())
	require.Equal(t, float32(Delta), PositiveTrustParams{}.delta())
	require.Equal(t, float32(0.001), PositiveTrustParams{Delta: 0.001}.delta())
}
