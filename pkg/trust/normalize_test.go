package trust

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLocalTrust_RowsAreStochastic(t *testing.T) {
	l := LocalTrust{
		0: {Trust: map[uint64]float32{1: 1, 2: 3}, Sum: 4},
		1: {Trust: map[uint64]float32{0: 5}, Sum: 5},
	}

	norm := NormalizeLocalTrust(l)

	for from, row := range norm {
		var sum float32
		for _, v := range row.Trust {
			sum += v
		}
		require.InDelta(t, 1.0, sum, 1e-5, "row %d must sum to 1 after normalization", from)
	}

	require.InDelta(t, 0.25, norm[0].Trust[1], 1e-6)
	require.InDelta(t, 0.75, norm[0].Trust[2], 1e-6)
}

func TestNormalizeLocalTrust_ZeroSumRowUnchanged(t *testing.T) {
	l := LocalTrust{0: {Trust: map[uint64]float32{}, Sum: 0}}
	norm := NormalizeLocalTrust(l)
	require.Empty(t, norm[0].Trust)
}

func TestNormalizeVector_SumsToOne(t *testing.T) {
	v := Seed{0: 1, 1: 1, 2: 2}
	norm := NormalizeVector(v)

	require.InDelta(t, 1.0, norm.Sum(), 1e-5)
	require.InDelta(t, 0.25, norm[0], 1e-6)
	require.InDelta(t, 0.5, norm[2], 1e-6)
}

func TestNormalizeVector_ZeroSumReturnsUnchanged(t *testing.T) {
	v := Seed{}
	norm := NormalizeVector(v)
	require.Empty(t, norm)
}
