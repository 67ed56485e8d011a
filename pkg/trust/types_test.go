package trust

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutboundLocalTrust_SetZeroRemovesCellAndUpdatesSum(t *testing.T) {
	row := NewOutboundLocalTrust()
	row.Set(1, 0.5)
	row.Set(2, 0.25)
	require.InDelta(t, 0.75, row.Sum, 1e-6)

	row.Set(1, 0)
	_, ok := row.Trust[1]
	require.False(t, ok)
	require.InDelta(t, 0.25, row.Sum, 1e-6)
}

func TestOutboundLocalTrust_OverwriteUpdatesSum(t *testing.T) {
	row := NewOutboundLocalTrust()
	row.Set(1, 0.5)
	row.Set(1, 0.8)
	require.Len(t, row.Trust, 1)
	require.InDelta(t, 0.8, row.Sum, 1e-6)
}

func TestOutboundLocalTrust_Clone(t *testing.T) {
	row := NewOutboundLocalTrust()
	row.Set(1, 0.5)
	clone := row.Clone()
	clone.Set(1, 0.1)

	require.InDelta(t, 0.5, row.Trust[1], 1e-6)
	require.InDelta(t, 0.1, clone.Trust[1], 1e-6)
}

func TestSeed_SetZeroRemovesEntry(t *testing.T) {
	s := make(Seed)
	s.Set(1, 1.0)
	s.Set(2, 2.0)
	require.InDelta(t, 3.0, s.Sum(), 1e-6)

	s.Set(1, 0)
	_, ok := s[1]
	require.False(t, ok)
	require.InDelta(t, 2.0, s.Sum(), 1e-6)
}
