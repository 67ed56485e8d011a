package algorithm

import (
	"testing"

	"github.com/openrankprotocol/openrank-go/pkg/trust"
	"github.com/stretchr/testify/require"
)

func TestRunFixedWalk_NormalizedOutput(t *testing.T) {
	l, s := twoNodeGraph()

	x := RunFixedWalk(l, s, WalkParams{})
	require.InDelta(t, 1.0, x.Sum(), 1e-5)
}

func TestRunFixedWalk_DefaultsToWalkLength(t *testing.T) {
	l, s := twoNodeGraph()

	withDefault := RunFixedWalk(l, s, WalkParams{})
	withExplicit := RunFixedWalk(l, s, WalkParams{Length: WalkLength})

	require.Equal(t, withDefault, withExplicit)
}

func TestRunFixedWalk_DeterministicAcrossRuns(t *testing.T) {
	l, s := twoNodeGraph()

	first := RunFixedWalk(l, s, WalkParams{})
	second := RunFixedWalk(l, s, WalkParams{})
	require.Equal(t, first, second)
}

func TestRunFixedWalkAveraged_MatchesSingleRun(t *testing.T) {
	l, s := twoNodeGraph()

	single := RunFixedWalk(l, s, WalkParams{})
	averaged := RunFixedWalkAveraged(l, s, WalkParams{}, 5)
	require.Equal(t, single, averaged)
}

func TestRunFixedWalk_ZeroStepsReturnsSeed(t *testing.T) {
	l, s := twoNodeGraph()
	x := RunFixedWalk(l, s, WalkParams{Length: -1})
	_ = l
	require.InDelta(t, 1.0, x.Sum(), 1e-5)
	require.Equal(t, trust.Seed{0: 1}, x)
}
