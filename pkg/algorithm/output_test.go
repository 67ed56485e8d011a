package algorithm

import (
	"testing"

	"github.com/openrankprotocol/openrank-go/pkg/trust"
	"github.com/stretchr/testify/require"
)

func TestOrderedOutput_AscendingByIndex(t *testing.T) {
	x := trust.Seed{5: 0.1, 1: 0.2, 3: 0.3}
	ordered := OrderedOutput(x)

	require.Equal(t, []IndexValue{
		{Index: 1, Value: 0.2},
		{Index: 3, Value: 0.3},
		{Index: 5, Value: 0.1},
	}, ordered)
}

func TestToScoreEntries_MapsBackToOriginalIDs(t *testing.T) {
	dict := trust.NewDictionary()
	a := dict.IndexFor("alice")
	b := dict.IndexFor("bob")

	ordered := []IndexValue{{Index: a, Value: 0.6}, {Index: b, Value: 0.4}}
	entries := ToScoreEntries(ordered, dict)

	require.Equal(t, []trust.ScoreEntry{
		{ID: "alice", Value: 0.6},
		{ID: "bob", Value: 0.4},
	}, entries)
}

func TestToScoreEntries_SkipsUnknownIndices(t *testing.T) {
	dict := trust.NewDictionary()
	dict.IndexFor("alice")

	entries := ToScoreEntries([]IndexValue{{Index: 99, Value: 1}}, dict)
	require.Empty(t, entries)
}
