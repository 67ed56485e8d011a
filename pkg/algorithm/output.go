package algorithm

import (
	"sort"

	"github.com/openrankprotocol/openrank-go/pkg/trust"
)

// IndexValue is a single (dense index, score) pair in a ranking result.
type IndexValue struct {
	Index uint64
	Value float32
}

// OrderedOutput sorts a score vector into ascending-index order. This
// ordering is load-bearing: commitments are built over the values in
// exactly this order, so callers must not substitute any other ordering
// (e.g. iteration order over the map, or descending by score).
func OrderedOutput(x trust.Seed) []IndexValue {
	out := make([]IndexValue, 0, len(x))
	for idx, v := range x {
		out = append(out, IndexValue{Index: idx, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ToScoreEntries maps an ordered output back to externally named entries
// via the dictionary that assigned the dense indices in the first place.
func ToScoreEntries(ordered []IndexValue, dict *trust.Dictionary) []trust.ScoreEntry {
	out := make([]trust.ScoreEntry, 0, len(ordered))
	for _, iv := range ordered {
		id, ok := dict.IDFor(iv.Index)
		if !ok {
			continue
		}
		out = append(out, trust.ScoreEntry{ID: id, Value: iv.Value})
	}
	return out
}
