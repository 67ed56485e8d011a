// Package trust implements the sparse local-trust matrix and seed vector
// that back the ranking algorithms: dense-index assignment, incremental
// mutation with zero-removes-entry semantics, pre-processing, and
// normalization.
package trust

// TrustEntry asserts that `From` trusts `To` with the given magnitude. A
// Value of exactly zero removes any prior entry for the pair.
type TrustEntry struct {
	From  string
	To    string
	Value float32
}

// ScoreEntry is a single (id, value) pair, used both for seed vectors and
// for algorithm output. A zero Value in a seed update removes the entry.
type ScoreEntry struct {
	ID    string
	Value float32
}

// OutboundLocalTrust is one `from` row of the local-trust matrix: a
// mapping of dense `to` index to trust value, with a cached sum that is
// kept consistent on every mutation.
type OutboundLocalTrust struct {
	Trust map[uint64]float32
	Sum   float32
}

// NewOutboundLocalTrust returns an empty row.
func NewOutboundLocalTrust() *OutboundLocalTrust {
	return &OutboundLocalTrust{Trust: make(map[uint64]float32)}
}

// Set inserts or overwrites the trust value for `to`; a value of zero
// removes the cell. The cached sum is updated to match.
func (o *OutboundLocalTrust) Set(to uint64, value float32) {
	old, had := o.Trust[to]
	if value == 0 {
		if had {
			o.Sum -= old
			delete(o.Trust, to)
		}
		return
	}
	if had {
		o.Sum += value - old
	} else {
		o.Sum += value
	}
	o.Trust[to] = value
}

// Clone returns a deep copy of the row.
func (o *OutboundLocalTrust) Clone() *OutboundLocalTrust {
	clone := &OutboundLocalTrust{
		Trust: make(map[uint64]float32, len(o.Trust)),
		Sum:   o.Sum,
	}
	for k, v := range o.Trust {
		clone.Trust[k] = v
	}
	return clone
}

// LocalTrust is the sparse matrix L: from-index -> outbound row.
type LocalTrust map[uint64]*OutboundLocalTrust

// Seed is the seed vector s: index -> value, non-zero entries only.
type Seed map[uint64]float32

// Set inserts or overwrites id's value; a value of zero removes the entry.
func (s Seed) Set(id uint64, value float32) {
	if value == 0 {
		delete(s, id)
		return
	}
	s[id] = value
}

// Sum returns the arithmetic sum of all entries.
func (s Seed) Sum() float32 {
	var total float32
	for _, v := range s {
		total += v
	}
	return total
}

// Clone returns a shallow copy of the vector.
func (s Seed) Clone() Seed {
	clone := make(Seed, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}
