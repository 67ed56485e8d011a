package trust

// Graph bundles a local-trust matrix and seed vector with the dictionary
// that assigned their dense indices. It is the unit of data a single
// sub-job computation operates on; a fresh Graph is built per sub-job.
type Graph struct {
	Dictionary *Dictionary
	L          LocalTrust
	S          Seed
}

// NewGraph returns an empty graph with a fresh dictionary.
func NewGraph() *Graph {
	return &Graph{
		Dictionary: NewDictionary(),
		L:          make(LocalTrust),
		S:          make(Seed),
	}
}

// UpdateTrust applies a batch of trust entries, assigning dense indices
// to any identifier seen for the first time. A zero-value entry removes
// the corresponding cell.
func (g *Graph) UpdateTrust(entries []TrustEntry) {
	for _, e := range entries {
		from := g.Dictionary.IndexFor(e.From)
		to := g.Dictionary.IndexFor(e.To)
		row, ok := g.L[from]
		if !ok {
			row = NewOutboundLocalTrust()
			g.L[from] = row
		}
		row.Set(to, e.Value)
	}
}

// UpdateSeed applies a batch of seed entries, assigning dense indices to
// any identifier seen for the first time. A zero-value entry removes the
// corresponding seed weight.
func (g *Graph) UpdateSeed(entries []ScoreEntry) {
	for _, e := range entries {
		idx := g.Dictionary.IndexFor(e.ID)
		g.S.Set(idx, e.Value)
	}
}
