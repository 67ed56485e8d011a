package trust

// NormalizeLocalTrust returns a new matrix where every row's weights have
// been divided by that row's sum, so each row sums to 1 (row-stochastic).
// A row with a zero sum is copied unchanged; Preprocess guarantees this
// does not happen for any row that survives it.
func NormalizeLocalTrust(l LocalTrust) LocalTrust {
	out := make(LocalTrust, len(l))
	for from, row := range l {
		if row.Sum == 0 {
			out[from] = row.Clone()
			continue
		}
		norm := &OutboundLocalTrust{Trust: make(map[uint64]float32, len(row.Trust)), Sum: 1}
		for to, v := range row.Trust {
			norm.Trust[to] = v / row.Sum
		}
		out[from] = norm
	}
	return out
}

// NormalizeVector returns a copy of v scaled so its entries sum to 1. If
// v sums to zero it is returned unchanged.
func NormalizeVector(v Seed) Seed {
	sum := v.Sum()
	if sum == 0 {
		return v.Clone()
	}
	out := make(Seed, len(v))
	for k, val := range v {
		out[k] = val / sum
	}
	return out
}
