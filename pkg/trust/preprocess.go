package trust

// Preprocess applies the three fix-ups required before a graph is fed to
// a ranking algorithm, in order:
//
//  1. If the seed vector is empty (sums to zero), it is replaced with a
//     uniform weight of 1 over every index the dictionary has assigned.
//  2. Every index with a zero outbound sum (no row, or a row whose cells
//     all net to zero) has its row replaced with a copy of the seed
//     vector, so every node has somewhere to send its trust mass.
//  3. Any row not reachable from a seed index by following outbound
//     edges is dropped entirely.
//
// Preprocess is idempotent: running it again on its own output is a
// no-op, since step 1 only fires on an empty seed, step 2 leaves every
// surviving row alone (its sum is now positive) and only re-creates the
// rows step 3 pruned, and step 3 prunes those again: giving an
// unreachable node a row does not make it reachable.
func Preprocess(g *Graph) {
	count := uint64(g.Dictionary.Count())

	if g.S.Sum() == 0 {
		for i := uint64(0); i < count; i++ {
			g.S[i] = 1
		}
	}

	for i := uint64(0); i < count; i++ {
		row, ok := g.L[i]
		if !ok || row.Sum == 0 {
			g.L[i] = seedRow(g.S)
		}
	}

	reachable := reachableFromSeed(g.L, g.S)
	for from := range g.L {
		if !reachable[from] {
			delete(g.L, from)
		}
	}
}

// seedRow builds an outbound row from a copy of the seed vector.
func seedRow(s Seed) *OutboundLocalTrust {
	row := NewOutboundLocalTrust()
	for idx, v := range s {
		row.Set(idx, v)
	}
	return row
}

// reachableFromSeed returns the set of indices reachable by following
// outbound edges starting from every seed index (seed indices are always
// included, whether or not they have an outbound row).
func reachableFromSeed(l LocalTrust, s Seed) map[uint64]bool {
	visited := make(map[uint64]bool, len(s))
	queue := make([]uint64, 0, len(s))
	for idx := range s {
		if !visited[idx] {
			visited[idx] = true
			queue = append(queue, idx)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		row, ok := l[n]
		if !ok {
			continue
		}
		for to := range row.Trust {
			if !visited[to] {
				visited[to] = true
				queue = append(queue, to)
			}
		}
	}
	return visited
}
