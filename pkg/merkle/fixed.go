package merkle

// FixedTree is a binary Merkle tree built once from an ordered vector of
// leaves. Leaves are right-padded with the zero hash up to the next power
// of two and every level is materialized in full, so a padded subtree at
// level i holds the level-indexed default digest d[i].
type FixedTree struct {
	levels  [][]Hash // levels[0] = padded leaves, levels[len-1] = [root]
	numReal int      // number of leaves actually supplied by the caller
	digests []Hash   // digests[i] = default node value at level i
}

// NewFixedTree builds a fixed tree from the given leaf hashes.
func NewFixedTree(leaves []Hash) (*FixedTree, error) {
	n := len(leaves)
	padded := nextPowerOfTwo(n)
	numLevels := log2(padded)
	digests := defaultDigests(numLevels)

	level0 := make([]Hash, padded)
	copy(level0, leaves)
	for i := n; i < padded; i++ {
		level0[i] = digests[0]
	}

	levels := make([][]Hash, numLevels+1)
	levels[0] = level0

	for lvl := 0; lvl < numLevels; lvl++ {
		cur := levels[lvl]
		next := make([]Hash, len(cur)/2)
		for i := 0; i < len(next); i++ {
			next[i] = hashNode(cur[2*i], cur[2*i+1])
		}
		levels[lvl+1] = next
	}

	return &FixedTree{
		levels:  levels,
		numReal: n,
		digests: digests,
	}, nil
}

// Root returns the tree's root hash.
func (t *FixedTree) Root() (Hash, error) {
	top := t.levels[len(t.levels)-1]
	if len(top) != 1 {
		return Hash{}, ErrRootNotFound
	}
	return top[0], nil
}

// NumLevels returns the number of levels above the leaves (the tree height).
func (t *FixedTree) NumLevels() int {
	return len(t.levels) - 1
}

// GeneratePath returns the sibling hash at every level from the given leaf
// index up to (but not including) the root.
func (t *FixedTree) GeneratePath(leafIndex int) ([]Hash, error) {
	padded := len(t.levels[0])
	if leafIndex < 0 || leafIndex >= padded {
		return nil, ErrIndexOutOfRange
	}

	path := make([]Hash, 0, len(t.levels)-1)
	index := leafIndex
	for lvl := 0; lvl < len(t.levels)-1; lvl++ {
		level := t.levels[lvl]
		siblingIndex := index ^ 1
		if siblingIndex >= len(level) {
			path = append(path, t.digests[lvl])
		} else {
			path = append(path, level[siblingIndex])
		}
		index /= 2
	}
	return path, nil
}

// VerifyPath reconstructs the root from a leaf, its index, and a sibling
// path, returning whether it matches the expected root.
func VerifyPath(leaf Hash, index int, path []Hash, expectedRoot Hash) bool {
	current := leaf
	for _, sibling := range path {
		if index%2 == 0 {
			current = hashNode(current, sibling)
		} else {
			current = hashNode(sibling, current)
		}
		index /= 2
	}
	return current == expectedRoot
}
