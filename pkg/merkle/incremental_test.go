package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncrementalTree_EmptyRootIsDefault(t *testing.T) {
	tree := NewIncrementalTree(IncrementalHeight)
	root, err := tree.Root()
	require.NoError(t, err)
	require.Equal(t, defaultDigests(IncrementalHeight)[IncrementalHeight], root)
}

func TestIncrementalTree_MatchesFixedTreeForPowerOfTwoLeaves(t *testing.T) {
	const height = 3 // 8 leaves
	leaves := make([]Hash, 1<<height)
	for i := range leaves {
		leaves[i] = HashLeaf([]byte{byte(i)})
	}

	fixed, err := NewFixedTree(leaves)
	require.NoError(t, err)
	fixedRoot, err := fixed.Root()
	require.NoError(t, err)

	inc := NewIncrementalTree(height)
	for i, leaf := range leaves {
		require.NoError(t, inc.Insert(uint64(i), leaf))
	}
	incRoot, err := inc.Root()
	require.NoError(t, err)

	require.Equal(t, fixedRoot, incRoot)
}

func TestIncrementalTree_OutOfRange(t *testing.T) {
	tree := NewIncrementalTree(2)
	require.NoError(t, tree.Insert(3, HashLeaf([]byte("a"))))
	require.ErrorIs(t, tree.Insert(4, HashLeaf([]byte("b"))), ErrIndexOutOfRange)
}
