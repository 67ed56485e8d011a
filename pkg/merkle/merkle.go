// Package merkle implements the fixed and incremental binary Merkle trees
// used to commit sub-job score vectors and meta-job commitment lists.
//
// Both tree flavors hash with keccak256 and use plain concatenation for
// internal nodes (no domain separator, no length prefix) so that roots
// verify against the coordinator contract's own hashing.
package merkle

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/ethereum/go-ethereum/crypto"
)

// Hash is a 32-byte keccak256 digest.
type Hash [32]byte

// HashLeaf hashes raw leaf bytes: keccak256(bytes).
func HashLeaf(data []byte) Hash {
	return Hash(crypto.Keccak256Hash(data))
}

// HashScoreLeaf hashes a score value the way compute and scores trees do:
// keccak256 of the IEEE-754 single-precision encoding of v, big-endian.
func HashScoreLeaf(v float32) Hash {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	return HashLeaf(buf[:])
}

// hashNode hashes two children: keccak256(left || right).
func hashNode(left, right Hash) Hash {
	buf := make([]byte, 64)
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return Hash(crypto.Keccak256Hash(buf))
}

var (
	// ErrRootNotFound is returned when a tree's root is queried before it
	// has been built.
	ErrRootNotFound = fmt.Errorf("merkle: root not found")
	// ErrNodesNotFound is returned when an internal level is missing.
	ErrNodesNotFound = fmt.Errorf("merkle: nodes not found")
	// ErrIndexOutOfRange is returned when a leaf or path index falls
	// outside the tree's bounds.
	ErrIndexOutOfRange = fmt.Errorf("merkle: index out of range")
)

// defaultDigests returns the per-level padding constants d[0..numLevels],
// where d[0] is the zero hash and d[i+1] = keccak256(d[i] || d[i]).
func defaultDigests(numLevels int) []Hash {
	d := make([]Hash, numLevels+1)
	for i := 1; i <= numLevels; i++ {
		d[i] = hashNode(d[i-1], d[i-1])
	}
	return d
}

// nextPowerOfTwo returns the smallest power of two >= n, and 1 for n == 0.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// log2 returns the base-2 logarithm of a power of two.
func log2(n int) int {
	return bits.TrailingZeros(uint(n))
}
