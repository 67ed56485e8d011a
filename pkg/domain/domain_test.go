package domain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// TestHash_MatchesOriginalFixture reproduces spec.md §8 S2: the domain
// (trust_owner=0x0…0, trust_id=1, seed_owner=0x0…0, seed_id=1, algo_id=1)
// must hash to the literal digest the original Rust implementation
// produces via DefaultHasher.
func TestHash_MatchesOriginalFixture(t *testing.T) {
	d := New(common.Address{}, 1, common.Address{}, 1, 1)
	require.Equal(t, "00902259a9dc1a51", d.Hash().Hex())
}

func TestHash_DiffersForDifferentNamespaces(t *testing.T) {
	a := New(common.Address{}, 1, common.Address{}, 1, 1)
	b := New(common.Address{}, 2, common.Address{}, 1, 1)
	require.NotEqual(t, a.Hash(), b.Hash())
}

func TestHash_Deterministic(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000001")
	d := New(owner, 7, owner, 9, 3)
	require.Equal(t, d.Hash(), d.Hash())
}
