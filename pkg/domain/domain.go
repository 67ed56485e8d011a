// Package domain identifies an openrank domain — a trust namespace and
// a seed namespace paired with an algorithm id — and hashes it down to
// a short correlation digest, adapted from
// _examples/original_source/common/src/lib.rs's Domain/DomainHash.
package domain

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
)

// Domain names a trust namespace and a seed namespace owned by (possibly
// different) addresses, plus the algorithm id used to rank them.
type Domain struct {
	TrustOwner common.Address
	TrustID    uint32
	SeedOwner  common.Address
	SeedID     uint32
	AlgoID     uint64
}

// New returns a Domain for the given namespace owners/ids and algorithm.
func New(trustOwner common.Address, trustID uint32, seedOwner common.Address, seedID uint32, algoID uint64) Domain {
	return Domain{
		TrustOwner: trustOwner,
		TrustID:    trustID,
		SeedOwner:  seedOwner,
		SeedID:     seedID,
		AlgoID:     algoID,
	}
}

// Hash is the 8-byte digest of a Domain (spec.md §8 S2).
type Hash [8]byte

// Hex renders h as lowercase hex, matching every other hex surface in
// this codebase.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Hash reproduces the original's DefaultHasher call sequence: write
// trust_owner, trust_id (big-endian), seed_owner, seed_id (big-endian),
// algo_id (big-endian), then finish() and re-encode the resulting u64
// as big-endian bytes.
func (d Domain) Hash() Hash {
	buf := make([]byte, 0, 20+4+20+4+8)
	buf = append(buf, d.TrustOwner.Bytes()...)
	buf = binary.BigEndian.AppendUint32(buf, d.TrustID)
	buf = append(buf, d.SeedOwner.Bytes()...)
	buf = binary.BigEndian.AppendUint32(buf, d.SeedID)
	buf = binary.BigEndian.AppendUint64(buf, d.AlgoID)

	res := sipHash13(buf)

	var out Hash
	binary.BigEndian.PutUint64(out[:], res)
	return out
}
