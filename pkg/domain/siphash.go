package domain

import (
	"encoding/binary"
	"math/bits"
)

// sipHash13 reproduces Rust's std::hash::DefaultHasher, which is
// SipHash-1-3 (one compression round per message block, three
// finalization rounds) keyed with (0, 0) — DefaultHasher::new() never
// randomizes its keys, unlike RandomState.
func sipHash13(data []byte) uint64 {
	v0 := uint64(0x736f6d6570736575)
	v1 := uint64(0x646f72616e646f6d)
	v2 := uint64(0x6c7967656e657261)
	v3 := uint64(0x7465646279746573)

	round := func() {
		v0 += v1
		v1 = bits.RotateLeft64(v1, 13)
		v1 ^= v0
		v0 = bits.RotateLeft64(v0, 32)
		v2 += v3
		v3 = bits.RotateLeft64(v3, 16)
		v3 ^= v2
		v0 += v3
		v3 = bits.RotateLeft64(v3, 21)
		v3 ^= v0
		v2 += v1
		v1 = bits.RotateLeft64(v1, 17)
		v1 ^= v2
		v2 = bits.RotateLeft64(v2, 32)
	}

	n := len(data)
	end := n - n%8
	for i := 0; i < end; i += 8 {
		m := binary.LittleEndian.Uint64(data[i : i+8])
		v3 ^= m
		round()
		v0 ^= m
	}

	var last uint64 = uint64(byte(n)) << 56
	for i, b := range data[end:] {
		last |= uint64(b) << (8 * uint(i))
	}
	v3 ^= last
	round()
	v0 ^= last

	v2 ^= 0xff
	round()
	round()
	round()

	return v0 ^ v1 ^ v2 ^ v3
}
