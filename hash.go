package linktable

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Ready-made hash functions for the common key types, so callers don't
// have to hand-roll one. All of them are xxhash64 underneath. Pass them
// straight to New.

// HashString hashes the content of s.
func HashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// HashBytes hashes the content of b.
func HashBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// HashUint64 hashes the 8 bytes of u. Feeding the integer through a
// real hash matters here: the table addresses buckets with the low bits
// only, and grow/shrink redistribute on single bits above those.
func HashUint64(u uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	return xxhash.Sum64(buf[:])
}
