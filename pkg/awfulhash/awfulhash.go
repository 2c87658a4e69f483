// Package awfulhash provides a deliberately terrible [hash.Hash64].
//
// Each Write folds only its first byte into an 8-bit accumulator, and the
// accumulator is optionally reduced modulo a small number. With the default
// modulus of 8 every key lands in one of eight hash values, so a hash table
// driven by it exercises collision chains, probe sequences and deletion
// repair on almost every operation.
//
// The hash is handed to the container under test at construction time and is
// never used by a reference model.
package awfulhash

import (
	"encoding/binary"
	"hash"
)

// DefaultModulus squeezes every key into eight hash values.
const DefaultModulus = 8

// Hash is a seeded high-collision hash. The zero value is a seed-0 hash with
// no modulus.
type Hash struct {
	seed    uint8
	modulus uint8
	acc     uint8
}

var _ hash.Hash64 = (*Hash)(nil)

// New returns a hash starting from seed. A modulus of 0 disables reduction.
func New(seed, modulus uint8) *Hash {
	return &Hash{seed: seed, modulus: modulus, acc: seed}
}

// Factory returns a constructor producing fresh hashes with the same seed and
// modulus. This is the value passed to a hash map's options.
func Factory(seed, modulus uint8) func() hash.Hash64 {
	return func() hash.Hash64 {
		return New(seed, modulus)
	}
}

// Write folds p[0] into the accumulator. The rest of p is ignored, as is an
// empty p. It never returns an error.
func (h *Hash) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	h.acc += p[0]

	if h.modulus > 0 {
		h.acc %= h.modulus
	}

	return len(p), nil
}

// Sum64 returns the accumulator.
func (h *Hash) Sum64() uint64 {
	return uint64(h.acc)
}

// Sum appends the big-endian Sum64 to b.
func (h *Hash) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint64(b, h.Sum64())
}

// Reset restores the accumulator to the seed.
func (h *Hash) Reset() {
	h.acc = h.seed
}

// Size returns the number of bytes Sum appends.
func (h *Hash) Size() int {
	return 8
}

// BlockSize returns 1. Writes are never buffered.
func (h *Hash) BlockSize() int {
	return 1
}
