// Package randutil centralises how the game derives its random sources so
// that a seed reproduces a whole session.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns a fresh non-zero seed from crypto/rand, for sessions started
// without an explicit one.
func Seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("randutil: crypto/rand unavailable: " + err.Error())
	}
	s := int64(binary.LittleEndian.Uint64(b[:]) >> 1)
	if s == 0 {
		return 1
	}
	return s
}

// Derive returns an independent source for the i-th child of seed, used when
// several sessions run side by side from one base seed.
func Derive(seed int64, i int) *rand.Rand {
	return New(int64(mix(uint64(seed) + uint64(i+1)*goldenRatio64)))
}

// Pick returns a uniformly chosen element of items. It panics on an empty
// slice.
func Pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
