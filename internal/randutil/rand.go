package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The same seed always yields the same draw sequence.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Resolve returns seed unchanged unless it is zero, in which case a fresh
// non-zero seed is generated. Callers log the result so a run can be replayed.
func Resolve(seed int64) int64 {
	for seed == 0 {
		var buf [8]byte
		if _, err := crand.Read(buf[:]); err != nil {
			panic("failed to generate random seed: " + err.Error())
		}
		seed = int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	}
	return seed
}

// Split derives n child seeds from a parent seed, one per worker.
func Split(seed int64, n int) []int64 {
	seeds := make([]int64, n)
	x := uint64(seed)
	for i := range seeds {
		x += goldenRatio64
		seeds[i] = int64(mix(x))
	}
	return seeds
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
