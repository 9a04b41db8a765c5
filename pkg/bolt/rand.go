package bolt

import "math/rand/v2"

// Rand is the random source consumed by the generator.
// Float64 must return values in [0, 1). *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// NewRand returns a PCG source seeded from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// RandomSeed draws a fresh seed from the runtime's global source.
func RandomSeed() uint64 {
	return rand.Uint64()
}
