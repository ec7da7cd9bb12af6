package lsystem

import "math/rand/v2"

// NewRand returns a PCG generator for seed. Equal seeds give equal streams.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, mix(seed^0x6a09e667f3bcc909)))
}

// CellSeed derives the seed of grid cell (x, z) from a base seed so that
// neighbouring cells get unrelated streams.
func CellSeed(base uint64, x, z int) uint64 {
	h := mix(base)
	h = mix(h ^ uint64(int64(x))*0x9e3779b97f4a7c15)
	return mix(h ^ uint64(int64(z))*0xc2b2ae3d27d4eb4f)
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
