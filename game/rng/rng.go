// Package rng produces the seeded stream of grid cells used for food placement.
package rng

import (
	"golang.org/x/exp/rand"
)

// Generator wraps a PCG source. The same seed always yields the same sequence.
type Generator struct {
	r    *rand.Rand
	seed uint64
}

// New creates a generator seeded with seed
func New(seed uint64) *Generator {
	return &Generator{
		r:    rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the value the generator was created with
func (g *Generator) Seed() uint64 {
	return g.seed
}

// NextCell returns a uniformly distributed column in [0, gridWidth) and row in [0, gridHeight)
func (g *Generator) NextCell(gridWidth, gridHeight uint32) (uint32, uint32) {
	x := uint32(g.r.Uint64n(uint64(gridWidth)))
	y := uint32(g.r.Uint64n(uint64(gridHeight)))
	return x, y
}
