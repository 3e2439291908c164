// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package golden provides a slow, obviously-correct reference
// implementation of a sparse voxel lattice plus randomized position and
// material generators, used as an oracle in property tests that compare
// it against the real packed Tree.
package golden

// Tree is a dense-semantics, sparse-storage reference lattice: Get
// returns a fixed fill value for any position never written, exactly
// like a freshly allocated svt.Tree. Unlike svt.Tree it stores every
// written position directly in a map, with no block/leaf packing and no
// splitting, trading memory for obvious correctness.
type Tree[M comparable] struct {
	fill   M
	values map[[3]uint32]M
}

// NewTree returns a reference lattice where every position reads as fill
// until explicitly set.
func NewTree[M comparable](fill M) *Tree[M] {
	return &Tree[M]{fill: fill, values: make(map[[3]uint32]M)}
}

// Get returns the material at pos, or fill if pos was never set (or was
// last set back to fill).
func (g *Tree[M]) Get(pos [3]uint32) M {
	if v, ok := g.values[pos]; ok {
		return v
	}
	return g.fill
}

// Set records the material at pos. Setting back to fill removes the
// entry rather than keeping a redundant explicit record, so Len reflects
// only positions that differ from the default.
func (g *Tree[M]) Set(pos [3]uint32, m M) {
	if m == g.fill {
		delete(g.values, pos)
		return
	}
	g.values[pos] = m
}

// Len returns the number of positions currently holding a non-fill
// material.
func (g *Tree[M]) Len() int { return len(g.values) }

// Positions returns every position currently holding a non-fill
// material, in unspecified order.
func (g *Tree[M]) Positions() [][3]uint32 {
	out := make([][3]uint32, 0, len(g.values))
	for p := range g.values {
		out = append(out, p)
	}
	return out
}
