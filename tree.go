// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package svt

import "github.com/sparsevoxel/svt/internal/value"

// Storage word layout: the high bit discriminates leaf from internal.
// A leaf descriptor carries a Material in its low 31 bits; an internal
// descriptor carries a block index in its low 31 bits.
const internalBit uint32 = 1 << 31

func isInternal(word uint32) bool { return word&internalBit != 0 }

func leafWord(m Material) uint32 { return uint32(m) &^ internalBit }

func internalWord(blockIndex uint32) uint32 { return blockIndex | internalBit }

func blockIndexOf(word uint32) uint32 { return word &^ internalBit }

func materialOf(word uint32) Material { return Material(word &^ internalBit) }

// Tree is a Sparse Voxel Tree over a BlockDim^LevelCount lattice, backed
// by a flat arena of fixed-size blocks. M is the cell tag type; D pins
// the lattice shape at the type level so two trees of different shape
// cannot be confused or have their storage aliased.
type Tree[D Dims] struct {
	dims   D
	words  []uint32
	blocks int // number of allocated blocks; words has blocks*BlockWords(dims) entries
}

// New allocates a tree holding a single root block uniformly filled with
// initial. Block count is 1.
func New[D Dims](initial Material) *Tree[D] {
	value.RequireZST[D]("Dims")
	var d D
	t := &Tree[D]{dims: d}
	t.allocNewBlock(initial)
	return t
}

// Dims returns the tree's lattice shape.
func (t *Tree[D]) Dims() D { return t.dims }

// TotalDim returns the lattice's side length, BlockDim^LevelCount.
func (t *Tree[D]) TotalDim() uint32 { return TotalDim(t.dims) }

// BlockCount returns the number of allocated blocks.
func (t *Tree[D]) BlockCount() int { return t.blocks }

// Words exposes the raw storage buffer read-only, for serialization and
// for traversal's StorageReader.
func (t *Tree[D]) Words() []uint32 { return t.words }

// BlockDim and LevelCount and Word let *Tree[D] satisfy raymarch's
// StorageReader without either package importing the other's types.
func (t *Tree[D]) BlockDim() uint32   { return t.dims.BlockDim() }
func (t *Tree[D]) LevelCount() uint32 { return t.dims.LevelCount() }
func (t *Tree[D]) Word(i uint32) uint32 { return t.words[i] }

// allocNewBlock appends one block's worth of leaf words, all initialized
// to material, and returns the new block's index. There is no free list:
// set never reclaims a superseded block.
func (t *Tree[D]) allocNewBlock(material Material) uint32 {
	n := BlockWords(t.dims)
	idx := uint32(t.blocks)
	fill := leafWord(material)
	for i := uint32(0); i < n; i++ {
		t.words = append(t.words, fill)
	}
	t.blocks++
	return idx
}

// levelDims returns, for each level 0..LevelCount-1, the per-axis
// coordinate divisor (subcube side) at that level: level 0's subcube
// spans the whole volume, the last level's subcube is a single voxel.
func (t *Tree[D]) levelSubcube(level uint32) uint32 {
	total := t.TotalDim()
	b := t.dims.BlockDim()
	for i := uint32(0); i < level; i++ {
		total /= b
	}
	return total
}

// childSlot computes the within-block child index (lexicographic
// x*B^2 + y*B + z) that pos falls into at level, given that level's
// subcube side.
func (t *Tree[D]) childSlot(pos [3]uint32, level uint32) uint32 {
	b := t.dims.BlockDim()
	sub := t.levelSubcube(level)
	childSub := sub / b
	var local [3]uint32
	for a := 0; a < 3; a++ {
		local[a] = (pos[a] % sub) / childSub
	}
	return local[0]*b*b + local[1]*b + local[2]
}

// Get walks descriptors from the root and returns the material at pos.
// pos must be in [0, TotalDim)^3; behavior is undefined otherwise.
func (t *Tree[D]) Get(pos [3]uint32) Material {
	blockIdx := uint32(0)
	words := t.dims.LevelCount()
	for level := uint32(0); level < words; level++ {
		slot := t.childSlot(pos, level)
		word := t.words[blockIdx*BlockWords(t.dims)+slot]
		if !isInternal(word) {
			return materialOf(word)
		}
		blockIdx = blockIndexOf(word)
	}
	// Reaching here means the deepest level's descriptor was internal,
	// which cannot happen for a well-formed tree (the last level only
	// ever holds leaves), but return EMPTY rather than index further.
	return EMPTY
}

// Set walks the same descent as Get, splitting any leaf encountered
// above the target level by allocating a new block filled with the
// leaf's old material and redirecting the descriptor to it. At the
// bottommost level the slot is overwritten in place. A no-op if the
// path already ends in a leaf of the same material.
func (t *Tree[D]) Set(pos [3]uint32, material Material) {
	t.setAtDepth(pos, material, t.dims.LevelCount())
}

// SetWithLevelCap performs the same descent as Set but stops at cap
// (cap < LevelCount), overwriting that slot with a leaf descriptor. This
// is lossy with respect to anything previously stored below cap.
func (t *Tree[D]) SetWithLevelCap(cap uint32, pos [3]uint32, material Material) {
	t.setAtDepth(pos, material, cap)
}

// setAtDepth is the shared descent behind Set and SetWithLevelCap: depth
// is the level at which the incoming leaf is finally written, either
// LevelCount (a true leaf write) or a smaller cap (a lossy truncation).
func (t *Tree[D]) setAtDepth(pos [3]uint32, material Material, depth uint32) {
	n := BlockWords(t.dims)
	blockIdx := uint32(0)
	for level := uint32(0); level < depth; level++ {
		slot := t.childSlot(pos, level)
		wordIdx := blockIdx*n + slot
		word := t.words[wordIdx]

		if level == depth-1 {
			t.words[wordIdx] = leafWord(material)
			return
		}

		if isInternal(word) {
			blockIdx = blockIndexOf(word)
			continue
		}

		existing := materialOf(word)
		if existing == material {
			// Already uniform to the target value through this subtree;
			// nothing below needs to change.
			return
		}
		newBlock := t.allocNewBlock(existing)
		t.words[wordIdx] = internalWord(newBlock)
		blockIdx = newBlock
	}
}

// Sample builds a new tree by canonicalizing a predicate over the
// lattice: from coarsest to finest level, for each block-aligned
// position it samples the predicate once, then verifies every voxel in
// that subcube matches; if so a single leaf is emitted there and no
// finer work happens for that region. This produces a near-minimal
// representation for predicates that are piecewise-constant on
// block-aligned regions.
func Sample[D Dims](predicate func(x, y, z uint32) Material) *Tree[D] {
	var d D
	total := TotalDim(d)
	corner := predicate(0, 0, 0)
	t := New[D](corner)

	var walk func(level uint32, origin [3]uint32, side uint32)
	walk = func(level uint32, origin [3]uint32, side uint32) {
		sample := predicate(origin[0], origin[1], origin[2])
		if uniformSubcube(predicate, origin, side, sample) {
			if level == 0 {
				return // already uniform at the root fill value
			}
			t.SetWithLevelCap(level, origin, sample)
			return
		}
		// Not uniform: subdivide into BlockDim^3 children. A child of
		// side 1 is always trivially uniform and will be written by the
		// branch above on the next call, so no separate base case is
		// needed here.
		childSide := side / d.BlockDim()
		for cx := uint32(0); cx < d.BlockDim(); cx++ {
			for cy := uint32(0); cy < d.BlockDim(); cy++ {
				for cz := uint32(0); cz < d.BlockDim(); cz++ {
					childOrigin := [3]uint32{
						origin[0] + cx*childSide,
						origin[1] + cy*childSide,
						origin[2] + cz*childSide,
					}
					walk(level+1, childOrigin, childSide)
				}
			}
		}
	}

	if !uniformSubcube(predicate, [3]uint32{0, 0, 0}, total, corner) {
		walk(0, [3]uint32{0, 0, 0}, total)
	}
	return t
}

func uniformSubcube(predicate func(x, y, z uint32) Material, origin [3]uint32, side uint32, want Material) bool {
	for x := origin[0]; x < origin[0]+side; x++ {
		for y := origin[1]; y < origin[1]+side; y++ {
			for z := origin[2]; z < origin[2]+side; z++ {
				if predicate(x, y, z) != want {
					return false
				}
			}
		}
	}
	return true
}
