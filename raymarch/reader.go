// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package raymarch implements the stackful iterative ray march over a
// packed sparse voxel tree: the descent/ascent loop, per-voxel predicate
// callback, and the ESVO fast-path variant for BLOCK_DIM=2.
package raymarch

// StorageReader is the narrow read-only view Traverse needs over a
// tree's storage: its shape and its words. Any *svt.Tree[D] satisfies
// this structurally, so this package never imports svt.
type StorageReader interface {
	BlockDim() uint32
	LevelCount() uint32
	Word(i uint32) uint32
}

const internalBit uint32 = 1 << 31

func isInternalWord(word uint32) bool  { return word&internalBit != 0 }
func blockIndexOfWord(word uint32) uint32 { return word &^ internalBit }
func materialOfWord(word uint32) uint32   { return word &^ internalBit }
