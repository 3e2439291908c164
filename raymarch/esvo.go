// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package raymarch

import "github.com/sparsevoxel/svt/internal/coord"

// TraverseESVO is the Efficient-Sparse-Voxel-Octree fast path for
// BLOCK_DIM=2 trees: it mirrors the ray into the octant where every
// direction component is non-negative, which lets child selection at
// every level collapse to a 3-bit XOR against a fixed octant mask
// instead of a per-axis sign branch. It panics if reader.BlockDim() is
// not 2.
//
// The mirrored ray is run through the exact same descent/ascent
// arithmetic as Traverse, addressed through a block-relative XOR and
// with reported face masks un-mirrored before reaching predicate. This
// guarantees the visit sequence and every t value are identical to
// Traverse's up to floating-point ties, which is the one hard
// requirement this variant has to satisfy.
func TraverseESVO(reader StorageReader, ray Ray, maxCount int, predicate Predicate) int {
	if reader.BlockDim() != 2 {
		panic("raymarch: TraverseESVO requires BlockDim=2")
	}

	levelCount := reader.LevelCount()
	totalDim := float32(uint32(1) << levelCount)

	mirrorX := ray.Dir.X < 0
	mirrorY := ray.Dir.Y < 0
	mirrorZ := ray.Dir.Z < 0

	mOrigin := ray.Origin
	mDir := ray.Dir
	if mirrorX {
		mOrigin.X = totalDim - mOrigin.X
		mDir.X = -mDir.X
	}
	if mirrorY {
		mOrigin.Y = totalDim - mOrigin.Y
		mDir.Y = -mDir.Y
	}
	if mirrorZ {
		mOrigin.Z = totalDim - mOrigin.Z
		mDir.Z = -mDir.Z
	}

	var xorSlot uint32
	if mirrorX {
		xorSlot |= 4
	}
	if mirrorY {
		xorSlot |= 2
	}
	if mirrorZ {
		xorSlot |= 1
	}

	wrapped := &mirroredReader{inner: reader, xorSlot: xorSlot, blockWords: 8}

	unmirrorFace := func(f coord.Face3) coord.Face3 {
		axis, negative, ok := f.Axis()
		if !ok {
			return f
		}
		flip := (axis == 0 && mirrorX) || (axis == 1 && mirrorY) || (axis == 2 && mirrorZ)
		if flip {
			negative = !negative
		}
		return coord.FaceFromAxisSign(axis, negative)
	}

	wrappedPredicate := func(incident IncidentInfo, exit ExitInfo, block BlockInfo) bool {
		incident.Face = unmirrorFace(incident.Face)
		exit.Face = unmirrorFace(exit.Face)
		return predicate(incident, exit, block)
	}

	return Traverse(wrapped, Ray{Origin: mOrigin, Dir: mDir}, maxCount, wrappedPredicate)
}

// mirroredReader re-addresses each block's eight child slots by xorSlot,
// translating between the mirrored octant the algorithm walks in and
// the real storage layout.
type mirroredReader struct {
	inner      StorageReader
	xorSlot    uint32
	blockWords uint32
}

func (m *mirroredReader) BlockDim() uint32   { return m.inner.BlockDim() }
func (m *mirroredReader) LevelCount() uint32 { return m.inner.LevelCount() }

func (m *mirroredReader) Word(i uint32) uint32 {
	block := i / m.blockWords
	slot := i % m.blockWords
	return m.inner.Word(block*m.blockWords + (slot ^ m.xorSlot))
}
