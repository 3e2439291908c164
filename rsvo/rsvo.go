// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package rsvo imports the binary sparse-voxel-octree file format used by
// authored models into an [svt.Tree]. The file is always a binary octree
// (implicit BLOCK_DIM=2); when the target tree's BlockDim is larger,
// multiple RSVO levels are consolidated into a single SVT level.
package rsvo

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	svt "github.com/sparsevoxel/svt"
	"github.com/sparsevoxel/svt/internal/bitset"
)

const headerMagicWords = 4 // words 0..3, ignored by this importer

// occupiedMaterial is the fixed tag RSVO's child-mask stream implies for
// any subtree it records: the format only ever encodes presence, so a
// recorded leaf is always "solid."
const occupiedMaterial = svt.Material(1)

// Import decodes an RSVO byte stream into a freshly allocated tree of
// shape D. The per-level node-count table in the header is required:
// the child-mask stream is split into one independently-cursored segment
// per RSVO level, and there is no way to find where one level's segment
// ends and the next begins without it.
func Import[D svt.Dims](data []byte) (*svt.Tree[D], error) {
	var d D

	if len(data) < (headerMagicWords+1)*4 {
		return nil, fmt.Errorf("%w: file too short for header", svt.ErrBadFormat)
	}
	depthLevels := binary.LittleEndian.Uint32(data[headerMagicWords*4:])

	headerWords := headerMagicWords + 1 + depthLevels
	headerBytes := int(headerWords) * 4
	if len(data) < headerBytes {
		return nil, fmt.Errorf("%w: file too short for %d per-level node counts", svt.ErrBadFormat, depthLevels)
	}

	nodeCounts := make([]uint32, depthLevels)
	base := (headerMagicWords + 1) * 4
	for i := range nodeCounts {
		nodeCounts[i] = binary.LittleEndian.Uint32(data[base+4*i:])
	}

	bitsPerSVTLevel := bits.Len32(d.BlockDim()) - 1 // log2(BlockDim); BlockDim is a power of two
	wantRSVOLevels := bitsPerSVTLevel * int(d.LevelCount())
	if int(depthLevels) != wantRSVOLevels {
		return nil, fmt.Errorf("%w: file depth %d incompatible with BlockDim=%d LevelCount=%d (want %d)",
			svt.ErrBadFormat, depthLevels, d.BlockDim(), d.LevelCount(), wantRSVOLevels)
	}

	cursors := make([]int, depthLevels)
	if depthLevels > 0 {
		cursors[0] = headerBytes
		for i := 1; i < int(depthLevels); i++ {
			cursors[i] = cursors[i-1] + int(nodeCounts[i-1])
		}
	}

	tree := svt.New[D](svt.EMPTY)
	imp := &importer[D]{
		data:            data,
		cursors:         cursors,
		bitsPerSVTLevel: bitsPerSVTLevel,
		tree:            tree,
	}
	if err := imp.walk(0, [3]uint32{0, 0, 0}); err != nil {
		return nil, err
	}
	return tree, nil
}

// Export encodes tree as an RSVO byte stream. The format only ever
// records presence, so every non-EMPTY material exports as solid and
// comes back as occupiedMaterial on re-import: round-tripping preserves
// the occupied/empty shape of a tree, not arbitrary per-voxel materials.
//
// A subtree's child mask bit is set only when that child is not
// uniformly empty; entirely empty regions are never visited and leave no
// trace in the stream at all, the mirror image of Import's "mask==0
// means uniformly solid" rule. An entirely empty tree therefore exports
// the same single zero byte as an entirely solid one — a limitation
// inherited from the format itself, harmless for authored content that
// always mixes solid and empty space.
func Export[D svt.Dims](tree *svt.Tree[D]) []byte {
	var d D
	bitsPerSVTLevel := bits.Len32(d.BlockDim()) - 1
	rsvoLevels := bitsPerSVTLevel * int(d.LevelCount())

	occupied := func(pos [3]uint32) bool { return tree.Get(pos) != svt.EMPTY }

	segments := make([][]byte, rsvoLevels)
	var visit func(level int, pos [3]uint32)
	visit = func(level int, pos [3]uint32) {
		if level == rsvoLevels {
			return
		}
		side := uint32(1) << uint32(rsvoLevels-level)
		if uniformOccupancy(occupied, pos, side, true) {
			segments[level] = append(segments[level], 0)
			return
		}

		childSide := side / 2
		var mask bitset.BitSet
		for i := uint(0); i < 8; i++ {
			cx, cy, cz := uint32(i/4), uint32((i%4)/2), uint32(i%2)
			cpos := [3]uint32{pos[0] + cx*childSide, pos[1] + cy*childSide, pos[2] + cz*childSide}
			if !uniformOccupancy(occupied, cpos, childSide, false) {
				mask.Set(i)
			}
		}
		segments[level] = append(segments[level], maskByte(mask))
		for i := uint(0); i < 8; i++ {
			if !mask.Test(i) {
				continue
			}
			cx, cy, cz := uint32(i/4), uint32((i%4)/2), uint32(i%2)
			cpos := [3]uint32{pos[0] + cx*childSide, pos[1] + cy*childSide, pos[2] + cz*childSide}
			visit(level+1, cpos)
		}
	}
	visit(0, [3]uint32{0, 0, 0})

	buf := make([]byte, headerMagicWords*4)
	word := make([]byte, 4)
	binary.LittleEndian.PutUint32(word, uint32(rsvoLevels))
	buf = append(buf, word...)
	for _, seg := range segments {
		binary.LittleEndian.PutUint32(word, uint32(len(seg)))
		buf = append(buf, word...)
	}
	for _, seg := range segments {
		buf = append(buf, seg...)
	}
	return buf
}

// maskByte packs a BitSet tracked as an RSVO child mask into the single
// byte the format stores on the wire.
func maskByte(b bitset.BitSet) byte {
	var out byte
	for i := range b.All() {
		out |= 1 << i
	}
	return out
}

func uniformOccupancy(occupied func([3]uint32) bool, pos [3]uint32, side uint32, want bool) bool {
	for x := pos[0]; x < pos[0]+side; x++ {
		for y := pos[1]; y < pos[1]+side; y++ {
			for z := pos[2]; z < pos[2]+side; z++ {
				if occupied([3]uint32{x, y, z}) != want {
					return false
				}
			}
		}
	}
	return true
}

type importer[D svt.Dims] struct {
	data            []byte
	cursors         []int // one read cursor per RSVO level, independent segments
	bitsPerSVTLevel int
	tree            *svt.Tree[D]
}

// walk mirrors the original recursive descent: reaching the octree's
// full depth, or a node whose child mask is zero, both terminate the
// subtree as a uniform occupied region.
func (imp *importer[D]) walk(rsvoLevel int, pos [3]uint32) error {
	total := len(imp.cursors)
	if rsvoLevel == total {
		imp.writeUniform(rsvoLevel, pos)
		return nil
	}

	cursor := imp.cursors[rsvoLevel]
	if cursor >= len(imp.data) {
		return fmt.Errorf("%w: child-mask stream truncated at level %d", svt.ErrBadFormat, rsvoLevel)
	}
	mask := imp.data[cursor]
	imp.cursors[rsvoLevel]++

	if mask == 0 {
		imp.writeUniform(rsvoLevel, pos)
		return nil
	}

	side := uint32(1) << uint32(total-rsvoLevel-1)
	for i := 0; i < 8; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		cx, cy, cz := uint32(i/4), uint32((i%4)/2), uint32(i%2)
		childPos := [3]uint32{pos[0] + cx*side, pos[1] + cy*side, pos[2] + cz*side}
		if err := imp.walk(rsvoLevel+1, childPos); err != nil {
			return err
		}
	}
	return nil
}

// writeUniform marks the subcube rooted at (rsvoLevel, pos) as entirely
// occupied. When rsvoLevel lands exactly on an SVT level boundary this
// is one SetWithLevelCap call; otherwise the SVT has no descriptor slot
// at that granularity and every voxel in the subcube is written
// individually.
func (imp *importer[D]) writeUniform(rsvoLevel int, pos [3]uint32) {
	total := len(imp.cursors)
	side := uint32(1) << uint32(total-rsvoLevel)

	if rsvoLevel%imp.bitsPerSVTLevel == 0 {
		svtLevel := uint32(rsvoLevel / imp.bitsPerSVTLevel)
		imp.tree.SetWithLevelCap(svtLevel, pos, occupiedMaterial)
		return
	}

	for x := pos[0]; x < pos[0]+side; x++ {
		for y := pos[1]; y < pos[1]+side; y++ {
			for z := pos[2]; z < pos[2]+side; z++ {
				imp.tree.Set([3]uint32{x, y, z}, occupiedMaterial)
			}
		}
	}
}
