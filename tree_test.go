// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package svt

import "testing"

func TestNewIsUniform(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	if tr.BlockCount() != 1 {
		t.Fatalf("BlockCount = %d, want 1", tr.BlockCount())
	}
	for x := uint32(0); x < 8; x++ {
		if got := tr.Get([3]uint32{x, 1, 1}); got != EMPTY {
			t.Errorf("Get(%d,1,1) = %v, want EMPTY", x, got)
		}
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	tr.Set([3]uint32{3, 0, 0}, 7)

	if got := tr.Get([3]uint32{3, 0, 0}); got != 7 {
		t.Errorf("Get(3,0,0) = %v, want 7", got)
	}
	// neighboring voxels remain untouched
	if got := tr.Get([3]uint32{2, 0, 0}); got != EMPTY {
		t.Errorf("Get(2,0,0) = %v, want EMPTY", got)
	}
	if got := tr.Get([3]uint32{3, 1, 0}); got != EMPTY {
		t.Errorf("Get(3,1,0) = %v, want EMPTY", got)
	}
}

func TestSetSplitsExactlyOnce(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	tr.Set([3]uint32{0, 0, 0}, 1)
	afterFirst := tr.BlockCount()

	tr.Set([3]uint32{0, 0, 0}, 1)
	if tr.BlockCount() != afterFirst {
		t.Errorf("redundant Set grew block count: %d -> %d", afterFirst, tr.BlockCount())
	}
}

// P1: round-trip point. For all (x,y,z) in range and materials m,
// set(p, m); get(p) == m.
func TestRoundTripAllPositions(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	var positions [][3]uint32
	for x := uint32(0); x < 8; x++ {
		for y := uint32(0); y < 8; y++ {
			for z := uint32(0); z < 8; z++ {
				positions = append(positions, [3]uint32{x, y, z})
			}
		}
	}
	for i, p := range positions {
		m := Material(i%251 + 1)
		tr.Set(p, m)
		if got := tr.Get(p); got != m {
			t.Fatalf("Get(%v) = %v, want %v", p, got, m)
		}
	}
}

// P2: redundant-set idempotence.
func TestRedundantSetIdempotent(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	tr.Set([3]uint32{5, 2, 1}, 42)

	before := append([]uint32(nil), tr.Words()...)
	beforeBlocks := tr.BlockCount()

	tr.Set([3]uint32{5, 2, 1}, 42)

	if tr.BlockCount() != beforeBlocks {
		t.Errorf("BlockCount changed: %d -> %d", beforeBlocks, tr.BlockCount())
	}
	after := tr.Words()
	if len(before) != len(after) {
		t.Fatalf("word count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("word %d changed: %#x -> %#x", i, before[i], after[i])
		}
	}
}

// P3: descent determinism.
func TestGetIsDeterministic(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	tr.Set([3]uint32{1, 2, 3}, 9)

	first := tr.Get([3]uint32{1, 2, 3})
	second := tr.Get([3]uint32{1, 2, 3})
	if first != second {
		t.Errorf("Get not deterministic: %v != %v", first, second)
	}
}

func TestSetWithLevelCapIsLossy(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	// split the root down to the finest level on one branch
	tr.Set([3]uint32{0, 0, 0}, 3)
	tr.Set([3]uint32{1, 0, 0}, 4)

	// now cap-write at level 1 over the (0,0,0) octant, collapsing
	// whatever was below it
	tr.SetWithLevelCap(1, [3]uint32{0, 0, 0}, 9)

	for x := uint32(0); x < 2; x++ {
		for y := uint32(0); y < 2; y++ {
			for z := uint32(0); z < 2; z++ {
				if got := tr.Get([3]uint32{x, y, z}); got != 9 {
					t.Errorf("Get(%d,%d,%d) = %v, want 9 after level-cap overwrite", x, y, z, got)
				}
			}
		}
	}
}

func TestTotalDim(t *testing.T) {
	t.Parallel()

	if got := TotalDim(Dims2x3{}); got != 8 {
		t.Errorf("TotalDim(Dims2x3) = %d, want 8", got)
	}
	if got := TotalDim(Dims2x12{}); got != 4096 {
		t.Errorf("TotalDim(Dims2x12) = %d, want 4096", got)
	}
	if got := TotalDim(Dims4x7{}); got != 16384 {
		t.Errorf("TotalDim(Dims4x7) = %d, want 16384", got)
	}
}
