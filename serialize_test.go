// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package svt

import "testing"

// P10: serialization round-trip.
func TestBytesFromBytesRoundTrip(t *testing.T) {
	t.Parallel()

	tr := New[Dims2x3](EMPTY)
	tr.Set([3]uint32{3, 0, 0}, 7)
	tr.Set([3]uint32{7, 7, 7}, 1)

	buf := tr.Bytes()
	got, err := FromBytes[Dims2x3](buf)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	if got.BlockCount() != tr.BlockCount() {
		t.Errorf("BlockCount = %d, want %d", got.BlockCount(), tr.BlockCount())
	}
	for x := uint32(0); x < 8; x++ {
		for y := uint32(0); y < 8; y++ {
			for z := uint32(0); z < 8; z++ {
				p := [3]uint32{x, y, z}
				if g, w := got.Get(p), tr.Get(p); g != w {
					t.Fatalf("Get(%v) = %v, want %v", p, g, w)
				}
			}
		}
	}
}

func TestFromBytesRejectsBadLength(t *testing.T) {
	t.Parallel()

	_, err := FromBytes[Dims2x3]([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for truncated buffer")
	}
}
