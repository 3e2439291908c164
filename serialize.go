// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package svt

import (
	"encoding/binary"
	"fmt"
)

// Bytes encodes the tree as a flat little-endian byte buffer: word 0
// begins block 0 (the root) and block k occupies words
// [k*BlockWords, (k+1)*BlockWords). There is no header and no padding,
// matching the layout a GPU storage buffer expects verbatim.
func (t *Tree[D]) Bytes() []byte {
	buf := make([]byte, 4*len(t.words))
	for i, w := range t.words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// FromBytes decodes a buffer produced by Bytes into a new tree of the
// same shape. The buffer length must be a non-zero multiple of
// 4*BlockWords(D); otherwise FromBytes returns ErrBadFormat.
func FromBytes[D Dims](buf []byte) (*Tree[D], error) {
	var d D
	wordBytes := 4 * int(BlockWords(d))
	if len(buf) == 0 || len(buf)%wordBytes != 0 {
		return nil, fmt.Errorf("%w: buffer length %d is not a multiple of %d bytes", ErrBadFormat, len(buf), wordBytes)
	}

	n := len(buf) / 4
	words := make([]uint32, n)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}

	return &Tree[D]{dims: d, words: words, blocks: n / int(BlockWords(d))}, nil
}
