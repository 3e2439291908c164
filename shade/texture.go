// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package shade

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sparsevoxel/svt/internal/coord"
	svt "github.com/sparsevoxel/svt"
)

// AtlasTexelSide is the fixed per-material face-texture resolution.
const AtlasTexelSide = 16

// Atlas is a face-texture atlas keyed by material: one 16x16 image per
// material id, sampled nearest-neighbor. image.NRGBA is the stdlib type;
// no third-party image library is pulled in for this since the pack's
// only image-adjacent dependency (golang.org/x/image) is reserved here
// for the debug color palette (see palette.go), and the atlas itself is
// plain fixed-size pixel storage with no format-decoding need.
type Atlas struct {
	textures map[svt.Material]*image.NRGBA
}

// NewAtlas builds an empty atlas; use Set to populate per-material
// textures before rendering.
func NewAtlas() *Atlas {
	return &Atlas{textures: make(map[svt.Material]*image.NRGBA)}
}

// Set installs a solid-color 16x16 texture for material. Real content
// (painted textures) can be assigned directly to the returned image.
func (a *Atlas) Set(material svt.Material, base color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, AtlasTexelSide, AtlasTexelSide))
	for y := 0; y < AtlasTexelSide; y++ {
		for x := 0; x < AtlasTexelSide; x++ {
			img.SetNRGBA(x, y, base)
		}
	}
	a.textures[material] = img
	return img
}

// Sample looks up the nearest texel for material at uv in [0,1)^2. An
// unregistered material samples as opaque magenta, a loud placeholder
// rather than a silent black.
func (a *Atlas) Sample(material svt.Material, u, v float32) mgl32.Vec3 {
	img, ok := a.textures[material]
	if !ok {
		return mgl32.Vec3{1, 0, 1}
	}
	tx := int(u * AtlasTexelSide)
	ty := int(v * AtlasTexelSide)
	tx = clampInt(tx, 0, AtlasTexelSide-1)
	ty = clampInt(ty, 0, AtlasTexelSide-1)
	c := img.NRGBAAt(tx, ty)
	return mgl32.Vec3{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FaceUV derives the UV coordinate for a hit on face at world position
// pos: the two axes orthogonal to the face normal, taken from the
// fractional part of the hit point, in the fixed order (the two
// remaining axes in ascending index order).
func FaceUV(face coord.Face3, pos mgl32.Vec3) (u, v float32) {
	axis, _, ok := face.Axis()
	if !ok {
		return 0, 0
	}
	var a, b float32
	switch axis {
	case 0:
		a, b = pos.Y(), pos.Z()
	case 1:
		a, b = pos.X(), pos.Z()
	default:
		a, b = pos.X(), pos.Y()
	}
	return frac32(a), frac32(b)
}

func frac32(x float32) float32 {
	f := x - float32(int64(x))
	if f < 0 {
		f++
	}
	return f
}
