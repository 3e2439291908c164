// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package shade

import "github.com/go-gl/mathgl/mgl32"

// Camera is the std140-compatible uniform block the GPU kernel this is
// modeled on receives per frame. Field order and the explicit padding
// match the wire layout in External Interfaces exactly, so the same
// struct could be marshaled into a uniform buffer without rearranging.
type Camera struct {
	Pos        mgl32.Vec3
	Look       mgl32.Vec3
	H          mgl32.Vec3
	V          mgl32.Vec3
	_Pad       [2]uint32
	Time       float32
	FrameIndex uint32
}

// PrimaryRay synthesizes the ray for normalized device coordinates
// frag in [-1,1]^2, exactly as External Interfaces specifies:
// pos = camera_pos, dir = camera_look + frag.x*camera_h + frag.y*camera_v.
func (c Camera) PrimaryRay(fragX, fragY float32) (origin, dir mgl32.Vec3) {
	dir = c.Look.Add(c.H.Mul(fragX)).Add(c.V.Mul(fragY))
	return c.Pos, dir
}

// ViewTarget is the companion uniform describing the render target's
// pixel dimensions.
type ViewTarget struct {
	Size [2]uint32
}

// PixelNDC maps a pixel coordinate (and the target size) to the
// normalized device coordinates PrimaryRay expects, with y flipped so
// image row 0 is the top of frame.
func PixelNDC(x, y int, target ViewTarget) (fragX, fragY float32) {
	w, h := float32(target.Size[0]), float32(target.Size[1])
	fragX = (float32(x)+0.5)/w*2 - 1
	fragY = 1 - (float32(y)+0.5)/h*2
	return fragX, fragY
}
