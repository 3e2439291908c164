// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package shade implements the path-tracing shading loop built on top of
// raymarch.Traverse: the per-pixel RNG, material scatter models, the
// face-texture atlas, frame accumulation, and the debug color palette for
// negative traversal codes.
package shade

import "github.com/go-gl/mathgl/mgl32"

// pcgMultiplier32 and pcgIncrement32 are the PCG library's published
// default LCG constants for the 32-bit oneseq variant.
const (
	pcgMultiplier32 = 747796405
	pcgIncrement32  = 2891336453
)

// RNG is a PCG-32 (oneseq, RXS-M-XS output permutation) generator. It is
// the one RNG variant the ray tracer uses; a sin-fract hack and a
// seed-swap variant exist elsewhere in the shader corpus this is modeled
// on but are debug artifacts and are deliberately not ported.
type RNG struct {
	state uint32
}

// NewRNG seeds a generator the way pcg_oneseq's constructor does: one
// step on the raw seed, add the seed back in, step again.
func NewRNG(seed uint32) *RNG {
	r := &RNG{state: seed}
	r.step()
	r.state += seed
	r.step()
	return r
}

// SeedFromPixel mixes a pixel coordinate, frame index and time bits into
// a single PCG seed. The source shaders seed their (different) RNG
// directly from frag_coord; PCG-32 takes a scalar seed, so this performs
// the coordinate-to-scalar reduction with a standard integer avalanche
// mix (splitmix-style), not itself drawn from the source.
func SeedFromPixel(x, y, frameIndex uint32, timeBits uint32) uint32 {
	h := x*374761393 + y*668265263 + frameIndex*2246822519 + timeBits*3266489917
	h = (h ^ (h >> 15)) * 2246822519
	h = (h ^ (h >> 13)) * 3266489917
	return h ^ (h >> 16)
}

func (r *RNG) step() {
	r.state = r.state*pcgMultiplier32 + pcgIncrement32
}

func outputRXSMXS32(state uint32) uint32 {
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// Uint32 returns the next raw 32-bit output.
func (r *RNG) Uint32() uint32 {
	old := r.state
	r.step()
	return outputRXSMXS32(old)
}

// Float32 returns a uniform value in [0,1), built from the top 24 bits of
// a draw the same way the source's SRng::gen does.
func (r *RNG) Float32() float32 {
	const precision = 24
	const scale = 1.0 / float32(uint32(1)<<precision)
	value := r.Uint32() >> (32 - precision)
	return scale * float32(value)
}

// Range returns a uniform value in [min, max).
func (r *RNG) Range(min, max float32) float32 {
	return min + (max-min)*r.Float32()
}

// Vec2 returns a uniform point in [0,1)^2.
func (r *RNG) Vec2() mgl32.Vec2 {
	return mgl32.Vec2{r.Float32(), r.Float32()}
}

// InUnitSphere returns a uniform point in the unit ball via rejection
// sampling, matching the source's loop-until-inside approach exactly.
func (r *RNG) InUnitSphere() mgl32.Vec3 {
	for {
		p := mgl32.Vec3{r.Float32(), r.Float32(), r.Float32()}.Mul(2).Sub(mgl32.Vec3{1, 1, 1})
		if p.Dot(p) < 1 {
			return p
		}
	}
}

// InHemisphere returns a uniform point in the unit ball, flipped onto the
// same side as normal if necessary.
func (r *RNG) InHemisphere(normal mgl32.Vec3) mgl32.Vec3 {
	p := r.InUnitSphere()
	if p.Dot(normal) > 0 {
		return p
	}
	return p.Mul(-1)
}
