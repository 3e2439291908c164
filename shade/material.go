// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package shade

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Hit describes the surface point a scatter function reacts to: the ray
// parameter, world position, outward normal, and whether the ray that
// produced it started outside the volume (needed by Dielectric to pick
// which side of the interface it is on).
type Hit struct {
	T           float32
	Pos         mgl32.Vec3
	Normal      mgl32.Vec3
	FromOutside bool
}

// Scattered is the result of a material interaction: the attenuation to
// multiply into the path's running color, and the new ray to continue
// tracing from. A nil-equivalent (zero Dir) ray means the path was
// absorbed.
type Scattered struct {
	Attenuation mgl32.Vec3
	Origin      mgl32.Vec3
	Dir         mgl32.Vec3
}

// Material scatters an incoming ray direction off a Hit.
type Material interface {
	Scatter(rng *RNG, rayDir mgl32.Vec3, hit Hit) Scattered
}

// LambertianHemisphereFirst selects between the two scatter forms
// described for diffuse materials: a uniform hemisphere sample about the
// normal (true, the default) or normal-plus-unit-sphere (false). The
// hemisphere form is tried first per the component contract; this is a
// package-level switch rather than a per-call flag because the source
// expresses it as a compile-time constant, not a runtime parameter.
var LambertianHemisphereFirst = true

// Lambertian is a perfectly diffuse material.
type Lambertian struct {
	Albedo mgl32.Vec3
}

func (l Lambertian) Scatter(rng *RNG, _ mgl32.Vec3, hit Hit) Scattered {
	var dir mgl32.Vec3
	if LambertianHemisphereFirst {
		dir = rng.InHemisphere(hit.Normal)
	} else {
		dir = hit.Normal.Add(rng.InUnitSphere().Normalize())
	}
	dir = normalizeOrFallback(dir, hit.Normal)
	return Scattered{Attenuation: l.Albedo, Origin: hit.Pos, Dir: dir}
}

// Metal is a reflective material with an optional fuzz perturbation.
type Metal struct {
	Albedo mgl32.Vec3
	Fuzz   float32
}

func (m Metal) Scatter(rng *RNG, rayDir mgl32.Vec3, hit Hit) Scattered {
	reflected := reflect(rayDir, hit.Normal)
	dir := reflected.Add(rng.InUnitSphere().Mul(m.Fuzz))
	dir = normalizeOrFallback(dir, hit.Normal)
	return Scattered{Attenuation: m.Albedo, Origin: hit.Pos, Dir: dir}
}

// Dielectric is a refractive material (glass, water, ...), deciding
// between reflection and refraction with Schlick's approximation.
type Dielectric struct {
	RefIdx float32
}

func (d Dielectric) Scatter(rng *RNG, rayDir mgl32.Vec3, hit Hit) Scattered {
	refractionRatio := d.RefIdx
	if hit.FromOutside {
		refractionRatio = 1.0 / d.RefIdx
	}

	unitDir := rayDir
	cosTheta := min32(unitDir.Mul(-1).Dot(hit.Normal), 1.0)
	sinTheta := sqrt32(1.0 - cosTheta*cosTheta)

	cannotRefract := refractionRatio*sinTheta > 1.0

	var dir mgl32.Vec3
	if cannotRefract || rng.Float32() < schlick(cosTheta, refractionRatio) {
		dir = reflect(unitDir, hit.Normal)
	} else {
		dir = refract(unitDir, hit.Normal, refractionRatio)
	}
	dir = normalizeOrFallback(dir, hit.Normal.Mul(-1))

	return Scattered{Attenuation: mgl32.Vec3{1, 1, 1}, Origin: hit.Pos, Dir: dir}
}

func reflect(v, n mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

func refract(uv, n mgl32.Vec3, etaiOverEtat float32) mgl32.Vec3 {
	cosTheta := min32(uv.Mul(-1).Dot(n), 1.0)
	rOutPerp := uv.Add(n.Mul(cosTheta)).Mul(etaiOverEtat)
	rOutParallel := n.Mul(-sqrt32(abs32(1.0 - rOutPerp.Dot(rOutPerp))))
	return rOutParallel.Add(rOutPerp)
}

func schlick(cosine, refIdx float32) float32 {
	r0 := (1 - refIdx) / (1 + refIdx)
	r0 = r0 * r0
	return r0 + (1-r0)*pow5(1-cosine)
}

func pow5(x float32) float32 { return x * x * x * x * x }

// normalizeOrFallback normalizes v, returning fallback (itself
// normalized) when v is degenerate (the zero vector, which arises when a
// reflection or scatter direction exactly cancels the surface normal).
func normalizeOrFallback(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.Dot(v) < 1e-12 {
		return fallback.Normalize()
	}
	return v.Normalize()
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(x)))
}
