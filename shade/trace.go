// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package shade

import (
	"github.com/go-gl/mathgl/mgl32"

	svt "github.com/sparsevoxel/svt"
	"github.com/sparsevoxel/svt/internal/coord"
	"github.com/sparsevoxel/svt/raymarch"
)

// RenderMode selects between the production path tracer and the two
// debug visualizations.
type RenderMode int

const (
	RayTracing RenderMode = iota
	IterationCount
	DotN
)

// MaxRayDepth bounds the number of bounces a single primary ray
// accumulates before the path is terminated and treated as absorbed.
const MaxRayDepth = 8

// MaxHeatIteration normalizes IterationCount mode's greyscale output.
const MaxHeatIteration = 64

// MaxTraverseBudget bounds a single Traverse call's leaf-visit count.
const MaxTraverseBudget = 100_000

// SelfIntersectEpsilon nudges a scattered ray's origin forward along its
// new direction to avoid immediately re-hitting the surface it left
// ("shadow acne").
const SelfIntersectEpsilon = 1e-3

// Scene bundles everything TraceRay needs beyond the ray itself: the
// storage to traverse, the per-material scatter model and debug color
// table, and the face-texture atlas.
type Scene struct {
	Storage   raymarch.StorageReader
	Materials map[svt.Material]Material
	DebugHue  map[svt.Material]mgl32.Vec3
	Atlas     *Atlas
}

var skyTop = mgl32.Vec3{0.5, 0.7, 1.0}
var skyBottom = mgl32.Vec3{1, 1, 1}

func skyColor(dir mgl32.Vec3) mgl32.Vec3 {
	d := dir.Normalize()
	t := 0.5 * (d.Y() + 1)
	return skyBottom.Mul(1 - t).Add(skyTop.Mul(t))
}

// TraceRay shoots one primary ray through scene and returns its shaded
// color for mode. RayTracing mode bounces up to MaxRayDepth times,
// accumulating attenuation; the debug modes report on the first hit only.
func TraceRay(scene Scene, origin, dir mgl32.Vec3, rng *RNG, mode RenderMode) mgl32.Vec3 {
	switch mode {
	case IterationCount:
		return traceIterationCount(scene, origin, dir)
	case DotN:
		return traceDotN(scene, origin, dir)
	default:
		return traceRayTracing(scene, origin, dir, rng)
	}
}

func traceIterationCount(scene Scene, origin, dir mgl32.Vec3) mgl32.Vec3 {
	count := raymarch.Traverse(scene.Storage, toRay(origin, dir), MaxTraverseBudget,
		func(_ raymarch.IncidentInfo, _ raymarch.ExitInfo, block raymarch.BlockInfo) bool {
			return block.Material != uint32(svt.EMPTY)
		})
	if count < 0 {
		return DebugColor(count)
	}
	heat := float32(count) / MaxHeatIteration
	if heat > 1 {
		heat = 1
	}
	return mgl32.Vec3{heat, heat, heat}
}

func traceDotN(scene Scene, origin, dir mgl32.Vec3) mgl32.Vec3 {
	var materialColor mgl32.Vec3
	var normal mgl32.Vec3
	hit := false
	count := raymarch.Traverse(scene.Storage, toRay(origin, dir), MaxTraverseBudget,
		func(incident raymarch.IncidentInfo, _ raymarch.ExitInfo, block raymarch.BlockInfo) bool {
			if block.Material == uint32(svt.EMPTY) {
				return false
			}
			hit = true
			materialColor = scene.DebugHue[svt.Material(block.Material)]
			normal = hitNormal(incident)
			return true
		})
	if count < 0 {
		return DebugColor(count)
	}
	if !hit {
		return skyColor(dir)
	}
	light := mgl32.Vec3{0.4, 0.75, 1.0}
	return materialColor.Mul(absf(normal.Dot(light)))
}

func traceRayTracing(scene Scene, origin, dir mgl32.Vec3, rng *RNG) mgl32.Vec3 {
	attenuation := mgl32.Vec3{1, 1, 1}
	curOrigin, curDir := origin, dir

	for depth := 0; depth < MaxRayDepth; depth++ {
		var (
			hit         bool
			hitPos      mgl32.Vec3
			hitNorm     mgl32.Vec3
			hitMaterial svt.Material
			fromOutside bool
			hitT        float32
			incidentUV  coord.Face3
		)

		count := raymarch.Traverse(scene.Storage, toRay(curOrigin, curDir), MaxTraverseBudget,
			func(incident raymarch.IncidentInfo, _ raymarch.ExitInfo, block raymarch.BlockInfo) bool {
				if block.Material == uint32(svt.EMPTY) {
					return false
				}
				hit = true
				hitT = incident.T
				hitPos = curOrigin.Add(curDir.Mul(incident.T))
				hitNorm = hitNormal(incident)
				hitMaterial = svt.Material(block.Material)
				fromOutside = true
				incidentUV = incident.Face
				return true
			})

		if count < 0 {
			return attenuation.Mul3(DebugColor(count))
		}
		if !hit {
			return attenuation.Mul3(skyColor(curDir))
		}

		mat, ok := scene.Materials[hitMaterial]
		if !ok {
			// Materials with no registered scatter model behave as a
			// flat-colored Lambertian using the atlas texture alone.
			u, v := FaceUV(incidentUV, hitPos)
			tex := scene.Atlas.Sample(hitMaterial, u, v)
			return attenuation.Mul3(tex)
		}

		scattered := mat.Scatter(rng, curDir, Hit{
			T:           hitT,
			Pos:         hitPos,
			Normal:      hitNorm,
			FromOutside: fromOutside,
		})
		attenuation = attenuation.Mul3(scattered.Attenuation)
		curOrigin = scattered.Origin.Add(scattered.Dir.Mul(SelfIntersectEpsilon))
		curDir = scattered.Dir
	}
	return mgl32.Vec3{}
}

// hitNormal recovers the outward surface normal from the incident face
// mask: the mask itself records the direction of travel that produced
// the step into this leaf, so the surface normal is its negation.
func hitNormal(incident raymarch.IncidentInfo) mgl32.Vec3 {
	n := incident.Face.Normal()
	return mgl32.Vec3{-n.X, -n.Y, -n.Z}
}

func toRay(origin, dir mgl32.Vec3) raymarch.Ray {
	return raymarch.Ray{
		Origin: coord.Vec3{X: origin.X(), Y: origin.Y(), Z: origin.Z()},
		Dir:    coord.Vec3{X: dir.X(), Y: dir.Y(), Z: dir.Z()},
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Accumulate blends the current frame's color into prev using the
// running-average weighting the accumulation model specifies:
// (frame_index*prev + current) / (frame_index + 1).
func Accumulate(prev, current mgl32.Vec3, frameIndex uint32) mgl32.Vec3 {
	n := float32(frameIndex)
	return prev.Mul(n).Add(current).Mul(1 / (n + 1))
}
