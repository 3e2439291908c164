// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package raymarch

import "github.com/sparsevoxel/svt/internal/coord"

// Traverse walks leaf cells along ray in strict parametric-t order,
// calling predicate once per visited leaf. It returns the non-negative
// count of leaves visited when predicate accepts or the ray exits the
// volume, or one of the negative Code* constants.
func Traverse(reader StorageReader, ray Ray, maxCount int, predicate Predicate) int {
	dir := ray.Dir
	if dir.X == 0 && dir.Y == 0 && dir.Z == 0 {
		return CodeZeroDirection
	}

	blockDim := reader.BlockDim()
	levelCount := reader.LevelCount()
	blockWords := blockDim * blockDim * blockDim
	totalDim := uint32(1)
	for i := uint32(0); i < levelCount; i++ {
		totalDim *= blockDim
	}

	dirInv := coord.Vec3{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z}
	posDivDir := ray.Origin.Div(dir)

	// nonNeg selects, per axis, the far face of the current slab in the
	// direction of travel. A direction of exactly zero is treated as
	// non-negative: using signum's {-1,+1} convention here (as the
	// source this is ported from does) collapses to 0.5 for an
	// axis-aligned ray and silently breaks the slab walk on that axis.
	nonNeg := coord.Vec3{X: nonNegative(dir.X), Y: nonNegative(dir.Y), Z: nonNegative(dir.Z)}

	// stepSign only ever multiplies a zero/one exit indicator, so unlike
	// nonNeg its behavior at exactly zero is inconsequential; +1 here
	// matches the convention of the algorithm this is ported from.
	stepSign := coord.Vec3{X: stepSignOf(dir.X), Y: stepSignOf(dir.Y), Z: stepSignOf(dir.Z)}

	volMin := coord.Vec3{}
	volMax := coord.Vec3{X: float32(totalDim), Y: float32(totalDim), Z: float32(totalDim)}

	var mask coord.Vec3
	var position coord.Vec3
	t := float32(0)

	if insideVolume(ray.Origin, volMax) {
		mask = coord.Vec3{}
		position = ray.Origin
	} else {
		hit, hitT, _, normal := coord.IntersectAABB(ray.Origin, dir, volMin, volMax)
		if !hit {
			return 0
		}
		mask = normal
		t = hitT
		// Nudge half a unit back inside the volume along the entry
		// normal so the subsequent integer floor deterministically
		// lands in the first voxel, not the one just outside it.
		position = ray.At(hitT).Sub(normal.Scale(0.5))
	}

	count := 0
	blockIndexStack := make([]uint32, levelCount)
	blockLimitStack := make([]float32, levelCount)

	level := uint32(0)
	parentIndex := uint32(0) // block 0 (root) starts at word 0
	levelDimDiv := totalDim / blockDim

	blockLimitV := nonNeg.Scale(float32(totalDim))
	parentBlockLimit := minElement(blockLimitV.Mul(dirInv).Sub(posDivDir))

	recompute := func() (coord.Vec3, coord.UVec3) {
		div := float32(levelDimDiv)
		floorPos := coord.Vec3{X: floor32(position.X / div), Y: floor32(position.Y / div), Z: floor32(position.Z / div)}
		blv := floorPos.Add(nonNeg).Scale(div)

		trunc := coord.FloorToUVec3(position)
		lp := coord.UVec3{
			X: (trunc.X / levelDimDiv) % blockDim,
			Y: (trunc.Y / levelDimDiv) % blockDim,
			Z: (trunc.Z / levelDimDiv) % blockDim,
		}
		return blv, lp
	}

	blockLimitV, levelPosition := recompute()

	for {
		slot := levelPosition.X*blockDim*blockDim + levelPosition.Y*blockDim + levelPosition.Z
		word := reader.Word(parentIndex + slot)
		ts := blockLimitV.Mul(dirInv).Sub(posDivDir)
		tsMin := minElement(ts)

		if isInternalWord(word) {
			blockIndexStack[level] = parentIndex
			blockLimitStack[level] = parentBlockLimit
			level++
			parentIndex = blockIndexOfWord(word) * blockWords
			levelDimDiv /= blockDim
			parentBlockLimit = tsMin
			blockLimitV, levelPosition = recompute()
			continue
		}

		incidentT := t
		incidentFace := faceFromVec(mask)

		t = tsMin
		exitVec := stepIndicator(ts, t).Mul(stepSign)
		if exitVec == (coord.Vec3{}) {
			return CodeDegenerateStep
		}
		mask = exitVec

		accept := predicate(
			IncidentInfo{T: incidentT, Face: incidentFace},
			ExitInfo{T: t, Face: faceFromVec(mask)},
			BlockInfo{Material: materialOfWord(word), Level: level},
		)
		if accept {
			return count
		}

		positionNew := ray.At(t).Add(mask.Scale(0.5))
		position = componentwiseAdvance(position, positionNew, dir)

		count++
		if count > maxCount {
			return CodeBudgetExhausted
		}

		if t >= parentBlockLimit {
			for {
				if level == 0 {
					return count
				}
				count++ // matches the ESVO paper's accounting for ascents
				level--
				parentBlockLimit = blockLimitStack[level]
				parentIndex = blockIndexStack[level]
				levelDimDiv *= blockDim
				if t < parentBlockLimit {
					break
				}
			}
			blockLimitV, levelPosition = recompute()
			continue
		}

		levelPosition = steppedLevelPosition(levelPosition, mask)
		blockLimitV = blockLimitV.Add(mask.Scale(float32(levelDimDiv)))
	}
}

func insideVolume(p, volMax coord.Vec3) bool {
	return p.X >= 0 && p.X <= volMax.X &&
		p.Y >= 0 && p.Y <= volMax.Y &&
		p.Z >= 0 && p.Z <= volMax.Z
}

func nonNegative(d float32) float32 {
	if d < 0 {
		return 0
	}
	return 1
}

func stepSignOf(d float32) float32 {
	if d < 0 {
		return -1
	}
	return 1
}

func minElement(v coord.Vec3) float32 {
	return v.MinElement()
}

func floor32(x float32) float32 {
	i := float32(int64(x))
	if i > x {
		i--
	}
	return i
}

// stepIndicator returns, per axis, 1.0 where ts reached its minimum
// (== t) and 0.0 elsewhere, identifying which face(s) the ray just
// crossed. Ties (a ray crossing an edge or corner exactly) legitimately
// set more than one axis.
func stepIndicator(ts coord.Vec3, t float32) coord.Vec3 {
	var out coord.Vec3
	if ts.X <= t {
		out.X = 1
	}
	if ts.Y <= t {
		out.Y = 1
	}
	if ts.Z <= t {
		out.Z = 1
	}
	return out
}

// componentwiseAdvance reconciles the nudged exit position with the
// ray's direction of travel per axis: forward-moving axes take the max
// of the two candidates, backward-moving axes take the min. This is the
// max/min reconciliation the step equation requires; epsilon nudges and
// re-clamping both reintroduce infinite loops on axis-aligned rays.
func componentwiseAdvance(old, candidate, dir coord.Vec3) coord.Vec3 {
	var out coord.Vec3
	if dir.X >= 0 {
		out.X = max(old.X, candidate.X)
	} else {
		out.X = min(old.X, candidate.X)
	}
	if dir.Y >= 0 {
		out.Y = max(old.Y, candidate.Y)
	} else {
		out.Y = min(old.Y, candidate.Y)
	}
	if dir.Z >= 0 {
		out.Z = max(old.Z, candidate.Z)
	} else {
		out.Z = min(old.Z, candidate.Z)
	}
	return out
}

func steppedLevelPosition(p coord.UVec3, mask coord.Vec3) coord.UVec3 {
	step := func(v uint32, m float32) uint32 {
		switch {
		case m > 0:
			return v + 1
		case m < 0:
			return v - 1
		default:
			return v
		}
	}
	return coord.UVec3{
		X: step(p.X, mask.X),
		Y: step(p.Y, mask.Y),
		Z: step(p.Z, mask.Z),
	}
}

func faceFromVec(v coord.Vec3) coord.Face3 {
	switch {
	case v.X < 0:
		return coord.FaceFromAxisSign(0, true)
	case v.X > 0:
		return coord.FaceFromAxisSign(0, false)
	case v.Y < 0:
		return coord.FaceFromAxisSign(1, true)
	case v.Y > 0:
		return coord.FaceFromAxisSign(1, false)
	case v.Z < 0:
		return coord.FaceFromAxisSign(2, true)
	case v.Z > 0:
		return coord.FaceFromAxisSign(2, false)
	default:
		return 0
	}
}
