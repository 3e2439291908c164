// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package coord

// IntersectAABB intersects the ray (origin, dir) with the axis-aligned box
// [boxMin, boxMax] using the slab method, testing axes in the order X, Y, Z
// so that ties on coincident slabs resolve to the first axis tested.
//
// A "grazing" hit, where the computed exit parameter does not strictly
// exceed the entry parameter, is reported as a miss: tmax <= tmin returns
// hit=false.
//
// When the origin is inside the box, t and normal describe the exit point
// (fromOutside=false); otherwise they describe the entry point
// (fromOutside=true).
func IntersectAABB(origin, dir, boxMin, boxMax Vec3) (hit bool, t float32, fromOutside bool, normal Vec3) {
	tMin := float32(0)
	tMax := float32(1e30)
	var enterAxis, exitAxis int
	var enterNeg, exitNeg bool
	haveEnter, haveExit := false, false

	for axis := 0; axis < 3; axis++ {
		d := dir.Get(axis)
		o := origin.Get(axis)
		lo := boxMin.Get(axis)
		hi := boxMax.Get(axis)

		if d == 0 {
			// A ray parallel to this slab only counts as inside when it is
			// strictly between the two faces: sitting exactly on a face
			// (o == lo or o == hi) is the "grazing along a face" case and
			// must miss, matching the tmax<=tmin grazing policy below.
			if o <= lo || o >= hi {
				return false, 0, false, Vec3{}
			}
			continue
		}

		inv := 1 / d
		t0 := (lo - o) * inv
		t1 := (hi - o) * inv
		neg0, neg1 := true, false
		if t0 > t1 {
			t0, t1 = t1, t0
			neg0, neg1 = false, true
		}

		if t0 > tMin {
			tMin = t0
			enterAxis, enterNeg = axis, neg0
			haveEnter = true
		}
		if t1 < tMax {
			tMax = t1
			exitAxis, exitNeg = axis, neg1
			haveExit = true
		}
	}

	if tMax <= tMin {
		return false, 0, false, Vec3{}
	}

	if haveEnter && tMin > 0 {
		return true, tMin, true, FaceFromAxisSign(enterAxis, enterNeg).Normal()
	}
	if haveExit {
		return true, tMax, false, FaceFromAxisSign(exitAxis, exitNeg).Normal()
	}
	return false, 0, false, Vec3{}
}
