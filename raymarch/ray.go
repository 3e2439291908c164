// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package raymarch

import "github.com/sparsevoxel/svt/internal/coord"

// Ray is an origin/direction pair. Direction is not required to be unit
// length; t values are parametric along dir as given.
type Ray struct {
	Origin coord.Vec3
	Dir    coord.Vec3
}

// At returns the point origin + t*dir.
func (r Ray) At(t float32) coord.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// IncidentInfo describes the face and parametric distance at which a ray
// entered a visited leaf voxel.
type IncidentInfo struct {
	T    float32
	Face coord.Face3
}

// ExitInfo describes the face and parametric distance at which a ray
// left a visited leaf voxel.
type ExitInfo struct {
	T    float32
	Face coord.Face3
}

// BlockInfo describes the leaf itself: its material and its depth (0 =
// root, LevelCount-1 = finest).
type BlockInfo struct {
	Material uint32
	Level    uint32
}

// Predicate is called once per visited leaf. Returning true accepts the
// hit and stops the march; returning false continues to the next leaf.
type Predicate func(incident IncidentInfo, exit ExitInfo, block BlockInfo) bool
