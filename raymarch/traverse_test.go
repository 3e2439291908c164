// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package raymarch

import (
	"testing"

	svt "github.com/sparsevoxel/svt"
	"github.com/sparsevoxel/svt/internal/coord"
)

func vec(x, y, z float32) coord.Vec3 { return coord.Vec3{X: x, Y: y, Z: z} }

// acceptNonEmpty is the predicate most tests drive Traverse with: stop at
// the first leaf whose material is not EMPTY.
func acceptNonEmpty(_ IncidentInfo, _ ExitInfo, block BlockInfo) bool {
	return block.Material != uint32(svt.EMPTY)
}

// countAll never accepts, so Traverse runs to completion (ray leaves the
// volume) and the return value is the total number of leaves visited.
func countAll(_ IncidentInfo, _ ExitInfo, _ BlockInfo) bool { return false }

// P4: every call returns within maxCount+O(LevelCount) visits; a ray that
// never hits anything over a tree with no occupied voxels terminates
// instead of looping forever.
func TestTraverseTerminatesOnEmptyVolume(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	ray := Ray{Origin: vec(-1, 0.5, 0.5), Dir: vec(1, 0, 0)}

	got := Traverse(tr, ray, 1000, countAll)
	if got < 0 {
		t.Fatalf("Traverse returned error code %d", got)
	}
}

// P5: t_in is non-decreasing across the sequence of accepted/rejected
// leaves: each visited leaf's incident T must be >= the previous one's.
func TestTraverseVisitsInFrontToBackOrder(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	tr.Set([3]uint32{1, 0, 0}, 1)
	tr.Set([3]uint32{3, 0, 0}, 2)
	tr.Set([3]uint32{5, 0, 0}, 3)
	tr.Set([3]uint32{7, 0, 0}, 4)

	ray := Ray{Origin: vec(-1, 0.5, 0.5), Dir: vec(1, 0, 0)}

	var lastT float32 = -1
	visits := 0
	Traverse(tr, ray, 1000, func(incident IncidentInfo, _ ExitInfo, _ BlockInfo) bool {
		visits++
		if incident.T < lastT {
			t.Fatalf("incident.T went backwards: %v then %v", lastT, incident.T)
		}
		lastT = incident.T
		return false
	})
	if visits == 0 {
		t.Fatal("expected at least one visit")
	}
}

// P6: a ray that misses the volume's AABB entirely returns 0 without
// invoking predicate.
func TestTraverseMissReturnsZero(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	ray := Ray{Origin: vec(-1, -1, -1), Dir: vec(0, 0, 1)}

	called := false
	got := Traverse(tr, ray, 1000, func(_ IncidentInfo, _ ExitInfo, _ BlockInfo) bool {
		called = true
		return true
	})
	if got != 0 {
		t.Errorf("Traverse = %d, want 0", got)
	}
	if called {
		t.Error("predicate invoked on a ray that misses the volume")
	}
}

// P7: a ray through a tree collapsed to a single uniform leaf at the root
// visits that one leaf and nothing else.
func TestTraverseUniformVolumeSingleVisit(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	tr.SetWithLevelCap(0, [3]uint32{0, 0, 0}, 5)

	ray := Ray{Origin: vec(-1, 4, 4), Dir: vec(1, 0, 0)}

	visits := 0
	Traverse(tr, ray, 1000, func(_ IncidentInfo, _ ExitInfo, block BlockInfo) bool {
		visits++
		if block.Material != 5 {
			t.Errorf("visited material = %d, want 5", block.Material)
		}
		return false
	})
	if visits != 1 {
		t.Errorf("visits = %d, want 1", visits)
	}
}

// Scenario 2: a single occupied voxel on an axis-aligned ray, entered from
// outside the volume along -X.
func TestTraverseScenarioSingleVoxelOnAxis(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	tr.Set([3]uint32{3, 0, 0}, 7)

	ray := Ray{Origin: vec(-1, 0.5, 0.5), Dir: vec(1, 0, 0)}

	var hitIncident IncidentInfo
	var hitBlock BlockInfo
	hit := false
	Traverse(tr, ray, 1000, func(incident IncidentInfo, _ ExitInfo, block BlockInfo) bool {
		if block.Material == 7 {
			hitIncident = incident
			hitBlock = block
			hit = true
			return true
		}
		return false
	})

	if !hit {
		t.Fatal("never visited the occupied voxel")
	}
	if hitBlock.Material != 7 {
		t.Errorf("material = %d, want 7", hitBlock.Material)
	}
	if hitIncident.T < 3.99 || hitIncident.T > 4.01 {
		t.Errorf("incident.T = %v, want ~4", hitIncident.T)
	}
	axis, negative, ok := hitIncident.Face.Axis()
	if !ok || axis != 0 || !negative {
		t.Errorf("incident face = %v, want -X", hitIncident.Face)
	}
}

// Scenario 3: a diagonal ray through an empty volume crosses every slab
// boundary it passes along the way; the visit count must match stepping
// through a 3D DDA by hand.
func TestTraverseScenarioDiagonalRayCellCount(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	tr.Set([3]uint32{7, 7, 7}, 1)
	ray := Ray{Origin: vec(0.5, 0.5, 0.5), Dir: vec(1, 1, 1)}

	var hitSeen bool
	var hitMaterial uint32
	got := Traverse(tr, ray, 1000, func(_ IncidentInfo, _ ExitInfo, block BlockInfo) bool {
		if block.Material != 0 {
			hitSeen = true
			hitMaterial = block.Material
			return true
		}
		return false
	})
	if got != 22 {
		t.Fatalf("Traverse returned %d, want exactly 22 cells visited", got)
	}
	if !hitSeen {
		t.Fatal("diagonal ray did not report the hit at (7,7,7)")
	}
	if hitMaterial != 1 {
		t.Errorf("hit material = %d, want 1", hitMaterial)
	}
}

// Scenario 4: a ray grazing exactly along a face of the volume's AABB
// reports a miss, matching IntersectAABB's grazing policy.
func TestTraverseScenarioGrazingRayMisses(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	ray := Ray{Origin: vec(-1, 0, 4), Dir: vec(1, 0, 0)}

	called := false
	got := Traverse(tr, ray, 1000, func(_ IncidentInfo, _ ExitInfo, _ BlockInfo) bool {
		called = true
		return true
	})
	if got != 0 {
		t.Errorf("Traverse = %d, want 0", got)
	}
	if called {
		t.Error("predicate invoked on a grazing ray")
	}
}

// Scenario 5: a ray whose origin starts inside the volume walks through
// empty leaves before reaching an occupied one further along.
func TestTraverseScenarioOriginInsideVolume(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	tr.Set([3]uint32{3, 0, 0}, 9)

	ray := Ray{Origin: vec(0.5, 0.5, 0.5), Dir: vec(1, 0, 0)}

	emptyVisits := 0
	var stoneIncidentT float32 = -1
	Traverse(tr, ray, 1000, func(incident IncidentInfo, _ ExitInfo, block BlockInfo) bool {
		if block.Material == uint32(svt.EMPTY) {
			emptyVisits++
			return false
		}
		stoneIncidentT = incident.T
		return true
	})

	if emptyVisits == 0 {
		t.Error("expected at least one empty leaf before the hit")
	}
	if stoneIncidentT < 2.0 || stoneIncidentT > 3.0 {
		t.Errorf("stone incident.T = %v, want ~2.5", stoneIncidentT)
	}
}

// A zero direction vector is rejected outright rather than looping.
func TestTraverseZeroDirection(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	ray := Ray{Origin: vec(0, 0, 0), Dir: vec(0, 0, 0)}

	got := Traverse(tr, ray, 1000, acceptNonEmpty)
	if got != CodeZeroDirection {
		t.Errorf("Traverse = %d, want CodeZeroDirection", got)
	}
}

// A budget too small to reach any occupied voxel reports exhaustion
// rather than returning a false negative silently.
func TestTraverseBudgetExhausted(t *testing.T) {
	t.Parallel()

	tr := svt.New[svt.Dims2x3](svt.EMPTY)
	tr.Set([3]uint32{7, 7, 7}, 1)

	ray := Ray{Origin: vec(-1, 0.5, 0.5), Dir: vec(1, 1, 1)}

	got := Traverse(tr, ray, 0, acceptNonEmpty)
	if got != CodeBudgetExhausted {
		t.Errorf("Traverse = %d, want CodeBudgetExhausted", got)
	}
}
