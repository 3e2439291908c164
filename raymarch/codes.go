// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package raymarch

// Traverse returns a non-negative leaf-visit count on normal termination,
// or one of these negative status codes.
const (
	// CodeBudgetExhausted means the iteration cap was reached before the
	// predicate accepted or the ray left the volume.
	CodeBudgetExhausted = -1

	// CodeDegenerateStep means the exit-face mask computed for a step
	// was zero: floating-point instability produced a step that crosses
	// no face. This should be unreachable for a well-formed ray.
	CodeDegenerateStep = -2

	// CodeZeroDirection means the ray's direction vector was exactly
	// (0,0,0).
	CodeZeroDirection = -3

	// CodeReserved4, CodeReserved5, CodeReserved6 are reserved for
	// future constraint violations and are never returned today.
	CodeReserved4 = -4
	CodeReserved5 = -5
	CodeReserved6 = -6
)
