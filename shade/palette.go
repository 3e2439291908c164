// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package shade

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"

	"github.com/sparsevoxel/svt/raymarch"
)

// debugPalette maps a negative traversal code to a loud, named color so a
// latent traversal bug is visible in the rendered frame instead of
// silently producing black or garbage. Colors come from
// golang.org/x/image/colornames, the pack's own source for named colors.
var debugPalette = map[int]mgl32.Vec3{
	raymarch.CodeBudgetExhausted: fromColor(colornames.Orange),
	raymarch.CodeDegenerateStep:  fromColor(colornames.Red),
	raymarch.CodeZeroDirection:   fromColor(colornames.Magenta),
	raymarch.CodeReserved4:       fromColor(colornames.Yellow),
	raymarch.CodeReserved5:       fromColor(colornames.Cyan),
	raymarch.CodeReserved6:       fromColor(colornames.White),
}

func fromColor(c interface{ RGBA() (r, g, b, a uint32) }) mgl32.Vec3 {
	r, g, b, _ := c.RGBA()
	return mgl32.Vec3{float32(r) / 65535, float32(g) / 65535, float32(b) / 65535}
}

// DebugColor returns the palette color for a negative traversal code, or
// black if code is not one of the recognized negative codes.
func DebugColor(code int) mgl32.Vec3 {
	if c, ok := debugPalette[code]; ok {
		return c
	}
	return mgl32.Vec3{}
}
