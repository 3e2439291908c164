// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package shade

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLambertianScatterStaysOnNormalSide(t *testing.T) {
	t.Parallel()

	rng := NewRNG(1)
	normal := mgl32.Vec3{0, 1, 0}
	l := Lambertian{Albedo: mgl32.Vec3{0.5, 0.5, 0.5}}

	for i := 0; i < 200; i++ {
		out := l.Scatter(rng, mgl32.Vec3{0, -1, 0}, Hit{Normal: normal})
		if out.Dir.Dot(normal) < -1e-4 {
			t.Fatalf("scattered dir %v points into the surface (dot=%v)", out.Dir, out.Dir.Dot(normal))
		}
	}
}

func TestMetalReflectsAboutNormalWithZeroFuzz(t *testing.T) {
	t.Parallel()

	rng := NewRNG(2)
	normal := mgl32.Vec3{0, 1, 0}
	m := Metal{Albedo: mgl32.Vec3{1, 1, 1}, Fuzz: 0}

	incoming := mgl32.Vec3{1, -1, 0}.Normalize()
	out := m.Scatter(rng, incoming, Hit{Normal: normal})

	want := reflect(incoming, normal)
	if out.Dir.Sub(want).Len() > 1e-4 {
		t.Errorf("reflected dir = %v, want %v", out.Dir, want)
	}
}

func TestDielectricAttenuationIsUnity(t *testing.T) {
	t.Parallel()

	rng := NewRNG(3)
	d := Dielectric{RefIdx: 1.5}
	out := d.Scatter(rng, mgl32.Vec3{0, -1, 0}, Hit{Normal: mgl32.Vec3{0, 1, 0}, FromOutside: true})

	if out.Attenuation != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("Dielectric attenuation = %v, want (1,1,1)", out.Attenuation)
	}
}

func TestSchlickIsZeroAtNormalIncidenceForMatchedIndex(t *testing.T) {
	t.Parallel()

	if got := schlick(1.0, 1.0); got > 1e-6 {
		t.Errorf("schlick(1, 1) = %v, want ~0", got)
	}
}
