// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command svtrender builds or loads a sparse voxel tree, renders one
// frame with the path-tracing shading loop, and writes it as a PNG.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	svt "github.com/sparsevoxel/svt"
	"github.com/sparsevoxel/svt/rsvo"
	"github.com/sparsevoxel/svt/shade"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	var (
		rsvoPath = flag.String("rsvo", "", "path to an RSVO file to import instead of the procedural demo scene")
		outPath  = flag.String("out", "render.png", "output PNG path")
		width    = flag.Int("width", 800, "output image width")
		height   = flag.Int("height", 600, "output image height")
		mode     = flag.String("mode", "raytrace", "render mode: raytrace, dotn, or heat")
		spp      = flag.Int("spp", 4, "samples per pixel")
	)
	flag.Parse()

	renderMode := shade.RayTracing
	switch *mode {
	case "dotn":
		renderMode = shade.DotN
	case "heat":
		renderMode = shade.IterationCount
	case "raytrace":
	default:
		log.Fatalf("unknown -mode %q: want raytrace, dotn, or heat", *mode)
	}

	ts := time.Now()
	tree, err := loadScene(*rsvoPath)
	if err != nil {
		log.Fatalf("loading scene: %v", err)
	}
	log.Printf("scene ready in %v: %d blocks, TotalDim=%d", time.Since(ts), tree.BlockCount(), tree.TotalDim())

	scene := buildScene(tree)
	target := shade.ViewTarget{Size: [2]uint32{uint32(*width), uint32(*height)}}
	cam := shade.Camera{
		Pos:  mgl32.Vec3{-float32(tree.TotalDim()), float32(tree.TotalDim()) / 2, float32(tree.TotalDim()) / 2},
		Look: mgl32.Vec3{1, 0, 0},
		H:    mgl32.Vec3{0, 0, float32(*width) / float32(*height)},
		V:    mgl32.Vec3{0, 1, 0},
	}

	ts = time.Now()
	img := renderFrame(scene, cam, target, renderMode, *spp)
	log.Printf("rendered %dx%d in %v", *width, *height, time.Since(ts))

	if err := writePNG(*outPath, img); err != nil {
		log.Fatalf("writing %s: %v", *outPath, err)
	}
	log.Printf("wrote %s", *outPath)
}

func loadScene(rsvoPath string) (*svt.Tree[svt.Dims2x3], error) {
	if rsvoPath == "" {
		return svt.Sample[svt.Dims2x3](func(x, y, z uint32) svt.Material {
			if x >= 5 && y < 3 && z < 3 {
				return 1
			}
			return svt.EMPTY
		}), nil
	}

	data, err := os.ReadFile(rsvoPath)
	if err != nil {
		return nil, err
	}
	return rsvo.Import[svt.Dims2x3](data)
}

func buildScene(tree *svt.Tree[svt.Dims2x3]) shade.Scene {
	atlas := shade.NewAtlas()
	atlas.Set(1, color.NRGBA{R: 180, G: 60, B: 60, A: 255})

	return shade.Scene{
		Storage: tree,
		Materials: map[svt.Material]shade.Material{
			1: shade.Lambertian{Albedo: mgl32.Vec3{0.7, 0.3, 0.3}},
		},
		DebugHue: map[svt.Material]mgl32.Vec3{
			1: mgl32.Vec3{0.7, 0.3, 0.3},
		},
		Atlas: atlas,
	}
}

// renderFrame dispatches one goroutine per horizontal strip of the image,
// the CPU deployment model's "one thread per tile."
func renderFrame(scene shade.Scene, cam shade.Camera, target shade.ViewTarget, mode shade.RenderMode, spp int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(target.Size[0]), int(target.Size[1])))

	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (int(target.Size[1]) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * rowsPerWorker
		y1 := min(y0+rowsPerWorker, int(target.Size[1]))
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		go func(y0, y1, worker int) {
			defer wg.Done()
			renderStrip(scene, cam, target, mode, spp, img, y0, y1, uint32(worker))
		}(y0, y1, w)
	}
	wg.Wait()
	return img
}

func renderStrip(scene shade.Scene, cam shade.Camera, target shade.ViewTarget, mode shade.RenderMode, spp int, img *image.RGBA, y0, y1 int, worker uint32) {
	for y := y0; y < y1; y++ {
		for x := 0; x < int(target.Size[0]); x++ {
			var accum mgl32.Vec3
			for s := 0; s < spp; s++ {
				seed := shade.SeedFromPixel(uint32(x), uint32(y), worker, uint32(s))
				rng := shade.NewRNG(seed)
				fragX, fragY := shade.PixelNDC(x, y, target)
				fragX += rng.Range(-0.5, 0.5) / float32(target.Size[0])
				fragY += rng.Range(-0.5, 0.5) / float32(target.Size[1])
				origin, dir := cam.PrimaryRay(fragX, fragY)
				accum = accum.Add(shade.TraceRay(scene, origin, dir, rng, mode))
			}
			c := accum.Mul(1 / float32(spp))
			img.Set(x, y, toRGBA(c))
		}
	}
}

func toRGBA(c mgl32.Vec3) color.RGBA {
	return color.RGBA{
		R: toByte(c.X()),
		G: toByte(c.Y()),
		B: toByte(c.Z()),
		A: 255,
	}
}

func toByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v * 255)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
