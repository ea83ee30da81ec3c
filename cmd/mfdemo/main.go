// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command mfdemo records a sample scene into a metafile, persists it and
// renders it with the software backend.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/backends/raster"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/player"
	"github.com/gogpu/metafile/writer"
)

func main() {
	var (
		size        = flag.Int("size", 512, "image size in pixels")
		output      = flag.String("output", "demo.png", "output PNG file")
		metafileOut = flag.String("metafile", "demo.tvmf", "output metafile")
		compression = flag.String("compression", "zstd", "metafile compression: none, zstd, s2 or lz4")
	)
	flag.Parse()

	w := writer.New()
	if err := w.Begin(); err != nil {
		log.Fatalf("Failed to begin: %v", err)
	}
	drawGrid(w)
	drawFan(w)
	drawStar(w)
	c, err := w.End()
	if err != nil {
		log.Fatalf("Failed to record: %v", err)
	}
	defer c.Destroy()

	f, err := os.Create(*metafileOut)
	if err != nil {
		log.Fatalf("Failed to create: %v", err)
	}
	n, err := container.WriteTo(f, c, container.WithCompression(*compression))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("Failed to save metafile: %v", err)
	}

	r := raster.New(*size, *size, raster.WithView(raster.Ortho(-1.1, -1.1, 1.1, 1.1, *size, *size)))
	if err := player.New().Play(c, r, false, true); err != nil {
		log.Fatalf("Failed to play: %v", err)
	}
	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create: %v", err)
	}
	if err := r.WritePNG(out); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Demo saved to %s (%dx%d) and %s (%d records, %d bytes)\n",
		*output, *size, *size, *metafileOut, c.RecordCount(), n)
}

// drawGrid draws thin gray grid lines.
func drawGrid(w *writer.Writer) {
	w.SetColor(metafile.RGB(0xc0, 0xc0, 0xc0))
	w.SetLineweight(metafile.Pixels(1))
	for i := -10; i <= 10; i++ {
		x := float32(i) / 10
		w.Line(metafile.V3(x, -1, 0), metafile.V3(x, 1, 0))
		w.Line(metafile.V3(-1, x, 0), metafile.V3(1, x, 0))
	}
}

// drawFan draws a smooth-shaded triangle fan, one selection marker per
// triangle.
func drawFan(w *writer.Writer) {
	const n = 12
	center := metafile.V3(0, 0, 0)
	for i := 0; i < n; i++ {
		a0 := 2 * math.Pi * float64(i) / n
		a1 := 2 * math.Pi * float64(i+1) / n
		p1 := metafile.V3(float32(0.8*math.Cos(a0)), float32(0.8*math.Sin(a0)), 0)
		p2 := metafile.V3(float32(0.8*math.Cos(a1)), float32(0.8*math.Sin(a1)), 0)
		hue := uint8(255 * i / n) // #nosec G115 -- i < n
		colors := [3]metafile.Color{metafile.White, metafile.RGB(hue, 0x40, 0xff-hue), metafile.RGB(hue, 0x40, 0xff-hue)}
		w.SetSelectionMarker(metafile.Marker(i + 1))
		w.TriangleAttr([3]metafile.Vec3{center, p1, p2}, writer.TriangleAttribs{Colors: &colors})
	}
	w.SetSelectionMarker(metafile.NoMarker)
}

// drawStar draws a wide star outline.
func drawStar(w *writer.Writer) {
	w.SetColor(metafile.Black)
	w.SetLineweight(metafile.Pixels(3))
	var pts [5]metafile.Vec3
	for i := range pts {
		a := math.Pi/2 + 4*math.Pi*float64(i)/5
		pts[i] = metafile.V3(float32(0.9*math.Cos(a)), float32(0.9*math.Sin(a)), 0)
	}
	for i := range pts {
		w.Line(pts[i], pts[(i+1)%len(pts)])
	}
}
