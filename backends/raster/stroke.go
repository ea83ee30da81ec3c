// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"image/draw"

	"github.com/gogpu/metafile"
)

// strokeLine draws a one pixel wide segment through the coverage
// rasterizer.
func (r *Renderer) strokeLine(p0, p1 metafile.Vec3, c metafile.Color) {
	d := p1.Sub(p0)
	d.Z = 0
	if d.Length() == 0 {
		r.plot(p0, c)
		return
	}
	n := metafile.V3(-d.Y, d.X, 0).Normalize().Mul(0.5)

	r.begin()
	r.z.MoveTo(p0.X-n.X, p0.Y-n.Y)
	r.z.LineTo(p1.X-n.X, p1.Y-n.Y)
	r.z.LineTo(p1.X+n.X, p1.Y+n.Y)
	r.z.LineTo(p0.X+n.X, p0.Y+n.Y)
	r.z.ClosePath()
	r.fill(c)
}

// plot fills the pixel containing p.
func (r *Renderer) plot(p metafile.Vec3, c metafile.Color) {
	x, y := int(p.X), int(p.Y)
	if p.X < 0 || p.Y < 0 || !(image.Point{X: x, Y: y}).In(r.img.Rect) {
		return
	}
	r.set(x, y, r.shadeColor(c))
}

func (r *Renderer) begin() {
	b := r.img.Rect
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

// fill composites the accumulated path in color c.
func (r *Renderer) fill(c metafile.Color) {
	src := image.NewUniform(r.shadeColor(c).NRGBA())
	r.z.Draw(r.img, r.img.Rect, src, image.Point{})
}
