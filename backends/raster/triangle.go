// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/player"
)

// vertex is a projected vertex with its attributes.
type vertex struct {
	p  metafile.Vec3 // pixel space
	c  metafile.Color
	uv metafile.Vec2
}

func (r *Renderer) DrawArrays(topology gputypes.PrimitiveTopology, a player.Arrays, first, count int) {
	r.draw(topology, a, count, func(i int) int { return first + i })
}

func (r *Renderer) DrawIndexed(topology gputypes.PrimitiveTopology, a player.Arrays, indices []uint32) {
	r.draw(topology, a, len(indices), func(i int) int { return int(indices[i]) })
}

func (r *Renderer) draw(topology gputypes.PrimitiveTopology, a player.Arrays, count int, at func(int) int) {
	v := func(i int) vertex {
		j := at(i)
		out := vertex{p: r.project(a.Vertices[j]), c: r.color}
		if a.Colors != nil {
			out.c = a.Colors[j]
		}
		if a.TexCoords != nil {
			out.uv = a.TexCoords[j]
		}
		return out
	}
	switch topology {
	case gputypes.PrimitiveTopologyTriangleList:
		for i := 0; i+3 <= count; i += 3 {
			r.fillTriangle([3]vertex{v(i), v(i + 1), v(i + 2)}, a.TexCoords != nil)
		}
	case gputypes.PrimitiveTopologyLineList:
		for i := 0; i+2 <= count; i += 2 {
			v0, v1 := v(i), v(i+1)
			r.strokeLine(v0.p, v1.p, v0.c)
		}
	case gputypes.PrimitiveTopologyPointList:
		for i := 0; i < count; i++ {
			v0 := v(i)
			r.plot(v0.p, v0.c)
		}
	}
}

func edge(a, b metafile.Vec3, px, py float32) float32 {
	return (b.X-a.X)*(py-a.Y) - (b.Y-a.Y)*(px-a.X)
}

// culled reports whether a triangle of the given signed pixel-space area
// is discarded. Counter-clockwise on screen is the front face; with Y down
// that is a negative area.
func (r *Renderer) culled(area float32) bool {
	if !r.attrs[metafile.AttrCullFace] {
		return false
	}
	switch r.cull {
	case metafile.CullBack:
		return area > 0
	case metafile.CullFront:
		return area < 0
	}
	return false
}

// fillTriangle fills the pixels whose centers lie inside t.
func (r *Renderer) fillTriangle(t [3]vertex, hasUV bool) {
	area := edge(t[0].p, t[1].p, t[2].p.X, t[2].p.Y)
	if area == 0 || r.culled(area) {
		return
	}

	b := r.img.Rect
	minX := max(int(math32.Floor(min(t[0].p.X, t[1].p.X, t[2].p.X))), b.Min.X)
	maxX := min(int(math32.Ceil(max(t[0].p.X, t[1].p.X, t[2].p.X))), b.Max.X)
	minY := max(int(math32.Floor(min(t[0].p.Y, t[1].p.Y, t[2].p.Y))), b.Min.Y)
	maxY := min(int(math32.Ceil(max(t[0].p.Y, t[1].p.Y, t[2].p.Y))), b.Max.Y)

	depthTest := r.attrs[metafile.AttrDepthTest]
	textured := hasUV && r.tex != nil && r.tex.pix != nil && r.attrs[metafile.AttrTexture]
	smooth := r.shade == metafile.ShadeSmooth

	for y := minY; y < maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x < maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(t[1].p, t[2].p, px, py) / area
			w1 := edge(t[2].p, t[0].p, px, py) / area
			w2 := edge(t[0].p, t[1].p, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			i := (y-b.Min.Y)*b.Dx() + (x - b.Min.X)
			if depthTest {
				z := w0*t[0].p.Z + w1*t[1].p.Z + w2*t[2].p.Z
				if z >= r.depth[i] {
					continue
				}
				r.depth[i] = z
			}

			c := t[0].c
			if smooth {
				c = blend3(t[0].c, t[1].c, t[2].c, w0, w1, w2)
			}
			if textured {
				uv := metafile.V2(
					w0*t[0].uv.U+w1*t[1].uv.U+w2*t[2].uv.U,
					w0*t[0].uv.V+w1*t[1].uv.V+w2*t[2].uv.V,
				)
				texel := r.tex.sample(uv)
				if r.tex.desc.Modulate {
					c = modulate(c, texel)
				} else {
					c = texel
				}
			}
			r.set(x, y, r.shadeColor(c))
		}
	}
}

func blend3(a, b, c metafile.Color, wa, wb, wc float32) metafile.Color {
	mix := func(x, y, z uint8) uint8 {
		return uint8(min(float32(x)*wa+float32(y)*wb+float32(z)*wc+0.5, 255))
	}
	return metafile.RGBA(mix(a.R, b.R, c.R), mix(a.G, b.G, c.G), mix(a.B, b.B, c.B), mix(a.A, b.A, c.A))
}

func modulate(a, b metafile.Color) metafile.Color {
	mul := func(x, y uint8) uint8 {
		return uint8((uint32(x)*uint32(y) + 127) / 255) // #nosec G115 -- result <= 255
	}
	return metafile.RGBA(mul(a.R, b.R), mul(a.G, b.G), mul(a.B, b.B), mul(a.A, b.A))
}

// set writes one pixel, compositing over the image when blending is on.
func (r *Renderer) set(x, y int, c metafile.Color) {
	i := r.img.PixOffset(x, y)
	pix := r.img.Pix[i : i+4 : i+4]
	if !r.attrs[metafile.AttrBlend] || c.A == 0xff {
		pix[0], pix[1], pix[2], pix[3] = premul(c.R, c.A), premul(c.G, c.A), premul(c.B, c.A), c.A
		return
	}
	a := uint32(c.A)
	inv := 255 - a
	over := func(src, dst uint8) uint8 {
		return uint8((uint32(src)*a + uint32(dst)*inv + 127) / 255) // #nosec G115 -- result <= 255
	}
	pix[0] = over(c.R, pix[0])
	pix[1] = over(c.G, pix[1])
	pix[2] = over(c.B, pix[2])
	pix[3] = uint8((a*255 + uint32(pix[3])*inv + 127) / 255) // #nosec G115 -- result <= 255
}
