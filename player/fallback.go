// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/record"
)

// Software lineweight: every segment becomes a quad and every point a
// square, two triangles each, in the plane of the view (XY). The triangles
// collect in a pooled buffer that is drawn as one triangle list whenever it
// fills up and at the end of the range.

const trianglesPerPrimitive = 6

// width returns the lineweight in model units.
func (d *displaySink) width() float32 {
	lw := d.lineweight.val
	if lw.Kind == metafile.LineweightModel {
		return lw.Value
	}
	px := d.caps.PixelSize
	if px == 0 {
		px = 1
	}
	return lw.Value * px
}

func (d *displaySink) fallback(ps *pass, dc drawCall) {
	if d.buf == nil {
		d.buf = d.pool.Get()
	}
	capacity := d.bufVerts - d.bufVerts%trianglesPerPrimitive
	if capacity < trianglesPerPrimitive {
		capacity = trianglesPerPrimitive
	}

	a := ps.arrays
	colored := a.Colors != nil
	vertex := func(i int) int {
		if dc.indices != nil {
			return int(dc.indices[dc.first+i])
		}
		return dc.first + i
	}

	half := d.width() / 2
	k := record.VerticesPerPrimitive(dc.topology)
	for i := 0; i+k <= dc.count; i += k {
		if len(d.buf.Vertices)+trianglesPerPrimitive > capacity {
			d.flushFallback(colored)
		}
		v0 := vertex(i)
		var quad [4]metafile.Vec3
		if k == 2 {
			quad = segmentQuad(a.Vertices[v0], a.Vertices[vertex(i+1)], half)
		} else {
			quad = pointQuad(a.Vertices[v0], half)
		}
		d.buf.Vertices = append(d.buf.Vertices, quad[0], quad[1], quad[2], quad[0], quad[2], quad[3])
		if colored {
			c0, c1 := a.Colors[v0], a.Colors[v0]
			if k == 2 {
				c1 = a.Colors[vertex(i+1)]
			}
			d.buf.Colors = append(d.buf.Colors, c0, c1, c1, c0, c1, c0)
		}
	}
	d.flushFallback(colored)
}

func (d *displaySink) flushFallback(colored bool) {
	if len(d.buf.Vertices) == 0 {
		return
	}
	a := Arrays{Vertices: d.buf.Vertices}
	if colored {
		a.Colors = d.buf.Colors
	}
	d.r.DrawArrays(gputypes.PrimitiveTopologyTriangleList, a, 0, len(a.Vertices))
	d.buf.Reset()
}

// segmentQuad returns the corners of a segment widened by half on each
// side: p0-n, p1-n, p1+n, p0+n.
func segmentQuad(p0, p1 metafile.Vec3, half float32) [4]metafile.Vec3 {
	dir := p1.Sub(p0)
	n := metafile.V3(-dir.Y, dir.X, 0).Normalize()
	if n == (metafile.Vec3{}) {
		// zero length in the view plane
		return pointQuad(p0, half)
	}
	n = n.Mul(half)
	return [4]metafile.Vec3{p0.Sub(n), p1.Sub(n), p1.Add(n), p0.Add(n)}
}

// pointQuad returns a square of side 2*half centered on p.
func pointQuad(p metafile.Vec3, half float32) [4]metafile.Vec3 {
	return [4]metafile.Vec3{
		p.Add(metafile.V3(-half, -half, 0)),
		p.Add(metafile.V3(half, -half, 0)),
		p.Add(metafile.V3(half, half, 0)),
		p.Add(metafile.V3(-half, half, 0)),
	}
}
