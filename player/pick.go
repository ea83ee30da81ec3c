// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/record"
)

// pickSink decomposes draws into primitives for a GeometryVisitor.
type pickSink struct {
	v           GeometryVisitor
	highlighted bool
	pts         [4]metafile.Vec3
}

func (s *pickSink) begin(*container.Container) {}
func (s *pickSink) end()                       {}
func (s *pickSink) aborted() bool              { return s.v.Aborted() }

// apply skips every rendering-only record.
func (s *pickSink) apply(*pass, record.Record) error { return nil }

func (s *pickSink) marker(id metafile.Marker) {
	s.v.SetMarker(id)
}

func (s *pickSink) selectable(ps *pass) bool {
	return ps.flags.Selectable(s.highlighted)
}

func (s *pickSink) draw(ps *pass, dc drawCall) error {
	if !s.selectable(ps) {
		return nil
	}
	if dc.split {
		s.v.MarkerRange(dc.id, dc.rel, dc.count)
	}

	verts := ps.arrays.Vertices
	at := func(i int) metafile.Vec3 {
		if dc.indices != nil {
			return verts[dc.indices[dc.first+i]]
		}
		return verts[dc.first+i]
	}

	k := record.VerticesPerPrimitive(dc.topology)
	for i := 0; i+k <= dc.count; i += k {
		switch dc.topology {
		case gputypes.PrimitiveTopologyTriangleList:
			s.pts[0], s.pts[1], s.pts[2] = at(i), at(i+1), at(i+2)
			s.v.Polygon(s.pts[:3])
		case gputypes.PrimitiveTopologyLineList:
			s.pts[0], s.pts[1] = at(i), at(i+1)
			s.v.Polyline(s.pts[:2])
		default:
			s.pts[0] = at(i)
			s.v.Polyline(s.pts[:1])
		}
	}
	return nil
}

// endSegments has nothing to restore: ranges never change the marker the
// visitor was last given.
func (s *pickSink) endSegments(*pass) {}

// text reports the bounding quad of a run: one unit cell per glyph along
// the step, one unit high along the transform's Y axis.
func (s *pickSink) text(ps *pass, run metafile.TextRun) {
	if len(run.Glyphs) == 0 || !s.selectable(ps) {
		return
	}
	t := run.Transform
	along := run.Step.Mul(float32(len(run.Glyphs)))
	if along == (metafile.Vec3{}) {
		along = t.X
	} else {
		// the last glyph extends one cell past its origin
		along = along.Sub(run.Step).Add(t.X)
	}
	o := t.Origin
	s.pts[0] = o
	s.pts[1] = o.Add(along)
	s.pts[2] = o.Add(along).Add(t.Y)
	s.pts[3] = o.Add(t.Y)
	s.v.Polygon(s.pts[:])
}
