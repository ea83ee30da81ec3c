// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/internal/cache"
)

// FontResolver returns the font of a text run from its two font words.
type FontResolver func(fontA, fontB uint32) (*sfnt.Font, error)

// outlinePPEM is the size glyphs are loaded at; outlines are scaled back to
// one model unit per em.
const outlinePPEM = 64

type outlineKey struct {
	font  *sfnt.Font
	glyph uint16
}

// segment is a glyph outline segment in em units, Y up.
type segment struct {
	op  sfnt.SegmentOp
	pts [3]metafile.Vec2
}

// outlines caches glyph outlines for all renderers.
var outlines = cache.New[outlineKey, []segment](4096)

func (r *Renderer) outline(f *sfnt.Font, g uint16) ([]segment, error) {
	return outlines.GetOrCreate(outlineKey{font: f, glyph: g}, func() ([]segment, error) {
		segs, err := f.LoadGlyph(&r.buf, sfnt.GlyphIndex(g), fixed.I(outlinePPEM), nil)
		if err != nil {
			return nil, err
		}
		out := make([]segment, len(segs))
		for i, s := range segs {
			out[i].op = s.Op
			for j, p := range s.Args {
				// sfnt outlines are Y down
				out[i].pts[j] = metafile.V2(float32(p.X)/(64*outlinePPEM), -float32(p.Y)/(64*outlinePPEM))
			}
		}
		return out, nil
	})
}

// DrawText fills the glyph outlines of run. Each glyph's em square spans
// the X and Y axes of the run transform.
func (r *Renderer) DrawText(run metafile.TextRun) {
	if r.fonts == nil || len(run.Glyphs) == 0 {
		return
	}
	f, err := r.fonts(run.FontA, run.FontB)
	if err != nil {
		metafile.Logger().Warn("font resolution failed", "fontA", run.FontA, "fontB", run.FontB, "err", err)
		return
	}

	t := run.Transform
	r.begin()
	for i, g := range run.Glyphs {
		segs, err := r.outline(f, g)
		if err != nil {
			metafile.Logger().Debug("glyph skipped", "glyph", g, "err", err)
			continue
		}
		origin := t.Origin.Add(run.Step.Mul(float32(i)))
		pt := func(p metafile.Vec2) (float32, float32) {
			q := r.project(origin.Add(t.X.Mul(p.U)).Add(t.Y.Mul(p.V)))
			return q.X, q.Y
		}
		for _, s := range segs {
			switch s.op {
			case sfnt.SegmentOpMoveTo:
				r.z.ClosePath()
				r.z.MoveTo(pt(s.pts[0]))
			case sfnt.SegmentOpLineTo:
				r.z.LineTo(pt(s.pts[0]))
			case sfnt.SegmentOpQuadTo:
				bx, by := pt(s.pts[0])
				cx, cy := pt(s.pts[1])
				r.z.QuadTo(bx, by, cx, cy)
			case sfnt.SegmentOpCubeTo:
				bx, by := pt(s.pts[0])
				cx, cy := pt(s.pts[1])
				dx, dy := pt(s.pts[2])
				r.z.CubeTo(bx, by, cx, cy, dx, dy)
			}
		}
		r.z.ClosePath()
	}
	r.fill(r.color)
}
