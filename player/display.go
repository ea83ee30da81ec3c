// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/internal/pool"
	"github.com/gogpu/metafile/record"
)

// known is one piece of renderer state as last sent. It starts unknown so
// the first value of every pass is forwarded.
type known[T comparable] struct {
	val T
	ok  bool
}

func (k *known[T]) set(v T) bool {
	if k.ok && k.val == v {
		return false
	}
	k.val, k.ok = v, true
	return true
}

type texture struct {
	bound    bool
	resource uint32
	desc     metafile.TextureDescriptor
}

// displaySink drives a Renderer.
type displaySink struct {
	r           Renderer
	mh          MarkerHighlighter
	caps        Capabilities
	highlighted bool
	pool        *pool.GeometryPool
	bufVerts    int

	// previous state
	attrs       [metafile.NumAttributes]known[bool]
	color       known[metafile.Color]
	cull        known[metafile.CullMode]
	shade       known[metafile.ShadeModel]
	lineStipple known[metafile.Stipple]
	fillStipple known[metafile.Stipple]
	lineweight  known[metafile.Lineweight]
	lineStyle   known[metafile.LineStyle]
	material    known[uint32]
	texture     known[texture]

	sentMarker metafile.Marker
	sentHL     bool
	buf        *pool.Geometry
}

func (d *displaySink) begin(c *container.Container) {
	d.r.Begin(c)
	d.sentMarker = metafile.NoMarker
	d.sentHL = d.highlighted
	d.r.SetHighlight(d.highlighted)
}

func (d *displaySink) end() {
	if d.buf != nil {
		d.pool.Put(d.buf)
		d.buf = nil
	}
	d.r.End()
}

func (d *displaySink) aborted() bool { return false }

func (d *displaySink) apply(ps *pass, rec record.Record) error {
	switch r := rec.(type) {
	case record.Enable:
		d.setAttribute(r.Attr, true)
	case record.Disable:
		d.setAttribute(r.Attr, false)
	case record.SetColor:
		if d.color.set(r.Color) {
			d.r.SetColor(r.Color)
		}
	case record.SetCullMode:
		if d.cull.set(r.Mode) {
			d.r.SetCullMode(r.Mode)
		}
	case record.SetShadeModel:
		if d.shade.set(r.Model) {
			d.r.SetShadeModel(r.Model)
		}
	case record.SetLineStipple:
		if d.lineStipple.set(r.Stipple) {
			d.r.SetLineStipple(r.Stipple)
		}
	case record.SetFillStipple:
		if d.fillStipple.set(r.Stipple) {
			d.r.SetFillStipple(r.Stipple)
		}
	case record.SetLineweight:
		if d.lineweight.set(r.Lineweight) {
			d.r.SetLineweight(r.Lineweight)
		}
	case record.SetLineStyle:
		if d.lineStyle.set(r.Style) {
			d.r.SetLineStyle(r.Style)
		}
	case record.SetMaterial:
		var m container.Resource
		if r.Resource != record.NoIndex {
			var err error
			if m, err = ps.c.Resource(r.Resource); err != nil {
				return err
			}
		}
		if d.material.set(r.Resource) {
			d.r.SetMaterial(m)
		}
	case record.InitTexture:
		img, err := ps.c.Resource(r.Resource)
		if err != nil {
			return err
		}
		if d.texture.set(texture{bound: true, resource: r.Resource, desc: r.Desc}) {
			d.r.InitTexture(r.Desc, img)
		}
	case record.UninitTexture:
		if d.texture.set(texture{}) {
			d.r.UninitTexture()
		}
	}
	return nil
}

func (d *displaySink) setAttribute(attr metafile.Attribute, on bool) {
	if attr == metafile.AttrLineSmooth && !d.caps.Antialiasing {
		return
	}
	if d.attrs[attr].set(on) {
		d.r.SetAttribute(attr, on)
	}
}

func (d *displaySink) marker(id metafile.Marker) {
	d.sendMarker(id)
}

func (d *displaySink) sendMarker(id metafile.Marker) {
	if id != d.sentMarker {
		d.sentMarker = id
		d.r.SetSelectionMarker(id)
	}
}

func (d *displaySink) sendHighlight(on bool) {
	if on != d.sentHL {
		d.sentHL = on
		d.r.SetHighlight(on)
	}
}

func (d *displaySink) draw(ps *pass, dc drawCall) error {
	if dc.split {
		d.sendMarker(dc.id)
		if d.mh != nil {
			d.sendHighlight(d.highlighted || d.mh.MarkerHighlighted(dc.id))
		}
	}
	if d.emulate(dc.topology) {
		d.fallback(ps, dc)
		return nil
	}
	if dc.indices != nil {
		d.r.DrawIndexed(dc.topology, ps.arrays, dc.indices[dc.first:dc.first+dc.count])
	} else {
		d.r.DrawArrays(dc.topology, ps.arrays, dc.first, dc.count)
	}
	return nil
}

func (d *displaySink) endSegments(ps *pass) {
	d.sendMarker(ps.marker)
	d.sendHighlight(d.highlighted)
}

func (d *displaySink) text(_ *pass, run metafile.TextRun) {
	d.r.DrawText(run)
}

// emulate reports whether draws of topology go through the software
// lineweight path.
func (d *displaySink) emulate(topology gputypes.PrimitiveTopology) bool {
	if !d.caps.EmulateLineweight || !d.lineweight.ok || d.lineweight.val.IsThin() {
		return false
	}
	return topology == gputypes.PrimitiveTopologyLineList || topology == gputypes.PrimitiveTopologyPointList
}
