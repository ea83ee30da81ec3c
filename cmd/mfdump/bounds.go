// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"github.com/gogpu/metafile"
)

// bounds collects the XY extent of pick geometry.
type bounds struct {
	min, max metafile.Vec3
	ok       bool
}

func (b *bounds) add(points []metafile.Vec3) {
	for _, p := range points {
		if !b.ok {
			b.min, b.max, b.ok = p, p, true
			continue
		}
		b.min = metafile.V3(min(b.min.X, p.X), min(b.min.Y, p.Y), min(b.min.Z, p.Z))
		b.max = metafile.V3(max(b.max.X, p.X), max(b.max.Y, p.Y), max(b.max.Z, p.Z))
	}
}

func (b *bounds) Polyline(points []metafile.Vec3)       { b.add(points) }
func (b *bounds) Polygon(points []metafile.Vec3)        { b.add(points) }
func (b *bounds) SetMarker(metafile.Marker)             {}
func (b *bounds) MarkerRange(metafile.Marker, int, int) {}
func (b *bounds) Aborted() bool                         { return false }

// square returns a square around the bounds with a 5% margin.
func (b *bounds) square() (minX, minY, maxX, maxY float32) {
	if !b.ok {
		return 0, 0, 1, 1
	}
	w, h := b.max.X-b.min.X, b.max.Y-b.min.Y
	side := max(w, h, 1e-3) * 1.1
	cx, cy := (b.min.X+b.max.X)/2, (b.min.Y+b.max.Y)/2
	return cx - side/2, cy - side/2, cx + side/2, cy + side/2
}
