// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pool provides reusable scratch geometry for the writer's batches
// and the player's software fallback path.
package pool

import (
	"sync"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
)

// Geometry holds per-vertex scratch arrays. Only the arrays a caller uses
// grow; the rest stay nil.
type Geometry struct {
	Vertices  []metafile.Vec3
	Colors    []metafile.Color
	Normals   []metafile.Vec3
	TexCoords []metafile.Vec2
	Indices   []uint32
	Markers   []container.MarkerEntry
}

// Reset truncates every array, keeping its storage.
func (g *Geometry) Reset() {
	g.Vertices = g.Vertices[:0]
	g.Colors = g.Colors[:0]
	g.Normals = g.Normals[:0]
	g.TexCoords = g.TexCoords[:0]
	g.Indices = g.Indices[:0]
	g.Markers = g.Markers[:0]
}

// Trim drops the storage of every array whose capacity exceeds highWater,
// so one huge batch does not pin its memory for the life of the buffer.
// A non-positive highWater keeps everything.
func (g *Geometry) Trim(highWater int) {
	if highWater <= 0 {
		return
	}
	if cap(g.Vertices) > highWater {
		g.Vertices = nil
	}
	if cap(g.Colors) > highWater {
		g.Colors = nil
	}
	if cap(g.Normals) > highWater {
		g.Normals = nil
	}
	if cap(g.TexCoords) > highWater {
		g.TexCoords = nil
	}
	if cap(g.Indices) > highWater {
		g.Indices = nil
	}
	if cap(g.Markers) > highWater {
		g.Markers = nil
	}
}

// GeometryPool manages reusable Geometry buffers.
//
// Usage:
//
//	p := pool.NewGeometryPool(16384)
//	g := p.Get()
//	defer p.Put(g)
type GeometryPool struct {
	pool      sync.Pool
	highWater int
}

// NewGeometryPool creates a pool that trims returned buffers to highWater
// elements per array.
func NewGeometryPool(highWater int) *GeometryPool {
	return &GeometryPool{
		pool: sync.Pool{
			New: func() any {
				return &Geometry{}
			},
		},
		highWater: highWater,
	}
}

// Get retrieves an empty buffer.
func (p *GeometryPool) Get() *Geometry {
	g := p.pool.Get().(*Geometry)
	g.Reset()
	return g
}

// Put returns a buffer for reuse.
func (p *GeometryPool) Put(g *Geometry) {
	if g == nil {
		return
	}
	g.Trim(p.highWater)
	p.pool.Put(g)
}

// Default is the pool used when no tuning is configured.
var Default = NewGeometryPool(metafile.DefaultConfig().Packaging.RetainHighWater)
