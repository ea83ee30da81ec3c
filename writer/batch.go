// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package writer

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/record"
)

// batchKey is the compatibility class of a batch. Primitives join the open
// batch only when their key matches.
type batchKey struct {
	topology  gputypes.PrimitiveTopology
	indexed   bool
	colors    bool
	normals   bool
	texCoords bool
}

// TriangleAttribs carries optional per-vertex data of a triangle. Nil
// fields are absent.
type TriangleAttribs struct {
	Colors    *[3]metafile.Color
	Normals   *[3]metafile.Vec3
	TexCoords *[3]metafile.Vec2
}

// VertexArrays are the shared vertices of an indexed shape. Optional arrays
// are either empty or as long as Vertices.
type VertexArrays struct {
	Vertices  []metafile.Vec3
	Colors    []metafile.Color
	Normals   []metafile.Vec3
	TexCoords []metafile.Vec2
}

func (va *VertexArrays) validate() error {
	n := len(va.Vertices)
	check := func(name string, l int) error {
		if l != 0 && l != n {
			return fmt.Errorf("%w: %d %s for %d vertices", ErrArrayLength, l, name, n)
		}
		return nil
	}
	if err := check("colors", len(va.Colors)); err != nil {
		return err
	}
	if err := check("normals", len(va.Normals)); err != nil {
		return err
	}
	return check("texcoords", len(va.TexCoords))
}

func (w *Writer) elements() int {
	if w.batch.indexed {
		return len(w.g.Indices)
	}
	return len(w.g.Vertices)
}

// open makes key the open batch with room for n more elements, flushing
// the current batch when it is incompatible or full.
func (w *Writer) open(key batchKey, n int) bool {
	if !w.ready() {
		return false
	}
	if w.batchOpen && (w.batch != key || w.elements()+n > w.opts.packaging.MaxBatchVertices) {
		w.flush()
		if w.err != nil {
			return false
		}
	}
	w.batch, w.batchOpen = key, true

	offset := uint32(w.elements()) // #nosec G115 -- bounded by MaxBatchVertices
	m := w.g.Markers
	if len(m) == 0 || m[len(m)-1].ID != w.marker {
		w.g.Markers = append(m, container.MarkerEntry{Offset: offset, ID: w.marker})
	}
	return true
}

// Point adds a point in the current color.
func (w *Writer) Point(p metafile.Vec3) {
	if w.open(batchKey{topology: gputypes.PrimitiveTopologyPointList}, 1) {
		w.g.Vertices = append(w.g.Vertices, p)
	}
}

// ColoredPoint adds a point with its own color.
func (w *Writer) ColoredPoint(p metafile.Vec3, c metafile.Color) {
	if w.open(batchKey{topology: gputypes.PrimitiveTopologyPointList, colors: true}, 1) {
		w.g.Vertices = append(w.g.Vertices, p)
		w.g.Colors = append(w.g.Colors, c)
	}
}

// Line adds a segment in the current color.
func (w *Writer) Line(p0, p1 metafile.Vec3) {
	if w.open(batchKey{topology: gputypes.PrimitiveTopologyLineList}, 2) {
		w.g.Vertices = append(w.g.Vertices, p0, p1)
	}
}

// ColoredLine adds a segment with per-vertex colors.
func (w *Writer) ColoredLine(p0, p1 metafile.Vec3, c0, c1 metafile.Color) {
	if w.open(batchKey{topology: gputypes.PrimitiveTopologyLineList, colors: true}, 2) {
		w.g.Vertices = append(w.g.Vertices, p0, p1)
		w.g.Colors = append(w.g.Colors, c0, c1)
	}
}

// Triangle adds a triangle in the current color.
func (w *Writer) Triangle(p0, p1, p2 metafile.Vec3) {
	if w.open(batchKey{topology: gputypes.PrimitiveTopologyTriangleList}, 3) {
		w.g.Vertices = append(w.g.Vertices, p0, p1, p2)
	}
}

// TriangleAttr adds a triangle with optional per-vertex colors, normals and
// texture coordinates.
func (w *Writer) TriangleAttr(p [3]metafile.Vec3, a TriangleAttribs) {
	key := batchKey{
		topology:  gputypes.PrimitiveTopologyTriangleList,
		colors:    a.Colors != nil,
		normals:   a.Normals != nil,
		texCoords: a.TexCoords != nil,
	}
	if !w.open(key, 3) {
		return
	}
	w.g.Vertices = append(w.g.Vertices, p[:]...)
	if a.Colors != nil {
		w.g.Colors = append(w.g.Colors, a.Colors[:]...)
	}
	if a.Normals != nil {
		w.g.Normals = append(w.g.Normals, a.Normals[:]...)
	}
	if a.TexCoords != nil {
		w.g.TexCoords = append(w.g.TexCoords, a.TexCoords[:]...)
	}
}

// BeginIndexed enters indexed mode over shared vertex arrays. The arrays
// are written at most once, however many indexed primitives use them.
// The writer keeps va until EndIndexed; the caller must not modify it.
func (w *Writer) BeginIndexed(va VertexArrays) {
	if !w.ready() {
		return
	}
	if err := va.validate(); err != nil {
		w.fail(err)
		return
	}
	w.flush()
	w.va, w.vaBound = &va, nil
}

// EndIndexed leaves indexed mode.
func (w *Writer) EndIndexed() {
	if !w.ready() {
		return
	}
	if w.batch.indexed {
		w.flush()
	}
	w.va, w.vaBound = nil, nil
}

// PointIdx adds a point referencing a shared vertex.
func (w *Writer) PointIdx(i uint32) {
	w.addIndexed(gputypes.PrimitiveTopologyPointList, i)
}

// LineIdx adds a segment between two shared vertices.
func (w *Writer) LineIdx(i0, i1 uint32) {
	w.addIndexed(gputypes.PrimitiveTopologyLineList, i0, i1)
}

// TriangleIdx adds a triangle over three shared vertices.
func (w *Writer) TriangleIdx(i0, i1, i2 uint32) {
	w.addIndexed(gputypes.PrimitiveTopologyTriangleList, i0, i1, i2)
}

func (w *Writer) addIndexed(topology gputypes.PrimitiveTopology, ids ...uint32) {
	if !w.ready() {
		return
	}
	if w.va == nil {
		w.fail(ErrIndexedMode)
		return
	}
	for _, id := range ids {
		if int(id) >= len(w.va.Vertices) {
			w.fail(fmt.Errorf("%w: %d of %d", ErrVertexID, id, len(w.va.Vertices)))
			return
		}
	}
	key := batchKey{
		topology:  topology,
		indexed:   true,
		colors:    len(w.va.Colors) > 0,
		normals:   len(w.va.Normals) > 0,
		texCoords: len(w.va.TexCoords) > 0,
	}
	if w.open(key, len(ids)) {
		w.g.Indices = append(w.g.Indices, ids...)
	}
}

// flush turns the open batch into records: marker state, array binding and
// one draw.
func (w *Writer) flush() {
	if !w.batchOpen {
		return
	}
	w.batchOpen = false
	g := w.g
	defer func() {
		g.Reset()
		g.Trim(w.opts.packaging.RetainHighWater)
	}()

	n := w.elements()
	if w.err != nil || n == 0 {
		return
	}

	indexed := w.batch.indexed
	if indexed && n < w.opts.packaging.MinIndexedRun {
		w.deindex()
		indexed = false
	}

	var bind record.BindArrays
	if indexed {
		bind = w.indexedBinding()
	} else {
		bind = w.arrayBinding()
	}
	w.emitMarkers()
	if w.st.arrays.set(bind) {
		w.emit(bind)
	}

	count := uint32(n) // #nosec G115 -- bounded by MaxBatchVertices
	if indexed {
		w.scratch = container.AppendIndices(w.scratch[:0], g.Indices)
		idx := w.appendBlob(w.scratch)
		w.emit(record.DrawIndexed{Topology: w.batch.topology, Indices: idx, Count: count})
	} else {
		w.emit(record.DrawArrays{Topology: w.batch.topology, Count: count})
	}
}

// deindex expands an indexed batch into plain arrays.
func (w *Writer) deindex() {
	g, va := w.g, w.va
	for _, i := range g.Indices {
		g.Vertices = append(g.Vertices, va.Vertices[i])
		if w.batch.colors {
			g.Colors = append(g.Colors, va.Colors[i])
		}
		if w.batch.normals {
			g.Normals = append(g.Normals, va.Normals[i])
		}
		if w.batch.texCoords {
			g.TexCoords = append(g.TexCoords, va.TexCoords[i])
		}
	}
	g.Indices = g.Indices[:0]
}

func (w *Writer) arrayBinding() record.BindArrays {
	g := w.g
	b := record.BindArrays{Colors: record.NoIndex, Normals: record.NoIndex, TexCoords: record.NoIndex}
	w.scratch = container.AppendVec3s(w.scratch[:0], g.Vertices)
	b.Vertices = w.appendBlob(w.scratch)
	if w.batch.colors {
		w.scratch = container.AppendColors(w.scratch[:0], g.Colors)
		b.Colors = w.appendBlob(w.scratch)
	}
	if w.batch.normals {
		w.scratch = container.AppendVec3s(w.scratch[:0], g.Normals)
		b.Normals = w.appendBlob(w.scratch)
	}
	if w.batch.texCoords {
		w.scratch = container.AppendVec2s(w.scratch[:0], g.TexCoords)
		b.TexCoords = w.appendBlob(w.scratch)
	}
	return b
}

// indexedBinding writes the shared arrays on first use.
func (w *Writer) indexedBinding() record.BindArrays {
	if w.vaBound != nil {
		return *w.vaBound
	}
	va := w.va
	b := record.BindArrays{Colors: record.NoIndex, Normals: record.NoIndex, TexCoords: record.NoIndex}
	w.scratch = container.AppendVec3s(w.scratch[:0], va.Vertices)
	b.Vertices = w.appendBlob(w.scratch)
	if len(va.Colors) > 0 {
		w.scratch = container.AppendColors(w.scratch[:0], va.Colors)
		b.Colors = w.appendBlob(w.scratch)
	}
	if len(va.Normals) > 0 {
		w.scratch = container.AppendVec3s(w.scratch[:0], va.Normals)
		b.Normals = w.appendBlob(w.scratch)
	}
	if len(va.TexCoords) > 0 {
		w.scratch = container.AppendVec2s(w.scratch[:0], va.TexCoords)
		b.TexCoords = w.appendBlob(w.scratch)
	}
	if w.err == nil {
		w.vaBound = &b
	}
	return b
}

// emitMarkers writes the batch's starting marker when it changed and binds
// a marker table when the batch spans more than one marker.
func (w *Writer) emitMarkers() {
	m := w.g.Markers
	start := metafile.NoMarker
	if len(m) > 0 {
		start = m[0].ID
	}
	if w.st.marker.set(start) {
		w.emit(record.SelectionMarker{ID: start})
	}
	switch {
	case len(m) > 1:
		w.scratch = container.AppendMarkers(w.scratch[:0], m)
		blob := w.appendBlob(w.scratch)
		w.emit(record.BindMarkers{Blob: blob})
		w.st.markersBound = true
	case w.st.markersBound:
		w.emit(record.UnbindMarkers{})
		w.st.markersBound = false
	}
}
