// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package writer records drawing calls into a metafile container.
//
// The Writer keeps a mirror of everything it has emitted and drops state
// calls that would not change it, so repeating a state call costs nothing.
// Consecutive primitives of the same shape are packed into one array draw
// instead of one record each.
//
// Example:
//
//	w := writer.New()
//	_ = w.Begin()
//	w.SetColor(metafile.Red)
//	w.Line(metafile.V3(0, 0, 0), metafile.V3(1, 0, 0))
//	w.Line(metafile.V3(1, 0, 0), metafile.V3(2, 0, 0))
//	w.SetColor(metafile.Blue)
//	w.Triangle(a, b, c)
//	mf, err := w.End()
//
// Drawing calls do not return errors. The first failure (a container over
// its byte budget, an invalid argument) is kept, every later call becomes a
// no-op, and End reports it. A Writer is not safe for concurrent use.
package writer

import (
	"errors"
	"fmt"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/internal/pool"
	"github.com/gogpu/metafile/record"
)

// Writer errors.
var (
	ErrNotRecording = errors.New("writer: not recording")
	ErrRecording    = errors.New("writer: already recording")
	ErrIndexedMode  = errors.New("writer: indexed primitive outside indexed mode")
	ErrVertexID     = errors.New("writer: vertex id out of range")
	ErrArrayLength  = errors.New("writer: vertex array length mismatch")
	ErrInvalid      = errors.New("writer: invalid argument")
)

// Writer is a stateful metafile encoder.
type Writer struct {
	opts options
	pool *pool.GeometryPool

	c   *container.Container
	err error
	st  state

	resIndex map[container.Resource]uint32
	marker   metafile.Marker

	batch     batchKey
	batchOpen bool
	g         *pool.Geometry
	scratch   []byte

	va      *VertexArrays
	vaBound *record.BindArrays
}

// New creates a Writer.
func New(opts ...Option) *Writer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Writer{opts: o, pool: o.geometryPool()}
}

// Begin starts recording a new container.
func (w *Writer) Begin() error {
	if w.c != nil {
		return ErrRecording
	}
	w.c = container.New(container.WithByteBudget(w.opts.packaging.MaxContainerBytes))
	w.err = nil
	w.st = newState()
	w.resIndex = make(map[container.Resource]uint32)
	w.marker = metafile.NoMarker
	w.batchOpen = false
	w.g = w.pool.Get()
	w.va, w.vaBound = nil, nil
	return nil
}

// End flushes the open batch and returns the recorded container. On failure
// the partial container is destroyed and only the error is returned.
func (w *Writer) End() (*container.Container, error) {
	if w.c == nil {
		return nil, ErrNotRecording
	}
	w.flush()

	c, err := w.c, w.err
	w.c = nil
	w.pool.Put(w.g)
	w.g = nil
	w.va, w.vaBound = nil, nil
	w.resIndex = nil
	if cap(w.scratch) > w.opts.packaging.RetainHighWater*container.Vec3Size {
		w.scratch = nil
	}

	if err != nil {
		c.Destroy()
		metafile.Logger().Debug("recording aborted", "err", err)
		return nil, err
	}
	metafile.Logger().Debug("metafile recorded",
		"id", c.ID(), "records", c.RecordCount(), "draws", c.DrawCount(),
		"blobs", c.BlobCount(), "bytes", c.Size())
	return c, nil
}

// Err returns the first error of the current recording.
func (w *Writer) Err() error { return w.err }

// Container returns the container being recorded, or nil. It is meant for
// inspection; records of the open batch are not in it yet.
func (w *Writer) Container() *container.Container { return w.c }

// Flush closes the open batch, writing its draw record.
func (w *Writer) Flush() error {
	if w.c == nil {
		return ErrNotRecording
	}
	w.flush()
	return w.err
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// ready reports whether a call may write.
func (w *Writer) ready() bool {
	if w.c == nil {
		w.fail(ErrNotRecording)
		return false
	}
	return w.err == nil
}

func (w *Writer) emit(rec record.Record) {
	if w.err != nil {
		return
	}
	if err := w.c.AppendRecord(rec); err != nil {
		w.fail(err)
	}
}

func (w *Writer) appendBlob(b []byte) uint32 {
	if w.err != nil {
		return record.NoIndex
	}
	i, err := w.c.AppendBlob(b)
	if err != nil {
		w.fail(err)
	}
	return i
}

func (w *Writer) resource(r container.Resource) uint32 {
	if i, ok := w.resIndex[r]; ok {
		return i
	}
	i, err := w.c.AppendResource(r)
	if err != nil {
		w.fail(err)
		return record.NoIndex
	}
	w.resIndex[r] = i
	return i
}

// SetAttribute switches a rendering attribute on or off.
func (w *Writer) SetAttribute(attr metafile.Attribute, on bool) {
	if !w.ready() {
		return
	}
	if !attr.Valid() {
		w.fail(fmt.Errorf("%w: attribute %d", ErrInvalid, attr))
		return
	}
	if !w.st.attrs[attr].set(on) {
		return
	}
	w.flush()
	if on {
		w.emit(record.Enable{Attr: attr})
	} else {
		w.emit(record.Disable{Attr: attr})
	}
}

// SetColor sets the color of subsequent primitives without per-vertex
// colors.
func (w *Writer) SetColor(c metafile.Color) {
	if w.ready() && w.st.color.set(c) {
		w.flush()
		w.emit(record.SetColor{Color: c})
	}
}

// SetCullMode sets face culling.
func (w *Writer) SetCullMode(m metafile.CullMode) {
	if w.ready() && w.st.cull.set(m) {
		w.flush()
		w.emit(record.SetCullMode{Mode: m})
	}
}

// SetShadeModel selects flat or smooth shading.
func (w *Writer) SetShadeModel(m metafile.ShadeModel) {
	if w.ready() && w.st.shade.set(m) {
		w.flush()
		w.emit(record.SetShadeModel{Model: m})
	}
}

// SetLineStipple sets the line stipple.
func (w *Writer) SetLineStipple(s metafile.Stipple) {
	if w.ready() && w.st.lineStipple.set(s) {
		w.flush()
		w.emit(record.SetLineStipple{Stipple: s})
	}
}

// SetFillStipple sets the fill stipple.
func (w *Writer) SetFillStipple(s metafile.Stipple) {
	if w.ready() && w.st.fillStipple.set(s) {
		w.flush()
		w.emit(record.SetFillStipple{Stipple: s})
	}
}

// SetLineweight sets the line width.
func (w *Writer) SetLineweight(lw metafile.Lineweight) {
	if w.ready() && w.st.lineweight.set(lw) {
		w.flush()
		w.emit(record.SetLineweight{Lineweight: lw})
	}
}

// SetLineStyle sets caps and joins.
func (w *Writer) SetLineStyle(lineCap metafile.LineCap, join metafile.LineJoin) {
	s := metafile.LineStyle{Cap: lineCap, Join: join}
	if w.ready() && w.st.lineStyle.set(s) {
		w.flush()
		w.emit(record.SetLineStyle{Style: s})
	}
}

// SetMaterial selects a material. nil clears the material. The container
// retains the resource until it is destroyed.
func (w *Writer) SetMaterial(m container.Resource) {
	if !w.ready() {
		return
	}
	idx := record.NoIndex
	if m != nil {
		idx = w.resource(m)
		if w.err != nil {
			return
		}
	}
	if w.st.material.set(idx) {
		w.flush()
		w.emit(record.SetMaterial{Resource: idx})
	}
}

// InitTexture binds a texture built from an image resource.
func (w *Writer) InitTexture(desc metafile.TextureDescriptor, img container.Resource) {
	if !w.ready() {
		return
	}
	if img == nil {
		w.fail(fmt.Errorf("%w: nil texture image", ErrInvalid))
		return
	}
	idx := w.resource(img)
	if w.err != nil {
		return
	}
	if w.st.texture.set(textureState{bound: true, resource: idx, desc: desc}) {
		w.flush()
		w.emit(record.InitTexture{Resource: idx, Desc: desc})
	}
}

// UninitTexture unbinds the current texture.
func (w *Writer) UninitTexture() {
	if w.ready() && w.st.texture.set(textureState{}) {
		w.flush()
		w.emit(record.UninitTexture{})
	}
}

// SetSelectionMarker sets the marker of subsequent primitives. A marker
// change does not break the open batch; the batch gets a marker table.
func (w *Writer) SetSelectionMarker(id metafile.Marker) {
	if w.ready() {
		w.marker = id
	}
}

// SetSelectionFlags restricts picking of subsequent primitives.
func (w *Writer) SetSelectionFlags(f metafile.SelectionFlags) {
	if w.ready() && w.st.selFlags.set(f) {
		w.flush()
		w.emit(record.SetSelectionFlags{Flags: f})
	}
}

// Text records a glyph run. Runs are never merged with vector geometry.
func (w *Writer) Text(fontA, fontB uint32, glyphs []uint16, base metafile.Affine3, step metafile.Vec3) {
	if !w.ready() {
		return
	}
	w.flush()
	if w.st.marker.set(w.marker) {
		w.emit(record.SelectionMarker{ID: w.marker})
	}
	run := metafile.TextRun{
		FontA:     fontA,
		FontB:     fontB,
		Glyphs:    append([]uint16(nil), glyphs...),
		Transform: base,
		Step:      step,
	}
	w.emit(record.Text{Run: run})
}
