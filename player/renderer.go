// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
)

// Capabilities describe what a renderer can do natively. The player
// emulates what it cannot.
type Capabilities struct {
	// EmulateLineweight asks the player to expand wide lines and points
	// into triangles because the renderer only draws hairlines.
	EmulateLineweight bool

	// PixelSize is the size of a device pixel in model units, used to
	// convert pixel lineweights for emulation. Zero means 1.
	PixelSize float32

	// Antialiasing reports whether line smoothing is supported. Without it
	// LineSmooth attribute changes are not forwarded.
	Antialiasing bool
}

// Arrays are the per-vertex arrays bound for a draw. Optional arrays are
// nil when absent. The slices belong to the player and are only valid
// during the call; renderers must not modify or retain them.
type Arrays struct {
	Vertices  []metafile.Vec3
	Colors    []metafile.Color
	Normals   []metafile.Vec3
	TexCoords []metafile.Vec2
}

// Renderer receives display playback. Calls arrive in stream order with
// redundant state changes removed.
type Renderer interface {
	Capabilities() Capabilities

	// Begin and End bracket one playback pass of c.
	Begin(c *container.Container)
	End()

	SetAttribute(attr metafile.Attribute, on bool)
	SetColor(c metafile.Color)
	SetCullMode(m metafile.CullMode)
	SetShadeModel(m metafile.ShadeModel)
	SetLineStipple(s metafile.Stipple)
	SetFillStipple(s metafile.Stipple)
	SetLineweight(lw metafile.Lineweight)
	SetLineStyle(s metafile.LineStyle)

	// SetMaterial selects a material; nil clears it.
	SetMaterial(m container.Resource)
	InitTexture(desc metafile.TextureDescriptor, img container.Resource)
	UninitTexture()

	SetHighlight(on bool)
	SetSelectionMarker(id metafile.Marker)

	// DrawArrays draws count vertices of a starting at first.
	DrawArrays(topology gputypes.PrimitiveTopology, a Arrays, first, count int)

	// DrawIndexed draws the vertices of a selected by indices.
	DrawIndexed(topology gputypes.PrimitiveTopology, a Arrays, indices []uint32)

	DrawText(run metafile.TextRun)
}

// MarkerHighlighter is implemented by renderers that highlight individual
// sub-entities. During marker-aware playback the player toggles the
// highlight for each marker range that reports true.
type MarkerHighlighter interface {
	MarkerHighlighted(id metafile.Marker) bool
}

// GeometryVisitor receives geometry playback for picking. Rendering-only
// state never reaches it.
type GeometryVisitor interface {
	// Polyline receives a point (one vertex) or a line segment.
	Polyline(points []metafile.Vec3)

	// Polygon receives a triangle or the bounding quad of a text run.
	Polygon(points []metafile.Vec3)

	// SetMarker reports the marker of the geometry that follows.
	SetMarker(id metafile.Marker)

	// MarkerRange reports that the next count elements of the current draw,
	// starting at element first, belong to id.
	MarkerRange(id metafile.Marker, first, count int)

	// Aborted is polled between records; returning true ends the pass.
	Aborted() bool
}

// HighlightContext is implemented by visitors picking in a highlighted
// context, which changes how selection flags filter geometry.
type HighlightContext interface {
	Highlighted() bool
}
