// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
)

// Record is one decoded stream entry. Every opcode has exactly one concrete
// record type; type-switch on the record to read its fields.
type Record interface {
	Opcode() Opcode
}

// Enable turns an attribute on.
type Enable struct {
	Attr metafile.Attribute
}

// Disable turns an attribute off.
type Disable struct {
	Attr metafile.Attribute
}

// SetColor sets the current color.
type SetColor struct {
	Color metafile.Color
}

// SetCullMode sets face culling.
type SetCullMode struct {
	Mode metafile.CullMode
}

// SetShadeModel selects flat or smooth shading.
type SetShadeModel struct {
	Model metafile.ShadeModel
}

// SetLineStipple sets the line stipple.
type SetLineStipple struct {
	Stipple metafile.Stipple
}

// SetFillStipple sets the fill stipple.
type SetFillStipple struct {
	Stipple metafile.Stipple
}

// SetLineweight sets the line width.
type SetLineweight struct {
	Lineweight metafile.Lineweight
}

// SetLineStyle sets caps and joins.
type SetLineStyle struct {
	Style metafile.LineStyle
}

// SetMaterial selects a material resource. Resource is NoIndex when the
// material is cleared.
type SetMaterial struct {
	Resource uint32
}

// InitTexture binds a texture whose texels come from an image resource.
type InitTexture struct {
	Resource uint32
	Desc     metafile.TextureDescriptor
}

// UninitTexture unbinds the current texture.
type UninitTexture struct{}

// BindArrays binds the per-vertex arrays used by subsequent draws.
// Absent arrays are NoIndex; Vertices is always present.
type BindArrays struct {
	Vertices  uint32
	Colors    uint32
	Normals   uint32
	TexCoords uint32
}

// DrawArrays draws Count consecutive bound vertices starting at First.
type DrawArrays struct {
	Topology gputypes.PrimitiveTopology
	First    uint32
	Count    uint32
}

// DrawIndexed draws Count indices starting at First from the Indices blob.
type DrawIndexed struct {
	Topology gputypes.PrimitiveTopology
	Indices  uint32
	First    uint32
	Count    uint32
}

// SelectionMarker sets the marker of subsequent geometry.
type SelectionMarker struct {
	ID metafile.Marker
}

// BindMarkers binds a marker table blob.
type BindMarkers struct {
	Blob uint32
}

// UnbindMarkers drops the bound marker table.
type UnbindMarkers struct{}

// SetSelectionFlags restricts picking of subsequent geometry.
type SetSelectionFlags struct {
	Flags metafile.SelectionFlags
}

// Text draws a glyph run.
type Text struct {
	Run metafile.TextRun
}

func (Enable) Opcode() Opcode            { return OpEnable }
func (Disable) Opcode() Opcode           { return OpDisable }
func (SetColor) Opcode() Opcode          { return OpColor }
func (SetCullMode) Opcode() Opcode       { return OpCullMode }
func (SetShadeModel) Opcode() Opcode     { return OpShadeModel }
func (SetLineStipple) Opcode() Opcode    { return OpLineStipple }
func (SetFillStipple) Opcode() Opcode    { return OpFillStipple }
func (SetLineweight) Opcode() Opcode     { return OpLineweight }
func (SetLineStyle) Opcode() Opcode      { return OpLineStyle }
func (SetMaterial) Opcode() Opcode       { return OpMaterial }
func (InitTexture) Opcode() Opcode       { return OpInitTexture }
func (UninitTexture) Opcode() Opcode     { return OpUninitTexture }
func (BindArrays) Opcode() Opcode        { return OpBindArrays }
func (SelectionMarker) Opcode() Opcode   { return OpSelectionMarker }
func (BindMarkers) Opcode() Opcode       { return OpBindMarkers }
func (UnbindMarkers) Opcode() Opcode     { return OpUnbindMarkers }
func (SetSelectionFlags) Opcode() Opcode { return OpSelectionFlags }
func (Text) Opcode() Opcode              { return OpText }

// Opcode returns the draw opcode for the record's topology, or zero for an
// unsupported topology.
func (r DrawArrays) Opcode() Opcode {
	op, _ := DrawOpcode(r.Topology, false)
	return op
}

// Opcode returns the indexed draw opcode for the record's topology, or zero
// for an unsupported topology.
func (r DrawIndexed) Opcode() Opcode {
	op, _ := DrawOpcode(r.Topology, true)
	return op
}
