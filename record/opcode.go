// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package record defines the metafile wire format: a forward-only stream of
// self-delimiting records, each a one-byte opcode followed by a payload whose
// length is known from the opcode alone (plus, for text runs, a count-prefixed
// glyph tail).
//
// All multi-byte fields are little-endian. Array data never lives in the
// stream; draw records reference array blobs held by the container through
// 32-bit indices.
//
// The package is pure data: it has no knowledge of containers, writers or
// playback.
package record

import "github.com/gogpu/gputypes"

// Opcode identifies a record kind. Zero is never a valid opcode, so a
// zeroed buffer fails to decode instead of replaying as geometry.
type Opcode uint8

// Opcodes. The numeric values are part of the persisted format.
const (
	// OpEnable turns a rendering attribute on.
	// Payload: attribute u8
	OpEnable Opcode = iota + 1

	// OpDisable turns a rendering attribute off.
	// Payload: attribute u8
	OpDisable

	// OpColor sets the current color.
	// Payload: r, g, b, a u8
	OpColor

	// OpCullMode sets face culling.
	// Payload: mode u8
	OpCullMode

	// OpShadeModel selects flat or smooth shading.
	// Payload: model u8
	OpShadeModel

	// OpLineStipple sets the line stipple.
	// Payload: entry u8, value u8
	OpLineStipple

	// OpFillStipple sets the fill stipple.
	// Payload: entry u8, value u8
	OpFillStipple

	// OpLineweight sets the line width.
	// Payload: kind u8, value f32
	OpLineweight

	// OpLineStyle sets line caps and joins.
	// Payload: cap u8, join u8
	OpLineStyle

	// OpMaterial selects a material resource, or none.
	// Payload: resource u32 (NoIndex clears)
	OpMaterial

	// OpInitTexture binds a texture built from an image resource.
	// Payload: resource u32, width u32, height u32, depth u32, format u32,
	// filter u8, address mode u8, modulate u8
	OpInitTexture

	// OpUninitTexture unbinds the current texture.
	// Payload: none
	OpUninitTexture

	// OpBindArrays binds the vertex arrays used by subsequent draws.
	// Payload: vertices u32, colors u32, normals u32, texcoords u32
	// (blob indices, NoIndex for absent arrays)
	OpBindArrays

	// OpDrawPoints draws a range of the bound vertices as points.
	// Payload: first u32, count u32
	OpDrawPoints

	// OpDrawLines draws a range of the bound vertices as a line list.
	// Payload: first u32, count u32
	OpDrawLines

	// OpDrawTriangles draws a range of the bound vertices as a triangle list.
	// Payload: first u32, count u32
	OpDrawTriangles

	// OpDrawIndexedPoints draws points through an index blob.
	// Payload: indices u32, first u32, count u32
	OpDrawIndexedPoints

	// OpDrawIndexedLines draws a line list through an index blob.
	// Payload: indices u32, first u32, count u32
	OpDrawIndexedLines

	// OpDrawIndexedTriangles draws a triangle list through an index blob.
	// Payload: indices u32, first u32, count u32
	OpDrawIndexedTriangles

	// OpSelectionMarker sets the marker of subsequent geometry.
	// Payload: marker u64
	OpSelectionMarker

	// OpBindMarkers binds a marker table that splits the next draws.
	// Payload: blob u32
	OpBindMarkers

	// OpUnbindMarkers drops the bound marker table.
	// Payload: none
	OpUnbindMarkers

	// OpSelectionFlags restricts picking of subsequent geometry.
	// Payload: flags u8
	OpSelectionFlags

	// OpText draws a glyph run.
	// Payload: fontA u32, fontB u32, transform 12×f32, step 3×f32,
	// glyph count u32, then count×u16 glyph ids
	OpText

	opEnd
)

// NoIndex marks an absent blob or resource reference.
const NoIndex uint32 = 0xFFFFFFFF

// OpInfo describes the static layout and role of an opcode.
type OpInfo struct {
	Name string

	// Size is the fixed payload length in bytes, not counting the opcode.
	Size int

	// TailElem is the element size of a variable tail whose u32 count is
	// the last field of the fixed payload. Zero means no tail.
	TailElem int

	// RenderOnly records have no effect on geometry playback.
	RenderOnly bool

	// Draw records produce geometry.
	Draw     bool
	Indexed  bool
	Topology gputypes.PrimitiveTopology
}

var opTable = [...]OpInfo{
	OpEnable:        {Name: "Enable", Size: 1, RenderOnly: true},
	OpDisable:       {Name: "Disable", Size: 1, RenderOnly: true},
	OpColor:         {Name: "Color", Size: 4, RenderOnly: true},
	OpCullMode:      {Name: "CullMode", Size: 1, RenderOnly: true},
	OpShadeModel:    {Name: "ShadeModel", Size: 1, RenderOnly: true},
	OpLineStipple:   {Name: "LineStipple", Size: 2, RenderOnly: true},
	OpFillStipple:   {Name: "FillStipple", Size: 2, RenderOnly: true},
	OpLineweight:    {Name: "Lineweight", Size: 5, RenderOnly: true},
	OpLineStyle:     {Name: "LineStyle", Size: 2, RenderOnly: true},
	OpMaterial:      {Name: "Material", Size: 4, RenderOnly: true},
	OpInitTexture:   {Name: "InitTexture", Size: 23, RenderOnly: true},
	OpUninitTexture: {Name: "UninitTexture", RenderOnly: true},
	OpBindArrays:    {Name: "BindArrays", Size: 16},
	OpDrawPoints: {Name: "DrawPoints", Size: 8, Draw: true,
		Topology: gputypes.PrimitiveTopologyPointList},
	OpDrawLines: {Name: "DrawLines", Size: 8, Draw: true,
		Topology: gputypes.PrimitiveTopologyLineList},
	OpDrawTriangles: {Name: "DrawTriangles", Size: 8, Draw: true,
		Topology: gputypes.PrimitiveTopologyTriangleList},
	OpDrawIndexedPoints: {Name: "DrawIndexedPoints", Size: 12, Draw: true, Indexed: true,
		Topology: gputypes.PrimitiveTopologyPointList},
	OpDrawIndexedLines: {Name: "DrawIndexedLines", Size: 12, Draw: true, Indexed: true,
		Topology: gputypes.PrimitiveTopologyLineList},
	OpDrawIndexedTriangles: {Name: "DrawIndexedTriangles", Size: 12, Draw: true, Indexed: true,
		Topology: gputypes.PrimitiveTopologyTriangleList},
	OpSelectionMarker: {Name: "SelectionMarker", Size: 8},
	OpBindMarkers:     {Name: "BindMarkers", Size: 4},
	OpUnbindMarkers:   {Name: "UnbindMarkers"},
	OpSelectionFlags:  {Name: "SelectionFlags", Size: 1},
	OpText:            {Name: "Text", Size: 72, TailElem: 2},
}

// NumOpcodes is the number of defined opcodes.
const NumOpcodes = int(opEnd) - 1

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return op >= OpEnable && op < opEnd
}

// Info returns the layout of op. The zero OpInfo is returned for invalid
// opcodes.
func (op Opcode) Info() OpInfo {
	if !op.Valid() {
		return OpInfo{}
	}
	return opTable[op]
}

// String returns a human-readable name for the opcode.
func (op Opcode) String() string {
	if !op.Valid() {
		return "Unknown"
	}
	return opTable[op].Name
}

// IsDraw reports whether op produces geometry.
func (op Opcode) IsDraw() bool {
	return op.Info().Draw
}

// DrawOpcode returns the draw opcode for a topology.
func DrawOpcode(topology gputypes.PrimitiveTopology, indexed bool) (Opcode, bool) {
	var op Opcode
	switch topology {
	case gputypes.PrimitiveTopologyPointList:
		op = OpDrawPoints
	case gputypes.PrimitiveTopologyLineList:
		op = OpDrawLines
	case gputypes.PrimitiveTopologyTriangleList:
		op = OpDrawTriangles
	default:
		return 0, false
	}
	if indexed {
		op += OpDrawIndexedPoints - OpDrawPoints
	}
	return op, true
}

// VerticesPerPrimitive returns how many elements make one primitive of the
// topology: 1 for points, 2 for lines, 3 for triangles.
func VerticesPerPrimitive(topology gputypes.PrimitiveTopology) int {
	switch topology {
	case gputypes.PrimitiveTopologyLineList:
		return 2
	case gputypes.PrimitiveTopologyTriangleList:
		return 3
	default:
		return 1
	}
}
