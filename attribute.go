// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package metafile

import (
	"github.com/gogpu/gputypes"
)

// Attribute identifies a boolean rendering attribute that can be switched
// on and off.
type Attribute uint8

const (
	AttrLighting Attribute = iota + 1
	AttrDepthTest
	AttrBlend
	AttrLineSmooth
	AttrTexture
	AttrCullFace
	AttrLineStipple
	AttrFillStipple

	attrEnd
)

// attributeNames maps Attribute values to their string representation.
var attributeNames = [...]string{
	AttrLighting:    "Lighting",
	AttrDepthTest:   "DepthTest",
	AttrBlend:       "Blend",
	AttrLineSmooth:  "LineSmooth",
	AttrTexture:     "Texture",
	AttrCullFace:    "CullFace",
	AttrLineStipple: "LineStipple",
	AttrFillStipple: "FillStipple",
}

// NumAttributes is the number of Attribute slots, including the unused zero.
const NumAttributes = int(attrEnd)

// Valid reports whether a is a known attribute.
func (a Attribute) Valid() bool {
	return a > 0 && a < attrEnd
}

// String returns the attribute name.
func (a Attribute) String() string {
	if a.Valid() {
		return attributeNames[a]
	}
	return "Unknown"
}

// CullMode selects which triangle faces are discarded.
type CullMode = gputypes.CullMode

// Cull modes, re-exported for convenience.
const (
	CullNone  = gputypes.CullModeNone
	CullFront = gputypes.CullModeFront
	CullBack  = gputypes.CullModeBack
)

// ShadeModel selects flat or interpolated per-vertex shading.
type ShadeModel uint8

const (
	ShadeSmooth ShadeModel = iota
	ShadeFlat
)

// Stipple is a stipple setting: a pattern entry and its value (scale or
// phase, pattern specific). The zero entry means solid.
type Stipple struct {
	Entry uint8
	Value uint8
}

// LineweightKind tells how a Lineweight value is interpreted.
type LineweightKind uint8

const (
	// LineweightPixels is a width in device pixels.
	LineweightPixels LineweightKind = iota
	// LineweightModel is a width in model units.
	LineweightModel
)

// Lineweight is a line width setting.
type Lineweight struct {
	Kind  LineweightKind
	Value float32
}

// Pixels returns a pixel lineweight.
func Pixels(n float32) Lineweight {
	return Lineweight{Kind: LineweightPixels, Value: n}
}

// IsThin reports whether the lineweight renders as a hairline.
func (lw Lineweight) IsThin() bool {
	return lw.Kind == LineweightPixels && lw.Value <= 1
}

// LineCap is the shape of line end points.
type LineCap uint8

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin is the shape of line joins.
type LineJoin uint8

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// LineStyle groups cap and join.
type LineStyle struct {
	Cap  LineCap
	Join LineJoin
}

// Marker is the logical identity of a selectable sub-entity.
type Marker uint64

// NoMarker is the marker of geometry without sub-entity identity.
const NoMarker Marker = 0

// SelectionFlags restrict which geometry takes part in picking.
type SelectionFlags uint8

const (
	// SelectionDisabled suppresses all geometry during picking.
	SelectionDisabled SelectionFlags = 1 << iota
	// SelectHighlightedOnly suppresses geometry when the pick context is
	// not highlighted.
	SelectHighlightedOnly
	// SelectUnhighlightedOnly suppresses geometry when the pick context is
	// highlighted.
	SelectUnhighlightedOnly
)

// Selectable reports whether geometry is pickable under these flags when
// the pick context has the given highlight state.
func (f SelectionFlags) Selectable(highlighted bool) bool {
	switch {
	case f&SelectionDisabled != 0:
		return false
	case f&SelectHighlightedOnly != 0 && !highlighted:
		return false
	case f&SelectUnhighlightedOnly != 0 && highlighted:
		return false
	}
	return true
}

// TextureDescriptor describes a texture bound by an InitTexture record.
// Texel data comes from the image resource the record references.
type TextureDescriptor struct {
	Size        gputypes.Extent3D
	Format      gputypes.TextureFormat
	Filter      gputypes.FilterMode
	AddressMode gputypes.AddressMode
	Modulate    bool
}

// TextRun is a positioned run of glyphs. Glyph i is placed at
// Transform.Origin + Step*i in model space, with the glyph outline mapped
// through the Transform axes.
type TextRun struct {
	FontA     uint32
	FontB     uint32
	Glyphs    []uint16
	Transform Affine3
	Step      Vec3
}
