// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package writer

import (
	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/record"
)

// slot is one piece of emitted state. A slot starts unknown, so the first
// value set is always emitted.
type slot[T comparable] struct {
	val   T
	known bool
}

// set stores v and reports whether it differs from the emitted value.
func (s *slot[T]) set(v T) bool {
	if s.known && s.val == v {
		return false
	}
	s.val, s.known = v, true
	return true
}

type textureState struct {
	bound    bool
	resource uint32
	desc     metafile.TextureDescriptor
}

// state mirrors what has been written to the stream so far.
type state struct {
	attrs       [metafile.NumAttributes]slot[bool]
	color       slot[metafile.Color]
	cull        slot[metafile.CullMode]
	shade       slot[metafile.ShadeModel]
	lineStipple slot[metafile.Stipple]
	fillStipple slot[metafile.Stipple]
	lineweight  slot[metafile.Lineweight]
	lineStyle   slot[metafile.LineStyle]
	material    slot[uint32]
	texture     slot[textureState]
	selFlags    slot[metafile.SelectionFlags]
	arrays      slot[record.BindArrays]

	// marker is known from the start: playback begins every pass with
	// NoMarker.
	marker       slot[metafile.Marker]
	markersBound bool
}

func newState() state {
	return state{marker: slot[metafile.Marker]{val: metafile.NoMarker, known: true}}
}
