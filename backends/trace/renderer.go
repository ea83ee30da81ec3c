// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"fmt"
	"strconv"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/player"
)

func (r *Recorder) Capabilities() player.Capabilities { return r.caps }

func (r *Recorder) Begin(c *container.Container) {
	r.add("Begin", strconv.Itoa(c.RecordCount()))
}

func (r *Recorder) End() { r.add("End") }

func (r *Recorder) SetAttribute(attr metafile.Attribute, on bool) {
	r.add("SetAttribute", attr.String(), strconv.FormatBool(on))
}

func (r *Recorder) SetColor(c metafile.Color) { r.add("SetColor", c.String()) }

func (r *Recorder) SetCullMode(m metafile.CullMode) {
	r.add("SetCullMode", fmt.Sprint(uint32(m)))
}

func (r *Recorder) SetShadeModel(m metafile.ShadeModel) {
	r.add("SetShadeModel", fmt.Sprint(uint8(m)))
}

func (r *Recorder) SetLineStipple(s metafile.Stipple) {
	r.add("SetLineStipple", fmt.Sprint(s.Entry), fmt.Sprint(s.Value))
}

func (r *Recorder) SetFillStipple(s metafile.Stipple) {
	r.add("SetFillStipple", fmt.Sprint(s.Entry), fmt.Sprint(s.Value))
}

func (r *Recorder) SetLineweight(lw metafile.Lineweight) {
	r.add("SetLineweight", fmt.Sprint(uint8(lw.Kind)), fmt.Sprint(lw.Value))
}

func (r *Recorder) SetLineStyle(s metafile.LineStyle) {
	r.add("SetLineStyle", fmt.Sprint(uint8(s.Cap)), fmt.Sprint(uint8(s.Join)))
}

func (r *Recorder) SetMaterial(m container.Resource) { r.add("SetMaterial", resourceName(m)) }

func (r *Recorder) InitTexture(desc metafile.TextureDescriptor, img container.Resource) {
	r.add("InitTexture", resourceName(img),
		fmt.Sprintf("%dx%d", desc.Size.Width, desc.Size.Height))
}

func (r *Recorder) UninitTexture() { r.add("UninitTexture") }

func (r *Recorder) SetHighlight(on bool) { r.add("SetHighlight", strconv.FormatBool(on)) }

func (r *Recorder) SetSelectionMarker(id metafile.Marker) {
	r.add("SetSelectionMarker", fmt.Sprint(uint64(id)))
}

func (r *Recorder) DrawArrays(t gputypes.PrimitiveTopology, a player.Arrays, first, count int) {
	args := []string{topologyName(t), strconv.Itoa(first), strconv.Itoa(count)}
	if a.Colors != nil {
		args = append(args, "colored")
	}
	r.add("DrawArrays", args...)
}

func (r *Recorder) DrawIndexed(t gputypes.PrimitiveTopology, a player.Arrays, indices []uint32) {
	args := []string{topologyName(t), strconv.Itoa(len(indices))}
	if a.Colors != nil {
		args = append(args, "colored")
	}
	r.add("DrawIndexed", args...)
}

func (r *Recorder) DrawText(run metafile.TextRun) {
	r.add("DrawText", fmt.Sprint(run.FontA), fmt.Sprint(run.FontB), strconv.Itoa(len(run.Glyphs)))
}

// MarkerHighlighted reports markers configured with WithHighlightedMarkers.
func (r *Recorder) MarkerHighlighted(id metafile.Marker) bool {
	return r.highlightedMarkers[id]
}
