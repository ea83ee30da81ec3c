// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"

	"github.com/gogpu/metafile"
)

func TestSegmentQuad(t *testing.T) {
	q := segmentQuad(metafile.V3(0, 0, 0), metafile.V3(4, 0, 0), 1)
	assert.Equal(t, [4]metafile.Vec3{
		metafile.V3(0, -1, 0),
		metafile.V3(4, -1, 0),
		metafile.V3(4, 1, 0),
		metafile.V3(0, 1, 0),
	}, q)

	// vertical segments widen along X
	q = segmentQuad(metafile.V3(0, 0, 2), metafile.V3(0, 2, 2), 0.5)
	assert.InDelta(t, 0.5, q[0].X, 1e-6)
	assert.InDelta(t, -0.5, q[3].X, 1e-6)
	assert.InDelta(t, 2, q[0].Z, 1e-6)
}

func TestSegmentQuad_Degenerate(t *testing.T) {
	p := metafile.V3(1, 1, 0)
	assert.Equal(t, pointQuad(p, 2), segmentQuad(p, p, 2))

	// a segment along the view direction has no extent in the plane
	assert.Equal(t, pointQuad(p, 2), segmentQuad(p, metafile.V3(1, 1, 5), 2))
}

func TestPointQuad(t *testing.T) {
	q := pointQuad(metafile.V3(1, 1, 0), 0.5)
	assert.Equal(t, metafile.V3(0.5, 0.5, 0), q[0])
	assert.Equal(t, metafile.V3(1.5, 1.5, 0), q[2])
}

func TestDisplaySink_Width(t *testing.T) {
	d := &displaySink{}
	d.lineweight.set(metafile.Pixels(3))
	assert.InDelta(t, 3, d.width(), 1e-6)

	d.caps.PixelSize = 0.5
	assert.InDelta(t, 1.5, d.width(), 1e-6)

	d.lineweight.set(metafile.Lineweight{Kind: metafile.LineweightModel, Value: 2})
	assert.InDelta(t, 2, d.width(), 1e-6)
}

func TestDisplaySink_Emulate(t *testing.T) {
	d := &displaySink{caps: Capabilities{EmulateLineweight: true}}
	assert.False(t, d.emulate(lineList), "unknown lineweight")

	d.lineweight.set(metafile.Pixels(1))
	assert.False(t, d.emulate(lineList))

	d.lineweight.set(metafile.Pixels(2))
	assert.True(t, d.emulate(lineList))
	assert.False(t, d.emulate(triangleList))
}

const (
	lineList     = gputypes.PrimitiveTopologyLineList
	triangleList = gputypes.PrimitiveTopologyTriangleList
)
