// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"errors"
	"io"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/metafile"
)

// sampleRecords holds one record of every opcode.
func sampleRecords() []Record {
	return []Record{
		Enable{Attr: metafile.AttrDepthTest},
		Disable{Attr: metafile.AttrLighting},
		SetColor{Color: metafile.Red},
		SetCullMode{Mode: metafile.CullBack},
		SetShadeModel{Model: metafile.ShadeFlat},
		SetLineStipple{Stipple: metafile.Stipple{Entry: 2, Value: 7}},
		SetFillStipple{Stipple: metafile.Stipple{Entry: 3, Value: 1}},
		SetLineweight{Lineweight: metafile.Pixels(3)},
		SetLineStyle{Style: metafile.LineStyle{Cap: metafile.LineCapRound, Join: metafile.LineJoinBevel}},
		SetMaterial{Resource: 4},
		InitTexture{Resource: 1, Desc: metafile.TextureDescriptor{
			Size:     gputypes.Extent3D{Width: 16, Height: 8, DepthOrArrayLayers: 1},
			Format:   gputypes.TextureFormatRGBA8Unorm,
			Modulate: true,
		}},
		UninitTexture{},
		BindArrays{Vertices: 0, Colors: 1, Normals: NoIndex, TexCoords: NoIndex},
		DrawArrays{Topology: gputypes.PrimitiveTopologyPointList, First: 0, Count: 5},
		DrawArrays{Topology: gputypes.PrimitiveTopologyLineList, First: 2, Count: 4},
		DrawArrays{Topology: gputypes.PrimitiveTopologyTriangleList, First: 0, Count: 9},
		DrawIndexed{Topology: gputypes.PrimitiveTopologyPointList, Indices: 2, Count: 1},
		DrawIndexed{Topology: gputypes.PrimitiveTopologyLineList, Indices: 2, First: 1, Count: 2},
		DrawIndexed{Topology: gputypes.PrimitiveTopologyTriangleList, Indices: 3, Count: 6},
		SelectionMarker{ID: 1 << 40},
		BindMarkers{Blob: 5},
		UnbindMarkers{},
		SetSelectionFlags{Flags: metafile.SelectHighlightedOnly},
		Text{Run: metafile.TextRun{
			FontA:     1,
			FontB:     2,
			Glyphs:    []uint16{10, 20, 30},
			Transform: metafile.Translate3(1, 2, 3),
			Step:      metafile.V3(0.5, 0, 0),
		}},
	}
}

func encodeAll(recs []Record) []byte {
	var buf []byte
	for _, r := range recs {
		buf = Append(buf, r)
	}
	return buf
}

func TestOpcodeTable(t *testing.T) {
	seen := map[Opcode]bool{}
	for _, rec := range sampleRecords() {
		op := rec.Opcode()
		require.True(t, op.Valid(), "%T", rec)
		seen[op] = true

		// Self-delimiting: the encoded length is determined by the opcode.
		assert.Len(t, Append(nil, rec), Size(rec), op.String())
	}
	assert.Len(t, seen, NumOpcodes, "every opcode is covered")

	assert.False(t, Opcode(0).Valid())
	assert.False(t, opEnd.Valid())
	assert.Equal(t, "Unknown", Opcode(0).String())
	assert.Equal(t, "DrawIndexedLines", OpDrawIndexedLines.String())
	assert.True(t, OpDrawTriangles.IsDraw())
	assert.False(t, OpColor.IsDraw())
	assert.True(t, OpLineStipple.Info().RenderOnly)
	assert.False(t, OpBindArrays.Info().RenderOnly)
}

func TestDrawOpcode(t *testing.T) {
	op, ok := DrawOpcode(gputypes.PrimitiveTopologyLineList, false)
	require.True(t, ok)
	assert.Equal(t, OpDrawLines, op)

	op, ok = DrawOpcode(gputypes.PrimitiveTopologyTriangleList, true)
	require.True(t, ok)
	assert.Equal(t, OpDrawIndexedTriangles, op)

	_, ok = DrawOpcode(gputypes.PrimitiveTopologyLineStrip, false)
	assert.False(t, ok)

	assert.Equal(t, 3, VerticesPerPrimitive(gputypes.PrimitiveTopologyTriangleList))
	assert.Equal(t, 2, VerticesPerPrimitive(gputypes.PrimitiveTopologyLineList))
	assert.Equal(t, 1, VerticesPerPrimitive(gputypes.PrimitiveTopologyPointList))
}

func TestDecoder_Stream(t *testing.T) {
	recs := sampleRecords()
	buf := encodeAll(recs)

	dec := NewDecoder(buf)
	var got []Record
	for {
		rec, err := dec.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}
	assert.Equal(t, recs, got)
	assert.Equal(t, len(recs), dec.Count())
	assert.Zero(t, dec.Remaining())
	assert.NoError(t, dec.Err())
}

func TestDecoder_Empty(t *testing.T) {
	_, err := NewDecoder(nil).Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_UnknownOpcode(t *testing.T) {
	buf := Append(nil, SetColor{Color: metafile.Blue})
	buf = append(buf, 0xEE, 1, 2, 3)

	dec := NewDecoder(buf)
	_, err := dec.Next()
	require.NoError(t, err)

	_, err = dec.Next()
	require.ErrorIs(t, err, ErrUnknownOpcode)
	assert.Equal(t, 5, dec.Offset())

	// The error is sticky.
	_, err2 := dec.Next()
	assert.Equal(t, err, err2)
}

func TestDecoder_ZeroByte(t *testing.T) {
	_, err := NewDecoder([]byte{0}).Next()
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestDecoder_Truncated(t *testing.T) {
	buf := encodeAll(sampleRecords())

	// Every strict prefix that cuts a record must fail with ErrTruncated and
	// never panic by reading past the slice.
	boundaries := map[int]bool{}
	_ = Scan(buf, func(off int, _ Record) error {
		boundaries[off] = true
		return nil
	})
	for n := 1; n < len(buf); n++ {
		if boundaries[n] {
			continue
		}
		err := Scan(buf[:n], func(int, Record) error { return nil })
		require.ErrorIs(t, err, ErrTruncated, "prefix %d", n)
	}
}

func TestDecoder_TextTailTooLong(t *testing.T) {
	buf := Append(nil, Text{Run: metafile.TextRun{Glyphs: []uint16{1, 2}}})
	// Claim a huge glyph count.
	le.PutUint32(buf[1+68:], 0xFFFFFFFF)

	_, err := NewDecoder(buf).Next()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecoder_BadAttribute(t *testing.T) {
	_, err := NewDecoder([]byte{byte(OpEnable), 99}).Next()
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestDecoder_Reset(t *testing.T) {
	buf := Append(nil, UnbindMarkers{})
	dec := NewDecoder([]byte{0xEE})
	_, err := dec.Next()
	require.Error(t, err)

	dec.Reset(buf)
	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, UnbindMarkers{}, rec)
}

func TestScan_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	n := 0
	err := Scan(encodeAll(sampleRecords()), func(int, Record) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, n)
}

func TestDisassemble(t *testing.T) {
	buf := encodeAll([]Record{
		SetColor{Color: metafile.Red},
		BindArrays{Vertices: 0, Colors: NoIndex, Normals: NoIndex, TexCoords: NoIndex},
		DrawArrays{Topology: gputypes.PrimitiveTopologyLineList, Count: 4},
	})
	text, err := Disassemble(buf)
	require.NoError(t, err)
	assert.Equal(t,
		"000000  Color #ff0000ff\n"+
			"000005  BindArrays v=#0 c=- n=- t=-\n"+
			"000016  DrawLines first=0 count=4\n",
		text)

	text, err = Disassemble(append(buf, 0xEE))
	assert.ErrorIs(t, err, ErrUnknownOpcode)
	assert.Contains(t, text, "DrawLines")
}

func TestAppend_PanicsOnUnsupportedTopology(t *testing.T) {
	assert.Panics(t, func() {
		Append(nil, DrawArrays{Topology: gputypes.PrimitiveTopologyLineStrip})
	})
}
