// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
)

// Decoding errors. Both mean the stream is corrupt; the format has no way to
// skip a record it cannot size, so decoding stops at the first one.
var (
	// ErrUnknownOpcode is returned for a byte that is not a defined opcode.
	ErrUnknownOpcode = errors.New("record: unknown opcode")

	// ErrTruncated is returned when a payload or tail runs past the end of
	// the buffer.
	ErrTruncated = errors.New("record: truncated record")

	// ErrBadPayload is returned when a payload field is out of range.
	ErrBadPayload = errors.New("record: invalid payload")
)

// Decoder reads records sequentially from a byte slice. It never reads past
// the end of the slice.
//
// Example usage:
//
//	dec := record.NewDecoder(buf)
//	for {
//	    rec, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    switch r := rec.(type) {
//	    case record.SetColor:
//	        // handle r.Color
//	    }
//	}
type Decoder struct {
	buf []byte
	pos int
	off int // start of the last record returned
	n   int // records returned
	err error
}

// NewDecoder creates a decoder over buf. The decoder does not copy buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Reset rewinds the decoder onto a new buffer.
func (d *Decoder) Reset(buf []byte) {
	*d = Decoder{buf: buf}
}

// Offset returns the byte offset of the record last returned by Next.
func (d *Decoder) Offset() int { return d.off }

// Count returns the number of records decoded so far.
func (d *Decoder) Count() int { return d.n }

// Remaining returns the number of undecoded bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// Err returns the first decoding error, if any. A clean end of stream is not
// an error.
func (d *Decoder) Err() error { return d.err }

// Next decodes the next record. It returns io.EOF at the end of a well-formed
// stream. Once an error has been returned every later call returns it again.
func (d *Decoder) Next() (Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.pos >= len(d.buf) {
		return nil, io.EOF
	}

	d.off = d.pos
	op := Opcode(d.buf[d.pos])
	if !op.Valid() {
		return nil, d.fail(fmt.Errorf("%w 0x%02x at offset %d", ErrUnknownOpcode, byte(op), d.off))
	}
	info := opTable[op]
	if len(d.buf)-d.pos-1 < info.Size {
		return nil, d.fail(fmt.Errorf("%w: %s at offset %d needs %d bytes, %d left",
			ErrTruncated, op, d.off, info.Size, len(d.buf)-d.pos-1))
	}
	p := d.buf[d.pos+1 : d.pos+1+info.Size]
	d.pos += 1 + info.Size

	rec, err := d.decode(op, p)
	if err != nil {
		return nil, d.fail(err)
	}
	d.n++
	return rec, nil
}

func (d *Decoder) fail(err error) error {
	d.err = err
	return err
}

func (d *Decoder) decode(op Opcode, p []byte) (Record, error) {
	switch op {
	case OpEnable, OpDisable:
		attr := metafile.Attribute(p[0])
		if !attr.Valid() {
			return nil, fmt.Errorf("%w: attribute %d at offset %d", ErrBadPayload, p[0], d.off)
		}
		if op == OpEnable {
			return Enable{Attr: attr}, nil
		}
		return Disable{Attr: attr}, nil
	case OpColor:
		return SetColor{Color: metafile.RGBA(p[0], p[1], p[2], p[3])}, nil
	case OpCullMode:
		return SetCullMode{Mode: metafile.CullMode(p[0])}, nil
	case OpShadeModel:
		return SetShadeModel{Model: metafile.ShadeModel(p[0])}, nil
	case OpLineStipple:
		return SetLineStipple{Stipple: metafile.Stipple{Entry: p[0], Value: p[1]}}, nil
	case OpFillStipple:
		return SetFillStipple{Stipple: metafile.Stipple{Entry: p[0], Value: p[1]}}, nil
	case OpLineweight:
		return SetLineweight{Lineweight: metafile.Lineweight{
			Kind:  metafile.LineweightKind(p[0]),
			Value: readFloat(p[1:]),
		}}, nil
	case OpLineStyle:
		return SetLineStyle{Style: metafile.LineStyle{
			Cap:  metafile.LineCap(p[0]),
			Join: metafile.LineJoin(p[1]),
		}}, nil
	case OpMaterial:
		return SetMaterial{Resource: le.Uint32(p)}, nil
	case OpInitTexture:
		return InitTexture{
			Resource: le.Uint32(p),
			Desc: metafile.TextureDescriptor{
				Size: gputypes.Extent3D{
					Width:              le.Uint32(p[4:]),
					Height:             le.Uint32(p[8:]),
					DepthOrArrayLayers: le.Uint32(p[12:]),
				},
				Format:      gputypes.TextureFormat(le.Uint32(p[16:])),
				Filter:      gputypes.FilterMode(p[20]),
				AddressMode: gputypes.AddressMode(p[21]),
				Modulate:    p[22] != 0,
			},
		}, nil
	case OpUninitTexture:
		return UninitTexture{}, nil
	case OpBindArrays:
		return BindArrays{
			Vertices:  le.Uint32(p),
			Colors:    le.Uint32(p[4:]),
			Normals:   le.Uint32(p[8:]),
			TexCoords: le.Uint32(p[12:]),
		}, nil
	case OpDrawPoints, OpDrawLines, OpDrawTriangles:
		return DrawArrays{
			Topology: opTable[op].Topology,
			First:    le.Uint32(p),
			Count:    le.Uint32(p[4:]),
		}, nil
	case OpDrawIndexedPoints, OpDrawIndexedLines, OpDrawIndexedTriangles:
		return DrawIndexed{
			Topology: opTable[op].Topology,
			Indices:  le.Uint32(p),
			First:    le.Uint32(p[4:]),
			Count:    le.Uint32(p[8:]),
		}, nil
	case OpSelectionMarker:
		return SelectionMarker{ID: metafile.Marker(le.Uint64(p))}, nil
	case OpBindMarkers:
		return BindMarkers{Blob: le.Uint32(p)}, nil
	case OpUnbindMarkers:
		return UnbindMarkers{}, nil
	case OpSelectionFlags:
		return SetSelectionFlags{Flags: metafile.SelectionFlags(p[0])}, nil
	case OpText:
		return d.decodeText(p)
	}
	return nil, fmt.Errorf("%w 0x%02x at offset %d", ErrUnknownOpcode, byte(op), d.off)
}

func (d *Decoder) decodeText(p []byte) (Record, error) {
	var f [12]float32
	for i := range f {
		f[i] = readFloat(p[8+4*i:])
	}
	count := int64(le.Uint32(p[68:]))
	tail := count * int64(opTable[OpText].TailElem)
	if tail > int64(len(d.buf)-d.pos) {
		return nil, fmt.Errorf("%w: Text at offset %d declares %d glyphs, %d bytes left",
			ErrTruncated, d.off, count, len(d.buf)-d.pos)
	}
	glyphs := make([]uint16, count)
	for i := range glyphs {
		glyphs[i] = le.Uint16(d.buf[d.pos+2*i:])
	}
	d.pos += int(tail)

	return Text{Run: metafile.TextRun{
		FontA:     le.Uint32(p),
		FontB:     le.Uint32(p[4:]),
		Glyphs:    glyphs,
		Transform: metafile.Affine3FromFloats(f),
		Step:      metafile.V3(readFloat(p[56:]), readFloat(p[60:]), readFloat(p[64:])),
	}}, nil
}

func readFloat(b []byte) float32 {
	return math.Float32frombits(le.Uint32(b))
}

// Scan decodes every record of buf in order and calls fn with the record's
// byte offset. Scanning stops at the first decoding error or the first error
// returned by fn.
func Scan(buf []byte, fn func(offset int, rec Record) error) error {
	dec := NewDecoder(buf)
	for {
		rec, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(dec.Offset(), rec); err != nil {
			return err
		}
	}
}
