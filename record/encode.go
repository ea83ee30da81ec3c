// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/metafile"
)

var le = binary.LittleEndian

// Size returns the encoded length of rec including its opcode byte.
func Size(rec Record) int {
	info := rec.Opcode().Info()
	n := 1 + info.Size
	if t, ok := rec.(Text); ok {
		n += info.TailElem * len(t.Run.Glyphs)
	}
	return n
}

// Append encodes rec and appends it to dst.
// It panics if rec carries a topology that has no draw opcode; writers
// only build draw records from the three supported list topologies.
func Append(dst []byte, rec Record) []byte {
	op := rec.Opcode()
	if !op.Valid() {
		panic(fmt.Sprintf("record: cannot encode %T with opcode %d", rec, op))
	}
	dst = append(dst, byte(op))

	switch r := rec.(type) {
	case Enable:
		dst = append(dst, byte(r.Attr))
	case Disable:
		dst = append(dst, byte(r.Attr))
	case SetColor:
		dst = append(dst, r.Color.R, r.Color.G, r.Color.B, r.Color.A)
	case SetCullMode:
		dst = append(dst, byte(r.Mode))
	case SetShadeModel:
		dst = append(dst, byte(r.Model))
	case SetLineStipple:
		dst = append(dst, r.Stipple.Entry, r.Stipple.Value)
	case SetFillStipple:
		dst = append(dst, r.Stipple.Entry, r.Stipple.Value)
	case SetLineweight:
		dst = append(dst, byte(r.Lineweight.Kind))
		dst = appendFloat(dst, r.Lineweight.Value)
	case SetLineStyle:
		dst = append(dst, byte(r.Style.Cap), byte(r.Style.Join))
	case SetMaterial:
		dst = le.AppendUint32(dst, r.Resource)
	case InitTexture:
		dst = le.AppendUint32(dst, r.Resource)
		dst = le.AppendUint32(dst, r.Desc.Size.Width)
		dst = le.AppendUint32(dst, r.Desc.Size.Height)
		dst = le.AppendUint32(dst, r.Desc.Size.DepthOrArrayLayers)
		dst = le.AppendUint32(dst, uint32(r.Desc.Format))
		dst = append(dst, byte(r.Desc.Filter), byte(r.Desc.AddressMode), boolByte(r.Desc.Modulate))
	case UninitTexture, UnbindMarkers:
	case BindArrays:
		dst = le.AppendUint32(dst, r.Vertices)
		dst = le.AppendUint32(dst, r.Colors)
		dst = le.AppendUint32(dst, r.Normals)
		dst = le.AppendUint32(dst, r.TexCoords)
	case DrawArrays:
		dst = le.AppendUint32(dst, r.First)
		dst = le.AppendUint32(dst, r.Count)
	case DrawIndexed:
		dst = le.AppendUint32(dst, r.Indices)
		dst = le.AppendUint32(dst, r.First)
		dst = le.AppendUint32(dst, r.Count)
	case SelectionMarker:
		dst = le.AppendUint64(dst, uint64(r.ID))
	case BindMarkers:
		dst = le.AppendUint32(dst, r.Blob)
	case SetSelectionFlags:
		dst = append(dst, byte(r.Flags))
	case Text:
		dst = appendText(dst, r.Run)
	}
	return dst
}

func appendText(dst []byte, run metafile.TextRun) []byte {
	dst = le.AppendUint32(dst, run.FontA)
	dst = le.AppendUint32(dst, run.FontB)
	for _, f := range run.Transform.Floats() {
		dst = appendFloat(dst, f)
	}
	dst = appendFloat(dst, run.Step.X)
	dst = appendFloat(dst, run.Step.Y)
	dst = appendFloat(dst, run.Step.Z)
	dst = le.AppendUint32(dst, uint32(len(run.Glyphs)))
	for _, g := range run.Glyphs {
		dst = le.AppendUint16(dst, g)
	}
	return dst
}

func appendFloat(dst []byte, f float32) []byte {
	return le.AppendUint32(dst, math.Float32bits(f))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
