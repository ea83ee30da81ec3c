// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"fmt"
	"strings"
)

// Format returns a one-line description of rec.
func Format(rec Record) string {
	name := rec.Opcode().String()
	switch r := rec.(type) {
	case Enable:
		return name + " " + r.Attr.String()
	case Disable:
		return name + " " + r.Attr.String()
	case SetColor:
		return name + " " + r.Color.String()
	case SetCullMode:
		return fmt.Sprintf("%s %d", name, r.Mode)
	case SetShadeModel:
		return fmt.Sprintf("%s %d", name, r.Model)
	case SetLineStipple:
		return fmt.Sprintf("%s entry=%d value=%d", name, r.Stipple.Entry, r.Stipple.Value)
	case SetFillStipple:
		return fmt.Sprintf("%s entry=%d value=%d", name, r.Stipple.Entry, r.Stipple.Value)
	case SetLineweight:
		return fmt.Sprintf("%s kind=%d value=%g", name, r.Lineweight.Kind, r.Lineweight.Value)
	case SetLineStyle:
		return fmt.Sprintf("%s cap=%d join=%d", name, r.Style.Cap, r.Style.Join)
	case SetMaterial:
		return name + " " + index(r.Resource)
	case InitTexture:
		return fmt.Sprintf("%s res=%s %dx%d format=%d", name, index(r.Resource),
			r.Desc.Size.Width, r.Desc.Size.Height, r.Desc.Format)
	case BindArrays:
		return fmt.Sprintf("%s v=%s c=%s n=%s t=%s", name,
			index(r.Vertices), index(r.Colors), index(r.Normals), index(r.TexCoords))
	case DrawArrays:
		return fmt.Sprintf("%s first=%d count=%d", name, r.First, r.Count)
	case DrawIndexed:
		return fmt.Sprintf("%s idx=%s first=%d count=%d", name, index(r.Indices), r.First, r.Count)
	case SelectionMarker:
		return fmt.Sprintf("%s %d", name, r.ID)
	case BindMarkers:
		return name + " " + index(r.Blob)
	case SetSelectionFlags:
		return fmt.Sprintf("%s %#x", name, uint8(r.Flags))
	case Text:
		return fmt.Sprintf("%s font=%d/%d glyphs=%d", name, r.Run.FontA, r.Run.FontB, len(r.Run.Glyphs))
	}
	return name
}

func index(i uint32) string {
	if i == NoIndex {
		return "-"
	}
	return fmt.Sprintf("#%d", i)
}

// Disassemble renders buf as one line per record, each prefixed with its
// byte offset. On a decoding error the text decoded so far is returned along
// with the error.
func Disassemble(buf []byte) (string, error) {
	var sb strings.Builder
	err := Scan(buf, func(off int, rec Record) error {
		fmt.Fprintf(&sb, "%06x  %s\n", off, Format(rec))
		return nil
	})
	return sb.String(), err
}
