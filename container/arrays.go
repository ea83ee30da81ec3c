// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/metafile"
)

// Element sizes of the array blob encodings.
const (
	Vec3Size   = 12
	Vec2Size   = 8
	ColorSize  = 4
	IndexSize  = 4
	MarkerSize = 12
)

// ErrArrayLength is returned when a blob length is not a multiple of the
// element size of the array it is decoded as.
var ErrArrayLength = errors.New("container: array blob length mismatch")

var le = binary.LittleEndian

// MarkerEntry starts a marker range: elements from Offset up to the next
// entry's Offset (or the end of the draw) belong to ID.
type MarkerEntry struct {
	Offset uint32
	ID     metafile.Marker
}

func checkArray(b []byte, elem int, what string) (int, error) {
	if len(b)%elem != 0 {
		return 0, fmt.Errorf("%w: %s blob of %d bytes", ErrArrayLength, what, len(b))
	}
	return len(b) / elem, nil
}

func appendFloat(dst []byte, f float32) []byte {
	return le.AppendUint32(dst, math.Float32bits(f))
}

func float(b []byte) float32 {
	return math.Float32frombits(le.Uint32(b))
}

// AppendVec3s encodes points or normals.
func AppendVec3s(dst []byte, v []metafile.Vec3) []byte {
	for _, p := range v {
		dst = appendFloat(dst, p.X)
		dst = appendFloat(dst, p.Y)
		dst = appendFloat(dst, p.Z)
	}
	return dst
}

// DecodeVec3s decodes a point or normal blob, reusing dst's storage.
func DecodeVec3s(dst []metafile.Vec3, b []byte) ([]metafile.Vec3, error) {
	n, err := checkArray(b, Vec3Size, "vec3")
	if err != nil {
		return dst, err
	}
	dst = dst[:0]
	for i := 0; i < n; i++ {
		o := i * Vec3Size
		dst = append(dst, metafile.V3(float(b[o:]), float(b[o+4:]), float(b[o+8:])))
	}
	return dst, nil
}

// AppendVec2s encodes texture coordinates.
func AppendVec2s(dst []byte, v []metafile.Vec2) []byte {
	for _, p := range v {
		dst = appendFloat(dst, p.U)
		dst = appendFloat(dst, p.V)
	}
	return dst
}

// DecodeVec2s decodes a texture coordinate blob.
func DecodeVec2s(dst []metafile.Vec2, b []byte) ([]metafile.Vec2, error) {
	n, err := checkArray(b, Vec2Size, "vec2")
	if err != nil {
		return dst, err
	}
	dst = dst[:0]
	for i := 0; i < n; i++ {
		o := i * Vec2Size
		dst = append(dst, metafile.V2(float(b[o:]), float(b[o+4:])))
	}
	return dst, nil
}

// AppendColors encodes per-vertex colors.
func AppendColors(dst []byte, c []metafile.Color) []byte {
	for _, col := range c {
		dst = append(dst, col.R, col.G, col.B, col.A)
	}
	return dst
}

// DecodeColors decodes a color blob.
func DecodeColors(dst []metafile.Color, b []byte) ([]metafile.Color, error) {
	n, err := checkArray(b, ColorSize, "color")
	if err != nil {
		return dst, err
	}
	dst = dst[:0]
	for i := 0; i < n; i++ {
		o := i * ColorSize
		dst = append(dst, metafile.RGBA(b[o], b[o+1], b[o+2], b[o+3]))
	}
	return dst, nil
}

// AppendIndices encodes an index list.
func AppendIndices(dst []byte, idx []uint32) []byte {
	for _, i := range idx {
		dst = le.AppendUint32(dst, i)
	}
	return dst
}

// DecodeIndices decodes an index blob.
func DecodeIndices(dst []uint32, b []byte) ([]uint32, error) {
	n, err := checkArray(b, IndexSize, "index")
	if err != nil {
		return dst, err
	}
	dst = dst[:0]
	for i := 0; i < n; i++ {
		dst = append(dst, le.Uint32(b[i*IndexSize:]))
	}
	return dst, nil
}

// AppendMarkers encodes a marker table.
func AppendMarkers(dst []byte, m []MarkerEntry) []byte {
	for _, e := range m {
		dst = le.AppendUint32(dst, e.Offset)
		dst = le.AppendUint64(dst, uint64(e.ID))
	}
	return dst
}

// DecodeMarkers decodes a marker table blob.
func DecodeMarkers(dst []MarkerEntry, b []byte) ([]MarkerEntry, error) {
	n, err := checkArray(b, MarkerSize, "marker")
	if err != nil {
		return dst, err
	}
	dst = dst[:0]
	for i := 0; i < n; i++ {
		o := i * MarkerSize
		dst = append(dst, MarkerEntry{
			Offset: le.Uint32(b[o:]),
			ID:     metafile.Marker(le.Uint64(b[o+4:])),
		})
	}
	return dst, nil
}
