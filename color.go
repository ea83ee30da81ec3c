// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package metafile

import (
	"fmt"
	"image/color"
)

// Color is a straight (non-premultiplied) 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// RGBA creates a color with alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Common colors.
var (
	Black = RGB(0, 0, 0)
	White = RGB(0xff, 0xff, 0xff)
	Red   = RGB(0xff, 0, 0)
	Green = RGB(0, 0xff, 0)
	Blue  = RGB(0, 0, 0xff)
)

// NRGBA converts the color to the standard library representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Lerp blends c toward d by t in [0, 1].
func (c Color) Lerp(d Color, t float32) Color {
	mix := func(a, b uint8) uint8 {
		return uint8(float32(a) + (float32(b)-float32(a))*t + 0.5)
	}
	return Color{R: mix(c.R, d.R), G: mix(c.G, d.G), B: mix(c.B, d.B), A: mix(c.A, d.A)}
}

// String returns the color as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
