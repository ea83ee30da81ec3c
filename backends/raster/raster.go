// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster is a software display backend that replays metafiles into
// an *image.RGBA.
//
// Triangles are filled per pixel with flat, smooth or textured shading, an
// optional depth buffer and back or front face culling. Lines and points
// are one pixel wide; the renderer asks the player to emulate wider
// lineweights. Text runs are filled from sfnt glyph outlines.
//
// The package registers itself as "raster":
//
//	import _ "github.com/gogpu/metafile/backends/raster"
//
//	r := player.MustRenderer("raster")
package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/vector"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/player"
	"github.com/gogpu/metafile/sharing"
)

func init() {
	player.Register("raster", func() player.Renderer {
		return New(800, 600)
	})
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithView sets the model to pixel transform. Only X and Y of the result
// address pixels; Z feeds the depth test.
func WithView(view metafile.Affine3) Option {
	return func(r *Renderer) {
		r.view = view
	}
}

// WithDevice renders on dev. Renderers on one device share textures.
func WithDevice(dev *Device) Option {
	return func(r *Renderer) {
		r.dev = dev
	}
}

// WithFonts sets the resolver for the fonts of text runs.
func WithFonts(fonts FontResolver) Option {
	return func(r *Renderer) {
		r.fonts = fonts
	}
}

// WithHighlightColor sets the color highlighted geometry is tinted toward.
func WithHighlightColor(c metafile.Color) Option {
	return func(r *Renderer) {
		r.highlightColor = c
	}
}

// WithBackground sets the color Clear fills the image with.
func WithBackground(c metafile.Color) Option {
	return func(r *Renderer) {
		r.background = c
	}
}

// Renderer rasterizes display playback. It is not safe for concurrent use,
// except that containers it has drawn may be destroyed from any goroutine.
type Renderer struct {
	img   *image.RGBA
	depth []float32
	z     *vector.Rasterizer
	buf   sfnt.Buffer

	view           metafile.Affine3
	dev            *Device
	fonts          FontResolver
	highlightColor metafile.Color
	background     metafile.Color

	// current state
	c         *container.Container
	attrs     [metafile.NumAttributes]bool
	color     metafile.Color
	cull      metafile.CullMode
	shade     metafile.ShadeModel
	highlight bool
	marker    metafile.Marker
	tex       *texture

	mu   sync.Mutex
	held map[*container.Container]map[textureID]*sharing.Ref[textureID, *texture]
}

var _ player.Renderer = (*Renderer)(nil)

// New creates a width x height renderer cleared to the background color.
func New(width, height int, opts ...Option) *Renderer {
	r := &Renderer{
		img:            image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:          make([]float32, width*height),
		z:              vector.NewRasterizer(width, height),
		view:           metafile.Identity3(),
		highlightColor: metafile.RGB(0xff, 0xc8, 0),
		background:     metafile.White,
		held:           make(map[*container.Container]map[textureID]*sharing.Ref[textureID, *texture]),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dev == nil {
		r.dev = NewDevice()
	}
	r.Clear()
	return r
}

// Ortho returns a view mapping the model rectangle [minX,maxX]x[minY,maxY]
// onto a width x height image with Y up.
func Ortho(minX, minY, maxX, maxY float32, width, height int) metafile.Affine3 {
	sx := float32(width) / (maxX - minX)
	sy := float32(height) / (maxY - minY)
	return metafile.Affine3{
		X:      metafile.V3(sx, 0, 0),
		Y:      metafile.V3(0, -sy, 0),
		Z:      metafile.V3(0, 0, 1),
		Origin: metafile.V3(-minX*sx, maxY*sy, 0),
	}
}

// Image returns the rendered image.
func (r *Renderer) Image() *image.RGBA { return r.img }

// Device returns the device the renderer draws on.
func (r *Renderer) Device() *Device { return r.dev }

// Clear fills the image with the background color and resets the depth
// buffer.
func (r *Renderer) Clear() {
	bg := r.background.NRGBA()
	pix := r.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = premul(bg.R, bg.A)
		pix[i+1] = premul(bg.G, bg.A)
		pix[i+2] = premul(bg.B, bg.A)
		pix[i+3] = bg.A
	}
	for i := range r.depth {
		r.depth[i] = float32(math.Inf(1))
	}
}

// WritePNG encodes the image as PNG.
func (r *Renderer) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("raster: encode png: %w", err)
	}
	return nil
}

// Capabilities reports hairline-only lines, so wide lineweights arrive as
// triangles.
func (r *Renderer) Capabilities() player.Capabilities {
	px := float32(1)
	if l := r.view.X.Length(); l > 0 {
		px = 1 / l
	}
	return player.Capabilities{EmulateLineweight: true, PixelSize: px, Antialiasing: true}
}

func (r *Renderer) Begin(c *container.Container) {
	r.c = c
	r.attrs = [metafile.NumAttributes]bool{}
	r.color = metafile.Black
	r.cull = metafile.CullNone
	r.shade = metafile.ShadeSmooth
	r.highlight = false
	r.marker = metafile.NoMarker
	r.tex = nil
}

func (r *Renderer) End() {
	r.c = nil
	r.tex = nil
}

func (r *Renderer) SetAttribute(attr metafile.Attribute, on bool) {
	if attr.Valid() {
		r.attrs[attr] = on
	}
}

func (r *Renderer) SetColor(c metafile.Color)           { r.color = c }
func (r *Renderer) SetCullMode(m metafile.CullMode)     { r.cull = m }
func (r *Renderer) SetShadeModel(m metafile.ShadeModel) { r.shade = m }
func (r *Renderer) SetHighlight(on bool)                { r.highlight = on }
func (r *Renderer) SetSelectionMarker(id metafile.Marker) {
	r.marker = id
}

// Stipples, lineweights, line styles and materials do not change how the
// software rasterizer fills pixels.

func (r *Renderer) SetLineStipple(metafile.Stipple)   {}
func (r *Renderer) SetFillStipple(metafile.Stipple)   {}
func (r *Renderer) SetLineweight(metafile.Lineweight) {}
func (r *Renderer) SetLineStyle(metafile.LineStyle)   {}
func (r *Renderer) SetMaterial(container.Resource)    {}

// project maps a model point to pixel space.
func (r *Renderer) project(p metafile.Vec3) metafile.Vec3 {
	return r.view.Apply(p)
}

// shadeColor applies the highlight tint.
func (r *Renderer) shadeColor(c metafile.Color) metafile.Color {
	if r.highlight {
		return c.Lerp(r.highlightColor, 0.5)
	}
	return c
}

func premul(c, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + 127) / 255) // #nosec G115 -- result <= 255
}
