// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/player"
	"github.com/gogpu/metafile/sharing"
	"github.com/gogpu/metafile/writer"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
	blue  = color.RGBA{B: 0xff, A: 0xff}
)

// newRenderer maps the model square [0,10]x[0,10] onto size x size pixels.
func newRenderer(size int, opts ...Option) *Renderer {
	return New(size, size, append([]Option{WithView(Ortho(0, 0, 10, 10, size, size))}, opts...)...)
}

func capture(t *testing.T, draw func(w *writer.Writer)) *container.Container {
	t.Helper()
	w := writer.New()
	require.NoError(t, w.Begin())
	draw(w)
	c, err := w.End()
	require.NoError(t, err)
	t.Cleanup(c.Destroy)
	return c
}

func play(t *testing.T, r *Renderer, c *container.Container, highlighted bool) {
	t.Helper()
	require.NoError(t, player.New().Play(c, r, highlighted, false))
}

// fullScreen is a counter-clockwise triangle covering the model square.
func fullScreen(w *writer.Writer, z float32) {
	w.Triangle(metafile.V3(-10, -10, z), metafile.V3(30, -10, z), metafile.V3(-10, 30, z))
}

func TestOrtho(t *testing.T) {
	view := Ortho(0, 0, 10, 10, 100, 50)
	assert.Equal(t, metafile.V3(0, 50, 0), view.Apply(metafile.V3(0, 0, 0)))
	assert.Equal(t, metafile.V3(100, 0, 0), view.Apply(metafile.V3(10, 10, 0)))

	r := newRenderer(40)
	assert.InDelta(t, 0.25, r.Capabilities().PixelSize, 1e-6)
	assert.True(t, r.Capabilities().EmulateLineweight)
}

func TestTriangle(t *testing.T) {
	r := newRenderer(10)
	play(t, r, capture(t, func(w *writer.Writer) {
		w.SetColor(metafile.Red)
		w.Triangle(metafile.V3(0, 0, 0), metafile.V3(10, 0, 0), metafile.V3(0, 10, 0))
	}), false)

	img := r.Image()
	assert.Equal(t, red, img.RGBAAt(1, 8))
	assert.Equal(t, white, img.RGBAAt(8, 1))
}

func TestCulling(t *testing.T) {
	ccw := [3]metafile.Vec3{metafile.V3(0, 0, 0), metafile.V3(10, 0, 0), metafile.V3(0, 10, 0)}
	cw := [3]metafile.Vec3{ccw[0], ccw[2], ccw[1]}

	tests := []struct {
		name    string
		mode    metafile.CullMode
		enabled bool
		tri     [3]metafile.Vec3
		drawn   bool
	}{
		{"back culls clockwise", metafile.CullBack, true, cw, false},
		{"back keeps counter-clockwise", metafile.CullBack, true, ccw, true},
		{"front culls counter-clockwise", metafile.CullFront, true, ccw, false},
		{"disabled", metafile.CullBack, false, cw, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRenderer(10)
			play(t, r, capture(t, func(w *writer.Writer) {
				w.SetAttribute(metafile.AttrCullFace, tt.enabled)
				w.SetCullMode(tt.mode)
				w.SetColor(metafile.Red)
				w.Triangle(tt.tri[0], tt.tri[1], tt.tri[2])
			}), false)
			assert.Equal(t, tt.drawn, r.Image().RGBAAt(1, 8) == red)
		})
	}
}

func TestShading(t *testing.T) {
	colors := [3]metafile.Color{metafile.Red, metafile.Blue, metafile.Blue}
	tri := [3]metafile.Vec3{metafile.V3(-10, -10, 0), metafile.V3(30, -10, 0), metafile.V3(-10, 30, 0)}

	r := newRenderer(10)
	play(t, r, capture(t, func(w *writer.Writer) {
		w.SetShadeModel(metafile.ShadeFlat)
		w.TriangleAttr(tri, writer.TriangleAttribs{Colors: &colors})
	}), false)
	assert.Equal(t, red, r.Image().RGBAAt(5, 5))

	r = newRenderer(10)
	play(t, r, capture(t, func(w *writer.Writer) {
		w.TriangleAttr(tri, writer.TriangleAttribs{Colors: &colors})
	}), false)
	c := r.Image().RGBAAt(5, 5)
	assert.Greater(t, c.R, uint8(0))
	assert.Greater(t, c.B, uint8(0))
}

func TestDepthTest(t *testing.T) {
	scene := func(depth bool) func(w *writer.Writer) {
		return func(w *writer.Writer) {
			w.SetAttribute(metafile.AttrDepthTest, depth)
			w.SetColor(metafile.Red)
			fullScreen(w, 0)
			w.SetColor(metafile.Blue)
			fullScreen(w, 1)
		}
	}

	r := newRenderer(10)
	play(t, r, capture(t, scene(true)), false)
	assert.Equal(t, red, r.Image().RGBAAt(5, 5))

	r = newRenderer(10)
	play(t, r, capture(t, scene(false)), false)
	assert.Equal(t, blue, r.Image().RGBAAt(5, 5))
}

func TestLinesAndPoints(t *testing.T) {
	r := newRenderer(10)
	play(t, r, capture(t, func(w *writer.Writer) {
		w.SetColor(metafile.Red)
		// pixel row 4
		w.Line(metafile.V3(0, 5.5, 0), metafile.V3(10, 5.5, 0))
		w.SetColor(metafile.Blue)
		w.Point(metafile.V3(2.5, 7.5, 0))
		w.Point(metafile.V3(-5, 0, 0))
	}), false)

	img := r.Image()
	assert.Equal(t, red, img.RGBAAt(5, 4))
	assert.Equal(t, white, img.RGBAAt(5, 6))
	assert.Equal(t, blue, img.RGBAAt(2, 2))
}

func TestWideLines(t *testing.T) {
	c := capture(t, func(w *writer.Writer) {
		w.SetColor(metafile.Red)
		w.SetLineweight(metafile.Pixels(4))
		w.Line(metafile.V3(0, 5.5, 0), metafile.V3(10, 5.5, 0))
	})

	r := newRenderer(10)
	play(t, r, c, false)
	img := r.Image()
	assert.Equal(t, red, img.RGBAAt(5, 3))
	assert.Equal(t, red, img.RGBAAt(5, 5))
	assert.Equal(t, white, img.RGBAAt(5, 8))
}

func TestHighlight(t *testing.T) {
	c := capture(t, func(w *writer.Writer) {
		w.SetColor(metafile.Red)
		fullScreen(w, 0)
	})

	r := newRenderer(10)
	play(t, r, c, true)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x64, A: 0xff}, r.Image().RGBAAt(5, 5))

	r = newRenderer(10, WithHighlightColor(metafile.Red))
	play(t, r, c, true)
	assert.Equal(t, red, r.Image().RGBAAt(5, 5))
}

func TestBlend(t *testing.T) {
	r := newRenderer(10)
	play(t, r, capture(t, func(w *writer.Writer) {
		w.SetAttribute(metafile.AttrBlend, true)
		w.SetColor(metafile.RGBA(0, 0, 0, 0x80))
		fullScreen(w, 0)
	}), false)
	c := r.Image().RGBAAt(5, 5)
	assert.InDelta(t, 0x7f, int(c.R), 1)
	assert.Equal(t, uint8(0xff), c.A)
}

func checker() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0xff})
	img.SetNRGBA(1, 0, color.NRGBA{G: 0xff, A: 0xff})
	img.SetNRGBA(0, 1, color.NRGBA{B: 0xff, A: 0xff})
	img.SetNRGBA(1, 1, color.NRGBA{A: 0xff})
	return img
}

var checkerDesc = metafile.TextureDescriptor{
	Size:        gputypes.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 1},
	Format:      gputypes.TextureFormatRGBA8Unorm,
	AddressMode: gputypes.AddressModeRepeat,
}

func texturedScene(img container.Resource, uv metafile.Vec2) func(w *writer.Writer) {
	return texturedWith(checkerDesc, img, uv)
}

func texturedWith(desc metafile.TextureDescriptor, img container.Resource, uv metafile.Vec2) func(w *writer.Writer) {
	return func(w *writer.Writer) {
		w.SetAttribute(metafile.AttrTexture, true)
		w.InitTexture(desc, img)
		uvs := [3]metafile.Vec2{uv, uv, uv}
		w.TriangleAttr([3]metafile.Vec3{metafile.V3(-10, -10, 0), metafile.V3(30, -10, 0), metafile.V3(-10, 30, 0)},
			writer.TriangleAttribs{TexCoords: &uvs})
	}
}

func TestTextureSharing(t *testing.T) {
	key := container.ResourceKey{Kind: container.KindImage, Name: "checker"}
	img := container.NewHandle(key, checker(), nil)
	defer img.Release()

	dev := NewDevice()
	id := textureID{image: sharing.KeyOf(key), desc: checkerDesc}

	c1 := capture(t, texturedScene(img, metafile.V2(0.25, 0.25)))
	c2 := capture(t, texturedScene(img, metafile.V2(1.75, 0.25)))

	r := newRenderer(10, WithDevice(dev))
	play(t, r, c1, false)
	assert.Equal(t, red, r.Image().RGBAAt(5, 5))
	assert.Equal(t, 1, Textures.Refs(id, dev))

	// replaying reuses the container's reference
	play(t, r, c1, false)
	assert.Equal(t, 1, Textures.Refs(id, dev))

	other := newRenderer(10, WithDevice(dev))
	play(t, other, c2, false)
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, other.Image().RGBAAt(5, 5))
	assert.Equal(t, 2, Textures.Refs(id, dev))

	c1.Destroy()
	assert.Equal(t, 1, Textures.Refs(id, dev))
	c2.Destroy()
	assert.Zero(t, Textures.Refs(id, dev))
}

func TestTextureSharedAcrossDevices(t *testing.T) {
	key := container.ResourceKey{Kind: container.KindImage, Name: "checker"}
	img := container.NewHandle(key, checker(), nil)
	defer img.Release()
	id := textureID{image: sharing.KeyOf(key), desc: checkerDesc}

	d1, d2 := NewDevice(), NewDevice()
	c1 := capture(t, texturedScene(img, metafile.V2(0.25, 0.25)))
	c2 := capture(t, texturedScene(img, metafile.V2(1.75, 0.25)))
	defer c2.Destroy()

	r1 := newRenderer(10, WithDevice(d1))
	play(t, r1, c1, false)
	r2 := newRenderer(10, WithDevice(d2))
	play(t, r2, c2, false)
	assert.Equal(t, 2, Textures.Refs(id, d2))
	assert.Same(t, d1, Textures.Owner(id, d2))

	// the texture outlives the device that uploaded it
	d1.Destroy()
	assert.Equal(t, 1, Textures.Refs(id, d2))
	assert.Same(t, d2, Textures.Owner(id, d2))
	r2.Clear()
	play(t, r2, c2, false)
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, r2.Image().RGBAAt(5, 5))

	c1.Destroy()
	assert.Equal(t, 1, Textures.Refs(id, d2))
}

func TestTextureDescriptorIdentity(t *testing.T) {
	key := container.ResourceKey{Kind: container.KindImage, Name: "checker"}
	img := container.NewHandle(key, checker(), nil)
	defer img.Release()

	clamp := checkerDesc
	clamp.AddressMode = gputypes.AddressModeClampToEdge
	uv := metafile.V2(-0.25, 0.25)

	dev := NewDevice()
	repeated := capture(t, texturedWith(checkerDesc, img, uv))
	defer repeated.Destroy()
	clamped := capture(t, texturedWith(clamp, img, uv))
	defer clamped.Destroy()

	r := newRenderer(10, WithDevice(dev))
	play(t, r, repeated, false)
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, r.Image().RGBAAt(5, 5))

	r = newRenderer(10, WithDevice(dev))
	play(t, r, clamped, false)
	assert.Equal(t, red, r.Image().RGBAAt(5, 5))

	assert.Equal(t, 1, Textures.Refs(textureID{image: sharing.KeyOf(key), desc: checkerDesc}, dev))
	assert.Equal(t, 1, Textures.Refs(textureID{image: sharing.KeyOf(key), desc: clamp}, dev))
}

func TestTextureEmptyImage(t *testing.T) {
	img := container.NewHandle(container.ResourceKey{Kind: container.KindImage, Name: "empty"},
		image.Image(image.NewNRGBA(image.Rect(0, 0, 0, 0))), nil)
	defer img.Release()

	_, err := upload(metafile.TextureDescriptor{AddressMode: gputypes.AddressModeRepeat}, img)
	assert.ErrorIs(t, err, ErrNoImage)

	r := newRenderer(10)
	play(t, r, capture(t, func(w *writer.Writer) {
		w.SetColor(metafile.Blue)
		texturedWith(metafile.TextureDescriptor{AddressMode: gputypes.AddressModeRepeat}, img, metafile.V2(0.5, 0.5))(w)
	}), false)
	assert.Equal(t, blue, r.Image().RGBAAt(5, 5))
}

func TestTextureWrap(t *testing.T) {
	assert.Equal(t, 1, wrap(-1, 2, gputypes.AddressModeRepeat))
	assert.Equal(t, 0, wrap(-1, 2, gputypes.AddressModeClampToEdge))
	assert.Equal(t, 1, wrap(7, 2, gputypes.AddressModeClampToEdge))
	assert.Equal(t, 1, wrap(2, 2, gputypes.AddressModeMirrorRepeat))
	assert.Equal(t, 0, wrap(3, 2, gputypes.AddressModeMirrorRepeat))
}

func TestTextureScaling(t *testing.T) {
	img := container.NewHandle(container.ResourceKey{Kind: container.KindImage, Name: "big"}, checker(), nil)
	defer img.Release()

	tex, err := upload(metafile.TextureDescriptor{Size: gputypes.Extent3D{Width: 8, Height: 8}}, img)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), tex.pix.Rect)

	tex, err = upload(metafile.TextureDescriptor{}, img)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), tex.pix.Rect)
}

func TestTextureWithoutImage(t *testing.T) {
	placeholder, err := container.KeyOnly.Resolve(container.ResourceKey{Kind: container.KindImage, Name: "lost"})
	require.NoError(t, err)
	defer placeholder.Release()

	_, err = upload(metafile.TextureDescriptor{}, placeholder)
	assert.ErrorIs(t, err, ErrNoImage)

	// playback falls back to untextured fills
	r := newRenderer(10)
	play(t, r, capture(t, func(w *writer.Writer) {
		w.SetColor(metafile.Blue)
		texturedScene(placeholder, metafile.V2(0, 0))(w)
	}), false)
	assert.Equal(t, blue, r.Image().RGBAAt(5, 5))
}

func TestDeviceDestroy(t *testing.T) {
	key := container.ResourceKey{Kind: container.KindImage, Name: "checker"}
	img := container.NewHandle(key, checker(), nil)
	defer img.Release()

	dev := NewDevice()
	r := newRenderer(10, WithDevice(dev))
	c := capture(t, texturedScene(img, metafile.V2(0.25, 0.25)))
	play(t, r, c, false)
	assert.Equal(t, 1, Textures.Refs(textureID{image: sharing.KeyOf(key), desc: checkerDesc}, dev))

	dev.Destroy()
	dev.Destroy()
	assert.True(t, dev.Destroyed())
	assert.Zero(t, Textures.Refs(textureID{image: sharing.KeyOf(key), desc: checkerDesc}, dev))

	// destroying the container after its device releases nothing twice
	c.Destroy()
	assert.Same(t, dev, dev.Device())
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, dev.SurfaceFormat())
	assert.Equal(t, gpucontext.AdapterTypeSoftware, dev.AdapterInfo().Type)
}

func TestText(t *testing.T) {
	f, err := sfnt.Parse(goregular.TTF)
	require.NoError(t, err)
	var buf sfnt.Buffer
	h, err := f.GlyphIndex(&buf, 'H')
	require.NoError(t, err)

	fonts := func(a, b uint32) (*sfnt.Font, error) { return f, nil }
	run := func(w *writer.Writer) {
		w.SetColor(metafile.Black)
		base := metafile.Affine3{X: metafile.V3(6, 0, 0), Y: metafile.V3(0, 6, 0), Z: metafile.V3(0, 0, 1),
			Origin: metafile.V3(1, 2, 0)}
		w.Text(1, 0, []uint16{uint16(h)}, base, metafile.V3(6, 0, 0))
	}

	inked := func(img *image.RGBA) int {
		n := 0
		for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
			for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
				if img.RGBAAt(x, y) != white {
					n++
				}
			}
		}
		return n
	}

	r := newRenderer(40, WithFonts(fonts))
	play(t, r, capture(t, run), false)
	assert.Greater(t, inked(r.Image()), 20)

	// without fonts text is skipped
	r = newRenderer(40)
	play(t, r, capture(t, run), false)
	assert.Zero(t, inked(r.Image()))
}

func TestWritePNG(t *testing.T) {
	r := New(4, 3, WithBackground(metafile.Blue))
	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	rr, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff}, []uint32{rr, g, b})
}

func TestRegistered(t *testing.T) {
	r, err := player.NewRenderer("raster")
	require.NoError(t, err)
	assert.IsType(t, &Renderer{}, r)
}

func TestOutlineCache(t *testing.T) {
	f, err := sfnt.Parse(goregular.TTF)
	require.NoError(t, err)
	var buf sfnt.Buffer
	g, err := f.GlyphIndex(&buf, 'O')
	require.NoError(t, err)

	r := New(1, 1)
	a, err := r.outline(f, uint16(g))
	require.NoError(t, err)
	require.NotEmpty(t, a)
	assert.Equal(t, sfnt.SegmentOpMoveTo, a[0].op)

	b, err := r.outline(f, uint16(g))
	require.NoError(t, err)
	assert.Same(t, &a[0], &b[0], "served from the cache")

	// em-unit outlines: 'O' sits above the baseline, within one em
	for _, s := range a {
		assert.GreaterOrEqual(t, s.pts[0].V, float32(-0.1))
		assert.LessOrEqual(t, s.pts[0].V, float32(1))
	}
}
