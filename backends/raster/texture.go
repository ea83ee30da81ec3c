// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/sharing"
)

// ErrNoImage is returned when a texture resource carries no image data.
var ErrNoImage = errors.New("raster: texture resource has no image")

// ImageSource is implemented by image resources, such as a
// *container.Handle[image.Image].
type ImageSource interface {
	Value() image.Image
}

// texture is an uploaded texture.
type texture struct {
	pix  *image.NRGBA
	desc metafile.TextureDescriptor
}

// textureID identifies an upload: the same image bound with another
// descriptor is a different texture.
type textureID struct {
	image uint64
	desc  metafile.TextureDescriptor
}

// Textures shares uploaded textures between renderers, containers and
// Devices.
var Textures = sharing.New[textureID](func(_ gpucontext.DeviceProvider, t *texture) {
	t.pix = nil
})

// upload converts img to the texture size of desc.
func upload(desc metafile.TextureDescriptor, img container.Resource) (*texture, error) {
	src, ok := img.(ImageSource)
	if !ok || src.Value() == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoImage, img.Key())
	}
	im := src.Value()
	if im.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoImage, img.Key())
	}
	w, h := int(desc.Size.Width), int(desc.Size.Height)
	if w == 0 || h == 0 {
		w, h = im.Bounds().Dx(), im.Bounds().Dy()
	}
	pix := image.NewNRGBA(image.Rect(0, 0, w, h))
	if im.Bounds().Size() == pix.Rect.Size() {
		xdraw.Copy(pix, image.Point{}, im, im.Bounds(), xdraw.Src, nil)
	} else {
		xdraw.ApproxBiLinear.Scale(pix, pix.Rect, im, im.Bounds(), xdraw.Src, nil)
	}
	return &texture{pix: pix, desc: desc}, nil
}

func (r *Renderer) InitTexture(desc metafile.TextureDescriptor, img container.Resource) {
	r.tex = nil
	c := r.c
	if c == nil || r.dev.Destroyed() {
		return
	}
	key := textureID{image: sharing.KeyOf(img.Key()), desc: desc}

	r.mu.Lock()
	ref := r.held[c][key]
	r.mu.Unlock()
	if ref != nil {
		r.tex = ref.Handle()
		return
	}

	ref, err := Textures.Acquire(key, r.dev, func(gpucontext.DeviceProvider) (*texture, error) {
		return upload(desc, img)
	})
	if err != nil {
		metafile.Logger().Warn("texture upload failed", "resource", img.Key().String(), "err", err)
		return
	}

	r.mu.Lock()
	refs := r.held[c]
	first := refs == nil
	if first {
		refs = make(map[textureID]*sharing.Ref[textureID, *texture])
		r.held[c] = refs
	}
	refs[key] = ref
	r.mu.Unlock()

	r.tex = ref.Handle()
	if first {
		// runs at once if c is already destroyed
		c.OnDestroy(func() { r.release(c) })
	}
}

func (r *Renderer) UninitTexture() { r.tex = nil }

// release drops the texture references held for c.
func (r *Renderer) release(c *container.Container) {
	r.mu.Lock()
	refs := r.held[c]
	delete(r.held, c)
	r.mu.Unlock()

	for _, ref := range refs {
		if err := Textures.Release(ref); err != nil && !errors.Is(err, sharing.ErrUnknownRef) {
			metafile.Logger().Warn("texture release failed", "err", err)
		}
	}
}

// sample returns the texel at uv.
func (t *texture) sample(uv metafile.Vec2) metafile.Color {
	b := t.pix.Rect
	x := wrap(uv.U*float32(b.Dx()), b.Dx(), t.desc.AddressMode)
	y := wrap(uv.V*float32(b.Dy()), b.Dy(), t.desc.AddressMode)
	c := t.pix.NRGBAAt(x, y)
	return metafile.RGBA(c.R, c.G, c.B, c.A)
}

// wrap maps a texel coordinate into [0, n).
func wrap(f float32, n int, mode gputypes.AddressMode) int {
	i := int(math32.Floor(f))
	switch mode {
	case gputypes.AddressModeRepeat:
		i %= n
		if i < 0 {
			i += n
		}
	case gputypes.AddressModeMirrorRepeat:
		p := i % (2 * n)
		if p < 0 {
			p += 2 * n
		}
		if p >= n {
			p = 2*n - 1 - p
		}
		i = p
	default:
		i = min(max(i, 0), n-1)
	}
	return i
}
