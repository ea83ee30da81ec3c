// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/writer"
)

func writeMetafile(t *testing.T) string {
	t.Helper()
	w := writer.New()
	require.NoError(t, w.Begin())
	w.SetColor(metafile.Red)
	w.Line(metafile.V3(0, 0, 0), metafile.V3(4, 4, 0))
	w.SetColor(metafile.Blue)
	w.Triangle(metafile.V3(0, 0, 0), metafile.V3(4, 0, 0), metafile.V3(0, 4, 0))
	c, err := w.End()
	require.NoError(t, err)
	defer c.Destroy()

	path := filepath.Join(t.TempDir(), "scene.tvmf")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = container.WriteTo(f, c)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func TestRun_Summary(t *testing.T) {
	path := writeMetafile(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{path}, &out))
	assert.Contains(t, out.String(), "records     6 (2 draws)")
	assert.Contains(t, out.String(), "Color")
	assert.NotContains(t, out.String(), "000000  ")
}

func TestRun_Verbose(t *testing.T) {
	path := writeMetafile(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-v", "-trace", path}, &out))
	assert.Contains(t, out.String(), "Color #ff0000ff")
	assert.Contains(t, out.String(), "op: DrawArrays")
}

func TestRun_PNG(t *testing.T) {
	path := writeMetafile(t)
	img := filepath.Join(t.TempDir(), "scene.png")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-png", img, "-size", "32", path}, &out))

	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, decoded.Bounds().Dx())
}

func TestRun_Config(t *testing.T) {
	path := writeMetafile(t)
	cfg := filepath.Join(t.TempDir(), "tuning.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[playback]\nfallback_buffer_vertices = 12\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", cfg, path}, &out))

	require.NoError(t, os.WriteFile(cfg, []byte("[playback]\nfallback_buffer_vertices = 1\n"), 0o600))
	assert.Error(t, run([]string{"-config", cfg, path}, &out))
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{filepath.Join(t.TempDir(), "missing.tvmf")}, &out))

	bad := filepath.Join(t.TempDir(), "bad.tvmf")
	require.NoError(t, os.WriteFile(bad, bytes.Repeat([]byte("x"), 100), 0o600))
	assert.ErrorIs(t, run([]string{bad}, &out), container.ErrBadMagic)

	require.NoError(t, os.WriteFile(bad, []byte("short"), 0o600))
	assert.ErrorIs(t, run([]string{bad}, &out), container.ErrFormat)
}

func TestBounds_Square(t *testing.T) {
	var b bounds
	minX, minY, maxX, maxY := b.square()
	assert.Equal(t, []float32{0, 0, 1, 1}, []float32{minX, minY, maxX, maxY})

	b.Polygon([]metafile.Vec3{metafile.V3(0, 0, 0), metafile.V3(10, 0, 0), metafile.V3(0, 4, 0)})
	minX, minY, maxX, maxY = b.square()
	assert.InDelta(t, 11, maxX-minX, 1e-4)
	assert.InDelta(t, 11, maxY-minY, 1e-4)
	assert.InDelta(t, 5, (minX+maxX)/2, 1e-4)
	assert.InDelta(t, 2, (minY+maxY)/2, 1e-4)
}
