// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package container

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/record"
)

func sampleContainer(t *testing.T) *Container {
	t.Helper()
	c := New()
	mat := NewHandle(ResourceKey{Kind: KindMaterial, Name: "brass"}, 0, nil)
	defer mat.Release()
	m, err := c.AppendResource(mat)
	require.NoError(t, err)

	pts := make([]metafile.Vec3, 300)
	for i := range pts {
		pts[i] = metafile.V3(float32(i), float32(i%7), 0)
	}
	v, err := c.AppendBlob(AppendVec3s(nil, pts))
	require.NoError(t, err)

	for _, rec := range []record.Record{
		record.SetMaterial{Resource: m},
		record.SetColor{Color: metafile.Green},
		record.BindArrays{Vertices: v, Colors: record.NoIndex, Normals: record.NoIndex, TexCoords: record.NoIndex},
		record.DrawArrays{Topology: gputypes.PrimitiveTopologyTriangleList, Count: 300},
	} {
		require.NoError(t, c.AppendRecord(rec))
	}
	return c
}

func TestMarshal_RoundTrip(t *testing.T) {
	for _, comp := range []string{"none", "zstd", "s2", "lz4"} {
		t.Run(comp, func(t *testing.T) {
			c := sampleContainer(t)
			data, err := Marshal(c, WithCompression(comp))
			require.NoError(t, err)

			var resolved []ResourceKey
			got, err := Unmarshal(data, ResolverFunc(func(key ResourceKey) (Resource, error) {
				resolved = append(resolved, key)
				return NewHandle(key, 0, nil), nil
			}))
			require.NoError(t, err)

			assert.Equal(t, c.ID(), got.ID())
			assert.Equal(t, c.Bytes(), got.Bytes())
			assert.Equal(t, c.Fingerprint(), got.Fingerprint())
			assert.Equal(t, c.RecordCount(), got.RecordCount())
			assert.Equal(t, c.DrawCount(), got.DrawCount())
			assert.Equal(t, []ResourceKey{{Kind: KindMaterial, Name: "brass"}}, resolved)
		})
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	c := sampleContainer(t)
	a, err := Marshal(c)
	require.NoError(t, err)
	b, err := Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshal_UnknownCompression(t *testing.T) {
	_, err := Marshal(New(), WithCompression("brotli"))
	assert.Error(t, err)

	_, err = Marshal(New(), WithPersistConfig(metafile.PersistConfig{Compression: "s2"}))
	assert.NoError(t, err)
}

func TestUnmarshal_Corrupt(t *testing.T) {
	data, err := Marshal(sampleContainer(t))
	require.NoError(t, err)

	t.Run("Magic", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] = 'X'
		_, err := Unmarshal(bad, KeyOnly)
		assert.ErrorIs(t, err, ErrBadMagic)
	})
	t.Run("Version", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[4] = 9
		_, err := Unmarshal(bad, KeyOnly)
		assert.ErrorIs(t, err, ErrVersion)
	})
	t.Run("Checksum", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[len(bad)/2] ^= 0xFF
		_, err := Unmarshal(bad, KeyOnly)
		assert.ErrorIs(t, err, ErrChecksum)
	})
	t.Run("Short", func(t *testing.T) {
		_, err := Unmarshal(data[:10], KeyOnly)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("Truncated", func(t *testing.T) {
		_, err := Unmarshal(data[:len(data)-3], KeyOnly)
		assert.Error(t, err)
	})
}

func TestUnmarshal_CorruptStream(t *testing.T) {
	c := New()
	require.NoError(t, c.AppendRecord(record.SetColor{Color: metafile.Red}))
	c.buf = append(c.buf, 0xEE) // not an opcode
	data, err := Marshal(c, WithCompression("none"))
	require.NoError(t, err)

	_, err = Unmarshal(data, KeyOnly)
	assert.ErrorIs(t, err, record.ErrUnknownOpcode)
}

func TestUnmarshal_Unresolved(t *testing.T) {
	data, err := Marshal(sampleContainer(t))
	require.NoError(t, err)

	missing := errors.New("missing")
	_, err = Unmarshal(data, ResolverFunc(func(ResourceKey) (Resource, error) {
		return nil, missing
	}))
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.ErrorIs(t, err, missing)
}

func TestUnmarshal_Budget(t *testing.T) {
	data, err := Marshal(sampleContainer(t))
	require.NoError(t, err)
	_, err = Unmarshal(data, KeyOnly, WithByteBudget(64))
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestWriteToReadFrom(t *testing.T) {
	c := sampleContainer(t)
	var buf bytes.Buffer
	n, err := WriteTo(&buf, c, WithCompression("lz4"))
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	got, err := ReadFrom(&buf, KeyOnly)
	require.NoError(t, err)
	assert.Equal(t, c.Fingerprint(), got.Fingerprint())
}

func TestMarshal_Destroyed(t *testing.T) {
	c := New()
	c.Destroy()
	_, err := Marshal(c)
	assert.ErrorIs(t, err, ErrDestroyed)
}
