// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
)

// blobCache keeps decoded blobs for the duration of one pass, so arrays
// bound by several draws are decoded once.
type blobCache struct {
	vec3    map[uint32][]metafile.Vec3
	vec2    map[uint32][]metafile.Vec2
	colors  map[uint32][]metafile.Color
	indices map[uint32][]uint32
	markers map[uint32][]container.MarkerEntry
}

func newBlobCache() blobCache {
	return blobCache{
		vec3:    make(map[uint32][]metafile.Vec3),
		vec2:    make(map[uint32][]metafile.Vec2),
		colors:  make(map[uint32][]metafile.Color),
		indices: make(map[uint32][]uint32),
		markers: make(map[uint32][]container.MarkerEntry),
	}
}

func (bc *blobCache) reset() {
	clear(bc.vec3)
	clear(bc.vec2)
	clear(bc.colors)
	clear(bc.indices)
	clear(bc.markers)
}

// cached looks up index i in m, decoding the blob on a miss.
func cached[T any](c *container.Container, m map[uint32][]T, i uint32,
	decode func([]T, []byte) ([]T, error)) ([]T, error) {
	if v, ok := m[i]; ok {
		return v, nil
	}
	b, err := c.Blob(i)
	if err != nil {
		return nil, err
	}
	v, err := decode(nil, b)
	if err != nil {
		return nil, err
	}
	m[i] = v
	return v, nil
}
