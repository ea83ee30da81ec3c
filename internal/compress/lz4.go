// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type lz4Codec struct{}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("compress: lz4: %w", err)
	}
	if n == 0 {
		// incompressible
		return nil, nil
	}
	return dst[:n], nil
}

func (lz4Codec) Decompress(data []byte, rawLen int) ([]byte, error) {
	if rawLen == 0 {
		return checkLen(nil, rawLen)
	}
	out := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("compress: lz4: %w", err)
	}
	return checkLen(out[:n], rawLen)
}
