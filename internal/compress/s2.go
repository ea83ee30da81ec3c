// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

type s2Codec struct{}

func (s2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Encode(nil, data), nil
}

func (s2Codec) Decompress(data []byte, rawLen int) ([]byte, error) {
	if rawLen == 0 {
		return checkLen(nil, rawLen)
	}
	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("compress: s2: %w", err)
	}
	if n != rawLen {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, n, rawLen)
	}
	out, err := s2.Decode(make([]byte, rawLen), data)
	if err != nil {
		return nil, fmt.Errorf("compress: s2: %w", err)
	}
	return checkLen(out, rawLen)
}
