// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package compress provides the block codecs used to persist metafiles.
//
// Every codec works on whole blocks: the persisted header records the
// uncompressed length, so decompression always knows its output size.
package compress

import (
	"errors"
	"fmt"
)

// Type identifies a codec. The values are part of the persisted format.
type Type uint8

const (
	None Type = iota
	Zstd
	S2
	LZ4
)

var typeNames = [...]string{
	None: "none",
	Zstd: "zstd",
	S2:   "s2",
	LZ4:  "lz4",
}

// String returns the configuration name of the codec.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType maps a configuration name to a Type.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("compress: unknown compression %q", name)
}

// ErrSizeMismatch is returned when a block does not decompress to the
// recorded length.
var ErrSizeMismatch = errors.New("compress: decompressed size mismatch")

// Codec compresses and decompresses whole blocks.
type Codec interface {
	// Compress returns the compressed form of data. A nil result with a nil
	// error means the data is not compressible and should be stored raw.
	Compress(data []byte) ([]byte, error)

	// Decompress restores a block of exactly rawLen bytes.
	Decompress(data []byte, rawLen int) ([]byte, error)
}

var builtinCodecs = map[Type]Codec{
	None: noopCodec{},
	Zstd: zstdCodec{},
	S2:   s2Codec{},
	LZ4:  lz4Codec{},
}

// Get returns the codec for t.
func Get(t Type) (Codec, error) {
	if c, ok := builtinCodecs[t]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("compress: unsupported compression %s", t)
}

func checkLen(out []byte, rawLen int) ([]byte, error) {
	if len(out) != rawLen {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(out), rawLen)
	}
	return out, nil
}

type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (noopCodec) Decompress(data []byte, rawLen int) ([]byte, error) {
	return checkLen(data, rawLen)
}
