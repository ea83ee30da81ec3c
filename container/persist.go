// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/internal/compress"
	"github.com/gogpu/metafile/record"
)

// Persisted layout:
//
//	header   magic "TVMF", version u16, compression u8, reserved u8,
//	         records u32, blobs u32, resources u32, raw payload length u64
//	id       16 bytes
//	payload  compressed: stream length u32, stream,
//	         blobs × (length u32, bytes), key table length u32, CBOR keys
//	trailer  xxhash64 of everything before it
const (
	magic         = "TVMF"
	formatVersion = 1
	headerSize    = 28
	idSize        = 16
	trailerSize   = 8

	maxRawPayload = 1 << 31
)

// Persistence errors.
var (
	ErrBadMagic   = errors.New("container: not a metafile")
	ErrVersion    = errors.New("container: unsupported format version")
	ErrChecksum   = errors.New("container: checksum mismatch")
	ErrFormat     = errors.New("container: malformed metafile")
	ErrUnresolved = errors.New("container: unresolved resource")
)

var keyEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("container: cbor enc mode: %v", err))
	}
	return em
}()

// PersistOption configures Marshal.
type PersistOption func(*persistOptions)

type persistOptions struct {
	compression string
}

// WithCompression selects the payload codec: "none", "zstd", "s2" or "lz4".
func WithCompression(name string) PersistOption {
	return func(o *persistOptions) {
		o.compression = name
	}
}

// WithPersistConfig applies the persist section of a configuration.
func WithPersistConfig(cfg metafile.PersistConfig) PersistOption {
	return WithCompression(cfg.Compression)
}

// Marshal serializes c. Blobs are stored by value and resources by key.
func Marshal(c *Container, opts ...PersistOption) ([]byte, error) {
	o := persistOptions{compression: metafile.DefaultConfig().Persist.Compression}
	for _, opt := range opts {
		opt(&o)
	}
	typ, err := compress.ParseType(o.compression)
	if err != nil {
		return nil, err
	}
	codec, err := compress.Get(typ)
	if err != nil {
		return nil, err
	}
	if c.destroyed {
		return nil, ErrDestroyed
	}

	keys := make([]ResourceKey, len(c.resources))
	for i, r := range c.resources {
		keys[i] = r.Key()
	}
	keyTable, err := keyEncMode.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("container: encode resource keys: %w", err)
	}

	raw := make([]byte, 0, 8+len(c.buf)+int(c.blobBytes)+4*len(c.blobs)+len(keyTable))
	raw = le.AppendUint32(raw, uint32(len(c.buf))) // #nosec G115 -- stream bounded by maxRawPayload on load
	raw = append(raw, c.buf...)
	for _, b := range c.blobs {
		raw = le.AppendUint32(raw, uint32(len(b))) // #nosec G115
		raw = append(raw, b...)
	}
	raw = le.AppendUint32(raw, uint32(len(keyTable))) // #nosec G115
	raw = append(raw, keyTable...)

	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, err
	}
	if payload == nil || len(payload) >= len(raw) {
		typ, payload = compress.None, raw
	}

	out := make([]byte, 0, headerSize+idSize+len(payload)+trailerSize)
	out = append(out, magic...)
	out = le.AppendUint16(out, formatVersion)
	out = append(out, byte(typ), 0)
	out = le.AppendUint32(out, uint32(c.records))        // #nosec G115
	out = le.AppendUint32(out, uint32(len(c.blobs)))     // #nosec G115
	out = le.AppendUint32(out, uint32(len(c.resources))) // #nosec G115
	out = le.AppendUint64(out, uint64(len(raw)))
	out = append(out, c.id[:]...)
	out = append(out, payload...)
	out = le.AppendUint64(out, xxhash.Sum64(out))

	metafile.Logger().Debug("container marshaled",
		"id", c.id, "compression", typ, "raw", len(raw), "stored", len(payload))
	return out, nil
}

// header is the decoded fixed part of a persisted metafile.
type header struct {
	compression compress.Type
	records     uint32
	blobs       uint32
	resources   uint32
	rawLen      uint64
}

func parseHeader(data []byte) (header, error) {
	if len(data) < headerSize+idSize+trailerSize {
		return header{}, fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
	}
	if string(data[:4]) != magic {
		return header{}, ErrBadMagic
	}
	if v := le.Uint16(data[4:]); v != formatVersion {
		return header{}, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	return header{
		compression: compress.Type(data[6]),
		records:     le.Uint32(data[8:]),
		blobs:       le.Uint32(data[12:]),
		resources:   le.Uint32(data[16:]),
		rawLen:      le.Uint64(data[20:]),
	}, nil
}

// payloadReader walks the decompressed payload without reading past it.
type payloadReader struct {
	b   []byte
	pos int
}

func (p *payloadReader) chunk(what string) ([]byte, error) {
	if len(p.b)-p.pos < 4 {
		return nil, fmt.Errorf("%w: %s length truncated", ErrFormat, what)
	}
	n := int64(le.Uint32(p.b[p.pos:]))
	p.pos += 4
	if n > int64(len(p.b)-p.pos) {
		return nil, fmt.Errorf("%w: %s of %d bytes truncated", ErrFormat, what, n)
	}
	out := p.b[p.pos : p.pos+int(n)]
	p.pos += int(n)
	return out, nil
}

// Unmarshal restores a container serialized by Marshal. The checksum is
// verified, resource keys are resolved through res, and the record stream is
// fully scanned so that corrupt streams are rejected before playback.
//
// opts configure the restored container; its identity always comes from the
// serialized data.
func Unmarshal(data []byte, res Resolver, opts ...Option) (*Container, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[:len(data)-trailerSize]
	if xxhash.Sum64(body) != le.Uint64(data[len(data)-trailerSize:]) {
		return nil, ErrChecksum
	}
	if h.rawLen > maxRawPayload {
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrFormat, h.rawLen)
	}
	codec, err := compress.Get(h.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	raw, err := codec.Decompress(body[headerSize+idSize:], int(h.rawLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	id, err := uuid.FromBytes(body[headerSize : headerSize+idSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	c := New(append(opts[:len(opts):len(opts)], WithID(id))...)
	if err := c.load(raw, h, res); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Container) load(raw []byte, h header, res Resolver) error {
	p := payloadReader{b: raw}
	stream, err := p.chunk("stream")
	if err != nil {
		return err
	}
	for i := uint32(0); i < h.blobs; i++ {
		blob, err := p.chunk("blob")
		if err != nil {
			return err
		}
		if _, err := c.AppendBlob(blob); err != nil {
			return err
		}
	}
	keyTable, err := p.chunk("key table")
	if err != nil {
		return err
	}
	if p.pos != len(raw) {
		return fmt.Errorf("%w: %d trailing payload bytes", ErrFormat, len(raw)-p.pos)
	}

	var keys []ResourceKey
	if err := cbor.Unmarshal(keyTable, &keys); err != nil {
		return fmt.Errorf("%w: resource keys: %w", ErrFormat, err)
	}
	if len(keys) != int(h.resources) {
		return fmt.Errorf("%w: %d resource keys, header says %d", ErrFormat, len(keys), h.resources)
	}
	for _, key := range keys {
		r, err := res.Resolve(key)
		if err != nil {
			return fmt.Errorf("%w %s: %w", ErrUnresolved, key, err)
		}
		if r == nil {
			return fmt.Errorf("%w %s", ErrUnresolved, key)
		}
		if _, err := c.AppendResource(r); err != nil {
			return err
		}
	}

	if err := c.reserve(len(stream)); err != nil {
		return err
	}
	err = record.Scan(stream, func(_ int, rec record.Record) error {
		if err := c.checkRefs(rec); err != nil {
			return err
		}
		c.count(rec.Opcode())
		return nil
	})
	if err != nil {
		return fmt.Errorf("container: corrupt stream: %w", err)
	}
	if c.records != int(h.records) {
		return fmt.Errorf("%w: %d records, header says %d", ErrFormat, c.records, h.records)
	}
	c.buf = bytes.Clone(stream)
	return nil
}

// WriteTo marshals c and writes it to w.
func WriteTo(w io.Writer, c *Container, opts ...PersistOption) (int64, error) {
	data, err := Marshal(c, opts...)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom reads a whole persisted metafile from r and unmarshals it.
func ReadFrom(r io.Reader, res Resolver, opts ...Option) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("container: read metafile: %w", err)
	}
	return Unmarshal(data, res, opts...)
}
