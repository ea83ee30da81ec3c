// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package container holds recorded metafiles: the record stream plus two
// side tables, array blobs and reference-counted resources, that records
// address by 32-bit index.
//
// Indices are stable: appending never moves or invalidates earlier blobs or
// resources. A container is written by a single writer; once recording has
// finished it is immutable and may be played back from many goroutines at
// once without locking.
package container

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/record"
)

// Container errors.
var (
	// ErrExhausted is returned when an append would exceed the byte budget.
	// Nothing is appended in that case.
	ErrExhausted = errors.New("container: byte budget exhausted")

	// ErrDestroyed is returned when appending to a destroyed container.
	ErrDestroyed = errors.New("container: destroyed")

	// ErrBlobIndex is returned for a reference to a blob that does not exist.
	ErrBlobIndex = errors.New("container: blob index out of range")

	// ErrResourceIndex is returned for a reference to a resource that does
	// not exist.
	ErrResourceIndex = errors.New("container: resource index out of range")
)

// Option configures a Container.
type Option func(*options)

type options struct {
	budget int64
	id     uuid.UUID
}

// WithByteBudget caps the total size of stream and blobs. Zero or negative
// means unlimited.
func WithByteBudget(n int64) Option {
	return func(o *options) {
		o.budget = n
	}
}

// WithID sets the container identity instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(o *options) {
		o.id = id
	}
}

// Container is a recorded metafile.
type Container struct {
	id        uuid.UUID
	buf       []byte
	blobs     [][]byte
	blobBytes int64
	resources []Resource
	counts    [256]int
	records   int
	draws     int
	budget    int64
	hooks     []func()
	destroyed bool
}

// New creates an empty container with a fresh random identity.
func New(opts ...Option) *Container {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	return &Container{id: o.id, budget: o.budget}
}

// ID returns the container identity. It survives persistence.
func (c *Container) ID() uuid.UUID { return c.id }

// Bytes returns the record stream. The slice must not be modified.
func (c *Container) Bytes() []byte { return c.buf }

// Size returns the bytes held by the stream and all blobs.
func (c *Container) Size() int64 { return int64(len(c.buf)) + c.blobBytes }

// Budget returns the byte budget, or zero when unlimited.
func (c *Container) Budget() int64 { return c.budget }

// RecordCount returns the number of records in the stream.
func (c *Container) RecordCount() int { return c.records }

// OpcodeCount returns the number of records with the given opcode.
func (c *Container) OpcodeCount(op record.Opcode) int { return c.counts[op] }

// DrawCount returns the number of draw records.
func (c *Container) DrawCount() int { return c.draws }

// BlobCount returns the number of array blobs.
func (c *Container) BlobCount() int { return len(c.blobs) }

// ResourceCount returns the number of resource references.
func (c *Container) ResourceCount() int { return len(c.resources) }

// Destroyed reports whether Destroy has been called.
func (c *Container) Destroyed() bool { return c.destroyed }

func (c *Container) reserve(n int) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.budget > 0 && c.Size()+int64(n) > c.budget {
		return fmt.Errorf("%w: %d + %d bytes over budget %d", ErrExhausted, c.Size(), n, c.budget)
	}
	return nil
}

// AppendRecord encodes rec at the end of the stream. Every blob and
// resource index rec carries must already exist.
func (c *Container) AppendRecord(rec record.Record) error {
	if err := c.checkRefs(rec); err != nil {
		return err
	}
	if err := c.reserve(record.Size(rec)); err != nil {
		return err
	}
	c.buf = record.Append(c.buf, rec)
	c.count(rec.Opcode())
	return nil
}

func (c *Container) count(op record.Opcode) {
	c.counts[op]++
	c.records++
	if op.IsDraw() {
		c.draws++
	}
}

func (c *Container) checkBlob(i uint32, optional bool) error {
	if i == record.NoIndex && optional {
		return nil
	}
	if int64(i) >= int64(len(c.blobs)) {
		return fmt.Errorf("%w: %d of %d", ErrBlobIndex, i, len(c.blobs))
	}
	return nil
}

func (c *Container) checkResource(i uint32, optional bool) error {
	if i == record.NoIndex && optional {
		return nil
	}
	if int64(i) >= int64(len(c.resources)) {
		return fmt.Errorf("%w: %d of %d", ErrResourceIndex, i, len(c.resources))
	}
	return nil
}

func (c *Container) checkRefs(rec record.Record) error {
	switch r := rec.(type) {
	case record.BindArrays:
		return errors.Join(
			c.checkBlob(r.Vertices, false),
			c.checkBlob(r.Colors, true),
			c.checkBlob(r.Normals, true),
			c.checkBlob(r.TexCoords, true),
		)
	case record.DrawIndexed:
		return c.checkBlob(r.Indices, false)
	case record.BindMarkers:
		return c.checkBlob(r.Blob, false)
	case record.SetMaterial:
		return c.checkResource(r.Resource, true)
	case record.InitTexture:
		return c.checkResource(r.Resource, false)
	}
	return nil
}

// AppendBlob copies b into a new array blob and returns its index.
func (c *Container) AppendBlob(b []byte) (uint32, error) {
	if err := c.reserve(len(b)); err != nil {
		return record.NoIndex, err
	}
	if len(c.blobs) >= int(record.NoIndex) {
		return record.NoIndex, fmt.Errorf("%w: blob table full", ErrExhausted)
	}
	owned := make([]byte, len(b))
	copy(owned, b)
	c.blobs = append(c.blobs, owned)
	c.blobBytes += int64(len(b))
	return uint32(len(c.blobs) - 1), nil // #nosec G115 -- bounded above
}

// Blob returns the array blob at index i. The slice must not be modified.
func (c *Container) Blob(i uint32) ([]byte, error) {
	if err := c.checkBlob(i, false); err != nil {
		return nil, err
	}
	return c.blobs[i], nil
}

// AppendResource retains r and adds it to the resource table.
func (c *Container) AppendResource(r Resource) (uint32, error) {
	if c.destroyed {
		return record.NoIndex, ErrDestroyed
	}
	if len(c.resources) >= int(record.NoIndex) {
		return record.NoIndex, fmt.Errorf("%w: resource table full", ErrExhausted)
	}
	r.Retain()
	c.resources = append(c.resources, r)
	return uint32(len(c.resources) - 1), nil // #nosec G115 -- bounded above
}

// Resource returns the resource at index i.
func (c *Container) Resource(i uint32) (Resource, error) {
	if err := c.checkResource(i, false); err != nil {
		return nil, err
	}
	return c.resources[i], nil
}

// Fingerprint hashes the stream, the blobs and the resource keys. Two
// containers with the same content have the same fingerprint whatever their
// identities.
func (c *Container) Fingerprint() uint64 {
	d := xxhash.New()
	var n [8]byte
	le.PutUint64(n[:], uint64(len(c.buf)))
	_, _ = d.Write(n[:])
	_, _ = d.Write(c.buf)
	for _, b := range c.blobs {
		le.PutUint64(n[:], uint64(len(b)))
		_, _ = d.Write(n[:])
		_, _ = d.Write(b)
	}
	for _, r := range c.resources {
		_, _ = d.WriteString(r.Key().String())
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// OnDestroy registers fn to run when the container is destroyed. Hooks run
// in reverse registration order. Renderers use them to release per-container
// device resources.
func (c *Container) OnDestroy(fn func()) {
	if c.destroyed {
		fn()
		return
	}
	c.hooks = append(c.hooks, fn)
}

// Clear drops all records, blobs and resources, keeping the identity, the
// budget and the destroy hooks.
func (c *Container) Clear() {
	c.releaseResources()
	c.buf = c.buf[:0]
	c.blobs = nil
	c.blobBytes = 0
	c.counts = [256]int{}
	c.records = 0
	c.draws = 0
}

func (c *Container) releaseResources() {
	for i, r := range c.resources {
		r.Release()
		c.resources[i] = nil
	}
	c.resources = nil
}

// Destroy releases every resource, frees all blobs and runs the destroy
// hooks. It is safe to call more than once.
func (c *Container) Destroy() {
	if c.destroyed {
		return
	}
	metafile.Logger().Debug("container destroyed",
		"id", c.id, "records", c.records, "blobs", len(c.blobs), "resources", len(c.resources))

	c.Clear()
	c.buf = nil
	c.destroyed = true
	hooks := c.hooks
	c.hooks = nil
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}
