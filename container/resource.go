// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package container

import (
	"fmt"
	"sync/atomic"
)

// ResourceKind classifies a resource for persistence and resolution.
type ResourceKind uint8

const (
	KindOther ResourceKind = iota
	KindMaterial
	KindImage
)

// String returns the kind name.
func (k ResourceKind) String() string {
	switch k {
	case KindMaterial:
		return "material"
	case KindImage:
		return "image"
	default:
		return "other"
	}
}

// ResourceKey is the stable identity of a resource. Persisted metafiles
// store keys, never in-process handles, and re-resolve them on load.
type ResourceKey struct {
	Kind ResourceKind `cbor:"1,keyasint"`
	Name string       `cbor:"2,keyasint"`
}

// String returns kind:name.
func (k ResourceKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Name)
}

// Resource is a reference-counted external object referenced by index from
// the record stream: a material, an image, or anything a renderer
// understands.
type Resource interface {
	Key() ResourceKey
	Retain()
	Release()
}

// Handle is the standard Resource implementation. It wraps a value and runs
// its destroy function exactly once, when the last reference is released.
//
// Handle is safe for concurrent use.
type Handle[T any] struct {
	key     ResourceKey
	value   T
	refs    atomic.Int64
	destroy func(T)
}

// NewHandle creates a handle holding one reference, owned by the caller.
// destroy may be nil.
func NewHandle[T any](key ResourceKey, value T, destroy func(T)) *Handle[T] {
	h := &Handle[T]{key: key, value: value, destroy: destroy}
	h.refs.Store(1)
	return h
}

// Key returns the resource identity.
func (h *Handle[T]) Key() ResourceKey { return h.key }

// Value returns the wrapped value.
func (h *Handle[T]) Value() T { return h.value }

// Refs returns the current reference count.
func (h *Handle[T]) Refs() int { return int(h.refs.Load()) }

// Retain adds a reference.
func (h *Handle[T]) Retain() {
	h.refs.Add(1)
}

// Release drops a reference and destroys the value when none remain.
// Releasing a destroyed handle panics.
func (h *Handle[T]) Release() {
	n := h.refs.Add(-1)
	switch {
	case n == 0:
		if h.destroy != nil {
			h.destroy(h.value)
		}
	case n < 0:
		panic(fmt.Sprintf("container: release of destroyed resource %s", h.key))
	}
}

// Resolver maps persisted resource keys back to live resources. The
// returned resource is retained by the container it is attached to; the
// resolver keeps its own reference.
type Resolver interface {
	Resolve(key ResourceKey) (Resource, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(key ResourceKey) (Resource, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(key ResourceKey) (Resource, error) { return f(key) }

// KeyOnly resolves every key to a placeholder that carries the key and no
// value. It lets tools inspect persisted metafiles without the resources
// they were recorded against.
var KeyOnly Resolver = ResolverFunc(func(key ResourceKey) (Resource, error) {
	return NewHandle[struct{}](key, struct{}{}, nil), nil
})
