// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sharing keeps at most one device allocation per resource identity
// and share group, used by every container that references it.
//
// Contexts in one share group (by default, all of them) see each other's
// allocations. The first Acquire of an identity in a group runs the upload
// callback on the acquiring context, which becomes the allocation's owner;
// later Acquires from any context of the group add references to it. The
// allocation is destroyed by the Release of its last reference. Destroying a
// context drops its references only; allocations still referenced from
// other contexts survive and move to one of them.
//
//	textures := sharing.New[uint64](func(ctx gpucontext.DeviceProvider, t *Texture) {
//	    t.Destroy()
//	})
//	ref, err := textures.Acquire(sharing.KeyOf(img.Key()), ctx, upload)
//	...
//	c.OnDestroy(func() { _ = textures.Release(ref) })
package sharing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/gogpu/gpucontext"
	"github.com/google/uuid"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
)

var (
	// ErrUploadFailed wraps the error of a failed upload callback.
	ErrUploadFailed = errors.New("sharing: upload failed")

	// ErrUnknownRef is returned when releasing a reference that is nil,
	// already released or unlinked by DestroyContext.
	ErrUnknownRef = errors.New("sharing: unknown reference")
)

// Ref is one holder's reference to a shared allocation.
type Ref[K comparable, H any] struct {
	uid    uuid.UUID
	id     K
	ctx    gpucontext.DeviceProvider
	handle H
	alloc  *allocation[K, H]
}

// UID returns the unique identity of this reference.
func (r *Ref[K, H]) UID() uuid.UUID { return r.uid }

// ID returns the resource identity.
func (r *Ref[K, H]) ID() K { return r.id }

// Context returns the context that acquired the reference. It need not be
// the context the allocation was uploaded on.
func (r *Ref[K, H]) Context() gpucontext.DeviceProvider { return r.ctx }

// Handle returns the shared device handle. It stays valid until the
// reference is released or its context destroyed.
func (r *Ref[K, H]) Handle() H { return r.handle }

type slot[K comparable] struct {
	id    K
	group any
}

type allocation[K comparable, H any] struct {
	key    slot[K]
	owner  gpucontext.DeviceProvider
	handle H
	refs   map[*Ref[K, H]]struct{}
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	group func(gpucontext.DeviceProvider) any
}

// WithShareGroup sets the function mapping a context to its share group.
// Contexts with equal group keys share allocations. Group keys must be
// comparable. The default puts every context in one group.
func WithShareGroup(fn func(ctx gpucontext.DeviceProvider) any) Option {
	return func(o *options) {
		if fn != nil {
			o.group = fn
		}
	}
}

// PerContext is a share group function that shares nothing between
// contexts.
func PerContext(ctx gpucontext.DeviceProvider) any { return ctx }

// Provider maps (identity, share group) pairs to shared allocations.
// It is safe for concurrent use.
type Provider[K comparable, H any] struct {
	mu      sync.Mutex
	allocs  map[slot[K]]*allocation[K, H]
	group   func(gpucontext.DeviceProvider) any
	destroy func(gpucontext.DeviceProvider, H)
}

// New creates a Provider. destroy frees a device handle on its owning
// context; it runs without the Provider lock held.
func New[K comparable, H any](destroy func(ctx gpucontext.DeviceProvider, h H), opts ...Option) *Provider[K, H] {
	o := options{group: func(gpucontext.DeviceProvider) any { return nil }}
	for _, opt := range opts {
		opt(&o)
	}
	return &Provider[K, H]{
		allocs:  make(map[slot[K]]*allocation[K, H]),
		group:   o.group,
		destroy: destroy,
	}
}

func (p *Provider[K, H]) slot(id K, ctx gpucontext.DeviceProvider) slot[K] {
	return slot[K]{id: id, group: p.group(ctx)}
}

// Acquire returns a new reference to the allocation of id visible from
// ctx, calling upload on ctx to create it if none exists. A failed upload
// leaves nothing registered. upload runs with the Provider locked and must
// not call back into it.
func (p *Provider[K, H]) Acquire(id K, ctx gpucontext.DeviceProvider,
	upload func(ctx gpucontext.DeviceProvider) (H, error)) (*Ref[K, H], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := p.slot(id, ctx)
	a := p.allocs[key]
	if a == nil {
		h, err := upload(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %w", ErrUploadFailed, id, err)
		}
		a = &allocation[K, H]{key: key, owner: ctx, handle: h, refs: make(map[*Ref[K, H]]struct{})}
		p.allocs[key] = a
		metafile.Logger().Debug("shared allocation created", "id", id)
	}

	ref := &Ref[K, H]{uid: uuid.New(), id: id, ctx: ctx, handle: a.handle, alloc: a}
	a.refs[ref] = struct{}{}
	return ref, nil
}

// Release drops ref. The allocation is destroyed when its last reference
// is released, whichever context holds it.
func (p *Provider[K, H]) Release(ref *Ref[K, H]) error {
	if ref == nil {
		return ErrUnknownRef
	}

	p.mu.Lock()
	a := ref.alloc
	if a == nil {
		p.mu.Unlock()
		metafile.Logger().Warn("release of unknown shared reference", "id", ref.id, "ref", ref.uid)
		return ErrUnknownRef
	}
	delete(a.refs, ref)
	ref.alloc = nil
	last := len(a.refs) == 0
	if last {
		delete(p.allocs, a.key)
	}
	p.mu.Unlock()

	if last {
		metafile.Logger().Debug("shared allocation destroyed", "id", ref.id)
		p.destroy(a.owner, a.handle)
	}
	return nil
}

// DestroyContext unlinks every reference acquired on ctx; releasing those
// afterwards returns ErrUnknownRef. Allocations left without references
// are destroyed. Allocations still referenced from other contexts survive,
// and those owned by ctx pass to one of the remaining contexts.
// It returns the number of allocations destroyed.
func (p *Provider[K, H]) DestroyContext(ctx gpucontext.DeviceProvider) int {
	var destroyed []*allocation[K, H]

	p.mu.Lock()
	for key, a := range p.allocs {
		for ref := range a.refs {
			if ref.ctx == ctx {
				ref.alloc = nil
				delete(a.refs, ref)
			}
		}
		if len(a.refs) == 0 {
			destroyed = append(destroyed, a)
			delete(p.allocs, key)
			continue
		}
		if a.owner == ctx {
			for ref := range a.refs {
				a.owner = ref.ctx
				break
			}
		}
	}
	p.mu.Unlock()

	for _, a := range destroyed {
		p.destroy(a.owner, a.handle)
	}
	if len(destroyed) > 0 {
		metafile.Logger().Debug("shared context destroyed", "allocations", len(destroyed))
	}
	return len(destroyed)
}

// Allocations returns the number of live allocations.
func (p *Provider[K, H]) Allocations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.allocs)
}

// Refs returns the number of live references, from any context, to the
// allocation of id visible from ctx, or zero if there is none.
func (p *Provider[K, H]) Refs(id K, ctx gpucontext.DeviceProvider) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a := p.allocs[p.slot(id, ctx)]; a != nil {
		return len(a.refs)
	}
	return 0
}

// Owner returns the context owning the allocation of id visible from ctx,
// or nil if there is none.
func (p *Provider[K, H]) Owner(id K, ctx gpucontext.DeviceProvider) gpucontext.DeviceProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a := p.allocs[p.slot(id, ctx)]; a != nil {
		return a.owner
	}
	return nil
}

// KeyOf returns a stable sharing identity for a resource key. Keys are
// equal across processes and persisted containers.
func KeyOf(k container.ResourceKey) uint64 {
	var kind [1]byte
	kind[0] = byte(k.Kind)
	d := xxhash.New()
	_, _ = d.Write(kind[:])
	_, _ = d.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(k.Name)))) // #nosec G115 -- names are short
	_, _ = d.WriteString(k.Name)
	return d.Sum64()
}
