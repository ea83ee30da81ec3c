// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownRenderer is returned by NewRenderer for names nobody registered.
var ErrUnknownRenderer = errors.New("player: unknown renderer")

// RendererFactory builds a renderer with its package defaults.
type RendererFactory func() Renderer

var (
	registryMu sync.RWMutex
	renderers  = make(map[string]RendererFactory)
)

// Register makes a renderer available under name. Backend packages call it
// from init, so a blank import is enough to select one:
//
//	func init() {
//	    player.Register("raster", func() player.Renderer {
//	        return New(800, 600)
//	    })
//	}
//
// A nil factory or a name taken twice panics.
func Register(name string, factory RendererFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("player: nil renderer factory for " + name)
	}
	if _, taken := renderers[name]; taken {
		panic("player: renderer " + name + " registered twice")
	}
	renderers[name] = factory
}

// Unregister forgets name. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(renderers, name)
}

// NewRenderer builds the renderer registered as name.
//
//	import _ "github.com/gogpu/metafile/backends/raster"
//
//	r, err := player.NewRenderer("raster")
func NewRenderer(name string) (Renderer, error) {
	registryMu.RLock()
	factory := renderers[name]
	registryMu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w %q (backend package not imported?)", ErrUnknownRenderer, name)
	}
	return factory(), nil
}

// MustRenderer is NewRenderer for names known to be registered.
func MustRenderer(name string) Renderer {
	r, err := NewRenderer(name)
	if err != nil {
		panic(err)
	}
	return r
}

// Renderers lists the registered names in order.
func Renderers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(renderers))
}

// IsRegistered reports whether name has a factory.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return renderers[name] != nil
}

// Count is the number of registered renderers.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(renderers)
}
