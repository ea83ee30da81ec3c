// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device is a CPU device context. Texture memory is ordinary heap memory,
// so all Devices form one share group: a texture is uploaded once and
// shared by every renderer and container on any Device.
type Device struct {
	destroyed atomic.Bool
}

// NewDevice creates a CPU device.
func NewDevice() *Device {
	return &Device{}
}

var (
	_ gpucontext.DeviceProvider = (*Device)(nil)
	_ gpucontext.Device         = (*Device)(nil)
)

// Device returns d itself.
func (d *Device) Device() gpucontext.Device { return d }

// Queue returns the CPU queue. Uploads complete synchronously.
func (d *Device) Queue() gpucontext.Queue { return cpuQueue{} }

// Adapter returns the CPU adapter.
func (d *Device) Adapter() gpucontext.Adapter { return cpuAdapter{} }

// SurfaceFormat returns the format of rendered images.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// AdapterInfo reports the software adapter.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "metafile raster", Type: gpucontext.AdapterTypeSoftware}
}

// Poll is a no-op: CPU work is never pending.
func (d *Device) Poll(bool) {}

// Destroy drops the texture references taken on d, freeing textures no
// other Device uses. Renderers on a destroyed device draw untextured.
func (d *Device) Destroy() {
	if d.destroyed.Swap(true) {
		return
	}
	Textures.DestroyContext(d)
}

// Destroyed reports whether Destroy was called.
func (d *Device) Destroyed() bool { return d.destroyed.Load() }

type cpuQueue struct{}

type cpuAdapter struct{}
