// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The GPU backend can adopt the host's device instead of opening its own,
// so the flood passes share queues and memory with the host renderer.
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// SurfaceUsage specifies how a surface can be used.
// These flags can be combined with bitwise OR.
type SurfaceUsage uint32

const (
	// SurfaceUsageCopySrc allows the surface to be read back or copied from.
	SurfaceUsageCopySrc SurfaceUsage = 1 << iota

	// SurfaceUsageCopyDst allows host uploads into the surface.
	SurfaceUsageCopyDst

	// SurfaceUsageSampled allows the surface to be read by a pass.
	SurfaceUsageSampled

	// SurfaceUsageStorage allows the surface to be written by a pass.
	SurfaceUsageStorage
)

// FloodUsage is the usage of every flood ping-pong surface.
const FloodUsage = SurfaceUsageSampled | SurfaceUsageStorage | SurfaceUsageCopySrc

// TargetUsage is the usage of view color surfaces.
const TargetUsage = SurfaceUsageSampled | SurfaceUsageStorage | SurfaceUsageCopySrc | SurfaceUsageCopyDst

// SurfaceDescriptor describes a 2D RGBA surface. It is comparable and is
// the key surfaces are pooled by.
type SurfaceDescriptor struct {
	// Label is an optional debug label. It is part of the cache key.
	Label string

	// Width and Height are the surface size in texels.
	Width, Height int

	// Format is the texel format. Flood surfaces use RGBA32Float.
	Format gputypes.TextureFormat

	// Usage specifies how the surface will be used.
	Usage SurfaceUsage
}

// Validate checks that the descriptor can be allocated.
func (d SurfaceDescriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("render: invalid surface size %dx%d", d.Width, d.Height)
	}
	if d.Format == gputypes.TextureFormatUndefined {
		return fmt.Errorf("render: surface %q has undefined format", d.Label)
	}
	return nil
}

// FloodFormat is the texel format of mask, seed and flood surfaces.
const FloodFormat = gputypes.TextureFormatRGBA32Float

// TargetFormat returns the color target format for the HDR flag.
func TargetFormat(hdr bool) gputypes.TextureFormat {
	if hdr {
		return gputypes.TextureFormatRGBA32Float
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// Surface is a backend-owned 2D surface.
type Surface interface {
	// Descriptor returns the descriptor the surface was created from.
	Descriptor() SurfaceDescriptor
}

// SurfaceAllocator creates and releases surfaces.
type SurfaceAllocator interface {
	CreateSurface(desc SurfaceDescriptor) (Surface, error)
	DestroySurface(s Surface)
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only backends where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
