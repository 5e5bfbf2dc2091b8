//go:build !nogpu

// Package gpu runs the flood passes as compute shaders on a wgpu HAL
// device.
//
// Every surface is a storage buffer of vec4<f32> texels in row-major
// order, so mask, seed, flood and composite passes share one binding
// model: a uniform block at binding 0, read-only inputs after it, and the
// read-write output last. LDR targets are quantized by the composite
// shader.
//
// # Device
//
// Open creates its own Vulkan device. NewFromProvider adopts the device of
// a host application that exposes HAL handles:
//
//	type halProvider interface {
//		HalDevice() any
//		HalQueue() any
//	}
//
// # Shaders
//
// WGSL sources are embedded from shaders/. With Config.SPIRV set they are
// compiled to SPIR-V by naga before module creation.
//
// # Synchronization
//
// Each pass is one command buffer followed by a fence wait, which makes
// every write visible to the next pass of the same view.
package gpu
