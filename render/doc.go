// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the contract between the voronoi pass engine and
// the GPU (or CPU) backend that executes it.
//
// # Key Principle
//
// The engine RECEIVES surfaces, pipelines and a device from its backend, it
// does NOT create GPU objects itself. A backend implements [Backend]; the
// engine drives it through the four pass kinds of a jump flood run:
//
//	mask → seed init → flood × N → composite
//
// # Core Types
//
//   - Backend: surface allocation, pipeline compilation and pass execution
//   - Surface / SurfaceDescriptor: an RGBA surface and the key it is cached by
//   - TextureCache: descriptor-keyed surface reuse with frame-age eviction
//   - PipelineCache: queued, asynchronously ready pipeline compilation
//   - FloodTextures: the ping-pong pair owned by one view
//   - ViewTarget: a view's color target with post-process read/write slots
//   - Mesh / Affine / Viewport: geometry handed to the mask pass
//
// # Thread Safety
//
// TextureCache and PipelineCache are safe for concurrent use. FloodTextures
// and ViewTarget belong to one view and are used from one goroutine at a
// time.
package render
