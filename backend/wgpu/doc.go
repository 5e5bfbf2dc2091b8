// Package wgpu registers the GPU compute flood backend.
//
// Importing the package registers the "wgpu" backend, which opens a
// Vulkan device through gogpu/wgpu on first use:
//
//	import _ "github.com/gogpu/voronoi/backend/wgpu"
//
// Host applications that already own a device can share it instead:
//
//	b, err := wgpu.NewFromProvider(wgpu.Config{}, provider)
//
// Building with the nogpu tag leaves the package empty and the backend
// unregistered.
package wgpu
