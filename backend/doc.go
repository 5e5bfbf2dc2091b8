// Package backend provides a pluggable registry of flood backends.
//
// A backend executes the mask, seed, flood and composite passes of a
// jump flood run. Backends register themselves from init functions and
// are selected at runtime:
//
//	import _ "github.com/gogpu/voronoi/backend/software"
//	import _ "github.com/gogpu/voronoi/backend/wgpu"
//
//	b, err := backend.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// # Available Backends
//
//   - "software": CPU passes over float32 surfaces (always available)
//   - "wgpu": compute passes on a GPU device through gogpu/wgpu
//
// Default prefers "wgpu" and falls back to "software" when no GPU
// adapter can be opened.
package backend
