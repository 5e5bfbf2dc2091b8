// Package software implements the flood passes on the CPU.
//
// Surfaces are float32 RGBA grids. Surfaces created with an 8-bit format
// quantize every write, so LDR targets read back the same values a GPU
// target would hold. Row bands of every pass run in parallel on an
// internal worker pool.
//
// The backend registers itself as "software" when imported:
//
//	import _ "github.com/gogpu/voronoi/backend/software"
package software
