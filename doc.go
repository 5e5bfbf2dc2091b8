// Package voronoi generates jump flood Voronoi diagrams and distance
// fields for the views of a 2D renderer.
//
// # Overview
//
// Every frame, for every view with participants, the plugin rasterizes the
// meshes of drawables carrying a Material into a mask, turns covered mask
// texels into seeds, floods the seeds with the jump flood algorithm and
// composites a distance, Voronoi or outline visualization over the view's
// color target.
//
// # Quick Start
//
//	import "github.com/gogpu/voronoi"
//
//	p, err := voronoi.New(voronoi.WithScale(0.5))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	target, _ := render.NewViewTarget(p.Backend(), 800, 600, false)
//	stats, err := p.RenderFrame(ctx, voronoi.Frame{
//	    Tick:      1,
//	    Views:     []voronoi.View{{ID: 1, Target: target, Visible: []render.EntityID{1}}},
//	    Drawables: []voronoi.Drawable{{ID: 1, Mesh: 1, Transform: render.Translate(400, 300), Material: &voronoi.Material{}}},
//	    Assets:    voronoi.AssetMap{Meshes: map[voronoi.MeshID]*render.Mesh{1: render.RegularPolygon(6, 40)}},
//	})
//
// # Passes
//
// The passes of one view run in a fixed order on a pair of ping-pong
// surfaces (render.FloodTextures):
//
//  1. mask: participants are drawn into Output, then the pair flips
//  2. seed: covered texels become seeds, then the pair flips
//  3. flood: one pass per stride of flood.Steps, flipping after each
//  4. composite: the final Input is drawn over the view target
//
// # Scheduling
//
// With RecomputeOnChange, views whose camera, settings, size and
// participants did not change since their last run skip the first three
// passes and composite their retained flood result. The output is the same
// as with RecomputeAlways.
//
// # Backends
//
// Passes run on a render.Backend. The software backend is always
// available; importing github.com/gogpu/voronoi/backend/wgpu adds the GPU
// backend, which is preferred when present.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Seed texel (x, y) is the pixel whose center is (x+0.5, y+0.5)
package voronoi

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
