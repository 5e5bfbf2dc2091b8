// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/voronoi/flood"
)

// Backend executes the passes of a jump flood run.
//
// Passes on one view are issued strictly in order and each pass observes
// every write of the previous one. Backends may be called for different
// views from different goroutines; surfaces are never shared between
// concurrent callers.
type Backend interface {
	SurfaceAllocator
	PipelineCompiler

	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// BeginMask clears target to zero and returns an encoder drawing
	// participant meshes into it. Drawing is restricted to viewport.
	BeginMask(target Surface, viewport Viewport) (MaskEncoder, error)

	// Seed converts the mask in src into seed texels in dst.
	Seed(p Pipeline, src, dst Surface) error

	// Flood runs one jump flood pass with stride step from src into dst.
	Flood(p Pipeline, src, dst Surface, step flood.Step) error

	// Composite draws the flood result over the color content of
	// pp.Source into pp.Destination. Pixels outside viewport are copied
	// from the source unchanged.
	Composite(p Pipeline, field Surface, pp PostProcessWrite, viewport Viewport, params CompositeParams) error

	// WriteSurface uploads img into s, converting to the surface format.
	WriteSurface(s Surface, img image.Image) error

	// ReadSurface returns the texels of s as RGBA float32, row-major.
	ReadSurface(s Surface) ([]float32, error)

	// Close releases all backend resources.
	Close() error
}

// MaskEncoder records the draws of one mask pass. The draw sequence is
// SetPipeline, SetView, then per batch SetMesh, SetMaterial and Draw.
type MaskEncoder interface {
	SetPipeline(p Pipeline)
	SetView(v ViewUniform)
	SetMesh(m *Mesh)
	SetMaterial(m *MaskMaterial)
	// Draw rasterizes the bound mesh once per instance.
	Draw(instances []Instance) error
	// End submits the pass.
	End() error
}

// ViewUniform is the per-view data bound for the mask pass.
type ViewUniform struct {
	// WorldToSurface maps world coordinates to surface texels.
	WorldToSurface Affine
	// Width and Height are the surface size in texels.
	Width, Height int
}

// MaskMaterial is the per-drawable material bound for the mask pass.
type MaskMaterial struct {
	// Mask is sampled by UV; texels with alpha below Threshold are
	// discarded. A nil Mask fills the mesh opaquely.
	Mask *image.Alpha
	// Threshold is the alpha cut-off in [0,1].
	Threshold float32
}

// Instance is one drawn copy of a mesh.
type Instance struct {
	// Transform maps mesh coordinates to world coordinates.
	Transform Affine
	// Owner is the 1-based participant id written into the mask.
	Owner uint32
}

// CompositeMode selects what the composite pass visualizes.
type CompositeMode uint8

const (
	// CompositeDistance draws the distance to the nearest seed as gray.
	CompositeDistance CompositeMode = iota
	// CompositeVoronoi colors every pixel by its nearest seed's owner.
	CompositeVoronoi
	// CompositeOutline draws a band around every seed shape.
	CompositeOutline
)

// String returns the mode name.
func (m CompositeMode) String() string {
	switch m {
	case CompositeDistance:
		return "distance"
	case CompositeVoronoi:
		return "voronoi"
	case CompositeOutline:
		return "outline"
	default:
		return "unknown"
	}
}

// CompositeParams configures the composite pass.
type CompositeParams struct {
	Mode CompositeMode
	// Scale is the flood surface size divided by the target size.
	Scale float32
	// MaxDistance maps distances (in target pixels) to [0,1] in distance
	// mode.
	MaxDistance float32
	// OutlineWidth is the band width in target pixels.
	OutlineWidth float32
	// OutlineColor is the band color.
	OutlineColor color.NRGBA
	// Opacity mixes the visualization over the source color.
	Opacity float32
}
