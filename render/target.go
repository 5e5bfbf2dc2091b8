// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/voronoi/flood"
)

// ViewTarget is the color target of one view.
//
// It holds two equally sized color surfaces so post-processing passes can
// read the current color content and write the new one without a hazard.
// Main always returns the surface holding the latest color content.
//
// Example:
//
//	target, _ := render.NewViewTarget(backend, 800, 600, false)
//	backend.WriteSurface(target.Main(), sceneImage)
//	pp := target.PostProcessWrite()
//	backend.Composite(..., pp.Source, pp.Destination, ...)
//	img, _ := backend.ReadSurface(target.Main())
type ViewTarget struct {
	main     *flood.PingPong[Surface]
	width    int
	height   int
	hdr      bool
	viewport *Viewport
}

// PostProcessWrite is the read/write pair of one post-processing pass.
type PostProcessWrite struct {
	Source      Surface
	Destination Surface
}

// NewViewTarget allocates both color surfaces of a w×h target.
func NewViewTarget(alloc SurfaceAllocator, w, h int, hdr bool) (*ViewTarget, error) {
	desc := SurfaceDescriptor{
		Label:  "view_target",
		Width:  w,
		Height: h,
		Format: TargetFormat(hdr),
		Usage:  TargetUsage,
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	a, err := alloc.CreateSurface(desc)
	if err != nil {
		return nil, fmt.Errorf("create view target: %w", err)
	}
	b, err := alloc.CreateSurface(desc)
	if err != nil {
		alloc.DestroySurface(a)
		return nil, fmt.Errorf("create view target: %w", err)
	}
	return &ViewTarget{
		main:   flood.NewPingPong(a, b),
		width:  w,
		height: h,
		hdr:    hdr,
	}, nil
}

// Width returns the target width in pixels.
func (t *ViewTarget) Width() int {
	return t.width
}

// Height returns the target height in pixels.
func (t *ViewTarget) Height() int {
	return t.height
}

// HDR reports whether the target uses the HDR format.
func (t *ViewTarget) HDR() bool {
	return t.hdr
}

// Format returns the pixel format of the target.
func (t *ViewTarget) Format() gputypes.TextureFormat {
	return TargetFormat(t.hdr)
}

// Main returns the surface holding the current color content.
func (t *ViewTarget) Main() Surface {
	return t.main.Input()
}

// PostProcessWrite returns the current content as Source and the other
// surface as Destination, then makes Destination the main surface.
// The caller must fully write Destination.
func (t *ViewTarget) PostProcessWrite() PostProcessWrite {
	pp := PostProcessWrite{Source: t.main.Input(), Destination: t.main.Output()}
	t.main.Flip()
	return pp
}

// SetViewport restricts passes to v. Nil restores the full target.
func (t *ViewTarget) SetViewport(v *Viewport) {
	if v == nil {
		t.viewport = nil
		return
	}
	c := v.Clamp(t.width, t.height)
	t.viewport = &c
}

// Viewport returns the camera viewport, or the full target when none is set.
func (t *ViewTarget) Viewport() Viewport {
	if t.viewport != nil {
		return *t.viewport
	}
	return FullViewport(t.width, t.height)
}

// Destroy releases both color surfaces.
func (t *ViewTarget) Destroy(alloc SurfaceAllocator) {
	a, b := t.main.Surfaces()
	alloc.DestroySurface(a)
	alloc.DestroySurface(b)
}
