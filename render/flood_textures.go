// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/voronoi/flood"
)

// FloodTextures is the ping-pong surface pair of one view.
type FloodTextures struct {
	*flood.PingPong[Surface]
	desc  SurfaceDescriptor
	scale float32
}

// ScaledSize returns floor(w*scale) × floor(h*scale), at least 1×1.
func ScaledSize(w, h int, scale float32) (int, int) {
	sw := int(float32(w) * scale)
	sh := int(float32(h) * scale)
	return max(sw, 1), max(sh, 1)
}

// FloodDescriptor returns the descriptor of the flood surfaces for a
// native w×h target at scale.
func FloodDescriptor(w, h int, scale float32) SurfaceDescriptor {
	sw, sh := ScaledSize(w, h, scale)
	return SurfaceDescriptor{
		Label:  "voronoi_flood",
		Width:  sw,
		Height: sh,
		Format: FloodFormat,
		Usage:  FloodUsage,
	}
}

// NewFloodTextures acquires both surfaces for a native w×h target.
// On failure nothing stays acquired.
func NewFloodTextures(tc *TextureCache, w, h int, scale float32) (*FloodTextures, error) {
	desc := FloodDescriptor(w, h, scale)
	a, err := tc.Acquire(desc)
	if err != nil {
		return nil, fmt.Errorf("acquire flood texture A: %w", err)
	}
	b, err := tc.Acquire(desc)
	if err != nil {
		tc.Release(a)
		return nil, fmt.Errorf("acquire flood texture B: %w", err)
	}
	return &FloodTextures{
		PingPong: flood.NewPingPong(a, b),
		desc:     desc,
		scale:    scale,
	}, nil
}

// Descriptor returns the descriptor shared by both surfaces.
func (t *FloodTextures) Descriptor() SurfaceDescriptor {
	return t.desc
}

// Scale returns the downsample factor the textures were created with.
func (t *FloodTextures) Scale() float32 {
	return t.scale
}

// Size returns the surface size in texels.
func (t *FloodTextures) Size() (int, int) {
	return t.desc.Width, t.desc.Height
}

// Matches reports whether the textures fit a native w×h target at scale.
func (t *FloodTextures) Matches(w, h int, scale float32) bool {
	return t != nil && t.scale == scale && t.desc == FloodDescriptor(w, h, scale)
}

// Release hands both surfaces back to tc.
func (t *FloodTextures) Release(tc *TextureCache) {
	a, b := t.Surfaces()
	tc.Release(a)
	tc.Release(b)
}
