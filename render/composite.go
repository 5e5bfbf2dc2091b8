// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/gogpu/voronoi/flood"
)

// DefaultCompositeParams returns a fully opaque distance visualization.
func DefaultCompositeParams() CompositeParams {
	return CompositeParams{
		Mode:         CompositeDistance,
		Scale:        1,
		MaxDistance:  128,
		OutlineWidth: 4,
		OutlineColor: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Opacity:      1,
	}
}

// FieldCoord maps target pixel (px, py) to the flood texel it samples,
// clamped to a fw×fh field.
func FieldCoord(px, py, fw, fh int, scale float32) (int, int) {
	fx := int((float32(px) + 0.5) * scale)
	fy := int((float32(py) + 0.5) * scale)
	return min(max(fx, 0), fw-1), min(max(fy, 0), fh-1)
}

// SeedDistance returns the distance in target pixels from pixel (px, py)
// to the seed stored in t.
func SeedDistance(px, py int, t flood.Texel, scale float32) float32 {
	cx, cy := t.Coord()
	dx := (float32(cx)+0.5)/scale - (float32(px) + 0.5)
	dy := (float32(cy)+0.5)/scale - (float32(py) + 0.5)
	if scale == 1 {
		dx, dy = float32(cx-px), float32(cy-py)
	}
	return math32.Sqrt(dx*dx + dy*dy)
}

// OwnerColor returns a stable, well spread color for an owner id.
func OwnerColor(owner uint32) [3]float32 {
	h := owner*747796405 + 2891336453
	h = ((h >> ((h >> 28) + 4)) ^ h) * 277803737
	h = (h >> 22) ^ h
	return [3]float32{
		0.2 + 0.8*float32(h&0xff)/255,
		0.2 + 0.8*float32((h>>8)&0xff)/255,
		0.2 + 0.8*float32((h>>16)&0xff)/255,
	}
}

// Shade computes the composite color of target pixel (px, py) given the
// flood texel it samples and the source color (RGBA in [0,1]).
func Shade(params CompositeParams, px, py int, t flood.Texel, src [4]float32) [4]float32 {
	if !t.Valid() {
		return src
	}
	scale := params.Scale
	if scale <= 0 {
		scale = 1
	}
	d := SeedDistance(px, py, t, scale)

	var vis [4]float32
	switch params.Mode {
	case CompositeVoronoi:
		c := OwnerColor(t.Owner())
		vis = [4]float32{c[0], c[1], c[2], 1}
	case CompositeOutline:
		if d <= 0 || d > params.OutlineWidth {
			return src
		}
		oc := params.OutlineColor
		vis = [4]float32{float32(oc.R) / 255, float32(oc.G) / 255, float32(oc.B) / 255, float32(oc.A) / 255}
	default:
		maxD := params.MaxDistance
		if maxD <= 0 {
			maxD = 1
		}
		g := math32.Min(d/maxD, 1)
		vis = [4]float32{g, g, g, 1}
	}

	k := params.Opacity * vis[3]
	return [4]float32{
		src[0] + (vis[0]-src[0])*k,
		src[1] + (vis[1]-src[1])*k,
		src[2] + (vis[2]-src[2])*k,
		src[3] + (1-src[3])*k,
	}
}

// ImageFromTexels converts RGBA float32 texels in [0,1] to an 8-bit image.
func ImageFromTexels(w, h int, pix []float32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h*4 && i < len(pix); i++ {
		img.Pix[i] = unorm8(pix[i])
	}
	return img
}

func unorm8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
