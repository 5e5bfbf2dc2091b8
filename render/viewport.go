// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "image"

// Viewport is a pixel rectangle of a target.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// FullViewport returns the viewport covering a w×h target.
func FullViewport(w, h int) Viewport {
	return Viewport{Width: w, Height: h}
}

// Rect returns the viewport as an image.Rectangle.
func (v Viewport) Rect() image.Rectangle {
	return image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
}

// Empty reports whether the viewport covers no pixels.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Clamp restricts the viewport to a w×h target.
func (v Viewport) Clamp(w, h int) Viewport {
	r := v.Rect().Intersect(image.Rect(0, 0, w, h))
	return Viewport{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Scaled maps the viewport into a surface scaled by s, rounding outward.
func (v Viewport) Scaled(s float32) Viewport {
	if s == 1 {
		return v
	}
	x0 := int(float32(v.X) * s)
	y0 := int(float32(v.Y) * s)
	x1 := int(float32(v.X+v.Width)*s + 0.999)
	y1 := int(float32(v.Y+v.Height)*s + 0.999)
	return Viewport{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
