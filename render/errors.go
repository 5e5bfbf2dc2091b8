// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Failure kinds of the pass engine. Each one skips a single unit of work
// (a drawable, a pass or a view) and is never fatal to a frame.
var (
	// ErrMissingResource is returned when a phase, cache entry, mesh,
	// material or pipeline a pass needs is absent.
	ErrMissingResource = errors.New("voronoi: missing resource")

	// ErrPipelineCompilation is returned when a pipeline variant fails to
	// specialize or compile.
	ErrPipelineCompilation = errors.New("voronoi: pipeline compilation failed")

	// ErrAllocation is returned when a surface cannot be created.
	ErrAllocation = errors.New("voronoi: surface allocation failed")
)
