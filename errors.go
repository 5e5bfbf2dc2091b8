package voronoi

import (
	"errors"

	"github.com/gogpu/voronoi/render"
)

// Errors that skip a single unit of work. They are logged and counted in
// FrameStats, never returned from RenderFrame.
var (
	// ErrMissingResource reports an absent mesh, material, phase or pipeline.
	ErrMissingResource = render.ErrMissingResource

	// ErrPipelineCompilation reports a pipeline variant that failed to
	// specialize or compile.
	ErrPipelineCompilation = render.ErrPipelineCompilation

	// ErrAllocation reports flood textures that could not be created.
	ErrAllocation = render.ErrAllocation
)

var (
	// ErrNoBackend is returned by New when no backend can be opened.
	ErrNoBackend = errors.New("voronoi: no backend available")

	// ErrClosed is returned when a closed Plugin is used.
	ErrClosed = errors.New("voronoi: plugin closed")

	// ErrInvalidConfig wraps option and per-view settings errors.
	ErrInvalidConfig = errors.New("voronoi: invalid configuration")
)
