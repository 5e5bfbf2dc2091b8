package voronoi

import (
	"errors"

	"github.com/gogpu/voronoi/render"
)

// FrameStats counts the work of one RenderFrame call.
type FrameStats struct {
	// Views is the number of views in the frame.
	Views int
	// ViewsRun ran the full mask, seed and flood pipeline.
	ViewsRun int
	// ViewsIdle re-composited a retained flood result.
	ViewsIdle int
	// ViewsEmpty had no participants and were left untouched.
	ViewsEmpty int
	// ViewsSkipped were aborted by an error.
	ViewsSkipped int

	// Passes is the number of backend passes issued.
	Passes int
	// ItemsDrawn and ItemsSkipped count participants of the mask pass.
	ItemsDrawn   int
	ItemsSkipped int

	MissingResources int
	PipelineErrors   int
	AllocationErrors int
	// BackendErrors are passes the backend rejected.
	BackendErrors int
}

// Errors returns the number of errors of every kind.
func (s FrameStats) Errors() int {
	return s.MissingResources + s.PipelineErrors + s.AllocationErrors + s.BackendErrors
}

func (s *FrameStats) add(o FrameStats) {
	s.Views += o.Views
	s.ViewsRun += o.ViewsRun
	s.ViewsIdle += o.ViewsIdle
	s.ViewsEmpty += o.ViewsEmpty
	s.ViewsSkipped += o.ViewsSkipped
	s.Passes += o.Passes
	s.ItemsDrawn += o.ItemsDrawn
	s.ItemsSkipped += o.ItemsSkipped
	s.MissingResources += o.MissingResources
	s.PipelineErrors += o.PipelineErrors
	s.AllocationErrors += o.AllocationErrors
	s.BackendErrors += o.BackendErrors
}

// record counts err under its kind.
func (s *FrameStats) record(err error) {
	switch {
	case errors.Is(err, ErrPipelineCompilation):
		s.PipelineErrors++
	case errors.Is(err, ErrAllocation):
		s.AllocationErrors++
	case errors.Is(err, ErrMissingResource), errors.Is(err, render.ErrPipelineNotReady):
		s.MissingResources++
	default:
		s.BackendErrors++
	}
}
