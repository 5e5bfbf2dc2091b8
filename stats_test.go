package voronoi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/voronoi/render"
)

func TestFrameStatsRecord(t *testing.T) {
	tests := []struct {
		err  error
		want FrameStats
	}{
		{fmt.Errorf("mesh 3: %w", ErrMissingResource), FrameStats{MissingResources: 1}},
		{fmt.Errorf("seed pipeline: %w", render.ErrPipelineNotReady), FrameStats{MissingResources: 1}},
		{fmt.Errorf("compile: %w: boom", ErrPipelineCompilation), FrameStats{PipelineErrors: 1}},
		{fmt.Errorf("view 1: %w", ErrAllocation), FrameStats{AllocationErrors: 1}},
		{errors.New("device lost"), FrameStats{BackendErrors: 1}},
	}
	for _, tt := range tests {
		var s FrameStats
		s.record(tt.err)
		if s != tt.want {
			t.Errorf("record(%v) = %+v, want %+v", tt.err, s, tt.want)
		}
		if s.Errors() != 1 {
			t.Errorf("record(%v): Errors() = %d, want 1", tt.err, s.Errors())
		}
	}
}

func TestFrameStatsAdd(t *testing.T) {
	a := FrameStats{Views: 1, ViewsRun: 1, Passes: 10, ItemsDrawn: 2}
	a.add(FrameStats{Views: 1, ViewsIdle: 1, Passes: 1, ItemsSkipped: 1, MissingResources: 1})
	want := FrameStats{Views: 2, ViewsRun: 1, ViewsIdle: 1, Passes: 11, ItemsDrawn: 2, ItemsSkipped: 1, MissingResources: 1}
	if a != want {
		t.Errorf("add = %+v, want %+v", a, want)
	}
}
