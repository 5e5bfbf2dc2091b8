package voronoi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/voronoi/flood"
	"github.com/gogpu/voronoi/phase"
	"github.com/gogpu/voronoi/render"
)

// NodeLabel is the label of the flood node in the frame graph.
const NodeLabel = "voronoi_flood"

// viewJob is the prepared work of one view for the current frame.
type viewJob struct {
	view   *View
	target *render.ViewTarget
	log    *slog.Logger

	// full runs mask, seed and flood before the composite. Otherwise the
	// retained flood result is composited.
	full  bool
	tex   *render.FloodTextures
	phase phase.Phase
	res   *viewResources
	// mask is the camera viewport in flood texels.
	mask render.Viewport

	seed      render.CachedPipelineID
	flood     render.CachedPipelineID
	composite render.CachedPipelineID
	params    render.CompositeParams

	stats FrameStats
	// done is set once the composite was written.
	done bool
}

// clean reports whether the job ran the full pipeline without skipping
// anything, so its flood result may be reused.
func (j *viewJob) clean() bool {
	return j.full && j.done && j.stats.ItemsSkipped == 0
}

func (j *viewJob) skipItems(entity render.EntityID, n int, err error) {
	j.stats.ItemsSkipped += n
	j.stats.record(err)
	j.log.Warn("voronoi: skipped drawable", "view", j.view.ID, "entity", entity, "err", err)
}

// runNode is the graph node of the plugin. Failures skip the view and are
// recorded in its stats; they never stop the graph.
func (p *Plugin) runNode(_ context.Context, id render.ViewID) error {
	jobs := p.jobs.Load()
	if jobs == nil {
		return nil
	}
	job, ok := (*jobs)[id]
	if !ok {
		return nil
	}

	if err := p.execute(job); err != nil {
		job.stats.ViewsSkipped++
		job.stats.record(err)
		job.log.Warn("voronoi: skipped view", "view", id, "err", err)
		return nil
	}
	job.done = true
	if job.full {
		job.stats.ViewsRun++
	} else {
		job.stats.ViewsIdle++
	}
	return nil
}

func (p *Plugin) execute(job *viewJob) error {
	composite, err := p.pipelines.Pipeline(job.composite)
	if err != nil {
		return fmt.Errorf("composite pipeline: %w", err)
	}
	if job.full {
		if err := p.flood(job); err != nil {
			return err
		}
	}

	pp := job.target.PostProcessWrite()
	if err := p.backend.Composite(composite, job.tex.Input(), pp, job.target.Viewport(), job.params); err != nil {
		// Flip back so Main keeps the unmodified color content.
		job.target.PostProcessWrite()
		return fmt.Errorf("composite: %w", err)
	}
	job.stats.Passes++
	return nil
}

// flood runs the mask pass into Output, the seed pass and every jump
// flood step, flipping after each, leaving the result in Input.
func (p *Plugin) flood(job *viewJob) error {
	seed, err := p.pipelines.Pipeline(job.seed)
	if err != nil {
		return fmt.Errorf("seed pipeline: %w", err)
	}
	jump, err := p.pipelines.Pipeline(job.flood)
	if err != nil {
		return fmt.Errorf("flood pipeline: %w", err)
	}
	tex := job.tex

	if err := p.mask(job); err != nil {
		return err
	}
	job.stats.Passes++
	tex.Flip()

	if err := p.backend.Seed(seed, tex.Input(), tex.Output()); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	job.stats.Passes++
	tex.Flip()

	w, h := tex.Size()
	steps := flood.Steps(w, h)
	for _, step := range steps {
		if err := p.backend.Flood(jump, tex.Input(), tex.Output(), step); err != nil {
			return fmt.Errorf("flood step %dx%d: %w", step.X, step.Y, err)
		}
		job.stats.Passes++
		tex.Flip()
	}
	job.log.Debug("voronoi: flood done", "view", job.view.ID, "size", fmt.Sprintf("%dx%d", w, h), "steps", len(steps))
	return nil
}

func (p *Plugin) mask(job *viewJob) error {
	enc, err := p.backend.BeginMask(job.tex.Output(), job.mask)
	if err != nil {
		return fmt.Errorf("begin mask: %w", err)
	}
	items, instances := job.phase.DrawItems()
	for _, item := range items {
		fn, ok := p.drawFuncs.Get(item.Key.DrawFunction)
		if !ok {
			job.skipItems(item.Entity, item.Batch.Len(), fmt.Errorf("draw function %d: %w", item.Key.DrawFunction, ErrMissingResource))
			continue
		}
		switch res, err := phase.Execute(enc, job.res, fn.Commands, item, instances); res {
		case phase.Success:
			job.stats.ItemsDrawn += item.Batch.Len()
		case phase.Skip:
			job.skipItems(item.Entity, item.Batch.Len(), err)
		default:
			_ = enc.End()
			return fmt.Errorf("draw entity %d: %w", item.Entity, err)
		}
	}
	if err := enc.End(); err != nil {
		return fmt.Errorf("mask: %w", err)
	}
	return nil
}
