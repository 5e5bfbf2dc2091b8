package voronoi

import (
	"context"
	"fmt"
	"hash/maphash"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/voronoi/backend"
	_ "github.com/gogpu/voronoi/backend/software" // default backend
	"github.com/gogpu/voronoi/graph"
	"github.com/gogpu/voronoi/internal/parallel"
	"github.com/gogpu/voronoi/phase"
	"github.com/gogpu/voronoi/render"
	"github.com/gogpu/voronoi/schedule"
)

// Plugin generates the flood of every view of a frame and composites it
// onto the view targets.
//
// RenderFrame must not be called concurrently. Close releases everything
// the plugin created.
type Plugin struct {
	opts        options
	backend     render.Backend
	ownsBackend bool

	graph     *graph.Graph
	pipelines *render.PipelineCache
	textures  *render.TextureCache
	sched     *schedule.Scheduler
	drawFuncs *phase.DrawFunctions
	drawMask  phase.DrawFunctionID
	phases    *phase.ViewPhases[phase.Phase]
	pool      *parallel.Pool
	seed      maphash.Seed

	mu     sync.Mutex
	closed bool
	floods map[render.ViewID]*render.FloodTextures

	// jobs holds the prepared views while the graph runs.
	jobs atomic.Pointer[map[render.ViewID]*viewJob]
}

// New creates a plugin and registers its node in the frame graph.
//
// Without WithBackend the plugin opens a backend through the registry of
// package backend and closes it in Close.
func New(opts ...Option) (*Plugin, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	b, owned, err := openBackend(o)
	if err != nil {
		return nil, err
	}

	g := o.graph
	if g == nil {
		g = graph.Core2D()
	}
	newPhase := func() phase.Phase { return phase.NewSortedPhase() }
	if o.order == Binned {
		newPhase = func() phase.Phase { return phase.NewBinnedPhase() }
	}

	p := &Plugin{
		opts:        o,
		backend:     b,
		ownsBackend: owned,
		graph:       g,
		pipelines:   render.NewPipelineCache(b),
		textures:    render.NewTextureCache(b),
		sched:       schedule.New(o.mode),
		drawFuncs:   phase.NewDrawFunctions(),
		phases:      phase.NewViewPhases(newPhase),
		seed:        maphash.MakeSeed(),
		floods:      make(map[render.ViewID]*render.FloodTextures),
	}
	p.drawMask = p.drawFuncs.Add(drawMaskLabel, phase.DrawMaskMesh)
	if o.parallel > 1 {
		p.pool = parallel.NewPool(o.parallel)
	}

	if err := p.register(); err != nil {
		if p.pool != nil {
			p.pool.Close()
		}
		if owned {
			_ = b.Close()
		}
		return nil, err
	}

	if o.logger != nil {
		propagateLogger(b, o.logger)
	} else {
		follow(b)
	}
	p.logger().Info("voronoi: plugin ready",
		"backend", b.Name(),
		"scale", o.settings.Scale,
		"mode", o.mode,
		"queue", o.order,
		"parallel", o.parallel)
	return p, nil
}

func openBackend(o options) (render.Backend, bool, error) {
	if o.backend != nil {
		return o.backend, false, nil
	}
	var (
		b   render.Backend
		err error
	)
	if o.backendName != "" {
		b, err = backend.Get(o.backendName)
	} else {
		b, err = backend.Default()
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrNoBackend, err)
	}
	return b, true, nil
}

func (p *Plugin) register() error {
	if err := p.graph.Insert(NodeLabel, graph.NodeFunc(p.runNode), p.opts.after, p.opts.before); err != nil {
		return fmt.Errorf("voronoi: register node: %w", err)
	}
	return nil
}

func (p *Plugin) logger() *slog.Logger {
	if p.opts.logger != nil {
		return p.opts.logger
	}
	return Logger()
}

// Backend returns the backend the passes run on.
func (p *Plugin) Backend() render.Backend {
	return p.backend
}

// Graph returns the frame graph holding the flood node. Hosts replace
// their own nodes with graph.Graph.Set.
func (p *Plugin) Graph() *graph.Graph {
	return p.graph
}

// InvalidationMode returns the current invalidation mode.
func (p *Plugin) InvalidationMode() InvalidationMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched.Mode()
}

// SetInvalidationMode switches the invalidation mode from the next frame on.
func (p *Plugin) SetInvalidationMode(m InvalidationMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sched.SetMode(m)
}

// ViewState returns the scheduling state of view after the last frame.
func (p *Plugin) ViewState(view render.ViewID) (schedule.State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched.State(view)
}

// FloodTextures returns the retained flood textures of view.
func (p *Plugin) FloodTextures(view render.ViewID) (*render.FloodTextures, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.floods[view]
	return t, ok
}

// RenderFrame runs the frame graph for every view of f.
//
// Missing resources, pipeline failures and allocation failures skip the
// affected drawable, pass or view; they are logged and counted in the
// returned stats. RenderFrame returns an error only for invalid views or
// settings, which leave all state untouched, and for a cancelled ctx, in
// which case views not yet started are skipped.
func (p *Plugin) RenderFrame(ctx context.Context, f Frame) (FrameStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return FrameStats{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return FrameStats{}, err
	}
	settings, err := p.viewSettings(f.Views)
	if err != nil {
		return FrameStats{}, err
	}
	assets := f.Assets
	if assets == nil {
		assets = AssetMap{}
	}

	p.sched.BeginFrame(f.Tick)
	p.prune(f.Views)

	drawables := make(map[render.EntityID]*Drawable, len(f.Drawables))
	for i := range f.Drawables {
		drawables[f.Drawables[i].ID] = &f.Drawables[i]
	}

	stats := FrameStats{Views: len(f.Views)}
	images := newMaskImages(assets)
	jobs := make(map[render.ViewID]*viewJob, len(f.Views))
	for i := range f.Views {
		if job := p.prepareView(&f.Views[i], settings[i], drawables, assets, images, &stats); job != nil {
			jobs[f.Views[i].ID] = job
		}
	}
	if err := p.pipelines.Process(); err != nil {
		p.logger().Warn("voronoi: pipeline compilation failed", "err", err)
	}

	p.jobs.Store(&jobs)
	err = p.runViews(ctx, f.Views)
	p.jobs.Store(nil)

	for _, job := range jobs {
		stats.add(job.stats)
		if job.clean() {
			p.sched.MarkRan(job.view.ID)
		}
	}
	p.textures.EndFrame()

	p.logger().Debug("voronoi: frame done",
		"tick", f.Tick,
		"views", stats.Views,
		"run", stats.ViewsRun,
		"idle", stats.ViewsIdle,
		"passes", stats.Passes)
	return stats, err
}

// viewSettings validates f's views and resolves their settings.
func (p *Plugin) viewSettings(views []View) ([]Settings, error) {
	out := make([]Settings, len(views))
	seen := make(map[render.ViewID]struct{}, len(views))
	for i := range views {
		v := &views[i]
		if v.Target == nil {
			return nil, fmt.Errorf("%w: view %d has no target", ErrInvalidConfig, v.ID)
		}
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate view %d", ErrInvalidConfig, v.ID)
		}
		seen[v.ID] = struct{}{}

		s := p.opts.settings
		if v.Settings != nil {
			s = *v.Settings
			if s.Scale == 0 {
				s.Scale = p.opts.settings.Scale
			}
		}
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("view %d: %w", v.ID, err)
		}
		out[i] = s
	}
	return out, nil
}

// prune drops every per-view resource of views that left the frame.
func (p *Plugin) prune(views []View) {
	live := make(map[render.ViewID]bool, len(views))
	for i := range views {
		live[views[i].ID] = true
	}
	isLive := func(id render.ViewID) bool { return live[id] }

	p.phases.Retain(isLive)
	pruned := p.sched.Prune(isLive)
	for id, tex := range p.floods {
		if !live[id] {
			tex.Release(p.textures)
			delete(p.floods, id)
		}
	}
	if len(pruned) > 0 {
		p.logger().Debug("voronoi: pruned views", "views", pruned)
	}
}

// prepareView plans v and, when it has participants, returns its job with
// textures allocated and pipelines queued.
func (p *Plugin) prepareView(v *View, s Settings, drawables map[render.EntityID]*Drawable,
	assets Assets, images *maskImages, stats *FrameStats) *viewJob {
	var (
		parts []participant
		in    []schedule.Participant
	)
	for _, e := range v.Visible {
		d, ok := drawables[e]
		if !ok || d.Material == nil {
			continue
		}
		parts = append(parts, participant{d: d, owner: uint32(len(parts) + 1)})
		in = append(in, schedule.Participant{Entity: d.ID, Changed: d.Changed})
	}

	target := v.Target
	state := p.sched.Plan(schedule.ViewInput{
		View:    v.ID,
		Changed: v.Changed,
		Key: schedule.ViewKey{
			Width:    target.Width(),
			Height:   target.Height(),
			Scale:    s.Scale,
			HDR:      target.HDR(),
			Viewport: target.Viewport(),
			Settings: maphash.Comparable(p.seed, s.Composite),
		},
		Participants: in,
	})
	if len(parts) == 0 {
		stats.ViewsEmpty++
		return nil
	}

	tex, fresh, err := p.floodTextures(v.ID, target, s.Scale)
	if err != nil {
		stats.ViewsSkipped++
		stats.record(err)
		p.logger().Warn("voronoi: skipped view", "view", v.ID, "err", err)
		return nil
	}

	fw, fh := tex.Size()
	job := &viewJob{
		view:      v,
		target:    target,
		log:       p.logger(),
		full:      state == schedule.NeedsUpdate || fresh,
		tex:       tex,
		mask:      target.Viewport().Scaled(s.Scale).Clamp(fw, fh),
		seed:      p.pipelines.Queue(seedPipeline()),
		flood:     p.pipelines.Queue(floodPipeline()),
		composite: p.pipelines.Queue(compositePipeline(target.HDR())),
		params:    s.Composite.params(s.Scale),
	}
	if job.full {
		job.res = newViewResources(p.pipelines, render.ViewUniform{
			WorldToSurface: render.Scale(s.Scale, s.Scale).Multiply(v.worldToTarget()),
			Width:          fw,
			Height:         fh,
		})
		p.queueView(job, parts, assets, images)
	}
	return job
}

// floodTextures returns the flood textures of view sized for target,
// reallocating them when the size or scale changed. fresh reports a new
// allocation whose content is undefined.
func (p *Plugin) floodTextures(view render.ViewID, target *render.ViewTarget, scale float32) (tex *render.FloodTextures, fresh bool, err error) {
	w, h := target.Width(), target.Height()
	tex = p.floods[view]
	if tex.Matches(w, h, scale) {
		return tex, false, nil
	}
	if tex != nil {
		tex.Release(p.textures)
		delete(p.floods, view)
	}
	tex, err = render.NewFloodTextures(p.textures, w, h, scale)
	if err != nil {
		return nil, false, fmt.Errorf("view %d: %w", view, err)
	}
	p.floods[view] = tex
	p.logger().Debug("voronoi: flood textures allocated", "view", view, "width", tex.Descriptor().Width, "height", tex.Descriptor().Height)
	return tex, true, nil
}

// runViews runs the frame graph for every view, on the worker pool when
// parallel views are enabled. Views not started before ctx is cancelled
// are skipped.
func (p *Plugin) runViews(ctx context.Context, views []View) error {
	errs := make([]error, len(views))
	run := func(i int) {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		errs[i] = p.graph.Run(ctx, views[i].ID)
	}

	if p.pool == nil || len(views) < 2 {
		for i := range views {
			run(i)
		}
	} else {
		work := make([]func(), len(views))
		for i := range views {
			work[i] = func() { run(i) }
		}
		p.pool.Run(work)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	for i, err := range errs {
		if err != nil {
			p.logger().Warn("voronoi: frame graph failed", "view", views[i].ID, "err", err)
		}
	}
	return nil
}

// Close releases the textures, pipelines and worker pool of the plugin,
// and the backend when the plugin opened it. The flood node stays in the
// graph and does nothing afterwards.
func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for id, tex := range p.floods {
		tex.Release(p.textures)
		delete(p.floods, id)
	}
	p.textures.Destroy()
	p.pipelines.Destroy()
	if p.pool != nil {
		p.pool.Close()
	}
	if p.opts.logger == nil {
		unfollow(p.backend)
	}
	p.logger().Info("voronoi: plugin closed", "backend", p.backend.Name())
	if p.ownsBackend {
		return p.backend.Close()
	}
	return nil
}
