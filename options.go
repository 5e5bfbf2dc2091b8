package voronoi

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/gogpu/voronoi/graph"
	"github.com/gogpu/voronoi/render"
	"github.com/gogpu/voronoi/schedule"
)

// InvalidationMode selects when a view's flood is recomputed.
type InvalidationMode = schedule.Mode

const (
	// RecomputeAlways recomputes every view with participants each frame.
	RecomputeAlways = schedule.RecomputeAlways
	// RecomputeOnChange recomputes only views whose inputs changed and
	// re-composites the others from their retained flood result.
	RecomputeOnChange = schedule.RecomputeOnChange
)

// QueueOrder selects how the mask pass orders its draws.
type QueueOrder uint8

const (
	// DepthSorted draws participants by ascending Drawable.Depth, batching
	// neighbours that share a mesh.
	DepthSorted QueueOrder = iota
	// Binned groups participants by pipeline and mesh and draws every
	// group as one instanced batch.
	Binned
)

// String returns the order name.
func (o QueueOrder) String() string {
	switch o {
	case DepthSorted:
		return "depth-sorted"
	case Binned:
		return "binned"
	default:
		return fmt.Sprintf("QueueOrder(%d)", o)
	}
}

// CompositeSettings configures how the flood result is drawn over a view.
type CompositeSettings struct {
	Mode render.CompositeMode
	// MaxDistance is the distance, in target pixels, drawn as white in
	// distance mode.
	MaxDistance float32
	// OutlineWidth is the band width in target pixels in outline mode.
	OutlineWidth float32
	OutlineColor color.NRGBA
	// Opacity mixes the visualization over the scene color.
	Opacity float32
}

// DefaultCompositeSettings returns an opaque distance visualization.
func DefaultCompositeSettings() CompositeSettings {
	p := render.DefaultCompositeParams()
	return CompositeSettings{
		Mode:         p.Mode,
		MaxDistance:  p.MaxDistance,
		OutlineWidth: p.OutlineWidth,
		OutlineColor: p.OutlineColor,
		Opacity:      p.Opacity,
	}
}

func (c CompositeSettings) validate() error {
	switch {
	case c.Mode > render.CompositeOutline:
		return fmt.Errorf("%w: unknown composite mode %d", ErrInvalidConfig, c.Mode)
	case !(c.MaxDistance > 0):
		return fmt.Errorf("%w: max distance %v must be positive", ErrInvalidConfig, c.MaxDistance)
	case !(c.OutlineWidth >= 0):
		return fmt.Errorf("%w: outline width %v is negative", ErrInvalidConfig, c.OutlineWidth)
	case !(c.Opacity >= 0 && c.Opacity <= 1):
		return fmt.Errorf("%w: opacity %v outside [0,1]", ErrInvalidConfig, c.Opacity)
	}
	return nil
}

func (c CompositeSettings) params(scale float32) render.CompositeParams {
	return render.CompositeParams{
		Mode:         c.Mode,
		Scale:        scale,
		MaxDistance:  c.MaxDistance,
		OutlineWidth: c.OutlineWidth,
		OutlineColor: c.OutlineColor,
		Opacity:      c.Opacity,
	}
}

// Settings are the per-view parameters of the flood.
type Settings struct {
	// Scale is the flood resolution relative to the target, in (0,1].
	Scale     float32
	Composite CompositeSettings
}

func (s Settings) validate() error {
	if !(s.Scale > 0 && s.Scale <= 1) {
		return fmt.Errorf("%w: scale %v outside (0,1]", ErrInvalidConfig, s.Scale)
	}
	return s.Composite.validate()
}

// Option configures a Plugin during creation.
//
// Example:
//
//	// Software backend, half resolution flood
//	p, err := voronoi.New(voronoi.WithBackendName("software"), voronoi.WithScale(0.5))
type Option func(*options)

type options struct {
	backend     render.Backend
	backendName string
	settings    Settings
	mode        InvalidationMode
	order       QueueOrder
	graph       *graph.Graph
	before      string
	after       string
	parallel    int
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		settings: Settings{Scale: 1, Composite: DefaultCompositeSettings()},
		mode:     RecomputeAlways,
		order:    DepthSorted,
		before:   graph.Tonemapping,
		after:    graph.EndMainPass,
		parallel: 1,
	}
}

func (o *options) validate() error {
	if err := o.settings.validate(); err != nil {
		return err
	}
	if o.parallel < 1 {
		return fmt.Errorf("%w: parallel views %d must be at least 1", ErrInvalidConfig, o.parallel)
	}
	if o.order > Binned {
		return fmt.Errorf("%w: unknown queue order %d", ErrInvalidConfig, o.order)
	}
	return nil
}

// WithBackend runs the passes on b. The plugin does not close b.
func WithBackend(b render.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName opens the registered backend name (see package backend).
// Without WithBackend or WithBackendName the best available backend is
// used.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithScale sets the default flood resolution relative to view targets.
// Values outside (0,1] make New fail.
func WithScale(s float32) Option {
	return func(o *options) {
		o.settings.Scale = s
	}
}

// WithInvalidationMode sets when views recompute. Default RecomputeAlways.
func WithInvalidationMode(m InvalidationMode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithComposite sets the default composite settings.
func WithComposite(c CompositeSettings) Option {
	return func(o *options) {
		o.settings.Composite = c
	}
}

// WithQueueOrder selects the mask pass queue. Default DepthSorted.
func WithQueueOrder(q QueueOrder) Option {
	return func(o *options) {
		o.order = q
	}
}

// WithGraph registers the flood node in g instead of a new
// graph.Core2D graph.
func WithGraph(g *graph.Graph) Option {
	return func(o *options) {
		o.graph = g
	}
}

// WithGraphOrder places the flood node after the node labeled after and
// before the node labeled before. An empty label drops that edge.
// Default: after graph.EndMainPass, before graph.Tonemapping.
func WithGraphOrder(before, after string) Option {
	return func(o *options) {
		o.before = before
		o.after = after
	}
}

// WithParallelViews runs up to n views concurrently. Default 1.
func WithParallelViews(n int) Option {
	return func(o *options) {
		o.parallel = n
	}
}

// WithLogger sets the logger of this plugin. Without it the package
// logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
