package software

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/voronoi/backend"
	"github.com/gogpu/voronoi/flood"
	"github.com/gogpu/voronoi/internal/parallel"
	"github.com/gogpu/voronoi/render"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("software: backend closed")

func init() {
	backend.Register(backend.NameSoftware, func() (render.Backend, error) {
		return New(0), nil
	})
}

// Backend is the CPU flood backend.
//
// Thread safety: passes on distinct surfaces may run concurrently.
type Backend struct {
	pool   *parallel.Pool
	closed atomic.Bool

	mu        sync.Mutex
	surfaces  int
	pipelines int
}

// New creates a backend running row bands on the given number of
// workers. Zero or negative uses GOMAXPROCS.
func New(workers int) *Backend {
	return &Backend{pool: parallel.NewPool(workers)}
}

// Name returns "software".
func (b *Backend) Name() string {
	return backend.NameSoftware
}

// Surface is a CPU surface.
type Surface struct {
	desc  render.SurfaceDescriptor
	field *flood.Field
	unorm bool
}

// Descriptor returns the descriptor the surface was created from.
func (s *Surface) Descriptor() render.SurfaceDescriptor {
	return s.desc
}

// Field exposes the texels of the surface.
func (s *Surface) Field() *flood.Field {
	return s.field
}

func (s *Surface) store(x, y int, t flood.Texel) {
	if s.unorm {
		for i := range t {
			t[i] = quantize(t[i])
		}
	}
	s.field.Set(x, y, t)
}

func quantize(v float32) float32 {
	v = clamp(v, 0, 1)
	return float32(int(v*255+0.5)) / 255
}

// CreateSurface allocates a zeroed surface.
func (b *Backend) CreateSurface(desc render.SurfaceDescriptor) (render.Surface, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	switch desc.Format {
	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA8Unorm:
	default:
		return nil, fmt.Errorf("software: unsupported surface format %v", desc.Format)
	}

	b.mu.Lock()
	b.surfaces++
	b.mu.Unlock()

	return &Surface{
		desc:  desc,
		field: flood.NewField(desc.Width, desc.Height),
		unorm: desc.Format == gputypes.TextureFormatRGBA8Unorm,
	}, nil
}

// DestroySurface releases s. Destroying a foreign surface is a no-op.
func (b *Backend) DestroySurface(s render.Surface) {
	cs, ok := s.(*Surface)
	if !ok || cs.field == nil {
		return
	}
	cs.field = nil

	b.mu.Lock()
	b.surfaces--
	b.mu.Unlock()
}

// LiveSurfaces returns the number of surfaces not yet destroyed.
func (b *Backend) LiveSurfaces() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaces
}

type pipeline struct {
	desc render.PipelineDescriptor
}

func (p *pipeline) Descriptor() render.PipelineDescriptor {
	return p.desc
}

// CompilePipeline validates desc. CPU passes need no compilation.
func (b *Backend) CompilePipeline(desc render.PipelineDescriptor) (render.Pipeline, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	switch desc.Kind {
	case render.PipelineMask, render.PipelineSeed, render.PipelineFlood, render.PipelineComposite:
	default:
		return nil, fmt.Errorf("software: unknown pipeline kind %v", desc.Kind)
	}

	b.mu.Lock()
	b.pipelines++
	b.mu.Unlock()
	return &pipeline{desc: desc}, nil
}

// DestroyPipeline releases p.
func (b *Backend) DestroyPipeline(p render.Pipeline) {
	if _, ok := p.(*pipeline); !ok {
		return
	}
	b.mu.Lock()
	b.pipelines--
	b.mu.Unlock()
}

// Close stops the worker pool. Close is safe to call multiple times.
func (b *Backend) Close() error {
	if b.closed.CompareAndSwap(false, true) {
		b.pool.Close()
	}
	return nil
}

func (b *Backend) surface(s render.Surface) (*Surface, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	cs, ok := s.(*Surface)
	if !ok || cs == nil {
		return nil, fmt.Errorf("%w: surface %T not created by the software backend", render.ErrMissingResource, s)
	}
	if cs.field == nil {
		return nil, fmt.Errorf("%w: surface %q destroyed", render.ErrMissingResource, cs.desc.Label)
	}
	return cs, nil
}

func checkPipeline(p render.Pipeline, kind render.PipelineKind) error {
	if p == nil {
		return fmt.Errorf("%w: no %v pipeline", render.ErrMissingResource, kind)
	}
	if got := p.Descriptor().Kind; got != kind {
		return fmt.Errorf("software: %v pipeline bound to %v pass", got, kind)
	}
	return nil
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
