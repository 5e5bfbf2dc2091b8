//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"

	"github.com/gogpu/voronoi/flood"
	"github.com/gogpu/voronoi/render"
)

// workgroupSize is the edge of the 8×8 workgroups of every shader.
const workgroupSize = 8

type binding struct {
	buf  hal.Buffer
	size uint64
}

// u32 converts a validated size or coordinate.
func u32(v int) uint32 {
	return uint32(max(v, 0)) //nolint:gosec // clamped to non-negative
}

func groups(n uint32) uint32 {
	return (n + workgroupSize - 1) / workgroupSize
}

// dispatch runs p once over a w×h grid with the uniform block at binding 0
// and the given buffers after it. Callers hold b.mu.
func (b *Backend) dispatch(p *pipeline, uniform []byte, w, h uint32, bindings ...binding) error {
	label := p.desc.Kind.String()
	ub, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_params",
		Size:  uint64(len(uniform)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	defer b.device.DestroyBuffer(ub)
	b.queue.WriteBuffer(ub, 0, uniform)

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uint64(len(uniform))}},
	}
	for i, bd := range bindings {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(i + 1), //nolint:gosec // at most four bindings
			Resource: gputypes.BufferBinding{Buffer: bd.buf.NativeHandle(), Offset: 0, Size: bd.size},
		})
	}
	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   label + "_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer b.device.DestroyBindGroup(bg)

	return b.submit(label, func(enc hal.CommandEncoder) error {
		pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
		pass.SetPipeline(p.compute)
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(groups(w), groups(h), 1)
		pass.End()
		return nil
	})
}

// floodPair resolves the input and output of a seed or flood pass.
func (b *Backend) floodPair(rp render.Pipeline, kind render.PipelineKind, src, dst render.Surface) (*pipeline, *Surface, *Surface, error) {
	p, err := b.boundPipeline(rp, kind)
	if err != nil {
		return nil, nil, nil, err
	}
	in, err := b.surface(src)
	if err != nil {
		return nil, nil, nil, err
	}
	out, err := b.surface(dst)
	if err != nil {
		return nil, nil, nil, err
	}
	if in == out {
		return nil, nil, nil, fmt.Errorf("gpu: %v pass reads and writes the same surface", kind)
	}
	if in.desc.Width != out.desc.Width || in.desc.Height != out.desc.Height {
		return nil, nil, nil, fmt.Errorf("gpu: %v pass size mismatch %dx%d -> %dx%d",
			kind, in.desc.Width, in.desc.Height, out.desc.Width, out.desc.Height)
	}
	if out.unorm() {
		return nil, nil, nil, fmt.Errorf("gpu: %v pass needs a float surface", kind)
	}
	return p, in, out, nil
}

// Seed converts the mask in src into seed texels in dst.
func (b *Backend) Seed(rp render.Pipeline, src, dst render.Surface) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, in, out, err := b.floodPair(rp, render.PipelineSeed, src, dst)
	if err != nil {
		return err
	}
	w, h := u32(out.desc.Width), u32(out.desc.Height)
	params := seedParams{Width: w, Height: h}
	return b.dispatch(p, safeish.AsBytes(&params), w, h, in.binding(), out.binding())
}

// Flood runs one jump flood pass from src into dst.
func (b *Backend) Flood(rp render.Pipeline, src, dst render.Surface, step flood.Step) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, in, out, err := b.floodPair(rp, render.PipelineFlood, src, dst)
	if err != nil {
		return err
	}
	if step.X == 0 || step.Y == 0 {
		return fmt.Errorf("gpu: invalid flood step %+v", step)
	}
	w, h := u32(out.desc.Width), u32(out.desc.Height)
	params := floodParams{Width: w, Height: h, StepX: step.X, StepY: step.Y}
	return b.dispatch(p, safeish.AsBytes(&params), w, h, in.binding(), out.binding())
}

// Composite shades the viewport of pp.Destination from the flood field
// and copies the rest of pp.Source.
func (b *Backend) Composite(rp render.Pipeline, field render.Surface, pp render.PostProcessWrite, viewport render.Viewport, params render.CompositeParams) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.boundPipeline(rp, render.PipelineComposite)
	if err != nil {
		return err
	}
	f, err := b.surface(field)
	if err != nil {
		return err
	}
	src, err := b.surface(pp.Source)
	if err != nil {
		return err
	}
	dst, err := b.surface(pp.Destination)
	if err != nil {
		return err
	}
	if src == dst {
		return fmt.Errorf("gpu: composite reads and writes the same surface")
	}
	if src.desc.Width != dst.desc.Width || src.desc.Height != dst.desc.Height {
		return fmt.Errorf("gpu: composite size mismatch %dx%d -> %dx%d",
			src.desc.Width, src.desc.Height, dst.desc.Width, dst.desc.Height)
	}

	vp := viewport.Clamp(dst.desc.Width, dst.desc.Height)
	scale := params.Scale
	if scale <= 0 {
		scale = 1
	}
	oc := params.OutlineColor
	u := compositeParams{
		Width:        u32(dst.desc.Width),
		Height:       u32(dst.desc.Height),
		FieldWidth:   u32(f.desc.Width),
		FieldHeight:  u32(f.desc.Height),
		VpX0:         u32(vp.X),
		VpY0:         u32(vp.Y),
		VpX1:         u32(vp.X + vp.Width),
		VpY1:         u32(vp.Y + vp.Height),
		Mode:         uint32(params.Mode),
		Scale:        scale,
		MaxDistance:  params.MaxDistance,
		OutlineColor: [4]float32{float32(oc.R) / 255, float32(oc.G) / 255, float32(oc.B) / 255, float32(oc.A) / 255},
		OutlineWidth: params.OutlineWidth,
		Opacity:      params.Opacity,
	}
	if dst.unorm() {
		u.Quantize = 1
	}
	return b.dispatch(p, safeish.AsBytes(&u), u.Width, u.Height, f.binding(), src.binding(), dst.binding())
}
