//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/voronoi/render"
)

// pipeline is one compiled compute pipeline with its layouts.
type pipeline struct {
	desc       render.PipelineDescriptor
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
}

func (p *pipeline) Descriptor() render.PipelineDescriptor { return p.desc }

// bindingTypes returns the storage bindings following the uniform block.
// The last binding is the pass output.
func bindingTypes(kind render.PipelineKind) []gputypes.BufferBindingType {
	ro, rw := gputypes.BufferBindingTypeReadOnlyStorage, gputypes.BufferBindingTypeStorage
	switch kind {
	case render.PipelineMask, render.PipelineComposite:
		return []gputypes.BufferBindingType{ro, ro, rw}
	default:
		return []gputypes.BufferBindingType{ro, rw}
	}
}

// CompilePipeline creates the shader module, layouts and compute
// pipeline of desc.
func (b *Backend) CompilePipeline(desc render.PipelineDescriptor) (render.Pipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	p := &pipeline{desc: desc}
	if err := b.createPipeline(p); err != nil {
		p.destroy(b.device)
		return nil, fmt.Errorf("gpu: %s: %w", desc.Label, err)
	}
	b.pipelines[p] = struct{}{}
	b.logger().Debug("gpu: pipeline compiled", "label", desc.Label, "kind", desc.Kind.String())
	return p, nil
}

func (b *Backend) createPipeline(p *pipeline) error {
	module, err := b.createShaderModule(p.desc.Kind)
	if err != nil {
		return fmt.Errorf("compile %v shader: %w", p.desc.Kind, err)
	}
	p.module = module

	entries := []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
	}
	for i, typ := range bindingTypes(p.desc.Kind) {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i + 1), //nolint:gosec // at most four bindings
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		})
	}
	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.desc.Kind.String() + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.desc.Kind.String() + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	compute, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   p.desc.Label,
		Layout:  p.pipeLayout,
		Compute: hal.ComputeState{Module: p.module, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	p.compute = compute
	return nil
}

// DestroyPipeline releases p.
func (b *Backend) DestroyPipeline(rp render.Pipeline) {
	p, ok := rp.(*pipeline)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, live := b.pipelines[p]; !live {
		return
	}
	delete(b.pipelines, p)
	p.destroy(b.device)
}

func (p *pipeline) destroy(device hal.Device) {
	if device == nil {
		return
	}
	if p.compute != nil {
		device.DestroyComputePipeline(p.compute)
		p.compute = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// boundPipeline resolves rp to a live pipeline of the given kind.
// Callers hold b.mu.
func (b *Backend) boundPipeline(rp render.Pipeline, kind render.PipelineKind) (*pipeline, error) {
	if rp == nil {
		return nil, fmt.Errorf("%w: no %v pipeline", render.ErrMissingResource, kind)
	}
	p, ok := rp.(*pipeline)
	if !ok {
		return nil, fmt.Errorf("%w: pipeline %T not created by the gpu backend", render.ErrMissingResource, rp)
	}
	if _, live := b.pipelines[p]; !live {
		return nil, fmt.Errorf("%w: pipeline %q destroyed", render.ErrMissingResource, p.desc.Label)
	}
	if p.desc.Kind != kind {
		return nil, fmt.Errorf("gpu: %v pipeline bound to %v pass", p.desc.Kind, kind)
	}
	return p, nil
}
