// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// PipelineKind selects which pass a pipeline executes.
type PipelineKind uint8

const (
	// PipelineMask rasterizes participant meshes into a mask surface.
	PipelineMask PipelineKind = iota
	// PipelineSeed converts a mask into seed texels.
	PipelineSeed
	// PipelineFlood runs one jump flood pass.
	PipelineFlood
	// PipelineComposite draws the flood result onto a view target.
	PipelineComposite
)

// String returns the pipeline kind name.
func (k PipelineKind) String() string {
	switch k {
	case PipelineMask:
		return "mask"
	case PipelineSeed:
		return "seed"
	case PipelineFlood:
		return "flood"
	case PipelineComposite:
		return "composite"
	default:
		return fmt.Sprintf("PipelineKind(%d)", k)
	}
}

// MeshKey holds the specialization bits of a mask pipeline.
type MeshKey uint32

const (
	// MeshKeyHDR is set when the view renders to an HDR target.
	MeshKeyHDR MeshKey = 1 << iota
	// MeshKeyMasked is set when the material samples an alpha mask.
	MeshKeyMasked
	// MeshKeyStrip is set for triangle strip topology.
	MeshKeyStrip
)

// MeshKeyFromTopology returns the topology bits of a mesh key.
func MeshKeyFromTopology(t Topology) MeshKey {
	if t == TriangleStrip {
		return MeshKeyStrip
	}
	return 0
}

// Topology returns the primitive topology encoded in k.
func (k MeshKey) Topology() Topology {
	if k&MeshKeyStrip != 0 {
		return TriangleStrip
	}
	return TriangleList
}

// PipelineDescriptor describes one pipeline variant. It is comparable and
// identical descriptors share one compiled pipeline.
type PipelineDescriptor struct {
	Label string
	Kind  PipelineKind
	// Mesh holds the specialization bits of mask pipelines.
	Mesh MeshKey
	// HDR selects the composite variant for HDR targets.
	HDR bool
	// Format is the format of the surface the pipeline writes.
	Format gputypes.TextureFormat
}

// Pipeline is a compiled, backend-owned pipeline.
type Pipeline interface {
	Descriptor() PipelineDescriptor
}

// PipelineCompiler compiles and releases pipelines.
type PipelineCompiler interface {
	CompilePipeline(desc PipelineDescriptor) (Pipeline, error)
	DestroyPipeline(p Pipeline)
}
