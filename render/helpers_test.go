// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"sync"
)

type fakeSurface struct {
	desc SurfaceDescriptor
	id   int
}

func (s *fakeSurface) Descriptor() SurfaceDescriptor { return s.desc }

type fakePipeline struct{ desc PipelineDescriptor }

func (p *fakePipeline) Descriptor() PipelineDescriptor { return p.desc }

// fakeDevice counts allocations and compilations.
type fakeDevice struct {
	mu        sync.Mutex
	next      int
	live      map[*fakeSurface]bool
	destroyed int
	failAlloc bool

	compiled  int
	failKinds map[PipelineKind]bool
	released  int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{live: make(map[*fakeSurface]bool), failKinds: make(map[PipelineKind]bool)}
}

func (d *fakeDevice) CreateSurface(desc SurfaceDescriptor) (Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAlloc {
		return nil, errors.New("out of memory")
	}
	d.next++
	s := &fakeSurface{desc: desc, id: d.next}
	d.live[s] = true
	return s, nil
}

func (d *fakeDevice) DestroySurface(s Surface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.live, s.(*fakeSurface))
	d.destroyed++
}

func (d *fakeDevice) CompilePipeline(desc PipelineDescriptor) (Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failKinds[desc.Kind] {
		return nil, errors.New("invalid shader")
	}
	d.compiled++
	return &fakePipeline{desc: desc}, nil
}

func (d *fakeDevice) DestroyPipeline(Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released++
}

func (d *fakeDevice) liveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}
