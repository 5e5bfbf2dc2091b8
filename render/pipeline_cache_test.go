// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"
)

func TestPipelineCacheQueueDedup(t *testing.T) {
	dev := newFakeDevice()
	pc := NewPipelineCache(dev)

	a := pc.Queue(PipelineDescriptor{Label: "mask", Kind: PipelineMask})
	b := pc.Queue(PipelineDescriptor{Label: "mask", Kind: PipelineMask})
	c := pc.Queue(PipelineDescriptor{Label: "mask", Kind: PipelineMask, Mesh: MeshKeyMasked})

	if a != b {
		t.Errorf("identical descriptors got ids %d and %d", a, b)
	}
	if a == c {
		t.Error("different specializations share an id")
	}
	if pc.Len() != 2 {
		t.Errorf("Len = %d, want 2", pc.Len())
	}
}

func TestPipelineCacheNotReadyUntilProcessed(t *testing.T) {
	dev := newFakeDevice()
	pc := NewPipelineCache(dev)

	id := pc.Queue(PipelineDescriptor{Kind: PipelineFlood})
	if pc.State(id) != PipelineQueued {
		t.Fatalf("State = %v, want queued", pc.State(id))
	}
	if _, err := pc.Pipeline(id); !errors.Is(err, ErrPipelineNotReady) {
		t.Fatalf("Pipeline before Process: err = %v, want ErrPipelineNotReady", err)
	}
	if _, ok := pc.Get(id); ok {
		t.Fatal("Get before Process reported a ready pipeline")
	}

	if err := pc.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	p, err := pc.Pipeline(id)
	if err != nil || p == nil {
		t.Fatalf("Pipeline after Process = %v, %v", p, err)
	}
	if got, ok := pc.Get(id); !ok || got != p {
		t.Errorf("Get after Process = %v, %v", got, ok)
	}
	if p.Descriptor().Kind != PipelineFlood {
		t.Errorf("compiled kind = %v", p.Descriptor().Kind)
	}

	// A second Process does not recompile.
	if err := pc.Process(); err != nil {
		t.Fatal(err)
	}
	if dev.compiled != 1 {
		t.Errorf("compiled %d times, want 1", dev.compiled)
	}
}

func TestPipelineCacheCompileFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failKinds[PipelineComposite] = true
	pc := NewPipelineCache(dev)

	good := pc.Queue(PipelineDescriptor{Kind: PipelineSeed})
	bad := pc.Queue(PipelineDescriptor{Label: "composite", Kind: PipelineComposite})

	if err := pc.Process(); err == nil {
		t.Fatal("Process should report the failed pipeline")
	}
	if pc.State(good) != PipelineReady {
		t.Errorf("good pipeline state = %v", pc.State(good))
	}
	if pc.State(bad) != PipelineFailed {
		t.Errorf("bad pipeline state = %v", pc.State(bad))
	}
	if _, err := pc.Pipeline(bad); err == nil || errors.Is(err, ErrPipelineNotReady) {
		t.Errorf("failed pipeline err = %v", err)
	}
}

func TestPipelineCacheDestroy(t *testing.T) {
	dev := newFakeDevice()
	pc := NewPipelineCache(dev)
	pc.Queue(PipelineDescriptor{Kind: PipelineSeed})
	pc.Queue(PipelineDescriptor{Kind: PipelineFlood})
	if err := pc.Process(); err != nil {
		t.Fatal(err)
	}
	pc.Destroy()
	if dev.released != 2 {
		t.Errorf("released %d pipelines, want 2", dev.released)
	}
	if _, err := pc.Pipeline(0); err == nil {
		t.Error("destroyed pipeline should not be usable")
	}
}

func TestPipelineCacheFailureKind(t *testing.T) {
	dev := newFakeDevice()
	dev.failKinds[PipelineMask] = true
	pc := NewPipelineCache(dev)
	id := pc.Queue(PipelineDescriptor{Kind: PipelineMask})

	if err := pc.Process(); !errors.Is(err, ErrPipelineCompilation) {
		t.Errorf("Process err = %v, want ErrPipelineCompilation", err)
	}
	if _, err := pc.Pipeline(id); !errors.Is(err, ErrPipelineCompilation) {
		t.Errorf("Pipeline err = %v, want ErrPipelineCompilation", err)
	}
}
