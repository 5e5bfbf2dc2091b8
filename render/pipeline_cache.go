// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/voronoi/internal/cache"
)

// CachedPipelineID identifies a queued pipeline in a PipelineCache.
type CachedPipelineID uint32

// PipelineState is the compilation state of a cached pipeline.
type PipelineState uint8

const (
	// PipelineQueued pipelines wait for the next Process call.
	PipelineQueued PipelineState = iota
	// PipelineReady pipelines can be used by passes.
	PipelineReady
	// PipelineFailed pipelines failed to compile and are never retried.
	PipelineFailed
)

// String returns the state name.
func (s PipelineState) String() string {
	switch s {
	case PipelineQueued:
		return "queued"
	case PipelineReady:
		return "ready"
	case PipelineFailed:
		return "failed"
	default:
		return fmt.Sprintf("PipelineState(%d)", s)
	}
}

// ErrPipelineNotReady is returned by Pipeline for queued pipelines.
var ErrPipelineNotReady = errors.New("render: pipeline not ready")

type pipelineEntry struct {
	desc     PipelineDescriptor
	state    PipelineState
	pipeline Pipeline
	err      error
}

// PipelineCache hands out stable ids for pipeline descriptors and compiles
// them in batches. A pipeline queued during a frame becomes usable after
// the next Process call; until then passes that need it are skipped.
//
// PipelineCache is safe for concurrent use.
type PipelineCache struct {
	compiler PipelineCompiler
	ids      *cache.Cache[PipelineDescriptor, CachedPipelineID]

	mu      sync.Mutex
	entries []pipelineEntry
	queued  []CachedPipelineID
}

// NewPipelineCache creates a cache compiling through compiler.
func NewPipelineCache(compiler PipelineCompiler) *PipelineCache {
	return &PipelineCache{
		compiler: compiler,
		ids:      cache.New[PipelineDescriptor, CachedPipelineID](),
	}
}

// Queue returns the id for desc, queuing it for compilation the first time
// it is seen.
func (c *PipelineCache) Queue(desc PipelineDescriptor) CachedPipelineID {
	id, _ := c.ids.GetOrCreate(desc, func() (CachedPipelineID, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		id := CachedPipelineID(len(c.entries))
		c.entries = append(c.entries, pipelineEntry{desc: desc})
		c.queued = append(c.queued, id)
		return id, nil
	})
	return id
}

// Process compiles every queued pipeline. Compile failures mark the
// pipeline failed and are returned joined; other pipelines still compile.
func (c *PipelineCache) Process() error {
	c.mu.Lock()
	queued := c.queued
	c.queued = nil
	descs := make([]PipelineDescriptor, len(queued))
	for i, id := range queued {
		descs[i] = c.entries[id].desc
	}
	c.mu.Unlock()

	var errs []error
	for i, id := range queued {
		p, err := c.compiler.CompilePipeline(descs[i])

		c.mu.Lock()
		e := &c.entries[id]
		if err != nil {
			e.state = PipelineFailed
			e.err = fmt.Errorf("compile %s pipeline %q: %w: %w", descs[i].Kind, descs[i].Label, ErrPipelineCompilation, err)
			errs = append(errs, e.err)
		} else {
			e.state = PipelineReady
			e.pipeline = p
		}
		c.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Pipeline returns the compiled pipeline for id. It returns
// ErrPipelineNotReady while the pipeline is queued and the compile error
// once it failed.
func (c *PipelineCache) Pipeline(id CachedPipelineID) (Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(id) >= len(c.entries) {
		return nil, fmt.Errorf("render: unknown pipeline id %d", id)
	}
	e := c.entries[id]
	switch e.state {
	case PipelineReady:
		return e.pipeline, nil
	case PipelineFailed:
		return nil, e.err
	default:
		return nil, ErrPipelineNotReady
	}
}

// Get returns the compiled pipeline for id, or false while it is queued
// or after it failed.
func (c *PipelineCache) Get(id CachedPipelineID) (Pipeline, bool) {
	p, err := c.Pipeline(id)
	return p, err == nil
}

// State returns the compilation state of id.
func (c *PipelineCache) State(id CachedPipelineID) PipelineState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(id) >= len(c.entries) {
		return PipelineFailed
	}
	return c.entries[id].state
}

// Descriptor returns the descriptor id was queued with.
func (c *PipelineCache) Descriptor(id CachedPipelineID) (PipelineDescriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(id) >= len(c.entries) {
		return PipelineDescriptor{}, false
	}
	return c.entries[id].desc, true
}

// Len returns the number of known pipelines.
func (c *PipelineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Destroy releases every compiled pipeline. Ids stay valid but report
// PipelineFailed afterwards.
func (c *PipelineCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		e := &c.entries[i]
		if e.pipeline != nil {
			c.compiler.DestroyPipeline(e.pipeline)
			e.pipeline = nil
		}
		e.state = PipelineFailed
		e.err = errors.New("render: pipeline cache destroyed")
	}
	c.queued = nil
}
