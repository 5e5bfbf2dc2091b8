// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/voronoi/internal/cache"
)

// DefaultMaxIdleFrames is how many frames a released surface stays pooled.
const DefaultMaxIdleFrames = 3

// TextureCache pools surfaces by descriptor. Released surfaces are reused
// by later Acquire calls with an identical descriptor and destroyed when
// nobody asked for them for MaxIdleFrames frames.
//
// TextureCache is safe for concurrent use.
type TextureCache struct {
	alloc SurfaceAllocator
	free  *cache.Cache[SurfaceDescriptor, []Surface]

	// MaxIdleFrames overrides DefaultMaxIdleFrames when positive.
	MaxIdleFrames int

	mu      sync.Mutex
	created int
	reused  int
}

// NewTextureCache creates a cache allocating through alloc.
func NewTextureCache(alloc SurfaceAllocator) *TextureCache {
	return &TextureCache{
		alloc: alloc,
		free:  cache.New[SurfaceDescriptor, []Surface](),
	}
}

// Acquire returns a pooled surface matching desc or allocates a new one.
func (c *TextureCache) Acquire(desc SurfaceDescriptor) (Surface, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	var s Surface
	c.free.Update(desc, func(pool []Surface, _ bool) []Surface {
		if n := len(pool); n > 0 {
			s = pool[n-1]
			return pool[:n-1]
		}
		return pool
	})
	if s != nil {
		c.mu.Lock()
		c.reused++
		c.mu.Unlock()
		return s, nil
	}

	s, err := c.alloc.CreateSurface(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAllocation, desc.Label, err)
	}
	c.mu.Lock()
	c.created++
	c.mu.Unlock()
	return s, nil
}

// Release returns s to the pool.
func (c *TextureCache) Release(s Surface) {
	if s == nil {
		return
	}
	c.free.Update(s.Descriptor(), func(pool []Surface, _ bool) []Surface {
		return append(pool, s)
	})
}

// EndFrame advances the frame counter and destroys surfaces that have been
// idle for longer than MaxIdleFrames.
func (c *TextureCache) EndFrame() {
	c.free.Advance()
	maxIdle := c.MaxIdleFrames
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdleFrames
	}
	c.free.Sweep(uint64(maxIdle), func(_ SurfaceDescriptor, pool []Surface) {
		for _, s := range pool {
			c.alloc.DestroySurface(s)
		}
	})
}

// Pooled returns the number of idle surfaces.
func (c *TextureCache) Pooled() int {
	n := 0
	c.free.Range(func(_ SurfaceDescriptor, pool []Surface) bool {
		n += len(pool)
		return true
	})
	return n
}

// TextureCacheStats reports allocation counters.
type TextureCacheStats struct {
	Created int
	Reused  int
	Pooled  int
}

// Stats returns allocation counters.
func (c *TextureCache) Stats() TextureCacheStats {
	pooled := c.Pooled()
	c.mu.Lock()
	defer c.mu.Unlock()
	return TextureCacheStats{Created: c.created, Reused: c.reused, Pooled: pooled}
}

// Destroy destroys every pooled surface.
func (c *TextureCache) Destroy() {
	c.free.Clear(func(_ SurfaceDescriptor, pool []Surface) {
		for _, s := range pool {
			c.alloc.DestroySurface(s)
		}
	})
}
