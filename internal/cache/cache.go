package cache

import "sync"

// Cache is a generic thread-safe map whose entries remember the frame in
// which they were last used.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*cacheEntry[V]
	frame   uint64

	hits      uint64
	misses    uint64
	evictions uint64
}

// cacheEntry holds a cached value with the frame it was last used in.
type cacheEntry[V any] struct {
	value V
	used  uint64
}

// New creates an empty cache at frame 0.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*cacheEntry[V]),
	}
}

// Get retrieves a value and marks it used in the current frame.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	entry.used = c.frame
	return entry.value, true
}

// Peek retrieves a value without marking it used.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Set stores a value, marking it used in the current frame.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry[V]{value: value, used: c.frame}
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the lock, so concurrent callers never create twice.
// A create error is returned and nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.hits++
		entry.used = c.frame
		return entry.value, nil
	}
	c.misses++

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = &cacheEntry[V]{value: value, used: c.frame}
	return value, nil
}

// Update replaces the value stored under key with fn(old, found).
func (c *Cache[K, V]) Update(key K, fn func(old V, found bool) V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		c.entries[key] = &cacheEntry[V]{value: fn(zero, false), used: c.frame}
		return
	}
	entry.value = fn(entry.value, true)
	entry.used = c.frame
}

// Delete removes an entry and returns its value.
func (c *Cache[K, V]) Delete(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.entries, key)
	return entry.value, true
}

// Advance moves the cache to the next frame and returns it.
func (c *Cache[K, V]) Advance() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame++
	return c.frame
}

// Frame returns the current frame counter.
func (c *Cache[K, V]) Frame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frame
}

// Sweep removes every entry that has not been used during the last maxAge
// frames and hands it to evict (which may be nil). Returns the number of
// removed entries.
func (c *Cache[K, V]) Sweep(maxAge uint64, evict func(K, V)) int {
	c.mu.Lock()
	var removed []K
	var values []V
	for key, entry := range c.entries {
		if c.frame-entry.used > maxAge {
			removed = append(removed, key)
			values = append(values, entry.value)
			delete(c.entries, key)
		}
	}
	c.evictions += uint64(len(removed))
	c.mu.Unlock()

	if evict != nil {
		for i, key := range removed {
			evict(key, values[i])
		}
	}
	return len(removed)
}

// Range calls fn for every entry until fn returns false. The cache is
// locked for the duration; fn must not call back into the cache.
func (c *Cache[K, V]) Range(fn func(K, V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if !fn(key, entry.value) {
			return
		}
	}
}

// Clear removes all entries and hands them to evict (which may be nil).
func (c *Cache[K, V]) Clear(evict func(K, V)) {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[K]*cacheEntry[V])
	c.mu.Unlock()

	if evict != nil {
		for key, entry := range entries {
			evict(key, entry.value)
		}
	}
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Frame:     c.frame,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Frame is the current frame counter.
	Frame uint64
	// Hits is the number of Get/GetOrCreate calls that found an entry.
	Hits uint64
	// Misses is the number of Get/GetOrCreate calls that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when nothing was looked up.
	HitRate float64
	// Evictions is the number of entries removed by Sweep.
	Evictions uint64
}
