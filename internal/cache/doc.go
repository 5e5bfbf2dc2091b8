// Package cache provides a generic, thread-safe cache whose entries age by
// frame rather than by access count.
//
// Render resources (compiled pipelines, pooled surfaces) are naturally
// scoped to frames: an entry touched during a frame is fresh, and an entry
// nobody touched for a few frames can be released.
//
//	c := cache.New[Descriptor, []Surface]()
//	c.Set(desc, surfaces)
//	...
//	c.Advance()                     // end of frame
//	c.Sweep(3, func(k Descriptor, v []Surface) { release(v) })
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
