// Package schedule decides, per view and per frame, whether the flood
// pipeline has to run, and caches pipeline specializations per
// (view, drawable) pair.
//
// Change detection is tick based: the host stamps every view and drawable
// with the tick of its last change, and the scheduler compares those stamps
// with the tick at which it last ran a view.
//
//	Idle ──change──▶ NeedsUpdate ──pipeline runs──▶ Ran ──no change──▶ Idle
//
// The scheduler is owned by the frame goroutine and is not safe for
// concurrent use.
package schedule
