package schedule

import (
	"slices"

	"github.com/gogpu/voronoi/render"
)

// ViewKey is the configuration of a view that, when changed, invalidates
// its flood result and its pipeline specializations.
type ViewKey struct {
	Width, Height int
	Scale         float32
	HDR           bool
	// Viewport is the camera viewport in target pixels. It bounds the
	// mask pass.
	Viewport render.Viewport
	// Settings is a host-provided fingerprint of other view settings.
	Settings uint64
}

// Participant is a visible drawable taking part in a view's mask pass.
type Participant struct {
	Entity render.EntityID
	// Changed is the tick of the drawable's last transform, material or
	// mesh change.
	Changed Tick
}

// ViewInput is what the scheduler needs to know about a view each frame.
type ViewInput struct {
	View render.ViewID
	// Changed is the tick of the view's last camera change.
	Changed      Tick
	Key          ViewKey
	Participants []Participant
}

// Entry is the cached specialization of one drawable in one view.
type Entry struct {
	Tick     Tick
	Pipeline render.CachedPipelineID
	Key      render.MeshKey
}

type viewRecord struct {
	state        State
	key          ViewKey
	keyChanged   Tick
	ranTick      Tick
	hasRun       bool
	participants []render.EntityID
	entries      map[render.EntityID]Entry
}

// Scheduler tracks the state of every live view.
type Scheduler struct {
	mode  Mode
	tick  Tick
	views map[render.ViewID]*viewRecord
}

// New creates a scheduler.
func New(mode Mode) *Scheduler {
	return &Scheduler{
		mode:  mode,
		views: make(map[render.ViewID]*viewRecord),
	}
}

// Mode returns the invalidation mode.
func (s *Scheduler) Mode() Mode {
	return s.mode
}

// SetMode changes the invalidation mode from the next Plan call on.
func (s *Scheduler) SetMode(m Mode) {
	s.mode = m
}

// BeginFrame sets the tick of the frame being planned.
func (s *Scheduler) BeginFrame(tick Tick) {
	s.tick = tick
}

// Tick returns the tick of the current frame.
func (s *Scheduler) Tick() Tick {
	return s.tick
}

// Plan records in and returns the state of the view for this frame:
// NeedsUpdate when the pipeline must run, Idle otherwise. A view without
// participants is always Idle.
func (s *Scheduler) Plan(in ViewInput) State {
	rec, ok := s.views[in.View]
	if !ok {
		rec = &viewRecord{
			keyChanged: s.tick,
			entries:    make(map[render.EntityID]Entry),
		}
		s.views[in.View] = rec
	}

	ids := make([]render.EntityID, len(in.Participants))
	for i, p := range in.Participants {
		ids[i] = p.Entity
	}

	needs := !rec.hasRun || rec.state == NeedsUpdate || in.Changed > rec.ranTick
	if ok && in.Key != rec.key {
		rec.keyChanged = s.tick
		needs = true
	}
	if !slices.Equal(ids, rec.participants) {
		needs = true
	}
	for _, p := range in.Participants {
		if p.Changed > rec.ranTick {
			needs = true
			break
		}
	}

	rec.key = in.Key
	rec.participants = ids
	for e := range rec.entries {
		if !slices.Contains(ids, e) {
			delete(rec.entries, e)
		}
	}

	switch {
	case len(ids) == 0:
		rec.state = Idle
		rec.ranTick = s.tick
		rec.hasRun = true
	case needs || s.mode == RecomputeAlways:
		rec.state = NeedsUpdate
	default:
		rec.state = Idle
	}
	return rec.state
}

// Specialize returns the cached pipeline of entity in view when it is
// still valid for key and changed, or calls compile and caches its result.
// compile errors are returned and nothing is cached.
func (s *Scheduler) Specialize(view render.ViewID, entity render.EntityID, key render.MeshKey, changed Tick,
	compile func() (render.CachedPipelineID, error)) (render.CachedPipelineID, error) {
	rec, ok := s.views[view]
	if !ok {
		rec = &viewRecord{keyChanged: s.tick, entries: make(map[render.EntityID]Entry)}
		s.views[view] = rec
	}
	if e, ok := rec.entries[entity]; ok && e.Key == key && e.Tick >= changed && e.Tick >= rec.keyChanged {
		return e.Pipeline, nil
	}

	id, err := compile()
	if err != nil {
		delete(rec.entries, entity)
		return 0, err
	}
	rec.entries[entity] = Entry{Tick: s.tick, Pipeline: id, Key: key}
	return id, nil
}

// MarkRan records that the pipeline of view executed this frame and
// refreshes its cache entries to the current tick.
func (s *Scheduler) MarkRan(view render.ViewID) {
	rec, ok := s.views[view]
	if !ok {
		return
	}
	rec.state = Ran
	rec.ranTick = s.tick
	rec.hasRun = true
	for e, entry := range rec.entries {
		entry.Tick = s.tick
		rec.entries[e] = entry
	}
}

// State returns the current state of view.
func (s *Scheduler) State(view render.ViewID) (State, bool) {
	rec, ok := s.views[view]
	if !ok {
		return Idle, false
	}
	return rec.state, true
}

// Entry returns the cached specialization of entity in view.
func (s *Scheduler) Entry(view render.ViewID, entity render.EntityID) (Entry, bool) {
	rec, ok := s.views[view]
	if !ok {
		return Entry{}, false
	}
	e, ok := rec.entries[entity]
	return e, ok
}

// Prune forgets every view for which live returns false and returns
// their ids.
func (s *Scheduler) Prune(live func(render.ViewID) bool) []render.ViewID {
	var removed []render.ViewID
	for id := range s.views {
		if !live(id) {
			removed = append(removed, id)
			delete(s.views, id)
		}
	}
	slices.Sort(removed)
	return removed
}

// Len returns the number of tracked views.
func (s *Scheduler) Len() int {
	return len(s.views)
}
