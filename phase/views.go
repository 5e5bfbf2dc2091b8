package phase

import "github.com/gogpu/voronoi/render"

// ViewPhases holds one phase per live view.
type ViewPhases[P Phase] struct {
	phases  map[render.ViewID]P
	newFunc func() P
}

// NewViewPhases creates an empty set; newFunc allocates phases for views
// seen for the first time.
func NewViewPhases[P Phase](newFunc func() P) *ViewPhases[P] {
	return &ViewPhases[P]{
		phases:  make(map[render.ViewID]P),
		newFunc: newFunc,
	}
}

// InsertOrClear returns the phase of view, emptied, creating it if needed.
func (v *ViewPhases[P]) InsertOrClear(view render.ViewID) P {
	if p, ok := v.phases[view]; ok {
		p.Clear()
		return p
	}
	p := v.newFunc()
	v.phases[view] = p
	return p
}

// Get returns the phase of view.
func (v *ViewPhases[P]) Get(view render.ViewID) (P, bool) {
	p, ok := v.phases[view]
	return p, ok
}

// Retain drops the phases of views for which live returns false and
// returns how many were dropped.
func (v *ViewPhases[P]) Retain(live func(render.ViewID) bool) int {
	n := 0
	for id := range v.phases {
		if !live(id) {
			delete(v.phases, id)
			n++
		}
	}
	return n
}

// Len returns the number of views with a phase.
func (v *ViewPhases[P]) Len() int {
	return len(v.phases)
}
