package schedule

import (
	"errors"
	"testing"

	"github.com/gogpu/voronoi/render"
)

func viewInput(view render.ViewID, changed Tick, participants ...Participant) ViewInput {
	return ViewInput{
		View:         view,
		Changed:      changed,
		Key:          ViewKey{Width: 64, Height: 64, Scale: 1},
		Participants: participants,
	}
}

func TestSchedulerStateMachine(t *testing.T) {
	s := New(RecomputeOnChange)
	p := Participant{Entity: 1, Changed: 1}

	s.BeginFrame(1)
	if got := s.Plan(viewInput(10, 1, p)); got != NeedsUpdate {
		t.Fatalf("first frame state = %v, want NeedsUpdate", got)
	}
	s.MarkRan(10)
	if got, _ := s.State(10); got != Ran {
		t.Fatalf("after MarkRan state = %v, want Ran", got)
	}

	s.BeginFrame(2)
	if got := s.Plan(viewInput(10, 1, p)); got != Idle {
		t.Fatalf("unchanged frame state = %v, want Idle", got)
	}

	s.BeginFrame(3)
	if got := s.Plan(viewInput(10, 3, p)); got != NeedsUpdate {
		t.Errorf("camera change state = %v, want NeedsUpdate", got)
	}
	s.MarkRan(10)

	s.BeginFrame(4)
	in := viewInput(10, 3, p)
	in.Key.Scale = 0.5
	if got := s.Plan(in); got != NeedsUpdate {
		t.Errorf("scale change state = %v, want NeedsUpdate", got)
	}
	s.MarkRan(10)

	s.BeginFrame(5)
	if got := s.Plan(viewInput(10, 3, p, Participant{Entity: 2, Changed: 1})); got != NeedsUpdate {
		t.Errorf("participant added state = %v, want NeedsUpdate", got)
	}
	s.MarkRan(10)

	s.BeginFrame(6)
	in = viewInput(10, 3, p, Participant{Entity: 2, Changed: 1})
	in.Key.Viewport = render.Viewport{Width: 32, Height: 64}
	if got := s.Plan(in); got != NeedsUpdate {
		t.Errorf("viewport change state = %v, want NeedsUpdate", got)
	}
}

func TestSchedulerSkippedRunStaysDirty(t *testing.T) {
	s := New(RecomputeOnChange)
	p := Participant{Entity: 1, Changed: 1}

	s.BeginFrame(1)
	s.Plan(viewInput(1, 1, p))
	s.MarkRan(1)

	s.BeginFrame(2)
	if s.Plan(viewInput(1, 1, p, Participant{Entity: 2})) != NeedsUpdate {
		t.Fatal("participant change should need an update")
	}
	// The pipeline did not run (e.g. pipeline not ready).

	s.BeginFrame(3)
	if got := s.Plan(viewInput(1, 1, p, Participant{Entity: 2})); got != NeedsUpdate {
		t.Errorf("view that never ran its update is %v, want NeedsUpdate", got)
	}
}

func TestSchedulerInvalidatesOnlyViewsSeeingTheChange(t *testing.T) {
	s := New(RecomputeOnChange)
	shared := Participant{Entity: 1, Changed: 1}
	onlyA := Participant{Entity: 2, Changed: 1}

	s.BeginFrame(1)
	s.Plan(viewInput(100, 1, shared, onlyA))
	s.Plan(viewInput(200, 1, shared))
	s.MarkRan(100)
	s.MarkRan(200)

	// Entity 2 moves; only view 100 sees it.
	s.BeginFrame(2)
	onlyA.Changed = 2
	if got := s.Plan(viewInput(100, 1, shared, onlyA)); got != NeedsUpdate {
		t.Errorf("view A = %v, want NeedsUpdate", got)
	}
	if got := s.Plan(viewInput(200, 1, shared)); got != Idle {
		t.Errorf("view B = %v, want Idle", got)
	}
}

func TestSchedulerRecomputeAlways(t *testing.T) {
	s := New(RecomputeAlways)
	p := Participant{Entity: 1, Changed: 1}
	for tick := Tick(1); tick <= 3; tick++ {
		s.BeginFrame(tick)
		if got := s.Plan(viewInput(1, 1, p)); got != NeedsUpdate {
			t.Fatalf("tick %d: state = %v, want NeedsUpdate", tick, got)
		}
		s.MarkRan(1)
	}
}

func TestSchedulerNoParticipantsIsIdle(t *testing.T) {
	for _, mode := range []Mode{RecomputeAlways, RecomputeOnChange} {
		s := New(mode)
		s.BeginFrame(1)
		if got := s.Plan(viewInput(1, 1)); got != Idle {
			t.Errorf("%v: empty view = %v, want Idle", mode, got)
		}
	}
}

func TestSchedulerSpecializationCache(t *testing.T) {
	s := New(RecomputeOnChange)
	compiles := 0
	compile := func() (render.CachedPipelineID, error) {
		compiles++
		return render.CachedPipelineID(compiles), nil
	}

	s.BeginFrame(1)
	s.Plan(viewInput(1, 1, Participant{Entity: 7, Changed: 1}))
	id, err := s.Specialize(1, 7, render.MeshKeyMasked, 1, compile)
	if err != nil || id != 1 {
		t.Fatalf("Specialize = %d, %v", id, err)
	}
	if id, _ := s.Specialize(1, 7, render.MeshKeyMasked, 1, compile); id != 1 || compiles != 1 {
		t.Errorf("cache miss for unchanged entity: id %d, compiles %d", id, compiles)
	}
	s.MarkRan(1)

	// Material change invalidates the entry.
	s.BeginFrame(2)
	s.Plan(viewInput(1, 1, Participant{Entity: 7, Changed: 2}))
	if id, _ := s.Specialize(1, 7, render.MeshKeyMasked, 2, compile); id != 2 {
		t.Errorf("changed entity reused pipeline %d", id)
	}

	// Different key invalidates it too.
	if id, _ := s.Specialize(1, 7, 0, 2, compile); id != 3 {
		t.Errorf("different key reused pipeline %d", id)
	}

	// View key change invalidates every entry of the view.
	s.BeginFrame(3)
	in := viewInput(1, 1, Participant{Entity: 7, Changed: 2})
	in.Key.HDR = true
	s.Plan(in)
	if id, _ := s.Specialize(1, 7, 0, 2, compile); id != 4 {
		t.Errorf("view key change reused pipeline %d", id)
	}

	boom := errors.New("boom")
	if _, err := s.Specialize(1, 8, 0, 3, func() (render.CachedPipelineID, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("compile error = %v", err)
	}
	if _, ok := s.Entry(1, 8); ok {
		t.Error("failed specialization was cached")
	}
}

func TestSchedulerDropsDepartedEntities(t *testing.T) {
	s := New(RecomputeOnChange)
	s.BeginFrame(1)
	s.Plan(viewInput(1, 1, Participant{Entity: 1}, Participant{Entity: 2}))
	for _, e := range []render.EntityID{1, 2} {
		if _, err := s.Specialize(1, e, 0, 0, func() (render.CachedPipelineID, error) { return 0, nil }); err != nil {
			t.Fatal(err)
		}
	}

	s.BeginFrame(2)
	s.Plan(viewInput(1, 1, Participant{Entity: 1}))
	if _, ok := s.Entry(1, 2); ok {
		t.Error("entry of departed entity survived")
	}
	if _, ok := s.Entry(1, 1); !ok {
		t.Error("entry of remaining entity dropped")
	}
}

func TestSchedulerPrune(t *testing.T) {
	s := New(RecomputeAlways)
	s.BeginFrame(1)
	for _, v := range []render.ViewID{3, 1, 2} {
		s.Plan(viewInput(v, 1, Participant{Entity: 1}))
	}
	removed := s.Prune(func(v render.ViewID) bool { return v == 2 })
	if len(removed) != 2 || removed[0] != 1 || removed[1] != 3 {
		t.Errorf("Prune removed %v, want [1 3]", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if _, ok := s.State(1); ok {
		t.Error("pruned view still has a state")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{RecomputeAlways, RecomputeOnChange} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("sometimes"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
}
