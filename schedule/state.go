package schedule

import "fmt"

// Tick is a host change counter. Larger ticks are newer.
type Tick uint64

// State is the per-view scheduling state.
type State uint8

const (
	// Idle views have nothing new to compute.
	Idle State = iota
	// NeedsUpdate views must run the full pipeline this frame.
	NeedsUpdate
	// Ran views executed the pipeline this frame.
	Ran
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case NeedsUpdate:
		return "NeedsUpdate"
	case Ran:
		return "Ran"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Mode selects how views are invalidated.
type Mode uint8

const (
	// RecomputeAlways runs the pipeline for every view with participants
	// on every frame.
	RecomputeAlways Mode = iota
	// RecomputeOnChange runs the pipeline only for views whose inputs
	// changed since their last run.
	RecomputeOnChange
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case RecomputeAlways:
		return "always"
	case RecomputeOnChange:
		return "on-change"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "always":
		return RecomputeAlways, nil
	case "on-change", "onchange":
		return RecomputeOnChange, nil
	default:
		return 0, fmt.Errorf("schedule: unknown invalidation mode %q", s)
	}
}
