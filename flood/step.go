package flood

// Step is the sampling stride of one flood pass, in texels per axis.
type Step struct {
	X, Y uint32
}

// Refine is the stride of the forced final pass.
var Refine = Step{X: 1, Y: 1}

// Steps returns the stride schedule for a w×h surface.
//
// With maxDim = max(w, h) the base stride starts at maxDim/2 and halves
// while it is at least 1. Each axis is scaled by its share of maxDim so
// that non-square surfaces cover their short side in the same number of
// passes, and floored to 1. One extra Refine pass always follows, even
// when the last halved stride was already (1,1).
//
// A surface with maxDim < 2 produces only the Refine pass.
func Steps(w, h int) []Step {
	maxDim := max(w, h)
	if maxDim <= 0 {
		return nil
	}
	steps := make([]Step, 0, PassCount(w, h))
	for s := maxDim / 2; s >= 1; s /= 2 {
		steps = append(steps, Step{
			X: uint32(atLeastOne(s * w / maxDim)),
			Y: uint32(atLeastOne(s * h / maxDim)),
		})
	}
	return append(steps, Refine)
}

// PassCount returns len(Steps(w, h)) without allocating.
func PassCount(w, h int) int {
	maxDim := max(w, h)
	if maxDim <= 0 {
		return 0
	}
	n := 1
	for s := maxDim / 2; s >= 1; s /= 2 {
		n++
	}
	return n
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
