// Package flood holds the data side of the jump flooding algorithm (JFA):
// the double-buffered ping-pong resource, the halving step schedule and the
// texel encodings used by the seed and flood passes.
//
// A flood run over a W×H surface looks like:
//
//	tex := flood.NewPingPong(a, b)
//	// mask pass writes tex.Output()
//	tex.Flip()
//	// seed pass: tex.Input() -> tex.Output()
//	tex.Flip()
//	for _, step := range flood.Steps(w, h) {
//	    // flood pass with step: tex.Input() -> tex.Output()
//	    tex.Flip()
//	}
//	// tex.Input() now holds the nearest seed of every texel
//
// The package has no GPU dependencies. Backends implement the passes; the
// reference implementations of the per-texel kernels live here so that the
// CPU backend and tests share them.
package flood
