package flood

// PingPong owns two equally sized surfaces and tracks which one is read
// and which one is written by the current pass.
//
// The zero value reads A and writes B. Flip swaps the roles without
// touching either surface.
type PingPong[T any] struct {
	a, b    T
	flipped bool
}

// NewPingPong returns a PingPong reading a and writing b.
func NewPingPong[T any](a, b T) *PingPong[T] {
	return &PingPong[T]{a: a, b: b}
}

// Input returns the surface read by the current pass.
func (p *PingPong[T]) Input() T {
	if p.flipped {
		return p.b
	}
	return p.a
}

// Output returns the surface written by the current pass.
func (p *PingPong[T]) Output() T {
	if p.flipped {
		return p.a
	}
	return p.b
}

// Flip swaps Input and Output.
func (p *PingPong[T]) Flip() {
	p.flipped = !p.flipped
}

// Flipped reports whether the roles are currently swapped.
func (p *PingPong[T]) Flipped() bool {
	return p.flipped
}

// Reset restores the initial assignment (A is the input).
func (p *PingPong[T]) Reset() {
	p.flipped = false
}

// Surfaces returns both slots in allocation order.
func (p *PingPong[T]) Surfaces() (a, b T) {
	return p.a, p.b
}
