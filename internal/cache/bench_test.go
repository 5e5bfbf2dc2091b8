package cache

import "testing"

type benchDesc struct {
	label         string
	width, height int
	hdr           bool
}

func benchDescs(n int) []benchDesc {
	descs := make([]benchDesc, n)
	for i := range descs {
		descs[i] = benchDesc{label: "flood", width: 64 << (i % 4), height: 48 + i, hdr: i%2 == 0}
	}
	return descs
}

// BenchmarkLookup measures a descriptor lookup that hits, the common case
// of a steady-state frame.
func BenchmarkLookup(b *testing.B) {
	c := New[benchDesc, int]()
	descs := benchDescs(64)
	for i, d := range descs {
		c.Set(d, i)
	}

	for i := 0; b.Loop(); i++ {
		c.Get(descs[i%len(descs)])
	}
}

// BenchmarkFreeList measures taking and returning one entry of a free list,
// the way released surfaces are recycled.
func BenchmarkFreeList(b *testing.B) {
	c := New[benchDesc, []int]()
	d := benchDescs(1)[0]
	c.Set(d, []int{1, 2, 3, 4})

	for b.Loop() {
		var v int
		c.Update(d, func(old []int, _ bool) []int {
			v = old[len(old)-1]
			return old[:len(old)-1]
		})
		c.Update(d, func(old []int, _ bool) []int {
			return append(old, v)
		})
	}
}

// BenchmarkFrameSweep measures one end of frame with a full cache where
// nothing is old enough to evict.
func BenchmarkFrameSweep(b *testing.B) {
	c := New[benchDesc, int]()
	for i, d := range benchDescs(1000) {
		c.Set(d, i)
	}

	for b.Loop() {
		c.Advance()
		c.Sweep(1<<62, nil)
	}
}
