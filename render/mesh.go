// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Topology is the primitive topology of a mesh.
type Topology uint8

const (
	// TriangleList draws every three vertices as one triangle.
	TriangleList Topology = iota
	// TriangleStrip draws each vertex with the previous two as a triangle.
	TriangleStrip
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "TriangleList"
	case TriangleStrip:
		return "TriangleStrip"
	default:
		return fmt.Sprintf("Topology(%d)", t)
	}
}

// ErrEmptyMesh is returned by Validate for meshes without triangles.
var ErrEmptyMesh = errors.New("render: mesh has no triangles")

// Mesh is a 2D triangle mesh in local coordinates.
type Mesh struct {
	// Positions are the vertex positions.
	Positions []Vec2
	// UVs are optional texture coordinates, one per position.
	UVs []Vec2
	// Indices are optional. Without them vertices are consumed in order.
	Indices  []uint32
	Topology Topology
}

// Indexed reports whether the mesh draws through an index list.
func (m *Mesh) Indexed() bool {
	return len(m.Indices) > 0
}

// VertexCount returns the number of vertices drawn.
func (m *Mesh) VertexCount() int {
	if m.Indexed() {
		return len(m.Indices)
	}
	return len(m.Positions)
}

// TriangleCount returns the number of triangles drawn.
func (m *Mesh) TriangleCount() int {
	n := m.VertexCount()
	if m.Topology == TriangleStrip {
		return max(0, n-2)
	}
	return n / 3
}

// Validate checks indices and attribute lengths.
func (m *Mesh) Validate() error {
	if m.TriangleCount() == 0 {
		return ErrEmptyMesh
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("render: mesh has %d uvs for %d positions", len(m.UVs), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("render: index %d at %d out of range", idx, i)
		}
	}
	return nil
}

// Triangles calls fn with the vertex indices of every triangle until fn
// returns false.
func (m *Mesh) Triangles(fn func(a, b, c int) bool) {
	vertex := func(i int) int {
		if m.Indexed() {
			return int(m.Indices[i])
		}
		return i
	}
	n := m.VertexCount()
	if m.Topology == TriangleStrip {
		for i := 0; i+2 < n; i++ {
			a, b, c := vertex(i), vertex(i+1), vertex(i+2)
			if i%2 == 1 {
				a, b = b, a
			}
			if !fn(a, b, c) {
				return
			}
		}
		return
	}
	for i := 0; i+2 < n; i += 3 {
		if !fn(vertex(i), vertex(i+1), vertex(i+2)) {
			return
		}
	}
}

// UV returns the texture coordinate of vertex i, or the zero vector when
// the mesh has none.
func (m *Mesh) UV(i int) Vec2 {
	if len(m.UVs) == 0 {
		return Vec2{}
	}
	return m.UVs[i]
}

// Rectangle returns an indexed w×h rectangle centered on the origin with
// UVs spanning [0,1].
func Rectangle(w, h float32) *Mesh {
	hw, hh := w/2, h/2
	return &Mesh{
		Positions: []Vec2{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}},
		UVs:       []Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

// RegularPolygon returns a triangle fan approximating a regular polygon
// with the given number of sides and circumradius, centered on the origin.
// Fewer than three sides yields a triangle.
func RegularPolygon(sides int, radius float32) *Mesh {
	sides = max(sides, 3)
	m := &Mesh{
		Positions: make([]Vec2, 0, sides+1),
		UVs:       make([]Vec2, 0, sides+1),
		Indices:   make([]uint32, 0, sides*3),
	}
	m.Positions = append(m.Positions, Vec2{})
	m.UVs = append(m.UVs, Vec2{0.5, 0.5})
	for i := 0; i < sides; i++ {
		sin, cos := math32.Sincos(2 * math32.Pi * float32(i) / float32(sides))
		m.Positions = append(m.Positions, Vec2{cos * radius, sin * radius})
		m.UVs = append(m.UVs, Vec2{0.5 + cos/2, 0.5 + sin/2})
	}
	for i := 1; i <= sides; i++ {
		next := i%sides + 1
		m.Indices = append(m.Indices, 0, uint32(i), uint32(next))
	}
	return m
}
