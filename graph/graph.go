// Package graph orders the render passes of a frame.
//
// A Graph holds named nodes and "runs before" edges between them. The host
// registers its own passes (see Core2D); plug-ins insert nodes between
// them. Every view runs the nodes in one topological order, ties broken by
// registration order.
package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/voronoi/render"
)

// Labels of the host passes registered by Core2D, in execution order.
const (
	StartMainPass       = "start_main_pass"
	MainOpaquePass      = "main_opaque_pass"
	MainTransparentPass = "main_transparent_pass"
	EndMainPass         = "end_main_pass"
	Tonemapping         = "tonemapping"
	Upscaling           = "upscaling"
)

// Graph errors.
var (
	ErrDuplicateNode = errors.New("graph: duplicate node")
	ErrUnknownNode   = errors.New("graph: unknown node")
	ErrCycle         = errors.New("graph: cycle")
)

// Node is one pass of the frame graph, run once per view.
type Node interface {
	Run(ctx context.Context, view render.ViewID) error
}

// NodeFunc adapts a function to Node.
type NodeFunc func(ctx context.Context, view render.ViewID) error

// Run calls f.
func (f NodeFunc) Run(ctx context.Context, view render.ViewID) error {
	return f(ctx, view)
}

// nop is the node of host passes that do nothing by default.
var nop = NodeFunc(func(context.Context, render.ViewID) error { return nil })

// Graph is a set of nodes with ordering edges. It is safe for concurrent
// use; Run may be called for several views at once.
type Graph struct {
	mu     sync.RWMutex
	labels []string
	nodes  map[string]Node
	edges  map[string][]string
	order  []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make(map[string][]string),
	}
}

// Core2D returns a graph holding the host's 2D main passes as no-op
// nodes, chained in order. Hosts replace them with Set.
func Core2D() *Graph {
	g := New()
	chain := []string{StartMainPass, MainOpaquePass, MainTransparentPass, EndMainPass, Tonemapping, Upscaling}
	for _, label := range chain {
		_ = g.AddNode(label, nop)
	}
	_ = g.AddEdges(chain...)
	return g
}

// AddNode registers n under label.
func (g *Graph) AddNode(label string, n Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[label]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, label)
	}
	g.nodes[label] = n
	g.labels = append(g.labels, label)
	g.order = nil
	return nil
}

// Set replaces the node registered under label.
func (g *Graph) Set(label string, n Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[label]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, label)
	}
	g.nodes[label] = n
	return nil
}

// AddEdge declares that from runs before to.
func (g *Graph) AddEdge(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, l := range []string{from, to} {
		if _, ok := g.nodes[l]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNode, l)
		}
	}
	if !slices.Contains(g.edges[from], to) {
		g.edges[from] = append(g.edges[from], to)
	}
	g.order = nil
	return nil
}

// AddEdges chains labels so that each runs before the next.
func (g *Graph) AddEdges(labels ...string) error {
	for i := 1; i < len(labels); i++ {
		if err := g.AddEdge(labels[i-1], labels[i]); err != nil {
			return err
		}
	}
	return nil
}

// Insert registers n under label so that it runs after the node after and
// before the node before. Empty labels add no edge. On any error, an
// unknown label or a cycle, the graph is left as it was.
func (g *Graph) Insert(label string, n Node, after, before string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[label]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, label)
	}
	for _, l := range []string{after, before} {
		if _, ok := g.nodes[l]; l != "" && !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNode, l)
		}
	}

	g.nodes[label] = n
	g.labels = append(g.labels, label)
	if after != "" {
		g.edges[after] = append(g.edges[after], label)
	}
	if before != "" {
		g.edges[label] = []string{before}
	}
	order, err := g.sort()
	if err != nil {
		g.remove(label)
		return err
	}
	g.order = order
	return nil
}

// remove drops label and every edge touching it. Caller must hold g.mu.
func (g *Graph) remove(label string) {
	delete(g.nodes, label)
	delete(g.edges, label)
	g.labels = slices.DeleteFunc(g.labels, func(l string) bool { return l == label })
	for from, to := range g.edges {
		g.edges[from] = slices.DeleteFunc(to, func(l string) bool { return l == label })
	}
	g.order = nil
}

// Has reports whether label is registered.
func (g *Graph) Has(label string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[label]
	return ok
}

// Order returns the node labels in execution order.
func (g *Graph) Order() ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.order != nil {
		return slices.Clone(g.order), nil
	}
	order, err := g.sort()
	if err != nil {
		return nil, err
	}
	g.order = order
	return slices.Clone(order), nil
}

// sort is Kahn's algorithm; ready nodes are taken in registration order.
// Caller must hold g.mu.
func (g *Graph) sort() ([]string, error) {
	indegree := make(map[string]int, len(g.labels))
	for _, from := range g.labels {
		for _, to := range g.edges[from] {
			indegree[to]++
		}
	}

	order := make([]string, 0, len(g.labels))
	done := make(map[string]bool, len(g.labels))
	for len(order) < len(g.labels) {
		progressed := false
		for _, l := range g.labels {
			if done[l] || indegree[l] > 0 {
				continue
			}
			done[l] = true
			order = append(order, l)
			for _, to := range g.edges[l] {
				indegree[to]--
			}
			progressed = true
			break
		}
		if !progressed {
			var stuck []string
			for _, l := range g.labels {
				if !done[l] {
					stuck = append(stuck, l)
				}
			}
			return nil, fmt.Errorf("%w among %v", ErrCycle, stuck)
		}
	}
	return order, nil
}

// Run executes every node for view in order. A node error stops the run
// for that view and is returned wrapped with the node label.
func (g *Graph) Run(ctx context.Context, view render.ViewID) error {
	order, err := g.Order()
	if err != nil {
		return err
	}
	g.mu.RLock()
	nodes := make([]Node, len(order))
	for i, l := range order {
		nodes[i] = g.nodes[l]
	}
	g.mu.RUnlock()

	for i, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.Run(ctx, view); err != nil {
			return fmt.Errorf("node %q: %w", order[i], err)
		}
	}
	return nil
}
