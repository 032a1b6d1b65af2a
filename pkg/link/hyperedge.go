package link

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/linkroute/pkg/geom"
)

// HyperEdge is a group of nodes that must be connected to one shared point.
//
// Top-level edges have no parent. Nested edges are owned by a [Node]; see
// [Node.AddChild].
type HyperEdge struct {
	ID    string
	Props Props

	nodes    []*Node
	parent   *Node
	center   geom.Point
	revision uint64
	fork     *Forkation
}

// NewHyperEdge creates an empty edge.
func NewHyperEdge() *HyperEdge {
	return &HyperEdge{ID: uuid.NewString(), Props: Props{}}
}

// Nodes returns the member nodes in insertion order. The slice must not be
// modified.
func (e *HyperEdge) Nodes() []*Node { return e.nodes }

// Parent returns the node owning e, or nil for a top-level edge.
func (e *HyperEdge) Parent() *Node { return e.parent }

// Revision is bumped on every membership change. It exists for external
// cache invalidation.
func (e *HyperEdge) Revision() uint64 { return e.revision }

// Center returns the center computed by the last [HyperEdge.UpdateCenter].
func (e *HyperEdge) Center() geom.Point { return e.center }

// SetCenter overrides the computed center.
func (e *HyperEdge) SetCenter(p geom.Point) { e.center = p }

// Forkation returns the routing result of the last pass, or nil.
func (e *HyperEdge) Forkation() *Forkation { return e.fork }

// SetForkation stores a routing result.
func (e *HyperEdge) SetForkation(f *Forkation) { e.fork = f }

// ResetForkation discards the routing result.
func (e *HyperEdge) ResetForkation() { e.fork = nil }

// AlwaysRoute reports whether hidden members are routed anyway.
func (e *HyperEdge) AlwaysRoute() bool { return e.Props.Bool(PropAlwaysRoute) }

// AddNode appends n to the members and sets its parent reference.
//
// Returns ErrNilElement if n is nil, ErrHasParent if n already belongs to an
// edge, and ErrCycle if n is an ancestor of e.
func (e *HyperEdge) AddNode(n *Node) error {
	if n == nil {
		return ErrNilElement
	}
	if n.parent != nil {
		return ErrHasParent
	}
	for a := e.parent; a != nil; {
		if a == n {
			return ErrCycle
		}
		if a.parent == nil {
			break
		}
		a = a.parent.parent
	}
	n.parent = e
	e.nodes = append(e.nodes, n)
	e.touch()
	return nil
}

// RemoveNode detaches n and reports whether it was a member.
func (e *HyperEdge) RemoveNode(n *Node) bool {
	i := slices.Index(e.nodes, n)
	if i < 0 {
		return false
	}
	e.nodes = slices.Delete(e.nodes, i, i+1)
	n.parent = nil
	e.touch()
	return true
}

func (e *HyperEdge) touch() {
	e.revision++
	e.fork = nil
}

// UpdateCenter recomputes and returns the center: the mean of the member
// centers. Members without link points contribute the centers of their own
// child edges instead, recursively. An edge with nothing to anchor on gets
// the zero point.
func (e *HyperEdge) UpdateCenter() geom.Point {
	var pts []geom.Point
	for _, n := range e.nodes {
		if len(n.LinkPoints()) > 0 {
			pts = append(pts, n.Center())
			continue
		}
		for _, c := range n.children {
			if len(c.nodes) > 0 {
				pts = append(pts, c.UpdateCenter())
			}
		}
	}
	e.center = geom.Mean(pts)
	return e.center
}

// Walk visits e and its subtree depth-first, edges before their members.
// Returning false from fn stops the descent below that element.
func (e *HyperEdge) Walk(fn func(e *HyperEdge, n *Node) bool) {
	if !fn(e, nil) {
		return
	}
	for _, n := range e.nodes {
		if !fn(nil, n) {
			continue
		}
		for _, c := range n.children {
			c.Walk(fn)
		}
	}
}

// Depth returns the number of edges above e.
func (e *HyperEdge) Depth() int {
	d := 0
	for n := e.parent; n != nil && n.parent != nil; n = n.parent.parent {
		d++
	}
	return d
}
