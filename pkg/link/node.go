package link

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/linkroute/pkg/geom"
)

var (
	// ErrNilElement is returned when a nil node or edge is passed to a
	// mutation method.
	ErrNilElement = errors.New("nil link element")

	// ErrHasParent is returned when adding an element that already belongs
	// to another parent. Remove it from its current parent first.
	ErrHasParent = errors.New("element already has a parent")

	// ErrCycle is returned when an add would make an element its own
	// ancestor.
	ErrCycle = errors.New("link hierarchy would contain a cycle")
)

// Node is a region on screen that routed paths connect to.
//
// The zero value is usable but has no ID and a nil Props map; prefer
// [NewNode]. A Node is owned by at most one [HyperEdge] at a time.
type Node struct {
	ID    string // Stable identifier (random UUID unless set by the caller)
	Props Props  // Occlusion flags and routing hints

	vertices           []geom.Point
	linkPoints         []geom.Point
	linkPointsChildren []geom.Point

	children []*HyperEdge
	parent   *HyperEdge
}

// NewNode creates a node with the given polygon. A nil or empty polygon
// creates a structural node that only groups its children.
func NewNode(vertices []geom.Point) *Node {
	return &Node{
		ID:       uuid.NewString(),
		Props:    Props{},
		vertices: slices.Clone(vertices),
	}
}

// Vertices returns the region polygon. The slice must not be modified.
func (n *Node) Vertices() []geom.Point { return n.vertices }

// SetVertices replaces the region polygon.
func (n *Node) SetVertices(pts []geom.Point) { n.vertices = slices.Clone(pts) }

// LinkPoints returns the points where paths touch this node, falling back
// to the vertices when no override is set.
func (n *Node) LinkPoints() []geom.Point {
	if len(n.linkPoints) > 0 {
		return n.linkPoints
	}
	return n.vertices
}

// SetLinkPoints overrides the touch points. Passing nil restores the fallback.
func (n *Node) SetLinkPoints(pts []geom.Point) { n.linkPoints = slices.Clone(pts) }

// LinkPointsChildren returns the points where paths from the node's child
// edges converge, falling back to [Node.LinkPoints].
func (n *Node) LinkPointsChildren() []geom.Point {
	if len(n.linkPointsChildren) > 0 {
		return n.linkPointsChildren
	}
	return n.LinkPoints()
}

// SetLinkPointsChildren overrides the convergence points. Passing nil
// restores the fallback.
func (n *Node) SetLinkPointsChildren(pts []geom.Point) {
	n.linkPointsChildren = slices.Clone(pts)
}

// Center returns the first link point, or the zero point when there is none.
func (n *Node) Center() geom.Point {
	if pts := n.LinkPoints(); len(pts) > 0 {
		return pts[0]
	}
	return geom.Point{}
}

// BoundingBox returns the axis-aligned bounds of the vertices. A structural
// node yields the empty rectangle.
func (n *Node) BoundingBox() geom.Rect { return geom.BoundingBox(n.vertices) }

// Parent returns the edge that owns n, or nil.
func (n *Node) Parent() *HyperEdge { return n.parent }

// Children returns the child edges owned by n. The slice must not be modified.
func (n *Node) Children() []*HyperEdge { return n.children }

// Flag is shorthand for n.Props.Bool(key).
func (n *Node) Flag(key string) bool { return n.Props.Bool(key) }

// WindowID returns the id of the window covering n, 0 when uncovered.
func (n *Node) WindowID() uint64 { return n.Props.Uint(PropCoveringWID) }

// AddChild attaches e below n.
//
// Returns ErrNilElement if e is nil, ErrHasParent if e is already attached
// somewhere, and ErrCycle if e is an ancestor of n.
func (n *Node) AddChild(e *HyperEdge) error {
	if e == nil {
		return ErrNilElement
	}
	if e.parent != nil {
		return ErrHasParent
	}
	for a := n.parent; a != nil; {
		if a == e {
			return ErrCycle
		}
		if a.parent == nil {
			break
		}
		a = a.parent.parent
	}
	e.parent = n
	n.children = append(n.children, e)
	return nil
}

// RemoveChild detaches e from n and reports whether it was a child.
func (n *Node) RemoveChild(e *HyperEdge) bool {
	i := slices.Index(n.children, e)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	e.parent = nil
	return true
}

// Routable reports whether routing should consider n as a member of an edge
// with the given always-route setting.
func (n *Node) Routable(alwaysRoute bool) bool {
	if n.Flag(PropNoRoute) {
		return false
	}
	return alwaysRoute || !n.Flag(PropHidden)
}
