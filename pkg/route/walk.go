package route

import (
	"maps"
	"slices"

	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/link"
)

// Side is a viewport edge that off-screen members are gathered at.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

// Sides lists every side in routing order.
var Sides = [...]Side{SideLeft, SideRight, SideTop, SideBottom}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	}
	return "invalid"
}

// MemberKind says how a member takes part in routing.
type MemberKind uint8

const (
	// MemberLocal is routed directly to its own link points.
	MemberLocal MemberKind = iota
	// MemberStub has no geometry and gets an empty segment.
	MemberStub
	// MemberCovered lies behind another window and is reached through
	// that window's fork.
	MemberCovered
	// MemberOutside lies beyond the viewport and is reached through the
	// indicator point of its side.
	MemberOutside
)

// Member is one visible, routable member of an edge.
type Member struct {
	Node   *link.Node
	Kind   MemberKind
	Window uint64 // covering window for MemberCovered
	Side   Side   // viewport side for MemberOutside
}

// EdgePlan is the classified member list of one edge.
type EdgePlan struct {
	Edge    *link.HyperEdge
	Members []Member

	// Windows lists the covering windows referenced by covered members,
	// ascending.
	Windows []uint64

	// Outside holds the members of each non-empty side bucket.
	Outside map[Side][]*link.Node
}

// Local returns the members routed directly.
func (ep *EdgePlan) Local() []*link.Node {
	var out []*link.Node
	for _, m := range ep.Members {
		if m.Kind == MemberLocal {
			out = append(out, m.Node)
		}
	}
	return out
}

// Plan is the pass-scoped grouping of a forest. It is rebuilt on every
// routing pass and never stored on the model.
type Plan struct {
	Viewport geom.Rect

	// Edges lists every routed edge with nested edges before their parents.
	Edges []*EdgePlan

	// Windows collects covered members of all edges by covering window.
	Windows map[uint64][]*link.Node
}

// WindowIDs returns the keys of Windows in ascending order.
func (p *Plan) WindowIDs() []uint64 {
	return slices.Sorted(maps.Keys(p.Windows))
}

// Walk classifies the members of every edge below roots against the
// viewport. Members that are hidden (unless their edge always routes) or
// marked no-route are skipped together with their subtrees.
func Walk(roots []*link.HyperEdge, viewport geom.Rect) *Plan {
	p := &Plan{Viewport: viewport, Windows: make(map[uint64][]*link.Node)}
	for _, e := range roots {
		if e != nil {
			p.visit(e)
		}
	}
	return p
}

func (p *Plan) visit(e *link.HyperEdge) {
	if e.Props.Bool(link.PropNoRoute) {
		return
	}
	ep := &EdgePlan{Edge: e, Outside: make(map[Side][]*link.Node)}
	windows := make(map[uint64]struct{})

	for _, n := range e.Nodes() {
		if !n.Routable(e.AlwaysRoute()) {
			continue
		}
		for _, c := range n.Children() {
			p.visit(c)
		}

		m := Member{Node: n}
		switch {
		case len(n.Vertices()) == 0:
			m.Kind = MemberStub
		case n.Flag(link.PropOutside) || n.Flag(link.PropOutsideScroll):
			m.Kind = MemberOutside
			m.Side = SideOf(n.Center(), p.Viewport)
			ep.Outside[m.Side] = append(ep.Outside[m.Side], n)
		case n.WindowID() != 0:
			m.Kind = MemberCovered
			m.Window = n.WindowID()
			windows[m.Window] = struct{}{}
			p.Windows[m.Window] = append(p.Windows[m.Window], n)
		default:
			m.Kind = MemberLocal
		}
		ep.Members = append(ep.Members, m)
	}

	ep.Windows = slices.Sorted(maps.Keys(windows))
	p.Edges = append(p.Edges, ep)
}

// SideOf returns the viewport side p lies furthest beyond. Points inside
// the viewport get the nearest side. Ties resolve in [Sides] order.
func SideOf(p geom.Point, viewport geom.Rect) Side {
	beyond := [...]float64{
		SideLeft:   viewport.Min.X - p.X,
		SideRight:  p.X - viewport.Max.X,
		SideTop:    viewport.Min.Y - p.Y,
		SideBottom: p.Y - viewport.Max.Y,
	}
	best := SideLeft
	for _, s := range Sides[1:] {
		if beyond[s] > beyond[best] {
			best = s
		}
	}
	return best
}

// Indicator returns the point on side s where paths to the off-screen nodes
// end: the mean of their centres projected onto that side of the viewport,
// inset by the given margin.
func Indicator(s Side, nodes []*link.Node, viewport geom.Rect, inset float64) geom.Point {
	centers := make([]geom.Point, len(nodes))
	for i, n := range nodes {
		centers[i] = n.Center()
	}
	inner := viewport.Inset(inset)
	p := inner.Clamp(geom.Mean(centers))
	switch s {
	case SideLeft:
		p.X = inner.Min.X
	case SideRight:
		p.X = inner.Max.X
	case SideTop:
		p.Y = inner.Min.Y
	case SideBottom:
		p.Y = inner.Max.Y
	}
	return p
}
