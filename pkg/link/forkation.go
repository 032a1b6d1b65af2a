package link

import "github.com/matzehuels/linkroute/pkg/geom"

// Forkation is the routing result for one HyperEdge: the fork point where
// the member paths meet, and one Segment per visible, routable member.
type Forkation struct {
	Position geom.Point
	Segments []*Segment

	// Anchor connects the fork to the owning node of a nested edge. It is
	// nil for top-level edges and for owners without link points.
	Anchor *Segment

	// Reachable is false when the fork cell could not be reached from every
	// target and the meeting point is only an approximation.
	Reachable bool
}

// Segment is one routed path from a fork to a target.
type Segment struct {
	Trail []geom.Point // fork → target; empty for structural stubs
	Nodes []*Node      // nodes this path serves

	Covered  bool   // path ends behind another window
	WidenEnd bool   // path ends at an off-screen indicator
	Window   uint64 // covering window for covered segments
}

// Start returns the first trail point, or false for an empty trail.
func (s *Segment) Start() (geom.Point, bool) {
	if len(s.Trail) == 0 {
		return geom.Point{}, false
	}
	return s.Trail[0], true
}

// End returns the last trail point, or false for an empty trail.
func (s *Segment) End() (geom.Point, bool) {
	if len(s.Trail) == 0 {
		return geom.Point{}, false
	}
	return s.Trail[len(s.Trail)-1], true
}

// Stub reports whether s carries no geometry.
func (s *Segment) Stub() bool { return len(s.Trail) == 0 }

// Reset clears the forkations of every edge in the forest.
func Reset(roots []*HyperEdge) {
	for _, r := range roots {
		r.Walk(func(e *HyperEdge, _ *Node) bool {
			if e != nil {
				e.ResetForkation()
			}
			return true
		})
	}
}
