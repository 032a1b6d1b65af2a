// Package link models the hierarchy of regions that a routing pass connects.
//
// # Overview
//
// A [HyperEdge] is a group of [Node] regions that must visually converge to
// one shared point. A Node may itself own child HyperEdges, so the model is a
// forest in which Node and HyperEdge levels strictly alternate:
//
//	HyperEdge (search result)
//	 ├── Node (match in window A)
//	 ├── Node (structural, no vertices)
//	 │    └── HyperEdge (matches in a tab group)
//	 │         ├── Node
//	 │         └── Node
//	 └── Node (match behind window B)
//
// Ownership runs downward only. Each element keeps a non-owning back
// reference to its parent which is set by the owning Add call and cleared by
// the matching Remove call. The mutation API refuses anything that would give
// an element a second parent or close a cycle.
//
// # Link Points
//
// Nodes expose three point sets with a fallback chain:
//
//	Vertices()            - the region polygon
//	LinkPoints()          - where paths touch the node (default: Vertices)
//	LinkPointsChildren()  - where child paths converge (default: LinkPoints)
//
// [Node.Center] is the first link point rather than a centroid, which keeps
// the routing anchor stable while the polygon changes shape.
//
// # Derived State
//
// A routing pass stores its result on each HyperEdge as a [Forkation]. Any
// membership change discards it. Forkations are never persisted.
//
// The package performs no locking. Callers serialize mutation and routing.
package link
