// Package route computes connecting paths for a forest of link hyperedges.
//
// A routing pass turns the membership of every [link.HyperEdge] into a
// [link.Forkation]: a fork point where the member paths meet and one
// [link.Segment] per visible, routable member. The pass runs in four steps:
//
//  1. [Walk] classifies members against the viewport into a pass-scoped
//     [Plan]: directly visible members, members behind other windows and
//     members beyond the viewport edges.
//  2. Every routing group seeds one grid [Search] per target over the
//     shared [costfield.Field]. Searches are 8-connected with step costs
//     of 2 (orthogonal) and 3 (diagonal) plus the penalty of the entered
//     cell. Search state is packed into 32-bit [Cell] values.
//  3. [Meet] picks the cell with the lowest summed cost over all grids as
//     the fork. [Trace] follows each grid's parent offsets from the fork
//     back to its target, [Attach] ends the trail on the nearest link point
//     and [Smooth] rounds off the grid staircase.
//  4. Sibling segments are optionally bundled with [bundle.Forkation].
//
// Groups behind a window are routed first and appear in [Result.Windows].
// Their fork then stands in as a single proxy target in the group of every
// edge with covered members, the same way an off-screen indicator stands in
// for the members gathered at one viewport side.
//
// # Usage
//
//	field, _ := costfield.ForViewport(1920, 1080, costfield.DefaultCellSize)
//	r := route.NewRouter(route.DefaultOptions(), route.WithLogger(logger))
//	res := r.Route(ctx, roots, field)
//	for _, seg := range roots[0].Forkation().Segments {
//	    draw(seg.Trail)
//	}
//
// A pass is synchronous and assumes exclusive access to the forest.
package route
