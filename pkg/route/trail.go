package route

import (
	"slices"

	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/geom"
)

// Trace follows the parent offsets of g from cell (x, y) back to the seed
// and returns the cell centres in that order: the first point is (x, y),
// the last is the seed. It returns false if (x, y) was never reached.
func Trace(g *Grid, field *costfield.Field, x, y int) ([]geom.Point, bool) {
	if !g.In(x, y) || !g.At(x, y).Reached() {
		return nil, false
	}
	var pts []geom.Point
	for range len(g.cells) {
		pts = append(pts, field.CellCenter(x, y))
		c := g.At(x, y)
		if c.Cost() == 0 {
			return pts, true
		}
		dx, dy := c.Parent()
		x, y = x+dx, y+dy
		if !g.In(x, y) {
			break
		}
	}
	// A broken parent chain means the grid was not produced by Search.
	return pts, false
}

// Attach replaces the last point of a fork → target trail with the touch
// point closest to the approach. A single-cell trail keeps its point and
// gets the touch point appended so that the fork stays first. Without touch
// points the trail is returned unchanged.
func Attach(trail, touch []geom.Point) []geom.Point {
	if len(trail) == 0 {
		return trail
	}
	approach := trail[0]
	if len(trail) >= 2 {
		approach = trail[len(trail)-2]
	}
	p, ok := geom.Nearest(touch, approach)
	if !ok {
		return trail
	}
	if len(trail) == 1 {
		return append(trail, p)
	}
	trail[len(trail)-1] = p
	return trail
}

// Smooth relaxes the interior points of trail toward the midpoint of their
// neighbours: p' = factor·(prev+next)/2 + (1-factor)·p, applied iterations
// times from a snapshot of the previous iteration. Endpoints never move.
// The input is not modified.
func Smooth(trail []geom.Point, iterations int, factor float64) []geom.Point {
	out := slices.Clone(trail)
	if len(out) < 3 || iterations <= 0 || factor == 0 {
		return out
	}
	prev := make([]geom.Point, len(out))
	for range iterations {
		copy(prev, out)
		for i := 1; i < len(out)-1; i++ {
			mid := prev[i-1].Mid(prev[i+1])
			out[i] = mid.Scale(factor).Add(prev[i].Scale(1 - factor))
		}
	}
	return out
}
