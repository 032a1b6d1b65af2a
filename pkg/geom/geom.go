// Package geom provides the small set of 2D screen-space primitives shared
// by the link model, the router and the renderers.
//
// All coordinates are float64 pixels with the origin at the top-left corner
// of the desktop and Y growing downward.
package geom

import "math"

// Point is a screen-space position or a 2D vector.
type Point struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return p.Sub(q).Len() }
func (p Point) Mid(q Point) Point     { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }
func (p Point) IsZero() bool          { return p.X == 0 && p.Y == 0 }

// DistSquare returns the squared distance between p and q.
func (p Point) DistSquare(q Point) float64 {
	d := p.Sub(q)
	return d.Dot(d)
}

// Angle returns the direction of p as a vector, in radians within [-π, π].
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Normalize returns p scaled to unit length. The zero vector is returned
// unchanged.
func (p Point) Normalize() Point {
	l := p.Len()
	if l == 0 {
		return p
	}
	return p.Scale(1 / l)
}

// Lerp interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Mean returns the arithmetic mean of pts, or the zero point for an empty slice.
func Mean(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}

// Nearest returns the element of pts closest to p and true, or the zero
// point and false when pts is empty. Ties keep the earliest element.
func Nearest(pts []Point, p Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	best, bestD := pts[0], pts[0].DistSquare(p)
	for _, q := range pts[1:] {
		if d := q.DistSquare(p); d < bestD {
			best, bestD = q, d
		}
	}
	return best, true
}

// PolylineLength returns the summed length of consecutive segments.
func PolylineLength(pts []Point) float64 {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += pts[i].Dist(pts[i-1])
	}
	return l
}

// AngleDiff returns the absolute difference between two angles folded into [0, π].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
