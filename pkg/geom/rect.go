package geom

import "math"

// Rect is an axis-aligned rectangle spanning Min (inclusive) to Max.
// The zero value is the empty rectangle at the origin.
type Rect struct {
	Min Point `json:"min" yaml:"min" toml:"min"`
	Max Point `json:"max" yaml:"max" toml:"max"`
}

// R builds a rectangle from its top-left corner and size.
func R(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + w, y + h}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Center() Point   { return r.Min.Mid(r.Max) }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y }

// Contains reports whether p lies inside r. Points on the Max edge are outside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Clamp returns the point of r closest to p.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: math.Max(r.Min.X, math.Min(p.X, r.Max.X)),
		Y: math.Max(r.Min.Y, math.Min(p.Y, r.Max.Y)),
	}
}

// Inset shrinks r by d on every side. The result is never inverted: a
// rectangle too small to shrink collapses onto its center.
func (r Rect) Inset(d float64) Rect {
	out := Rect{Min: r.Min.Add(Point{d, d}), Max: r.Max.Sub(Point{d, d})}
	if out.Min.X > out.Max.X {
		c := r.Center().X
		out.Min.X, out.Max.X = c, c
	}
	if out.Min.Y > out.Max.Y {
		c := r.Center().Y
		out.Min.Y, out.Max.Y = c, c
	}
	return out
}

// BoundingBox returns the smallest rectangle containing all pts.
// An empty slice yields the zero Rect.
func BoundingBox(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}
