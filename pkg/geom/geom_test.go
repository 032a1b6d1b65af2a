package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBox(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want Rect
	}{
		{"Empty", nil, Rect{}},
		{"Single", []Point{{3, 4}}, Rect{Min: Point{3, 4}, Max: Point{3, 4}}},
		{"Polygon", []Point{{10, 5}, {-2, 7}, {4, -1}}, Rect{Min: Point{-2, -1}, Max: Point{10, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoundingBox(tt.pts))
		})
	}
}

func TestNearest(t *testing.T) {
	_, ok := Nearest(nil, Point{})
	assert.False(t, ok)

	p, ok := Nearest([]Point{{0, 0}, {10, 0}, {10, 0.5}}, Point{9, 0})
	assert.True(t, ok)
	assert.Equal(t, Point{10, 0}, p)
}

func TestAngleDiff(t *testing.T) {
	assert.InDelta(t, 0.0, AngleDiff(math.Pi, -math.Pi), 1e-12)
	assert.InDelta(t, math.Pi/2, AngleDiff(0, -math.Pi/2), 1e-12)
	assert.InDelta(t, 0.2, AngleDiff(math.Pi-0.1, -math.Pi+0.1), 1e-12)
}

func TestRectInsetAndClamp(t *testing.T) {
	r := R(0, 0, 100, 50)
	in := r.Inset(10)
	assert.Equal(t, Rect{Min: Point{10, 10}, Max: Point{90, 40}}, in)
	assert.Equal(t, Point{90, 10}, in.Clamp(Point{200, -5}))

	tiny := R(0, 0, 4, 4).Inset(10)
	assert.Equal(t, Point{2, 2}, tiny.Min)
	assert.Equal(t, Point{2, 2}, tiny.Max)
}

func TestPolylineLength(t *testing.T) {
	assert.Equal(t, 0.0, PolylineLength([]Point{{1, 1}}))
	assert.InDelta(t, 7.0, PolylineLength([]Point{{0, 0}, {3, 4}, {3, 6}}), 1e-12)
}
