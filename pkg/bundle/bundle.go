// Package bundle pulls sibling paths that leave a fork in similar directions
// toward each other (force-directed edge bundling).
//
// The pass is purely cosmetic. It changes the shape of trails but never their
// endpoints or which regions they connect.
//
// # Algorithm
//
// Trails are ordered by the angle of their first step. The pass runs a fixed
// number of rounds; every round after the first doubles the resolution of
// each trail by inserting midpoints, then runs a shrinking number of
// relaxation iterations with a halving step size. During an iteration every
// interior point feels two forces:
//
//   - a spring pulling it toward the midpoint of its neighbours, weighted by
//     Spring / (trail length × point count) and capped at 1;
//   - attraction toward the corresponding point of up to [Options.Neighbors]
//     angularly adjacent siblings, falling off as 1/(1+(d/Falloff)²), cut at
//     Radius and weighted by the cosine of the angle between the trails.
//
// Siblings more than MaxAngle apart never attract each other.
package bundle

import (
	"math"
	"slices"

	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/link"
)

// Default values for [Options].
const (
	DefaultRounds         = 6
	DefaultIterations     = 100
	DefaultIterationDecay = 0.66
	DefaultMinIterations  = 5
	DefaultStep           = 0.5
	DefaultSpring         = 1000.0
	DefaultAttraction     = 1.0
	DefaultFalloff        = 40.0
	DefaultRadius         = 200.0
	DefaultMaxAngle       = 0.7 * math.Pi
	DefaultNeighbors      = 4
)

// Options tunes the bundling pass. Zero fields take the defaults above.
type Options struct {
	Rounds         int     `mapstructure:"rounds" json:"rounds,omitempty"`
	Iterations     int     `mapstructure:"iterations" json:"iterations,omitempty"`
	IterationDecay float64 `mapstructure:"iteration_decay" json:"iteration_decay,omitempty"`
	MinIterations  int     `mapstructure:"min_iterations" json:"min_iterations,omitempty"`
	Step           float64 `mapstructure:"step" json:"step,omitempty"`
	Spring         float64 `mapstructure:"spring" json:"spring,omitempty"`
	Attraction     float64 `mapstructure:"attraction" json:"attraction,omitempty"`
	Falloff        float64 `mapstructure:"falloff" json:"falloff,omitempty"`
	Radius         float64 `mapstructure:"radius" json:"radius,omitempty"`
	MaxAngle       float64 `mapstructure:"max_angle" json:"max_angle,omitempty"`
	Neighbors      int     `mapstructure:"neighbors" json:"neighbors,omitempty"`
}

// SetDefaults fills zero fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.Rounds == 0 {
		o.Rounds = DefaultRounds
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.IterationDecay == 0 {
		o.IterationDecay = DefaultIterationDecay
	}
	if o.MinIterations == 0 {
		o.MinIterations = DefaultMinIterations
	}
	if o.Step == 0 {
		o.Step = DefaultStep
	}
	if o.Spring == 0 {
		o.Spring = DefaultSpring
	}
	if o.Attraction == 0 {
		o.Attraction = DefaultAttraction
	}
	if o.Falloff == 0 {
		o.Falloff = DefaultFalloff
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if o.MaxAngle == 0 {
		o.MaxAngle = DefaultMaxAngle
	}
	if o.Neighbors == 0 {
		o.Neighbors = DefaultNeighbors
	}
}

// IterationsFor returns the relaxation iterations of round r (0-based).
func (o Options) IterationsFor(r int) int {
	n := float64(o.Iterations) * math.Pow(o.IterationDecay, float64(r))
	return max(int(n), o.MinIterations)
}

// trail is a working copy of one input trail.
type trail struct {
	pts    []geom.Point
	angle  float64
	length float64
	index  int // position in the input slice
}

// Bundle returns bundled copies of trails. The input is not modified.
// Trails with fewer than two points are returned as copies without change
// and do not take part in the pass.
func Bundle(trails [][]geom.Point, opts Options) [][]geom.Point {
	opts.SetDefaults()

	out := make([][]geom.Point, len(trails))
	var work []*trail
	for i, t := range trails {
		out[i] = slices.Clone(t)
		if len(t) < 2 {
			continue
		}
		work = append(work, &trail{
			pts:    out[i],
			angle:  t[1].Sub(t[0]).Angle(),
			length: geom.PolylineLength(t),
			index:  i,
		})
	}
	if len(work) == 0 {
		return out
	}

	slices.SortStableFunc(work, func(a, b *trail) int {
		switch {
		case a.angle < b.angle:
			return -1
		case a.angle > b.angle:
			return 1
		}
		return 0
	})
	neighbors := neighborTable(work, opts)

	step := opts.Step
	for r := 0; r < opts.Rounds; r++ {
		if r > 0 {
			for _, t := range work {
				t.pts = Subdivide(t.pts)
			}
			step /= 2
		}
		for it := opts.IterationsFor(r); it > 0; it-- {
			relax(work, neighbors, opts, step)
		}
	}

	for _, t := range work {
		out[t.index] = t.pts
	}
	return out
}

// neighborTable lists, for each trail in angle order, the siblings that may
// attract it together with their cosine weight. The order is circular, so
// trails just either side of ±π are adjacent.
func neighborTable(work []*trail, opts Options) [][]neighbor {
	table := make([][]neighbor, len(work))
	for i, t := range work {
		for _, j := range window(i, opts.Neighbors/2, len(work)) {
			diff := geom.AngleDiff(t.angle, work[j].angle)
			if diff > opts.MaxAngle {
				continue
			}
			if w := math.Cos(diff); w > 0 {
				table[i] = append(table[i], neighbor{trail: work[j], weight: w})
			}
		}
	}
	return table
}

// window returns the indices within half positions of i on a ring of n,
// excluding i. On a short ring every index is listed once.
func window(i, half, n int) []int {
	span := min(half, (n-1)/2)
	out := make([]int, 0, 2*span+1)
	for d := -span; d <= span; d++ {
		if d != 0 {
			out = append(out, (i+d+n)%n)
		}
	}
	if n%2 == 0 && half >= n/2 {
		out = append(out, (i+n/2)%n)
	}
	return out
}

type neighbor struct {
	trail  *trail
	weight float64
}

// relax runs one iteration. Displacements are computed from the positions
// at the start of the iteration and applied afterwards.
func relax(work []*trail, neighbors [][]neighbor, opts Options, step float64) {
	moves := make([][]geom.Point, len(work))
	for i, t := range work {
		n := len(t.pts)
		if n < 3 {
			continue
		}
		k := 1.0
		if t.length > 0 {
			k = math.Min(1, opts.Spring/(t.length*float64(n)))
		}
		moves[i] = make([]geom.Point, n)
		for p := 1; p < n-1; p++ {
			cur := t.pts[p]
			force := t.pts[p-1].Sub(cur).Add(t.pts[p+1].Sub(cur)).Scale(k)
			if len(neighbors[i]) > 0 {
				force = force.Add(attraction(cur, p, n, neighbors[i], opts))
			}
			moves[i][p] = force.Scale(step)
		}
	}
	for i, t := range work {
		for p := 1; p < len(t.pts)-1 && moves[i] != nil; p++ {
			t.pts[p] = t.pts[p].Add(moves[i][p])
		}
	}
}

func attraction(cur geom.Point, p, n int, sibs []neighbor, opts Options) geom.Point {
	var force geom.Point
	share := opts.Attraction / float64(len(sibs))
	for _, s := range sibs {
		m := len(s.trail.pts)
		q := s.trail.pts[int(math.Round(float64(p)*float64(m-1)/float64(n-1)))]
		d := q.Dist(cur)
		if d == 0 || d > opts.Radius {
			continue
		}
		falloff := 1 / (1 + (d/opts.Falloff)*(d/opts.Falloff))
		force = force.Add(q.Sub(cur).Scale(share * s.weight * falloff))
	}
	return force
}

// Subdivide inserts the midpoint between every pair of consecutive points.
// A trail of n ≥ 1 points becomes 2n-1 points; endpoints are copied as is.
func Subdivide(pts []geom.Point) []geom.Point {
	if len(pts) < 2 {
		return slices.Clone(pts)
	}
	out := make([]geom.Point, 0, 2*len(pts)-1)
	out = append(out, pts[0])
	for i := 1; i < len(pts); i++ {
		out = append(out, pts[i-1].Mid(pts[i]), pts[i])
	}
	return out
}

// Forkation bundles the sibling segments of f in place, including its
// anchor. Stub segments are left alone.
func Forkation(f *link.Forkation, opts Options) {
	if f == nil {
		return
	}
	var segs []*link.Segment
	for _, s := range f.Segments {
		if !s.Stub() {
			segs = append(segs, s)
		}
	}
	if f.Anchor != nil && !f.Anchor.Stub() {
		segs = append(segs, f.Anchor)
	}
	if len(segs) < 2 {
		return
	}

	trails := make([][]geom.Point, len(segs))
	for i, s := range segs {
		trails[i] = s.Trail
	}
	for i, t := range Bundle(trails, opts) {
		segs[i].Trail = t
	}
}
