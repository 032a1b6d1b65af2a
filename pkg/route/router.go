package route

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkroute/pkg/bundle"
	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/link"
	"github.com/matzehuels/linkroute/pkg/observability"
)

// =============================================================================
// Options
// =============================================================================

const (
	DefaultSmoothIterations = 5
	DefaultSmoothFactor     = 0.4
	DefaultIndicatorInset   = 8.0
)

// InheritMode controls how a nested edge's fork follows its parent edge when
// the parent had at most one grid target.
type InheritMode string

const (
	InheritAverage InheritMode = "average" // halfway to the parent center
	InheritReplace InheritMode = "replace" // snap to the parent center
	InheritNone    InheritMode = "none"
)

// Options tunes a routing pass. Zero fields take the defaults.
type Options struct {
	// CellSize is the grid pitch used when a cost field has to be created
	// for a viewport. The router itself always uses the field's pitch.
	CellSize float64 `mapstructure:"cell_size" json:"cell_size,omitempty"`

	// SmoothIterations of midpoint blur per trail; negative disables.
	SmoothIterations int     `mapstructure:"smooth_iterations" json:"smooth_iterations,omitempty"`
	SmoothFactor     float64 `mapstructure:"smooth_factor" json:"smooth_factor,omitempty"`

	// IndicatorInset keeps off-screen indicator points inside the viewport.
	IndicatorInset float64 `mapstructure:"indicator_inset" json:"indicator_inset,omitempty"`

	Inherit InheritMode `mapstructure:"inherit" json:"inherit,omitempty"`

	// Bundle enables edge bundling of sibling segments.
	Bundle bool `mapstructure:"bundle" json:"bundle,omitempty"`
}

// DefaultOptions returns options with every default applied.
func DefaultOptions() Options {
	var o Options
	o.SetDefaults()
	return o
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.CellSize == 0 {
		o.CellSize = costfield.DefaultCellSize
	}
	if o.SmoothIterations == 0 {
		o.SmoothIterations = DefaultSmoothIterations
	}
	if o.SmoothFactor == 0 {
		o.SmoothFactor = DefaultSmoothFactor
	}
	if o.IndicatorInset == 0 {
		o.IndicatorInset = DefaultIndicatorInset
	}
	if o.Inherit == "" {
		o.Inherit = InheritAverage
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.CellSize < 0 {
		return fmt.Errorf("cell size must be positive, got %g", o.CellSize)
	}
	if o.SmoothFactor < 0 || o.SmoothFactor > 1 {
		return fmt.Errorf("smooth factor must be within [0, 1], got %g", o.SmoothFactor)
	}
	if o.IndicatorInset < 0 {
		return fmt.Errorf("indicator inset must not be negative, got %g", o.IndicatorInset)
	}
	switch o.Inherit {
	case "", InheritAverage, InheritReplace, InheritNone:
	default:
		return fmt.Errorf("unknown inherit mode %q (want average, replace or none)", o.Inherit)
	}
	return nil
}

// =============================================================================
// Router
// =============================================================================

// Router runs routing passes. It keeps no state between passes; a Router
// may be reused, but a single forest must not be routed concurrently.
type Router struct {
	opts     Options
	bundling bundle.Options
	logger   *log.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger for pass diagnostics.
func WithLogger(l *log.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBundling sets the bundling parameters used when Options.Bundle is on.
func WithBundling(o bundle.Options) RouterOption {
	return func(r *Router) { r.bundling = o }
}

// NewRouter creates a router. Zero option fields take their defaults.
func NewRouter(opts Options, options ...RouterOption) *Router {
	opts.SetDefaults()
	r := &Router{opts: opts, logger: log.New(io.Discard)}
	for _, o := range options {
		o(r)
	}
	r.bundling.SetDefaults()
	return r
}

// Options returns the effective options.
func (r *Router) Options() Options { return r.opts }

// Result is the pass-level output next to the forkations stored on edges.
type Result struct {
	// Windows holds the forkation of every window group, keyed by the
	// covering window id.
	Windows map[uint64]*link.Forkation

	// Plan is the member classification the pass routed.
	Plan *Plan

	Stats Stats
}

// Stats summarises a pass.
type Stats struct {
	Edges       int
	Groups      int
	Searches    int
	Segments    int
	Unreachable int
	Duration    time.Duration
}

// target is one grid seed of a routing group.
type target struct {
	seed  geom.Point
	touch []geom.Point
}

type groupResult struct {
	fork      geom.Point
	trails    [][]geom.Point
	reachable bool
}

// Route runs one pass over roots and stores a fresh forkation on every
// planned edge. Forkations of edges that are no longer planned are
// cleared. ctx only reaches hooks; the pass always runs to completion.
func (r *Router) Route(ctx context.Context, roots []*link.HyperEdge, field *costfield.Field) *Result {
	start := time.Now()
	res := &Result{Windows: make(map[uint64]*link.Forkation)}

	link.Reset(roots)
	if field == nil || field.Len() == 0 {
		r.logger.Warn("no cost field, skipping routing pass")
		res.Plan = &Plan{Windows: map[uint64][]*link.Node{}}
		return res
	}

	plan := Walk(roots, field.Bounds())
	res.Plan = plan
	res.Stats.Edges = len(plan.Edges)
	observability.Route().OnPassStart(ctx, len(plan.Edges))

	for _, ep := range plan.Edges {
		ep.Edge.UpdateCenter()
	}

	for _, wid := range plan.WindowIDs() {
		res.Windows[wid] = r.routeWindow(ctx, res, field, wid, plan.Windows[wid])
	}
	for _, ep := range plan.Edges {
		r.routeEdge(ctx, res, field, plan, ep)
	}

	res.Stats.Duration = time.Since(start)
	observability.Route().OnPassComplete(ctx, res.Stats.Groups, res.Stats.Unreachable, res.Stats.Duration)
	r.logger.Debug("routing pass complete",
		"edges", res.Stats.Edges,
		"groups", res.Stats.Groups,
		"searches", res.Stats.Searches,
		"segments", res.Stats.Segments,
		"duration", res.Stats.Duration)
	return res
}

// routeWindow routes the members of all edges hidden behind one window.
func (r *Router) routeWindow(ctx context.Context, res *Result, field *costfield.Field, wid uint64, nodes []*link.Node) *link.Forkation {
	targets := make([]target, len(nodes))
	centers := make([]geom.Point, len(nodes))
	for i, n := range nodes {
		targets[i] = target{seed: n.Center(), touch: n.LinkPoints()}
		centers[i] = n.Center()
	}
	g := r.routeGroup(ctx, res, "window", field, targets, geom.Mean(centers))

	f := &link.Forkation{Position: g.fork, Reachable: g.reachable}
	for i, n := range nodes {
		f.Segments = append(f.Segments, &link.Segment{
			Trail:   g.trails[i],
			Nodes:   []*link.Node{n},
			Covered: true,
			Window:  wid,
		})
	}
	if !g.reachable {
		r.logger.Warn("window fork not reachable from every member", "window", wid, "members", len(nodes))
	}
	if r.opts.Bundle {
		bundle.Forkation(f, r.bundling)
	}
	return f
}

// routeEdge routes the local group of one edge and stores its forkation.
func (r *Router) routeEdge(ctx context.Context, res *Result, field *costfield.Field, plan *Plan, ep *EdgePlan) {
	e := ep.Edge

	var targets []target
	local := make(map[*link.Node]int)
	for _, m := range ep.Members {
		if m.Kind == MemberLocal {
			local[m.Node] = len(targets)
			targets = append(targets, target{seed: m.Node.Center(), touch: m.Node.LinkPoints()})
		}
	}
	windows := make(map[uint64]int)
	for _, wid := range ep.Windows {
		p := res.Windows[wid].Position
		windows[wid] = len(targets)
		targets = append(targets, target{seed: p, touch: []geom.Point{p}})
	}
	sides := make(map[Side]int)
	for _, s := range Sides {
		if nodes := ep.Outside[s]; len(nodes) > 0 {
			p := Indicator(s, nodes, plan.Viewport, r.opts.IndicatorInset)
			sides[s] = len(targets)
			targets = append(targets, target{seed: p, touch: []geom.Point{p}})
		}
	}
	anchor := -1
	owner := e.Parent()
	if owner != nil && len(owner.LinkPointsChildren()) > 0 {
		pts := owner.LinkPointsChildren()
		anchor = len(targets)
		targets = append(targets, target{seed: pts[0], touch: pts})
	}

	g := r.routeGroup(ctx, res, "edge", field, targets, e.Center())
	f := &link.Forkation{Position: g.fork, Reachable: g.reachable}
	for _, m := range ep.Members {
		seg := &link.Segment{Nodes: []*link.Node{m.Node}}
		switch m.Kind {
		case MemberLocal:
			seg.Trail = g.trails[local[m.Node]]
			seg.Covered = m.Node.Flag(link.PropCovered)
			seg.WidenEnd = m.Node.Flag(link.PropWidenEnd)
		case MemberCovered:
			seg.Trail = slices.Clone(g.trails[windows[m.Window]])
			seg.Covered = true
			seg.Window = m.Window
		case MemberOutside:
			seg.Trail = slices.Clone(g.trails[sides[m.Side]])
			seg.WidenEnd = true
		}
		f.Segments = append(f.Segments, seg)
	}
	if anchor >= 0 {
		f.Anchor = &link.Segment{Trail: g.trails[anchor], Nodes: []*link.Node{owner}}
	}
	if !g.reachable {
		r.logger.Warn("fork not reachable from every target", "edge", e.ID, "targets", len(targets))
	}
	if r.opts.Bundle {
		bundle.Forkation(f, r.bundling)
	}
	e.SetForkation(f)
	res.Stats.Segments += len(f.Segments)

	if len(targets) <= 1 && r.opts.Inherit != InheritNone {
		for _, m := range ep.Members {
			for _, c := range m.Node.Children() {
				if cf := c.Forkation(); cf != nil {
					Inherit(cf, e.Center(), r.opts.Inherit)
				}
			}
		}
	}
}

// routeGroup runs one search per target, picks the fork and traces a
// smoothed trail from the fork to every target. Without targets the fork
// is the fallback point.
func (r *Router) routeGroup(ctx context.Context, res *Result, kind string, field *costfield.Field, targets []target, fallback geom.Point) groupResult {
	if len(targets) == 0 {
		return groupResult{fork: fallback, reachable: true}
	}
	start := time.Now()

	grids := make([]*Grid, len(targets))
	for i, t := range targets {
		x, y := field.Cell(t.seed)
		grids[i] = Search(field, x, y)
	}
	m, _ := Meet(grids)

	g := groupResult{
		fork:      field.CellCenter(m.X, m.Y),
		trails:    make([][]geom.Point, len(targets)),
		reachable: m.Reachable,
	}
	for i, t := range targets {
		trail, ok := Trace(grids[i], field, m.X, m.Y)
		if !ok {
			trail = []geom.Point{g.fork}
		}
		trail = Attach(trail, t.touch)
		g.trails[i] = Smooth(trail, r.opts.SmoothIterations, r.opts.SmoothFactor)
	}

	res.Stats.Groups++
	res.Stats.Searches += len(grids)
	if !g.reachable {
		res.Stats.Unreachable++
	}
	d := time.Since(start)
	observability.Route().OnGroupRouted(ctx, kind, len(targets), g.reachable, d)
	r.logger.Debug("routed group",
		"kind", kind,
		"targets", len(targets),
		"fork", fmt.Sprintf("%.0f,%.0f", g.fork.X, g.fork.Y),
		"cost", m.Sum,
		"duration", d)
	return g
}

// Inherit moves the fork of a nested edge toward its parent edge's center.
// The first point of every segment moves with the fork; the offset fades
// out along the trail so that endpoints stay on their targets.
func Inherit(f *link.Forkation, parent geom.Point, mode InheritMode) {
	var pos geom.Point
	switch mode {
	case InheritReplace:
		pos = parent
	case InheritAverage, "":
		pos = f.Position.Mid(parent)
	default:
		return
	}
	delta := pos.Sub(f.Position)
	f.Position = pos

	segs := f.Segments
	if f.Anchor != nil {
		segs = append(slices.Clip(segs), f.Anchor)
	}
	for _, s := range segs {
		shiftStart(s.Trail, delta)
	}
}

// shiftStart moves trail[0] by delta and every later point by a linearly
// decreasing share of it. The last point of a trail with two or more points
// stays put.
func shiftStart(trail []geom.Point, delta geom.Point) {
	n := len(trail)
	switch n {
	case 0:
		return
	case 1:
		trail[0] = trail[0].Add(delta)
		return
	}
	for i := 0; i < n-1; i++ {
		w := 1 - float64(i)/float64(n-1)
		trail[i] = trail[i].Add(delta.Scale(w))
	}
}
