package render

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/link"
	"github.com/matzehuels/linkroute/pkg/route"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	stats  *route.Stats
	props  bool
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONStats records the pass statistics in the output.
func WithJSONStats(s route.Stats) JSONOption { return func(r *jsonRenderer) { r.stats = &s } }

// WithJSONProps includes element properties.
func WithJSONProps() JSONOption { return func(r *jsonRenderer) { r.props = true } }

type jsonOutput struct {
	Viewport geom.Rect    `json:"viewport"`
	Links    []jsonLink   `json:"links"`
	Windows  []jsonWindow `json:"windows,omitempty"`
	Stats    *jsonStats   `json:"stats,omitempty"`
}

type jsonLink struct {
	ID      string         `json:"id"`
	Depth   int            `json:"depth"`
	Props   map[string]any `json:"props,omitempty"`
	Fork    *jsonFork      `json:"fork,omitempty"`
	Regions []jsonRegion   `json:"regions"`
}

type jsonRegion struct {
	ID    string         `json:"id"`
	Props map[string]any `json:"props,omitempty"`
	Links []jsonLink     `json:"links,omitempty"`
}

type jsonWindow struct {
	ID   uint64    `json:"id"`
	Fork *jsonFork `json:"fork"`
}

type jsonFork struct {
	Position  geom.Point    `json:"position"`
	Reachable bool          `json:"reachable"`
	Segments  []jsonSegment `json:"segments"`
	Anchor    *jsonSegment  `json:"anchor,omitempty"`
}

type jsonSegment struct {
	Trail    []geom.Point `json:"trail"`
	Nodes    []string     `json:"nodes,omitempty"`
	Covered  bool         `json:"covered,omitempty"`
	WidenEnd bool         `json:"widen_end,omitempty"`
	Window   uint64       `json:"window,omitempty"`
}

type jsonStats struct {
	Edges       int   `json:"edges"`
	Groups      int   `json:"groups"`
	Searches    int   `json:"searches"`
	Segments    int   `json:"segments"`
	Unreachable int   `json:"unreachable"`
	DurationUS  int64 `json:"duration_us"`
}

// RenderJSON exports the forkation tree. Links keep the nesting of the
// forest; window groups are listed by id.
func RenderJSON(v View, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Viewport: v.Viewport, Links: []jsonLink{}}
	for _, e := range v.Roots {
		out.Links = append(out.Links, r.link(e))
	}

	ids := make([]uint64, 0, len(v.Windows))
	for id := range v.Windows {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cmp.Compare[uint64])
	for _, id := range ids {
		out.Windows = append(out.Windows, jsonWindow{ID: id, Fork: forkJSON(v.Windows[id])})
	}

	if s := r.stats; s != nil {
		out.Stats = &jsonStats{
			Edges:       s.Edges,
			Groups:      s.Groups,
			Searches:    s.Searches,
			Segments:    s.Segments,
			Unreachable: s.Unreachable,
			DurationUS:  s.Duration.Microseconds(),
		}
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func (r jsonRenderer) link(e *link.HyperEdge) jsonLink {
	l := jsonLink{
		ID:      e.ID,
		Depth:   e.Depth(),
		Fork:    forkJSON(e.Forkation()),
		Regions: []jsonRegion{},
	}
	if r.props && len(e.Props) > 0 {
		l.Props = e.Props
	}
	for _, n := range e.Nodes() {
		rg := jsonRegion{ID: n.ID}
		if r.props && len(n.Props) > 0 {
			rg.Props = n.Props
		}
		for _, c := range n.Children() {
			rg.Links = append(rg.Links, r.link(c))
		}
		l.Regions = append(l.Regions, rg)
	}
	return l
}

func forkJSON(f *link.Forkation) *jsonFork {
	if f == nil {
		return nil
	}
	out := &jsonFork{Position: f.Position, Reachable: f.Reachable, Segments: []jsonSegment{}}
	for _, s := range f.Segments {
		out.Segments = append(out.Segments, segmentJSON(s))
	}
	if f.Anchor != nil {
		a := segmentJSON(f.Anchor)
		out.Anchor = &a
	}
	return out
}

func segmentJSON(s *link.Segment) jsonSegment {
	js := jsonSegment{
		Trail:    s.Trail,
		Covered:  s.Covered,
		WidenEnd: s.WidenEnd,
		Window:   s.Window,
	}
	if js.Trail == nil {
		js.Trail = []geom.Point{}
	}
	for _, n := range s.Nodes {
		js.Nodes = append(js.Nodes, n.ID)
	}
	return js
}
