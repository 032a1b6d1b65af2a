package render

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/link"
	"github.com/matzehuels/linkroute/pkg/route"
)

// View is the input of every sink.
type View struct {
	Viewport geom.Rect
	Roots    []*link.HyperEdge
	Windows  map[uint64]*link.Forkation
}

// ViewOf builds a view from a routed forest and the result of its pass.
// A nil result gives a view without window groups whose viewport is the
// bounding box of all regions.
func ViewOf(roots []*link.HyperEdge, res *route.Result) View {
	v := View{Roots: roots}
	if res != nil {
		v.Windows = res.Windows
		if res.Plan != nil {
			v.Viewport = res.Plan.Viewport
		}
	}
	if v.Viewport.Empty() {
		var pts []geom.Point
		for _, r := range roots {
			r.Walk(func(_ *link.HyperEdge, n *link.Node) bool {
				if n != nil {
					pts = append(pts, n.Vertices()...)
				}
				return true
			})
		}
		v.Viewport = geom.BoundingBox(pts)
	}
	return v
}

// drawing is the flattened, ordered content of a view shared by the SVG
// and PNG sinks.
type drawing struct {
	regions []regionShape
	paths   []pathShape
	forks   []forkShape
}

type regionShape struct {
	id      string
	label   string
	pts     []geom.Point
	covered bool
	hidden  bool
}

type pathShape struct {
	owner   string // edge id, or "window-<wid>"
	pts     []geom.Point
	covered bool
	widen   bool
	anchor  bool
	window  bool
}

type forkShape struct {
	owner     string
	pos       geom.Point
	reachable bool
	window    bool
}

// flatten walks the forest depth first. Regions appear parent before
// child; window groups come last in id order.
func (v View) flatten() drawing {
	var d drawing
	for _, r := range v.Roots {
		r.Walk(func(e *link.HyperEdge, n *link.Node) bool {
			if n != nil {
				if len(n.Vertices()) > 0 {
					d.regions = append(d.regions, regionShape{
						id:      n.ID,
						label:   n.Props.String(link.PropLabel),
						pts:     n.Vertices(),
						covered: n.Flag(link.PropCovered),
						hidden:  n.Flag(link.PropHidden),
					})
				}
				return true
			}
			d.addForkation(e.ID, e.Forkation(), false)
			return true
		})
	}

	ids := make([]uint64, 0, len(v.Windows))
	for id := range v.Windows {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cmp.Compare[uint64])
	for _, id := range ids {
		d.addForkation(windowOwner(id), v.Windows[id], true)
	}
	return d
}

func (d *drawing) addForkation(owner string, f *link.Forkation, window bool) {
	if f == nil {
		return
	}
	for _, s := range f.Segments {
		if s.Stub() {
			continue
		}
		d.paths = append(d.paths, pathShape{
			owner:   owner,
			pts:     s.Trail,
			covered: s.Covered,
			widen:   s.WidenEnd,
			window:  window,
		})
	}
	if f.Anchor != nil && !f.Anchor.Stub() {
		d.paths = append(d.paths, pathShape{owner: owner, pts: f.Anchor.Trail, anchor: true})
	}
	d.forks = append(d.forks, forkShape{owner: owner, pos: f.Position, reachable: f.Reachable, window: window})
}

func windowOwner(id uint64) string {
	return "window-" + strconv.FormatUint(id, 10)
}
