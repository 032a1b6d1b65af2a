package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/geom"
)

const overlayCSS = `
    .region { fill: #4a90d9; fill-opacity: 0.12; stroke: #4a90d9; stroke-width: 1; }
    .region.covered { fill: #999; stroke: #999; }
    .region.hidden { fill: none; stroke-dasharray: 2 3; }
    .path { fill: none; stroke: #d94a4a; stroke-linecap: round; stroke-linejoin: round; }
    .path.window { stroke: #d9904a; }
    .path.anchor { stroke: #8a4ad9; }
    .path.covered { stroke-dasharray: 6 4; }
    .fork { fill: #d94a4a; }
    .fork.window { fill: #d9904a; }
    .fork.unreachable { fill: white; stroke: #d94a4a; stroke-width: 1.5; }
    .end { fill: #d94a4a; }
    .cost { fill: black; }
    .label { font: 11px sans-serif; fill: #333; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	stroke     float64
	forkRadius float64
	labels     bool
	field      *costfield.Field
	maxPenalty uint32
}

// WithStrokeWidth sets the trail width in viewport units (default 3).
func WithStrokeWidth(w float64) SVGOption { return func(r *svgRenderer) { r.stroke = w } }

// WithForkRadius sets the radius of fork dots (default 5).
func WithForkRadius(rad float64) SVGOption { return func(r *svgRenderer) { r.forkRadius = rad } }

// WithLabels draws region labels, falling back to region ids.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithCostField underlays the cost field as a heat map. Cells at or above
// maxPenalty are drawn fully opaque.
func WithCostField(f *costfield.Field, maxPenalty uint32) SVGOption {
	return func(r *svgRenderer) { r.field = f; r.maxPenalty = maxPenalty }
}

// RenderSVG renders the view as an SVG overlay sized to the viewport.
func RenderSVG(v View, opts ...SVGOption) []byte {
	r := svgRenderer{stroke: 3, forkRadius: 5}
	for _, opt := range opts {
		opt(&r)
	}
	d := v.flatten()
	vp := v.Viewport

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		vp.Min.X, vp.Min.Y, vp.Width(), vp.Height(), vp.Width(), vp.Height())
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", overlayCSS)

	if r.field != nil {
		renderCostField(&buf, r.field, r.maxPenalty)
	}
	renderRegions(&buf, d.regions)
	renderPaths(&buf, d.paths, r.stroke)
	renderForks(&buf, d.forks, r.forkRadius)
	if r.labels {
		renderLabels(&buf, d.regions)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCostField(buf *bytes.Buffer, f *costfield.Field, maxPenalty uint32) {
	if maxPenalty == 0 {
		maxPenalty = costfield.DefaultMaxPenalty
	}
	buf.WriteString("  <g class=\"costs\">\n")
	for x := 0; x < f.Cols; x++ {
		for y := 0; y < f.Rows; y++ {
			v := f.At(x, y)
			if v == 0 {
				continue
			}
			op := min(float64(v)/float64(maxPenalty), 1) * 0.5
			fmt.Fprintf(buf, `    <rect class="cost" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill-opacity="%.2f"/>`+"\n",
				float64(x)*f.CellSize, float64(y)*f.CellSize, f.CellSize, f.CellSize, op)
		}
	}
	buf.WriteString("  </g>\n")
}

func renderRegions(buf *bytes.Buffer, regions []regionShape) {
	buf.WriteString("  <g class=\"regions\">\n")
	for _, rg := range regions {
		fmt.Fprintf(buf, `    <polygon id="region-%s" class="%s" points="%s"/>`+"\n",
			html.EscapeString(rg.id), classes("region", rg.covered, "covered", rg.hidden, "hidden"), points(rg.pts))
	}
	buf.WriteString("  </g>\n")
}

func renderPaths(buf *bytes.Buffer, paths []pathShape, stroke float64) {
	buf.WriteString("  <g class=\"paths\">\n")
	for _, p := range paths {
		fmt.Fprintf(buf, `    <polyline data-owner="%s" class="%s" stroke-width="%.1f" points="%s"/>`+"\n",
			html.EscapeString(p.owner),
			classes("path", p.window, "window", p.anchor, "anchor", p.covered, "covered"),
			stroke, points(p.pts))
		if p.widen {
			end := p.pts[len(p.pts)-1]
			fmt.Fprintf(buf, `    <circle class="end" cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", end.X, end.Y, stroke*1.5)
		}
	}
	buf.WriteString("  </g>\n")
}

func renderForks(buf *bytes.Buffer, forks []forkShape, radius float64) {
	buf.WriteString("  <g class=\"forks\">\n")
	for _, f := range forks {
		fmt.Fprintf(buf, `    <circle data-owner="%s" class="%s" cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
			html.EscapeString(f.owner), classes("fork", f.window, "window", !f.reachable, "unreachable"),
			f.pos.X, f.pos.Y, radius)
	}
	buf.WriteString("  </g>\n")
}

func renderLabels(buf *bytes.Buffer, regions []regionShape) {
	for _, rg := range regions {
		c := geom.BoundingBox(rg.pts).Center()
		fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n",
			c.X, c.Y, html.EscapeString(rg.name()))
	}
}

func (rg regionShape) name() string {
	if rg.label != "" {
		return rg.label
	}
	return rg.id
}

// classes joins base with every name whose flag is set. Arguments after
// base alternate flag, name.
func classes(base string, pairs ...any) string {
	out := []string{base}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i].(bool) {
			out = append(out, pairs[i+1].(string))
		}
	}
	return strings.Join(out, " ")
}

func points(pts []geom.Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", p.X, p.Y)
	}
	return b.String()
}
