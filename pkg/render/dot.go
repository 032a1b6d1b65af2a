package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/linkroute/pkg/link"
)

// DOTOptions configures hierarchy rendering.
type DOTOptions struct {
	// Detailed adds element properties and fork positions to labels.
	Detailed bool
}

// ToDOT converts a link forest to Graphviz DOT. Links are drawn as small
// diamonds, regions as boxes; arrows run from a link to its members and
// from a region to the links it owns.
//
// Hidden and covered regions get dashed outlines. Links without a
// forkation (not routed in the last pass) are grey.
func ToDOT(roots []*link.HyperEdge, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	for _, r := range roots {
		r.Walk(func(e *link.HyperEdge, n *link.Node) bool {
			if e != nil {
				fmt.Fprintf(&buf, "  %q [%s];\n", e.ID, strings.Join(edgeAttrs(e, opts.Detailed), ", "))
				for _, m := range e.Nodes() {
					edges = append(edges, fmt.Sprintf("  %q -> %q;\n", e.ID, m.ID))
				}
				return true
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
			for _, c := range n.Children() {
				edges = append(edges, fmt.Sprintf("  %q -> %q [style=dashed];\n", n.ID, c.ID))
			}
			return true
		})
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(e *link.HyperEdge, detailed bool) []string {
	label := ""
	if detailed {
		label = fmtProps(e.Props)
		if f := e.Forkation(); f != nil {
			label = strings.TrimPrefix(label+fmt.Sprintf("\nfork: %.0f,%.0f", f.Position.X, f.Position.Y), "\n")
		}
	}
	attrs := []string{"shape=diamond", fmt.Sprintf("label=%q", label), "width=0.25", "height=0.25"}
	if e.Forkation() == nil {
		attrs = append(attrs, "fillcolor=lightgrey")
	} else if !e.Forkation().Reachable {
		attrs = append(attrs, "fillcolor=\"#f4cccc\"")
	}
	return attrs
}

func nodeAttrs(n *link.Node, detailed bool) []string {
	label := n.ID
	if l := n.Props.String(link.PropLabel); l != "" {
		label = l
	}
	if detailed {
		if p := fmtProps(n.Props); p != "" {
			label += "\n" + p
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Flag(link.PropHidden) || n.Flag(link.PropCovered) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func fmtProps(p link.Props) string {
	parts := make([]string, 0, len(p))
	for _, k := range slices.Sorted(maps.Keys(p)) {
		if k == link.PropLabel {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, p[k]))
	}
	return strings.Join(parts, "\n")
}

// RenderDOTSVG renders DOT source to SVG with the embedded Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root tag, which carries pt units
// and a translate transform, with a plain pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
