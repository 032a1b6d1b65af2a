package pipeline

import (
	"fmt"

	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/render"
	"github.com/matzehuels/linkroute/pkg/route"
	"github.com/matzehuels/linkroute/pkg/scene"
)

// Render generates output artifacts in the requested formats. The dot
// format is Graphviz source of the link hierarchy; see [render.RenderDOTSVG].
func Render(v render.View, s *scene.Scene, f *costfield.Field, stats route.Stats, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(v, buildSVGOptions(s, f, opts)...)
		case FormatPNG:
			data, err = render.RenderPNG(v, buildPNGOptions(s, f, opts)...)
		case FormatJSON:
			data, err = render.RenderJSON(v, render.WithJSONIndent(), render.WithJSONProps(), render.WithJSONStats(stats))
		case FormatDOT:
			data = []byte(render.ToDOT(v.Roots, render.DOTOptions{Detailed: opts.Render.Labels}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(s *scene.Scene, f *costfield.Field, opts Options) []render.SVGOption {
	var svgOpts []render.SVGOption
	if opts.Render.Labels {
		svgOpts = append(svgOpts, render.WithLabels())
	}
	if opts.Render.StrokeWidth > 0 {
		svgOpts = append(svgOpts, render.WithStrokeWidth(opts.Render.StrokeWidth))
	}
	if opts.Render.CostOverlay && f != nil {
		svgOpts = append(svgOpts, render.WithCostField(f, s.Penalty()))
	}
	return svgOpts
}

func buildPNGOptions(s *scene.Scene, f *costfield.Field, opts Options) []render.PNGOption {
	pngOpts := []render.PNGOption{render.WithPNGScale(opts.Render.Scale)}
	if opts.Render.Labels {
		pngOpts = append(pngOpts, render.WithPNGLabels())
	}
	if opts.Render.StrokeWidth > 0 {
		pngOpts = append(pngOpts, render.WithPNGStrokeWidth(opts.Render.StrokeWidth))
	}
	if opts.Render.Transparent {
		pngOpts = append(pngOpts, render.WithTransparent())
	}
	if opts.Render.CostOverlay && f != nil {
		pngOpts = append(pngOpts, render.WithPNGCostField(f, s.Penalty()))
	}
	return pngOpts
}
