// Package render draws routed link forests.
//
// # Overview
//
// A [View] bundles what a routing pass produced: the link forest with the
// forkations stored on its edges, the window-group forkations and the
// viewport. Every sink reads the same View:
//
//   - [RenderSVG] writes an overlay of regions, trails and fork points.
//   - [RenderPNG] rasterises the same overlay natively, without external
//     tools.
//   - [RenderJSON] exports the forkation tree for other programs.
//   - [ToDOT] and [RenderDOTSVG] draw the link hierarchy itself with
//     Graphviz, ignoring geometry.
//
// Sinks are configured with functional options:
//
//	v := render.ViewOf(roots, result)
//	svg := render.RenderSVG(v, render.WithLabels(), render.WithCostField(field, 64))
//	png, err := render.RenderPNG(v, render.WithPNGScale(2))
//
// # Styling
//
// Covered segments (paths ending behind another window) are dashed. Segments
// that end at an off-screen indicator end in a wider cap. Forks whose cell
// was not reachable from every target are drawn hollow.
package render
