// Package pkg provides the core libraries for linkroute.
//
// # Overview
//
// Linkroute draws hyperedges between regions on a screen. Every link picks
// a fork point and runs a path from the fork to each region it joins, on a
// grid whose cell costs come from busy areas and an optional cost image.
// The pkg directory is organized into four areas:
//
//  1. Domain model - [geom], [link], [scene]
//  2. Routing - [costfield], [route], [bundle]
//  3. Output - [render]
//  4. Orchestration and infrastructure - [pipeline], [cache], [config],
//     [server], [httputil], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	scene file (TOML, YAML, JSON) or URL
//	         ↓
//	    [scene] package (decode, validate, build the link forest)
//	         ↓
//	    [costfield] package (cost grid from image and busy areas)
//	         ↓
//	    [route] package (fork placement, shortest paths, smoothing)
//	         ↓
//	    [bundle] package (optional edge bundling)
//	         ↓
//	    [render] package (SVG, PNG, JSON, DOT)
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/linkroute/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    ScenePath: "desktop.toml",
//	    Formats:   []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// [link] - Regions (nodes), hyperedges and forkations. A region may own
// nested links, so a scene is a forest of alternating edges and nodes.
//
// [route] - One routing pass over the forest: grid targets per region,
// Dijkstra from every target, fork placement where the summed cost is
// lowest, path tracing, smoothing and off-screen indicators.
//
// [pipeline] - Load → route → render with cost field and artifact
// caching. Used by the CLI and the preview server alike.
//
// [server] - HTTP preview endpoint built on chi.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/route/...              # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/geom
// [link]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/link
// [scene]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/scene
// [costfield]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/costfield
// [route]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/route
// [bundle]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/bundle
// [render]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/linkroute/pkg/buildinfo
package pkg
