package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkroute/pkg/cache"
	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/httputil"
	"github.com/matzehuels/linkroute/pkg/link"
	"github.com/matzehuels/linkroute/pkg/observability"
	"github.com/matzehuels/linkroute/pkg/render"
	"github.com/matzehuels/linkroute/pkg/route"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options; a single
// scene must not be executed concurrently because routing writes the
// forkations into its forest.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher *httputil.Fetcher // remote scenes and cost images
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: httputil.NewFetcher(),
	}
}

// Execute runs the complete load → route → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	s, roots, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	field, fieldHit, err := r.FieldWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	result.Scene, result.Roots, result.Field = s, roots, field
	result.CacheInfo.FieldHit = fieldHit
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.LinkCount = countLinks(roots)
	result.Stats.RegionCount = countRegions(roots)

	opts.Logger.Info("loaded scene",
		"links", result.Stats.LinkCount,
		"regions", result.Stats.RegionCount,
		"grid", fmt.Sprintf("%dx%d", field.Cols, field.Rows),
		"cached_field", fieldHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Route
	routeStart := time.Now()
	result.Routing = r.Route(ctx, roots, field, opts)
	result.Stats.RouteTime = time.Since(routeStart)

	opts.Logger.Info("routed links",
		"groups", result.Routing.Stats.Groups,
		"segments", result.Routing.Stats.Segments,
		"unreachable", result.Routing.Stats.Unreachable,
		"duration", result.Stats.RouteTime)

	// Stage 3: Render
	renderStart := time.Now()
	hash, err := SceneHash(s, field)
	if err != nil {
		return nil, err
	}
	result.SceneHash = hash
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, hash, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Route runs one routing pass with the options' router settings.
func (r *Runner) Route(ctx context.Context, roots []*link.HyperEdge, field *costfield.Field, opts Options) *route.Result {
	opts.SetRouteDefaults()
	r.applyLogger(&opts)
	router := route.NewRouter(opts.Route,
		route.WithLogger(opts.Logger),
		route.WithBundling(opts.Bundle))
	// A pass always runs to completion, so its hooks must see it complete
	// even when ctx is cancelled meanwhile.
	return router.Route(context.WithoutCancel(ctx), roots, field)
}

// RenderWithCacheInfo renders every format of opts for a routed result and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sceneHash string, res *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	view := render.ViewOf(res.Roots, res.Routing)
	rendered, err := Render(view, res.Scene, res.Field, res.Routing.Stats, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
