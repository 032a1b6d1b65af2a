// Package observability lets an embedding program watch linkroute work.
//
// Routing passes, pipeline runs, cache lookups and preview requests emit
// events through four hook interfaces. Each has a no-op default, so the
// routing core carries no metrics dependency; main registers real hooks at
// startup, either its own or the bundled [LogHooks]:
//
//	observability.Register(observability.NewLogHooks(logger))
//
// Emitters fetch the current hooks on every event:
//
//	observability.Route().OnPassStart(ctx, edges)
//	observability.Route().OnPassComplete(ctx, stats.Groups, stats.Unreachable, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Route Hooks
// =============================================================================

// RouteHooks receives events from routing passes.
type RouteHooks interface {
	// OnPassStart is called before any grid work with the number of
	// planned edges.
	OnPassStart(ctx context.Context, edges int)

	// OnGroupRouted is called once per routing group. kind is "window" or
	// "edge"; targets counts the grid searches the group needed.
	OnGroupRouted(ctx context.Context, kind string, targets int, reachable bool, duration time.Duration)

	// OnPassComplete is called when the pass has written every forkation.
	OnPassComplete(ctx context.Context, groups, unreachable int, duration time.Duration)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load → route → render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nodeCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the preview server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed with a coded error.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRouteHooks is a no-op implementation of RouteHooks.
type NoopRouteHooks struct{}

func (NoopRouteHooks) OnPassStart(context.Context, int)                                {}
func (NoopRouteHooks) OnGroupRouted(context.Context, string, int, bool, time.Duration) {}
func (NoopRouteHooks) OnPassComplete(context.Context, int, int, time.Duration)         {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                              {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

type registry struct {
	route    RouteHooks
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func defaults() registry {
	return registry{NoopRouteHooks{}, NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	mu    sync.RWMutex
	hooks = defaults()
)

func update(fn func(r *registry)) {
	mu.Lock()
	defer mu.Unlock()
	fn(&hooks)
}

func current() registry {
	mu.RLock()
	defer mu.RUnlock()
	return hooks
}

// Register installs h for every hook interface it implements and returns
// how many it matched. Call it at startup, before routing or serving.
func Register(h any) int {
	n := 0
	update(func(r *registry) {
		if v, ok := h.(RouteHooks); ok {
			r.route, n = v, n+1
		}
		if v, ok := h.(PipelineHooks); ok {
			r.pipeline, n = v, n+1
		}
		if v, ok := h.(CacheHooks); ok {
			r.cache, n = v, n+1
		}
		if v, ok := h.(HTTPHooks); ok {
			r.http, n = v, n+1
		}
	})
	return n
}

// SetRouteHooks installs route hooks. nil is ignored.
func SetRouteHooks(h RouteHooks) {
	if h != nil {
		update(func(r *registry) { r.route = h })
	}
}

// SetPipelineHooks installs pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks installs cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

func Route() RouteHooks       { return current().route }
func Pipeline() PipelineHooks { return current().pipeline }
func Cache() CacheHooks       { return current().cache }
func HTTP() HTTPHooks         { return current().http }

// Reset restores the no-op hooks. Tests call it in t.Cleanup.
func Reset() { update(func(r *registry) { *r = defaults() }) }
