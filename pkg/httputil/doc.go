// Package httputil fetches remote scenes and cost images.
//
// # Overview
//
// Scene paths and cost image references may be http or https URLs. A
// [Fetcher] downloads them with a size limit and retries transient
// failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Retries back off exponentially, see [Backoff]. A missing resource maps
// to FILE_NOT_FOUND and other client errors to INVALID_INPUT, so remote
// and local inputs fail the same way.
//
// Usage:
//
//	f := httputil.NewFetcher()
//	data, err := f.Get(ctx, "https://example.com/scenes/desk.json")
//
// Downloads are not cached here; the pipeline caches what it derives from
// them.
package httputil
