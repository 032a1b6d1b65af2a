package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"time"

	"github.com/matzehuels/linkroute/pkg/cache"
	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/httputil"
	"github.com/matzehuels/linkroute/pkg/link"
	"github.com/matzehuels/linkroute/pkg/observability"
	"github.com/matzehuels/linkroute/pkg/scene"
)

// LoadScene returns opts.Scene, or reads the local file opts.ScenePath.
func LoadScene(opts Options) (*scene.Scene, error) {
	if opts.Scene != nil {
		return opts.Scene, nil
	}
	if opts.ScenePath == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scene or scene path is required")
	}
	return scene.Load(opts.ScenePath)
}

// loadScene is [LoadScene] that also downloads http(s) scene paths. A
// relative cost image in a remote scene resolves against the scene URL.
func (r *Runner) loadScene(ctx context.Context, opts Options) (*scene.Scene, error) {
	if opts.Scene != nil || !httputil.IsURL(opts.ScenePath) {
		return LoadScene(opts)
	}
	u, err := url.Parse(opts.ScenePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scene url")
	}
	format, err := scene.FormatOf(u.Path)
	if err != nil {
		return nil, err
	}
	data, err := r.fetcher().Get(ctx, opts.ScenePath)
	if err != nil {
		return nil, err
	}
	s, err := scene.Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	if s.CostImage != "" && !httputil.IsURL(s.CostImage) {
		if s.CostImage, err = httputil.Resolve(opts.ScenePath, s.CostImage); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *Runner) fetcher() *httputil.Fetcher {
	if r.Fetcher == nil {
		return httputil.NewFetcher()
	}
	return r.Fetcher
}

// readImage returns the bytes of the cost image at path, a file or URL.
func (r *Runner) readImage(ctx context.Context, path string) ([]byte, error) {
	if httputil.IsURL(path) {
		return r.fetcher().Get(ctx, path)
	}
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cost image")
	}
	return img, nil
}

// Load reads the scene and builds its link forest.
func (r *Runner) Load(ctx context.Context, opts Options) (*scene.Scene, []*link.HyperEdge, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}
	source := opts.ScenePath
	if opts.Scene != nil {
		source = "inline"
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)

	s, err := r.loadScene(ctx, opts)
	if err == nil && opts.Scene == nil {
		err = checkGrid(s, opts.Route.CellSize)
	}
	var roots []*link.HyperEdge
	if err == nil {
		roots, err = s.Build()
	}

	observability.Pipeline().OnLoadComplete(ctx, source, countRegions(roots), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return s, roots, nil
}

// FieldWithCacheInfo builds the cost field of s. Fields decoded from a
// cost image are cached by image content, cell size and penalty; busy
// areas are applied after the cache so they never go stale.
func (r *Runner) FieldWithCacheInfo(ctx context.Context, s *scene.Scene, opts Options) (*costfield.Field, bool, error) {
	opts.SetRouteDefaults()
	cellSize := s.CellSizeOr(opts.Route.CellSize)

	path, err := s.ImagePath()
	if err != nil {
		return nil, false, err
	}
	if path == "" {
		f, err := s.Field(cellSize)
		return f, false, err
	}
	// Remote images are always downloaded; the cache saves the decode.

	img, err := r.readImage(ctx, path)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.FieldKey(cache.Hash(img), cache.FieldKeyOpts{CellSize: cellSize, MaxPenalty: s.Penalty()})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var f costfield.Field
			if err := f.UnmarshalBinary(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "field")
				s.ApplyBusy(&f)
				return &f, true, nil
			}
			// A corrupt entry is recomputed and overwritten.
		}
		observability.Cache().OnCacheMiss(ctx, "field")
	}

	f, err := costfield.Decode(bytes.NewReader(img), cellSize, s.Penalty())
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidScene, err, "cost image %s", s.CostImage)
	}
	if data, err := f.MarshalBinary(); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLField); err == nil {
			observability.Cache().OnCacheSet(ctx, "field", len(data))
		} else {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	s.ApplyBusy(f)
	return f, false, nil
}

// SceneHash hashes the scene document together with its cost field, so a
// changed cost image changes the hash.
func SceneHash(s *scene.Scene, f *costfield.Field) (string, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize scene")
	}
	field, err := f.MarshalBinary()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize cost field")
	}
	return cache.Hash(append(doc, field...)), nil
}

func countRegions(roots []*link.HyperEdge) int {
	n := 0
	for _, r := range roots {
		r.Walk(func(_ *link.HyperEdge, node *link.Node) bool {
			if node != nil {
				n++
			}
			return true
		})
	}
	return n
}

func countLinks(roots []*link.HyperEdge) int {
	n := 0
	for _, r := range roots {
		r.Walk(func(e *link.HyperEdge, _ *link.Node) bool {
			if e != nil {
				n++
			}
			return true
		})
	}
	return n
}
