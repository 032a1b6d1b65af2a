package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/linkroute/pkg/cache"
	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/observability"
	"github.com/matzehuels/linkroute/pkg/route"
	"github.com/matzehuels/linkroute/pkg/scene"
)

func box(x, y float64) []geom.Point {
	return []geom.Point{{X: x, Y: y}, {X: x + 20, Y: y}, {X: x + 20, Y: y + 20}, {X: x, Y: y + 20}}
}

func testScene() *scene.Scene {
	return &scene.Scene{
		Name:     "test",
		Viewport: scene.Size{Width: 320, Height: 160},
		Busy:     []scene.Busy{{X: 140, Y: 0, W: 40, H: 80, Penalty: 10}},
		Links: []scene.Link{{
			ID: "query",
			Regions: []scene.Region{
				{ID: "left", Vertices: box(20, 20)},
				{ID: "right", Vertices: box(260, 20)},
			},
		}},
	}
}

func hugeScene() *scene.Scene {
	s := testScene()
	s.Viewport = scene.Size{Width: 1e12, Height: 1e12}
	s.CellSize = 1
	return s
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no scene", Options{}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Scene: testScene(), Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"bad inherit", Options{Scene: testScene(), Route: route.Options{Inherit: "sideways"}}, errors.ErrCodeInvalidInput},
		{"negative scale", Options{Scene: testScene(), Render: RenderOptions{Scale: -1}}, errors.ErrCodeInvalidInput},
		{"huge scale", Options{Scene: testScene(), Render: RenderOptions{Scale: MaxPNGScale * 2}}, errors.ErrCodeInvalidInput},
		{"huge viewport", Options{Scene: hugeScene()}, errors.ErrCodeInvalidScene},
		{"tiny cells", Options{Scene: testScene(), Route: route.Options{CellSize: 1e-6}}, errors.ErrCodeInvalidScene},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}

	opts := Options{ScenePath: "x.toml"}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, []string{FormatSVG}, opts.Formats)
	assert.Equal(t, DefaultPNGScale, opts.Render.Scale)
	assert.Equal(t, route.InheritAverage, opts.Route.Inherit)
	assert.NotNil(t, opts.Logger)
}

func TestArtifactKeyOpts(t *testing.T) {
	a := Options{}
	a.SetRouteDefaults()
	b := a
	b.Route.SmoothFactor = 0.9

	assert.Equal(t, a.ArtifactKeyOpts(FormatSVG), a.ArtifactKeyOpts(FormatSVG))
	assert.NotEqual(t, a.ArtifactKeyOpts(FormatSVG).Options, b.ArtifactKeyOpts(FormatSVG).Options)
	assert.Equal(t, FormatPNG, a.ArtifactKeyOpts(FormatPNG).Format)
}

func TestExecuteInlineScene(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Scene:   testScene(),
		Formats: []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.LinkCount)
	assert.Equal(t, 2, res.Stats.RegionCount)
	assert.Equal(t, 10, res.Field.Cols)
	assert.Equal(t, uint32(10), res.Field.At(4, 0), "busy area applied")
	assert.NotEmpty(t, res.SceneHash)

	require.Len(t, res.Roots, 1)
	f := res.Roots[0].Forkation()
	require.NotNil(t, f)
	assert.Len(t, f.Segments, 2)
	assert.Equal(t, 1, res.Routing.Stats.Groups)

	assert.True(t, strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg"))
	assert.Contains(t, string(res.Artifacts[FormatJSON]), `"id": "query"`)
	assert.Contains(t, string(res.Artifacts[FormatDOT]), `"query" -> "left";`)
	assert.True(t, strings.HasPrefix(string(res.Artifacts[FormatPNG]), "\x89PNG"))
	assert.False(t, res.CacheInfo.RenderHit)
}

func TestExecuteMissingScene(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{ScenePath: filepath.Join(t.TempDir(), "none.toml")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestExecuteRejectsBadIDs(t *testing.T) {
	s := testScene()
	s.Links[0].Regions[1].ID = "left"
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Scene: s})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScene))
}

type cacheEvents struct {
	mu                sync.Mutex
	hits, misses, set map[string]int
}

func newCacheEvents() *cacheEvents {
	return &cacheEvents{hits: map[string]int{}, misses: map[string]int{}, set: map[string]int{}}
}

func (c *cacheEvents) OnCacheHit(_ context.Context, k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[k]++
}

func (c *cacheEvents) OnCacheMiss(_ context.Context, k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses[k]++
}

func (c *cacheEvents) OnCacheSet(_ context.Context, k string, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set[k]++
}

func writeCostImage(t *testing.T, dir string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 320, 160))
	for x := 128; x < 192; x++ {
		for y := 0; y < 128; y++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "desktop.png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestExecuteCachesFieldAndArtifacts(t *testing.T) {
	events := newCacheEvents()
	observability.SetCacheHooks(events)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	writeCostImage(t, dir)
	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	r := NewRunner(c, nil, nil)
	defer r.Close()

	sceneAt := func() *scene.Scene {
		s := testScene()
		s.Viewport = scene.Size{}
		s.CostImage = "desktop.png"
		s.SetDir(dir)
		return s
	}
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Scene: sceneAt(), Formats: []string{FormatSVG, FormatJSON}})
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.FieldHit)
	assert.False(t, first.CacheInfo.RenderHit)
	assert.Equal(t, uint32(64), first.Field.At(4, 3), "white pixel is max penalty")
	assert.Equal(t, uint32(74), first.Field.At(4, 0), "busy area on top of the image")
	assert.Equal(t, uint32(0), first.Field.At(0, 0))

	second, err := r.Execute(ctx, Options{Scene: sceneAt(), Formats: []string{FormatSVG, FormatJSON}})
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.FieldHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.SceneHash, second.SceneHash)
	assert.Equal(t, first.Artifacts, second.Artifacts)
	assert.Equal(t, first.Field, second.Field)

	refreshed, err := r.Execute(ctx, Options{Scene: sceneAt(), Formats: []string{FormatSVG}, Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheInfo.FieldHit)
	assert.False(t, refreshed.CacheInfo.RenderHit)

	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Equal(t, 1, events.hits["field"])
	assert.Equal(t, 1, events.hits["artifact"])
	assert.Equal(t, 2, events.set["field"])
}

func TestExecuteRemoteScene(t *testing.T) {
	dir := t.TempDir()
	writeCostImage(t, dir)
	img, err := os.ReadFile(filepath.Join(dir, "desktop.png"))
	require.NoError(t, err)

	doc := testScene()
	doc.Viewport = scene.Size{}
	doc.CostImage = "img/desktop.png"
	var body strings.Builder
	require.NoError(t, doc.Encode(&body, scene.FormatJSON))

	mux := http.NewServeMux()
	mux.HandleFunc("/scenes/desk.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body.String()))
	})
	mux.HandleFunc("/scenes/img/desktop.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(img)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{ScenePath: ts.URL + "/scenes/desk.json"})
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/scenes/img/desktop.png", res.Scene.CostImage)
	assert.Equal(t, uint32(64), res.Field.At(4, 3))

	_, err = NewRunner(nil, nil, nil).Execute(context.Background(), Options{ScenePath: ts.URL + "/scenes/missing.json"})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}
