package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/linkroute/pkg/cache"
	"github.com/matzehuels/linkroute/pkg/config"
	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/observability"
	"github.com/matzehuels/linkroute/pkg/pipeline"
)

const sceneJSON = `{
  "name": "preview",
  "viewport": {"width": 320, "height": 160},
  "links": [{
    "id": "query",
    "regions": [
      {"id": "left", "vertices": [{"x": 20, "y": 20}, {"x": 40, "y": 20}, {"x": 40, "y": 40}, {"x": 20, "y": 40}]},
      {"id": "right", "vertices": [{"x": 260, "y": 20}, {"x": 280, "y": 20}, {"x": 280, "y": 40}, {"x": 260, "y": 40}]}
    ]
  }]
}`

const sceneTOML = `
name = "preview"

[viewport]
width = 320
height = 160

[[links]]
id = "query"

[[links.regions]]
id = "left"
vertices = [{x = 20, y = 20}, {x = 40, y = 20}, {x = 40, y = 40}, {x = 20, y = 40}]

[[links.regions]]
id = "right"
vertices = [{x = 260, y = 20}, {x = 280, y = 20}, {x = 280, y = 40}, {x = 260, y = 40}]
`

func newTestServer(t *testing.T, c cache.Cache) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 4096
	runner := pipeline.NewRunner(c, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "preview:"), nil)
	s := New(cfg.Server, runner, cfg.PipelineOptions(), nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(ts.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Contains(t, info, "version")
}

func TestRouteFormats(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		query       string
		contentType string
		prefix      string
	}{
		{"", "image/svg+xml", "<svg"},
		{"?format=json", "application/json", "{"},
		{"?format=png&scale=0.5", "image/png", "\x89PNG"},
		{"?format=dot&labels=true", "text/vnd.graphviz; charset=utf-8", "digraph"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			resp := post(t, ts.URL+"/route"+tt.query, "application/json", sceneJSON)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Equal(t, "0", resp.Header.Get("X-Linkroute-Unreachable"))
			assert.NotEmpty(t, resp.Header.Get("X-Linkroute-Scene-Hash"))

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), tt.prefix), "got %.40q", data)
		})
	}
}

func TestRouteTOMLScene(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/route?format=json", "application/toml", sceneTOML)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"query"`)

	resp = post(t, ts.URL+"/route?scene=toml", "text/plain", sceneTOML)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "query parameter wins over the header")
}

func TestRouteCachesArtifacts(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	ts := newTestServer(t, c)

	first := post(t, ts.URL+"/route", "application/json", sceneJSON)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "false", first.Header.Get("X-Linkroute-Cache"))

	second := post(t, ts.URL+"/route", "application/json", sceneJSON)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get("X-Linkroute-Cache"))
	assert.Equal(t, first.Header.Get("X-Linkroute-Scene-Hash"), second.Header.Get("X-Linkroute-Scene-Hash"))
}

func TestRouteErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		status      int
		code        errors.Code
	}{
		{"bad format", "/route?format=pdf", "application/json", sceneJSON, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad bool", "/route?labels=maybe", "application/json", sceneJSON, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad content type", "/route", "text/html", sceneJSON, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"broken json", "/route", "application/json", `{"links": [`, http.StatusBadRequest, errors.ErrCodeInvalidScene},
		{"unknown field", "/route", "application/json", `{"viewport": {"width": 10, "height": 10}, "colour": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidScene},
		{"cost image", "/route", "application/json", `{"cost_image": "/etc/passwd.png"}`, http.StatusNotImplemented, errors.ErrCodeUnsupported},
		{"huge viewport", "/route", "application/json", `{"viewport": {"width": 1e12, "height": 1e12}, "cell_size": 1, "links": []}`, http.StatusBadRequest, errors.ErrCodeInvalidScene},
		{"huge scale", "/route?format=png&scale=1000", "application/json", sceneJSON, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"too large", "/route", "application/json", `{"name": "` + strings.Repeat("x", 5000) + `"}`, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+tt.path, tt.contentType, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Code)
		})
	}

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeNotFound, decodeError(t, resp).Code)
}

type httpEvents struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []string
	errors    int
}

func (h *httpEvents) OnResponse(_ context.Context, method, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+path+" "+http.StatusText(status))
}

func (h *httpEvents) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestInstrumentHooks(t *testing.T) {
	events := &httpEvents{}
	observability.SetHTTPHooks(events)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, nil)
	post(t, ts.URL+"/route", "application/json", sceneJSON)
	post(t, ts.URL+"/route?format=gif", "application/json", sceneJSON)

	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Equal(t, []string{"POST /route OK", "POST /route Bad Request"}, events.responses)
	assert.Equal(t, 1, events.errors)
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.Default().Server
	s := New(cfg, pipeline.NewRunner(nil, nil, nil), pipeline.Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
