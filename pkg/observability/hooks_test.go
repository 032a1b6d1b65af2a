package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	assert.IsType(t, NoopRouteHooks{}, Route())
	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())

	ctx := context.Background()
	Route().OnGroupRouted(ctx, "edge", 4, true, time.Millisecond)
	Pipeline().OnLoadComplete(ctx, "scene.toml", 12, time.Second, nil)
	Cache().OnCacheSet(ctx, "field", 1024)
	HTTP().OnError(ctx, "POST", "/route", nil)
}

type testRouteHooks struct{ NoopRouteHooks }
type testCacheHooks struct{ NoopCacheHooks }

func TestSetters(t *testing.T) {
	t.Cleanup(Reset)

	route := &testRouteHooks{}
	SetRouteHooks(route)
	SetRouteHooks(nil)
	assert.Same(t, route, Route(), "nil is ignored")

	cache := &testCacheHooks{}
	SetCacheHooks(cache)
	assert.Same(t, cache, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP(), "other hooks untouched")

	Reset()
	assert.IsType(t, NoopRouteHooks{}, Route())
	assert.IsType(t, NoopCacheHooks{}, Cache())
}

func TestRegister(t *testing.T) {
	t.Cleanup(Reset)

	assert.Equal(t, 1, Register(&testCacheHooks{}))
	assert.IsType(t, NoopRouteHooks{}, Route())
	assert.Zero(t, Register("not hooks"))

	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	assert.Equal(t, 4, Register(h))
	assert.Same(t, h, Route())
	assert.Same(t, h, HTTP())
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnPassComplete(ctx, 3, 1, time.Millisecond)
	h.OnLoadComplete(ctx, "desk.toml", 0, 0, errors.New("no such file"))
	h.OnCacheHit(ctx, "field")

	out := buf.String()
	assert.Contains(t, out, "hooks")
	assert.Contains(t, out, "pass complete")
	assert.Contains(t, out, "unreachable=1")
	assert.Contains(t, out, "load failed")
	assert.Contains(t, out, "cache hit")

	buf.Reset()
	quiet := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	quiet.OnCacheMiss(ctx, "artifact")
	assert.Empty(t, buf.String(), "debug records are filtered at info level")
}
