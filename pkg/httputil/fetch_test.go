package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/linkroute/pkg/errors"
)

func fastFetcher() *Fetcher {
	f := NewFetcher()
	f.Backoff = Backoff{Attempts: 3, Delay: time.Millisecond}
	return f
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/scene.json"))
	assert.True(t, IsURL("HTTP://example.com/a.toml"))
	assert.False(t, IsURL("scenes/desk.toml"))
	assert.False(t, IsURL("/abs/desk.toml"))
	assert.False(t, IsURL("ftp://example.com/a.toml"))
	assert.False(t, IsURL(`C:\scenes\desk.toml`))
}

func TestResolve(t *testing.T) {
	got, err := Resolve("https://example.com/scenes/desk.json", "img/cost.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/scenes/img/cost.png", got)

	got, err = Resolve("https://example.com/scenes/desk.json", "https://cdn.example.com/cost.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/cost.png", got)
}

func TestFetchRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "linkroute/"))
		_, _ = w.Write([]byte("scene"))
	}))
	defer ts.Close()

	data, err := fastFetcher().Get(context.Background(), ts.URL+"/desk.json")
	require.NoError(t, err)
	assert.Equal(t, "scene", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		code   errors.Code
		calls  int32
	}{
		{http.StatusNotFound, errors.ErrCodeFileNotFound, 1},
		{http.StatusForbidden, errors.ErrCodeInvalidInput, 1},
		{http.StatusInternalServerError, "", 3},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			_, err := fastFetcher().Get(context.Background(), ts.URL)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.Equal(t, tt.calls, calls.Load())
		})
	}
}

func TestFetchSizeLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer ts.Close()

	f := fastFetcher()
	f.MaxBytes = 16
	_, err := f.Get(context.Background(), ts.URL)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestFetchRejectsPaths(t *testing.T) {
	_, err := fastFetcher().Get(context.Background(), "scenes/desk.toml")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}
