package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/route"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c, err := LoadFrom("", []string{t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, Default(), c)
	assert.Empty(t, c.File)
	assert.Equal(t, route.InheritAverage, c.Route.Inherit)
	assert.Equal(t, DefaultAddr, c.Server.Addr)
	assert.NotEmpty(t, c.CacheDir)
}

func TestFileOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "linkroute.toml", `
cache_dir = "/tmp/lr"

[route]
cell_size = 16
inherit = "replace"
bundle = true

[bundle]
rounds = 3

[server]
addr = ":9000"
read_timeout = "2s"
`)

	c, err := LoadFrom("", []string{dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "linkroute.toml"), c.File)
	assert.Equal(t, 16.0, c.Route.CellSize)
	assert.Equal(t, route.InheritReplace, c.Route.Inherit)
	assert.True(t, c.Route.Bundle)
	assert.Equal(t, 3, c.Bundle.Rounds)
	assert.Equal(t, Default().Bundle.Iterations, c.Bundle.Iterations, "unset keys keep defaults")
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, 2*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "/tmp/lr", c.CacheDir)
}

func TestExplicitYAMLFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", "render:\n  labels: true\n  scale: 2\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Render.Labels)
	assert.Equal(t, 2.0, c.Render.Scale)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LINKROUTE_CELL_SIZE", "12")
	t.Setenv("LINKROUTE_ROUTE_SMOOTH_ITERATIONS", "7")
	t.Setenv("LINKROUTE_SERVER_ADDR", ":7000")

	dir := t.TempDir()
	writeFile(t, dir, "linkroute.toml", "[server]\naddr = \":9000\"\n")

	c, err := LoadFrom("", []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 12.0, c.Route.CellSize)
	assert.Equal(t, 7, c.Route.SmoothIterations)
	assert.Equal(t, ":7000", c.Server.Addr, "environment wins over the file")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	bad := writeFile(t, dir, "bad.toml", "[route\ncell_size = ")
	_, err = Load(bad)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	invalid := writeFile(t, dir, "invalid.toml", "[route]\ninherit = \"sideways\"\n")
	_, err = Load(invalid)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative cell", func(c *Config) { c.Route.CellSize = -1 }},
		{"no rounds", func(c *Config) { c.Bundle.Rounds = 0 }},
		{"decay above one", func(c *Config) { c.Bundle.IterationDecay = 1.5 }},
		{"zero scale", func(c *Config) { c.Render.Scale = 0 }},
		{"no addr", func(c *Config) { c.Server.Addr = "" }},
		{"no body", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"no cache dir", func(c *Config) { c.CacheDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestPipelineOptions(t *testing.T) {
	c := Default()
	c.Render.Labels = true
	opts := c.PipelineOptions()
	assert.Equal(t, c.Route, opts.Route)
	assert.Equal(t, c.Bundle, opts.Bundle)
	assert.True(t, opts.Render.Labels)
}
