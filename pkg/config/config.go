// Package config loads linkroute settings from defaults, an optional config
// file and the environment, in increasing order of precedence.
//
// The config file is linkroute.toml, linkroute.yaml or linkroute.json in the
// working directory or in $XDG_CONFIG_HOME/linkroute, unless a path is given
// explicitly. Every key can be overridden with an environment variable named
// after its dotted path with a LINKROUTE_ prefix:
//
//	LINKROUTE_ROUTE_SMOOTH_ITERATIONS=8
//	LINKROUTE_SERVER_ADDR=:9000
//
// The grid pitch is also read from the shorter LINKROUTE_CELL_SIZE.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/linkroute/pkg/bundle"
	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/pipeline"
	"github.com/matzehuels/linkroute/pkg/route"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LINKROUTE"

	// FileName is the config file name without extension.
	FileName = "linkroute"
)

// Server defaults.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultMaxBodyBytes = 4 << 20
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 60 * time.Second
)

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Config is the complete settings tree.
type Config struct {
	Route    route.Options          `mapstructure:"route"`
	Bundle   bundle.Options         `mapstructure:"bundle"`
	Render   pipeline.RenderOptions `mapstructure:"render"`
	Server   ServerConfig           `mapstructure:"server"`
	CacheDir string                 `mapstructure:"cache_dir"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	c := Config{
		Route: route.DefaultOptions(),
		Render: pipeline.RenderOptions{
			Scale: pipeline.DefaultPNGScale,
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		CacheDir: DefaultCacheDir(),
	}
	c.Bundle.SetDefaults()
	return c
}

// DefaultCacheDir returns the per-user cache directory for linkroute.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "linkroute")
	}
	return filepath.Join(os.TempDir(), "linkroute-cache")
}

// DefaultSearchPaths lists where Load looks for a config file.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "linkroute"))
	}
	return paths
}

// Load reads the settings. A non-empty file must exist; otherwise the
// default search paths are tried and a missing file is not an error.
func Load(file string) (Config, error) {
	return LoadFrom(file, DefaultSearchPaths())
}

// LoadFrom is [Load] with explicit search paths.
func LoadFrom(file string, searchPaths []string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("route.cell_size", EnvPrefix+"_ROUTE_CELL_SIZE", EnvPrefix+"_CELL_SIZE"); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "bind environment")
	}

	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", file)
		}
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !stderrors.As(err, &notFound) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	c.File = v.ConfigFileUsed()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// setDefaults registers every key so that environment overrides reach
// Unmarshal even without a config file.
func setDefaults(v *viper.Viper, c Config) {
	defaults := map[string]any{
		"route.cell_size":         c.Route.CellSize,
		"route.smooth_iterations": c.Route.SmoothIterations,
		"route.smooth_factor":     c.Route.SmoothFactor,
		"route.indicator_inset":   c.Route.IndicatorInset,
		"route.inherit":           string(c.Route.Inherit),
		"route.bundle":            c.Route.Bundle,

		"bundle.rounds":          c.Bundle.Rounds,
		"bundle.iterations":      c.Bundle.Iterations,
		"bundle.iteration_decay": c.Bundle.IterationDecay,
		"bundle.min_iterations":  c.Bundle.MinIterations,
		"bundle.step":            c.Bundle.Step,
		"bundle.spring":          c.Bundle.Spring,
		"bundle.attraction":      c.Bundle.Attraction,
		"bundle.falloff":         c.Bundle.Falloff,
		"bundle.radius":          c.Bundle.Radius,
		"bundle.max_angle":       c.Bundle.MaxAngle,
		"bundle.neighbors":       c.Bundle.Neighbors,

		"render.labels":       c.Render.Labels,
		"render.cost_overlay": c.Render.CostOverlay,
		"render.transparent":  c.Render.Transparent,
		"render.stroke_width": c.Render.StrokeWidth,
		"render.scale":        c.Render.Scale,

		"server.addr":           c.Server.Addr,
		"server.max_body_bytes": c.Server.MaxBodyBytes,
		"server.read_timeout":   c.Server.ReadTimeout,
		"server.write_timeout":  c.Server.WriteTimeout,

		"cache_dir": c.CacheDir,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Validate checks the loaded settings.
func (c Config) Validate() error {
	if err := c.Route.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "route")
	}
	if c.Bundle.Rounds < 1 || c.Bundle.Neighbors < 0 || c.Bundle.IterationDecay <= 0 || c.Bundle.IterationDecay > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "bundle: rounds must be positive and iteration decay within (0, 1]")
	}
	if c.Render.Scale <= 0 || c.Render.StrokeWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render: scale must be positive and stroke width not negative")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server: addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server: max_body_bytes must be positive")
	}
	if c.CacheDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_dir is required")
	}
	return nil
}

// PipelineOptions returns pipeline options carrying the routing, bundling
// and render settings.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Route:  c.Route,
		Bundle: c.Bundle,
		Render: c.Render,
	}
}
