// Package pipeline runs the load → route → render pipeline for linkroute.
//
// The CLI and the preview server both go through a [Runner], so scenes are
// loaded, cost fields cached and artifacts rendered the same way from every
// entry point.
//
// # Stages
//
//  1. Load: read the scene, build the link forest and its cost field. Cost
//     fields decoded from images are cached by image content.
//  2. Route: run one routing pass over the forest.
//  3. Render: produce the requested formats (SVG, PNG, JSON, DOT).
//     Artifacts are cached by scene content and options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ScenePath: "desktop.toml",
//	    Formats:   []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkroute/pkg/bundle"
	"github.com/matzehuels/linkroute/pkg/cache"
	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/link"
	"github.com/matzehuels/linkroute/pkg/route"
	"github.com/matzehuels/linkroute/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// DefaultPNGScale is the pixels per viewport unit of PNG output.
const DefaultPNGScale = 1.0

// MaxPNGScale bounds Render.Scale.
const MaxPNGScale = 8.0

// =============================================================================
// Options
// =============================================================================

// RenderOptions tunes the renderers.
type RenderOptions struct {
	Labels      bool    `mapstructure:"labels" json:"labels,omitempty"`
	CostOverlay bool    `mapstructure:"cost_overlay" json:"cost_overlay,omitempty"`
	Transparent bool    `mapstructure:"transparent" json:"transparent,omitempty"`
	StrokeWidth float64 `mapstructure:"stroke_width" json:"stroke_width,omitempty"`
	Scale       float64 `mapstructure:"scale" json:"scale,omitempty"` // PNG only
}

// Options contains all configuration for one pipeline run.
type Options struct {
	// ScenePath names a scene file. Scene takes precedence when set.
	ScenePath string       `json:"scene_path,omitempty"`
	Scene     *scene.Scene `json:"-"`

	Formats []string       `json:"formats,omitempty"`
	Route   route.Options  `json:"route"`
	Bundle  bundle.Options `json:"bundle"`
	Render  RenderOptions  `json:"render"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Scene *scene.Scene
	Roots []*link.HyperEdge
	Field *costfield.Field

	// SceneHash covers the scene document and its cost field.
	SceneHash string

	Routing   *route.Result
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LinkCount   int
	RegionCount int
	LoadTime    time.Duration
	RouteTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	FieldHit  bool // cost field came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRoute(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a scene source is given. An inline scene
// must also fit the cost field size limit; scenes read from a path are
// checked by [Runner.Load].
func (o *Options) ValidateForLoad() error {
	if o.Scene == nil && o.ScenePath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "scene or scene path is required")
	}
	if o.Scene != nil {
		if err := checkGrid(o.Scene, o.Route.CellSize); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// checkGrid rejects scenes whose viewport grid would exceed
// [costfield.MaxCells] before anything is allocated. Scenes sized by their
// cost image are checked when the image is decoded.
func checkGrid(s *scene.Scene, cellSize float64) error {
	if s.CostImage != "" && (s.Viewport.Width == 0 || s.Viewport.Height == 0) {
		return nil
	}
	if cellSize == 0 {
		cellSize = costfield.DefaultCellSize
	}
	if _, _, err := costfield.Dims(s.Viewport.Width, s.Viewport.Height, s.CellSizeOr(cellSize)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "viewport")
	}
	return nil
}

// SetRouteDefaults fills zero routing and bundling options.
func (o *Options) SetRouteDefaults() {
	o.Route.SetDefaults()
	o.Bundle.SetDefaults()
	o.setLogger()
}

// ValidateForRoute applies routing defaults and checks their ranges.
func (o *Options) ValidateForRoute() error {
	o.SetRouteDefaults()
	if err := o.Route.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "route options")
	}
	return nil
}

// SetRenderDefaults fills zero render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Render.Scale == 0 {
		o.Render.Scale = DefaultPNGScale
	}
	o.setLogger()
}

// ValidateForRender applies render defaults and checks formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	if o.Render.Scale < 0 || o.Render.StrokeWidth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render scale and stroke width must not be negative")
	}
	if o.Render.Scale > MaxPNGScale {
		return errors.New(errors.ErrCodeInvalidInput, "render scale %g exceeds %g", o.Render.Scale, MaxPNGScale)
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	data, _ := json.Marshal(struct {
		Route  route.Options  `json:"route"`
		Bundle bundle.Options `json:"bundle"`
		Render RenderOptions  `json:"render"`
	}{o.Route, o.Bundle, o.Render})
	return cache.ArtifactKeyOpts{
		Format:  format,
		Bundle:  o.Route.Bundle,
		Options: cache.Hash(data),
	}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
