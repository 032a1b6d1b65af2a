// Package scene reads declarative scene files: a desktop viewport, its cost
// field and a forest of links to route.
//
// Scenes are plain TOML, YAML or JSON documents selected by file extension:
//
//	name = "search results"
//	cost_image = "desktop.png"
//
//	[viewport]
//	width = 1920
//	height = 1080
//
//	[[links]]
//	id = "query"
//
//	  [[links.regions]]
//	  id = "editor"
//	  vertices = [{x = 100, y = 80}, {x = 400, y = 80}, {x = 400, y = 120}]
//	  props = { covering-wid = 3 }
//
// [Scene.Build] turns the document into link hyperedges, [Scene.Field]
// into a cost field.
package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/geom"
)

// Format is a scene file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported encodings.
var Formats = []string{string(FormatTOML), string(FormatYAML), string(FormatJSON)}

// FormatOf infers the format from a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown scene extension %q (want .toml, .yaml or .json)", filepath.Ext(path))
}

// Scene is a decoded scene document.
type Scene struct {
	Name     string `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Viewport Size   `toml:"viewport" yaml:"viewport" json:"viewport"`

	// CellSize overrides the configured grid pitch for this scene.
	CellSize float64 `toml:"cell_size,omitempty" yaml:"cell_size,omitempty" json:"cell_size,omitempty"`

	// CostImage names a busy-ness map, relative to the scene file.
	CostImage  string `toml:"cost_image,omitempty" yaml:"cost_image,omitempty" json:"cost_image,omitempty"`
	MaxPenalty uint32 `toml:"max_penalty,omitempty" yaml:"max_penalty,omitempty" json:"max_penalty,omitempty"`

	Busy  []Busy `toml:"busy,omitempty" yaml:"busy,omitempty" json:"busy,omitempty"`
	Links []Link `toml:"links,omitempty" yaml:"links,omitempty" json:"links,omitempty"`

	dir string // directory CostImage is resolved against
}

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `toml:"width" yaml:"width" json:"width"`
	Height float64 `toml:"height" yaml:"height" json:"height"`
}

// Busy marks a screen rectangle with an extra routing penalty.
type Busy struct {
	X       float64 `toml:"x" yaml:"x" json:"x"`
	Y       float64 `toml:"y" yaml:"y" json:"y"`
	W       float64 `toml:"w" yaml:"w" json:"w"`
	H       float64 `toml:"h" yaml:"h" json:"h"`
	Penalty uint32  `toml:"penalty" yaml:"penalty" json:"penalty"`
}

// Rect returns the busy area.
func (b Busy) Rect() geom.Rect { return geom.R(b.X, b.Y, b.W, b.H) }

// Link is one hyperedge: a set of regions joined at a shared fork.
type Link struct {
	ID      string         `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Props   map[string]any `toml:"props,omitempty" yaml:"props,omitempty" json:"props,omitempty"`
	Regions []Region       `toml:"regions,omitempty" yaml:"regions,omitempty" json:"regions,omitempty"`
}

// Region is one node. Nested links hang below it.
type Region struct {
	ID                 string         `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Vertices           []geom.Point   `toml:"vertices,omitempty" yaml:"vertices,omitempty" json:"vertices,omitempty"`
	LinkPoints         []geom.Point   `toml:"link_points,omitempty" yaml:"link_points,omitempty" json:"link_points,omitempty"`
	LinkPointsChildren []geom.Point   `toml:"link_points_children,omitempty" yaml:"link_points_children,omitempty" json:"link_points_children,omitempty"`
	Props              map[string]any `toml:"props,omitempty" yaml:"props,omitempty" json:"props,omitempty"`
	Links              []Link         `toml:"links,omitempty" yaml:"links,omitempty" json:"links,omitempty"`
}

// Load reads a scene file. The format follows the extension.
func Load(path string) (*Scene, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "open scene %s", path)
	}
	defer f.Close()

	s, err := Decode(f, format)
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Decode reads a scene in the given format. Relative paths inside the
// scene resolve against the working directory until [Scene.SetDir] says
// otherwise.
func Decode(r io.Reader, format Format) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "read scene")
	}

	var s Scene
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&s)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode %s scene", format)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode writes the scene in the given format.
func (s *Scene) Encode(w io.Writer, format Format) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(s); err == nil {
			err = enc.Close()
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(s)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s scene: %w", format, err)
	}
	return nil
}

// Dir returns the directory relative paths resolve against.
func (s *Scene) Dir() string { return s.dir }

// SetDir sets the directory relative paths resolve against.
func (s *Scene) SetDir(dir string) { s.dir = dir }

func (s *Scene) validate() error {
	if s.Viewport.Width < 0 || s.Viewport.Height < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "viewport must not be negative (%gx%g)", s.Viewport.Width, s.Viewport.Height)
	}
	if (s.Viewport.Width == 0 || s.Viewport.Height == 0) && s.CostImage == "" {
		return errors.New(errors.ErrCodeInvalidScene, "scene needs a viewport or a cost image")
	}
	if s.CellSize < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "cell size must not be negative")
	}
	for i, b := range s.Busy {
		if b.W <= 0 || b.H <= 0 {
			return errors.New(errors.ErrCodeInvalidScene, "busy area %d has no size", i)
		}
	}
	return nil
}
