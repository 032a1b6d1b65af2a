package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/link"
)

func sample() *Scene {
	return &Scene{
		Name:     "demo",
		Viewport: Size{Width: 640, Height: 480},
		Busy:     []Busy{{X: 0, Y: 0, W: 64, H: 64, Penalty: 9}},
		Links: []Link{{
			ID:    "query",
			Props: map[string]any{"always-route": true},
			Regions: []Region{
				{
					ID:       "editor",
					Vertices: []geom.Point{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 30}},
					Props:    map[string]any{"hidden": true},
				},
				{
					ID:         "browser",
					Vertices:   []geom.Point{{X: 300, Y: 200}, {X: 400, Y: 200}},
					LinkPoints: []geom.Point{{X: 350, Y: 200}},
					Links: []Link{{
						ID:      "tabs",
						Regions: []Region{{ID: "tab", Vertices: []geom.Point{{X: 310, Y: 220}}}},
					}},
				},
			},
		}},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, sample().Encode(&buf, format))

			got, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, sample(), got)
		})
	}
}

func TestBuild(t *testing.T) {
	roots, err := sample().Build()
	require.NoError(t, err)
	require.Len(t, roots, 1)

	q := roots[0]
	assert.Equal(t, "query", q.ID)
	assert.True(t, q.AlwaysRoute())
	require.Len(t, q.Nodes(), 2)

	editor, browser := q.Nodes()[0], q.Nodes()[1]
	assert.Equal(t, "editor", editor.ID)
	assert.True(t, editor.Flag(link.PropHidden))
	assert.Equal(t, []geom.Point{{X: 350, Y: 200}}, browser.LinkPoints())
	assert.Equal(t, editor.Vertices(), editor.LinkPoints(), "link points fall back to vertices")

	require.Len(t, browser.Children(), 1)
	tabs := browser.Children()[0]
	assert.Equal(t, "tabs", tabs.ID)
	assert.Same(t, browser, tabs.Parent())
	assert.Equal(t, 1, tabs.Depth())
}

func TestBuildRejectsBadIDs(t *testing.T) {
	s := sample()
	s.Links[0].Regions[1].ID = "editor"
	_, err := s.Build()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScene))
	assert.Contains(t, err.Error(), "duplicate")

	s = sample()
	s.Links[0].ID = "<svg>"
	_, err = s.Build()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScene))
}

func TestDecodeValidates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no viewport", `{"links": []}`},
		{"negative viewport", `{"viewport": {"width": -1, "height": 10}}`},
		{"empty busy area", `{"viewport": {"width": 10, "height": 10}, "busy": [{"x": 1, "y": 1, "w": 0, "h": 3}]}`},
		{"unknown field", `{"viewport": {"width": 10, "height": 10}, "colour": "red"}`},
		{"broken json", `{"viewport": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), FormatJSON)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidScene), "got %v", err)
		})
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.toml":     FormatTOML,
		"b.yml":      FormatYAML,
		"dir/c.YAML": FormatYAML,
		"scene.json": FormatJSON,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("scene.xml")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	doc := `
name: yaml scene
viewport: {width: 320, height: 160}
links:
  - id: pair
    regions:
      - id: left
        vertices: [{x: 40, y: 40}]
        props: {covering-wid: 4}
      - id: right
        vertices: [{x: 280, y: 40}]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	roots, err := s.Build()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), roots[0].Nodes()[0].WindowID())

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestField(t *testing.T) {
	s := sample()
	f, err := s.Field(32)
	require.NoError(t, err)

	assert.Equal(t, 20, f.Cols)
	assert.Equal(t, 15, f.Rows)
	assert.Equal(t, uint32(9), f.At(1, 1))
	assert.Equal(t, uint32(0), f.At(2, 2))

	s.CellSize = 64
	f, err = s.Field(32)
	require.NoError(t, err)
	assert.Equal(t, 10, f.Cols, "scene cell size wins")
}

func TestImagePath(t *testing.T) {
	s := sample()
	s.SetDir("/scenes")

	p, err := s.ImagePath()
	require.NoError(t, err)
	assert.Empty(t, p)

	s.CostImage = "busy.png"
	p, err = s.ImagePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/scenes", "busy.png"), p)

	s.CostImage = "../secret.png"
	_, err = s.ImagePath()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

func TestExampleScenes(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.*"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			s, err := Load(p)
			require.NoError(t, err)
			roots, err := s.Build()
			require.NoError(t, err)
			assert.NotEmpty(t, roots)

			f, err := s.Field(16)
			require.NoError(t, err)
			assert.Positive(t, f.Len())
		})
	}
}
