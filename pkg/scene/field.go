package scene

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/errors"
	"github.com/matzehuels/linkroute/pkg/geom"
	"github.com/matzehuels/linkroute/pkg/httputil"
)

// CellSizeOr returns the scene's cell size, or def when the scene does not
// set one.
func (s *Scene) CellSizeOr(def float64) float64 {
	if s.CellSize > 0 {
		return s.CellSize
	}
	return def
}

// Penalty returns the penalty of a white cost image pixel.
func (s *Scene) Penalty() uint32 {
	if s.MaxPenalty > 0 {
		return s.MaxPenalty
	}
	return costfield.DefaultMaxPenalty
}

// ViewportRect returns the viewport as a rectangle at the origin.
func (s *Scene) ViewportRect() geom.Rect {
	return geom.R(0, 0, s.Viewport.Width, s.Viewport.Height)
}

// ImagePath returns the cost image path resolved against Dir, or "" when
// the scene has none. Relative paths must stay below Dir. URLs are
// returned unchanged.
func (s *Scene) ImagePath() (string, error) {
	if s.CostImage == "" {
		return "", nil
	}
	if httputil.IsURL(s.CostImage) || filepath.IsAbs(s.CostImage) {
		return s.CostImage, nil
	}
	if err := errors.ValidatePath(filepath.ToSlash(s.CostImage)); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, s.CostImage), nil
}

// Field builds the cost field of the scene: the decoded cost image if
// there is one, otherwise an empty field covering the viewport, plus the
// busy areas.
func (s *Scene) Field(cellSize float64) (*costfield.Field, error) {
	cellSize = s.CellSizeOr(cellSize)

	path, err := s.ImagePath()
	if err != nil {
		return nil, err
	}
	var f *costfield.Field
	if httputil.IsURL(path) {
		return nil, errors.New(errors.ErrCodeUnsupported, "remote cost image %s must be fetched by the pipeline", path)
	}
	if path != "" {
		r, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cost image")
		}
		defer r.Close()
		f, err = costfield.Decode(r, cellSize, s.Penalty())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "cost image %s", s.CostImage)
		}
	} else {
		f, err = costfield.ForViewport(s.Viewport.Width, s.Viewport.Height, cellSize)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "viewport")
		}
	}
	s.ApplyBusy(f)
	return f, nil
}

// ApplyBusy adds the busy areas of the scene to f.
func (s *Scene) ApplyBusy(f *costfield.Field) {
	for _, b := range s.Busy {
		f.AddRect(b.Rect(), b.Penalty)
	}
}
