package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"slices"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/linkroute/pkg/costfield"
	"github.com/matzehuels/linkroute/pkg/geom"
)

// Supersampling factor. Shapes are rasterised this much larger and scaled
// down with Catmull-Rom.
const supersample = 4

// MaxPNGPixels bounds the output size of [RenderPNG].
const MaxPNGPixels = 8192 * 8192

// ErrImageTooLarge is returned when the requested PNG exceeds [MaxPNGPixels].
var ErrImageTooLarge = errors.New("png too large")

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorRegion     = color.RGBA{74, 144, 217, 255}
	colorRegionFill = color.RGBA{74, 144, 217, 31}
	colorCovered    = color.RGBA{153, 153, 153, 255}
	colorPath       = color.RGBA{217, 74, 74, 255}
	colorWindow     = color.RGBA{217, 144, 74, 255}
	colorAnchor     = color.RGBA{138, 74, 217, 255}
	colorLabel      = color.RGBA{51, 51, 51, 255}
)

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale       float64
	stroke      float64
	forkRadius  float64
	labels      bool
	transparent bool
	field       *costfield.Field
	maxPenalty  uint32
}

// WithPNGScale sets the pixels per viewport unit (default 1).
func WithPNGScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGStrokeWidth sets the trail width in viewport units (default 3).
func WithPNGStrokeWidth(w float64) PNGOption { return func(r *pngRenderer) { r.stroke = w } }

// WithPNGLabels draws region labels.
func WithPNGLabels() PNGOption { return func(r *pngRenderer) { r.labels = true } }

// WithTransparent leaves the background transparent so the image can be
// composited over a screenshot.
func WithTransparent() PNGOption { return func(r *pngRenderer) { r.transparent = true } }

// WithPNGCostField underlays the cost field, as [WithCostField] does for SVG.
func WithPNGCostField(f *costfield.Field, maxPenalty uint32) PNGOption {
	return func(r *pngRenderer) { r.field = f; r.maxPenalty = maxPenalty }
}

// RenderPNG rasterises the view. Unlike the SVG sink it needs no external
// tools.
func RenderPNG(v View, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, stroke: 3, forkRadius: 5}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid png scale %g", r.scale)
	}

	vp := v.Viewport
	fw, fh := math.Ceil(vp.Width()*r.scale), math.Ceil(vp.Height()*r.scale)
	if !(fw >= 1 && fh >= 1) {
		return nil, fmt.Errorf("empty viewport %vx%v", vp.Width(), vp.Height())
	}
	if fw*fh > MaxPNGPixels {
		return nil, fmt.Errorf("%w: %gx%g", ErrImageTooLarge, fw, fh)
	}
	w, h := int(fw), int(fh)

	c, err := newCanvas(vp, r.scale, w, h)
	if err != nil {
		return nil, err
	}
	if !r.transparent {
		draw.Draw(c.img, c.img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	}

	d := v.flatten()
	if r.field != nil {
		c.costField(r.field, r.maxPenalty)
	}
	for _, rg := range d.regions {
		stroke := colorRegion
		if rg.covered {
			stroke = colorCovered
		}
		if !rg.hidden {
			c.fillPolygon(rg.pts, colorRegionFill)
		}
		c.strokePolyline(append(slices.Clip(rg.pts), rg.pts[0]), 1, stroke, rg.hidden)
	}
	for _, p := range d.paths {
		col := colorPath
		switch {
		case p.anchor:
			col = colorAnchor
		case p.window:
			col = colorWindow
		}
		c.strokePolyline(p.pts, r.stroke, col, p.covered)
		if p.widen {
			c.fillCircle(p.pts[len(p.pts)-1], r.stroke*1.5, col)
		}
	}
	for _, f := range d.forks {
		col := colorPath
		if f.window {
			col = colorWindow
		}
		c.fillCircle(f.pos, r.forkRadius, col)
		if !f.reachable {
			c.fillCircle(f.pos, r.forkRadius*0.6, colorBackground)
		}
	}
	if r.labels {
		for _, rg := range d.regions {
			c.label(geom.BoundingBox(rg.pts).Center(), rg.name())
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), c.img, c.img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// canvas maps viewport coordinates onto a supersampled image.
type canvas struct {
	img    *image.RGBA
	ras    *vector.Rasterizer
	origin geom.Point
	k      float64 // pixels per viewport unit, supersampled
	face   font.Face
}

func newCanvas(vp geom.Rect, scale float64, w, h int) (*canvas, error) {
	w, h = w*supersample, h*supersample
	face, err := labelFace(11 * scale * supersample)
	if err != nil {
		return nil, err
	}
	return &canvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		ras:    vector.NewRasterizer(0, 0),
		origin: vp.Min,
		k:      scale * supersample,
		face:   face,
	}, nil
}

func (c *canvas) px(p geom.Point) (float32, float32) {
	q := p.Sub(c.origin).Scale(c.k)
	return float32(q.X), float32(q.Y)
}

// fill draws one closed shape. Every shape gets its own rasteriser pass,
// sized to the shape's pixel bounds, so that windings never cancel.
func (c *canvas) fill(pts []geom.Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	bb := geom.BoundingBox(pts)
	x0, y0 := c.px(bb.Min)
	x1, y1 := c.px(bb.Max)
	r := image.Rect(int(math.Floor(float64(x0))), int(math.Floor(float64(y0))),
		int(math.Ceil(float64(x1)))+1, int(math.Ceil(float64(y1)))+1).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}

	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	c.ras.Reset(r.Dx(), r.Dy())
	x, y := c.px(pts[0])
	c.ras.MoveTo(x-ox, y-oy)
	for _, p := range pts[1:] {
		x, y = c.px(p)
		c.ras.LineTo(x-ox, y-oy)
	}
	c.ras.ClosePath()
	c.ras.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

func (c *canvas) fillPolygon(pts []geom.Point, col color.Color) { c.fill(pts, col) }

func (c *canvas) fillCircle(center geom.Point, radius float64, col color.Color) {
	const steps = 32
	pts := make([]geom.Point, steps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / steps
		pts[i] = center.Add(geom.Pt(math.Cos(a), math.Sin(a)).Scale(radius))
	}
	c.fill(pts, col)
}

// strokePolyline draws pts as quads of the given width joined by round
// caps. Dashed lines alternate 6 units on, 4 off.
func (c *canvas) strokePolyline(pts []geom.Point, width float64, col color.Color, dashed bool) {
	if len(pts) < 2 {
		return
	}
	for _, seg := range dashes(pts, dashed) {
		for i := 1; i < len(seg); i++ {
			c.quad(seg[i-1], seg[i], width, col)
		}
		if !dashed {
			for _, p := range seg[1 : len(seg)-1] {
				c.fillCircle(p, width/2, col)
			}
		}
	}
	c.fillCircle(pts[0], width/2, col)
	c.fillCircle(pts[len(pts)-1], width/2, col)
}

func (c *canvas) quad(a, b geom.Point, width float64, col color.Color) {
	d := b.Sub(a).Normalize()
	if d.IsZero() {
		return
	}
	n := geom.Pt(-d.Y, d.X).Scale(width / 2)
	c.fill([]geom.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, col)
}

// dashes splits a polyline into dash runs. Solid lines are one run.
func dashes(pts []geom.Point, dashed bool) [][]geom.Point {
	if !dashed {
		return [][]geom.Point{pts}
	}
	const on, off = 6.0, 4.0
	var (
		out  [][]geom.Point
		cur  = []geom.Point{pts[0]}
		pen  = true
		left = on
	)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		for seg := a.Dist(b); seg > 0; {
			step := math.Min(seg, left)
			p := a.Lerp(b, step/seg)
			if pen {
				cur = append(cur, p)
			}
			a, seg, left = p, seg-step, left-step
			if left > 0 {
				continue
			}
			if pen {
				out = append(out, cur)
				cur = nil
				left = off
			} else {
				cur = []geom.Point{p}
				left = on
			}
			pen = !pen
		}
	}
	if pen && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func (c *canvas) costField(f *costfield.Field, maxPenalty uint32) {
	if maxPenalty == 0 {
		maxPenalty = costfield.DefaultMaxPenalty
	}
	for x := 0; x < f.Cols; x++ {
		for y := 0; y < f.Rows; y++ {
			v := f.At(x, y)
			if v == 0 {
				continue
			}
			a := uint8(min(float64(v)/float64(maxPenalty), 1) * 127)
			x0, y0 := c.px(geom.Pt(float64(x)*f.CellSize, float64(y)*f.CellSize))
			x1, y1 := c.px(geom.Pt(float64(x+1)*f.CellSize, float64(y+1)*f.CellSize))
			r := image.Rect(int(x0), int(y0), int(x1), int(y1))
			draw.Draw(c.img, r, image.NewUniform(color.NRGBA{0, 0, 0, a}), image.Point{}, draw.Over)
		}
	}
}

func (c *canvas) label(at geom.Point, text string) {
	x, y := c.px(at)
	d := font.Drawer{Dst: c.img, Src: image.NewUniform(colorLabel), Face: c.face}
	w := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(x*64) - w/2,
		Y: fixed.Int26_6(y*64) + c.face.Metrics().Ascent/2,
	}
	d.DrawString(text)
}

var parseGoRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

func labelFace(size float64) (font.Face, error) {
	fnt, err := parseGoRegular()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}
