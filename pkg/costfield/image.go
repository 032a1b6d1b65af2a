package costfield

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
)

// DefaultMaxPenalty is the penalty assigned to a fully saturated cell when
// converting images.
const DefaultMaxPenalty = 64

// MaxImagePixels bounds the cost images [Decode] accepts.
const MaxImagePixels = 8192 * 8192

// FromImage builds a field from a busy-ness map of the desktop: bright
// pixels are busy, dark pixels are free. The image is downsampled to one
// pixel per cell and the luminance scaled to [0, maxPenalty].
func FromImage(img image.Image, cellSize float64, maxPenalty uint32) (*Field, error) {
	b := img.Bounds()
	f, err := ForViewport(float64(b.Dx()), float64(b.Dy()), cellSize)
	if err != nil {
		return nil, err
	}

	small := image.NewGray(image.Rect(0, 0, f.Cols, f.Rows))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	for x := 0; x < f.Cols; x++ {
		for y := 0; y < f.Rows; y++ {
			lum := float64(small.GrayAt(x, y).Y) / math.MaxUint8
			f.Set(x, y, uint32(math.Round(lum*float64(maxPenalty))))
		}
	}
	return f, nil
}

// Decode reads a PNG or JPEG busy-ness map and converts it with [FromImage].
//
// Images larger than MaxImagePixels are rejected from their header, before
// any pixel is decoded.
func Decode(r io.Reader, cellSize float64, maxPenalty uint32) (*Field, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cost image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cost image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxImagePixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d image exceeds %d pixels", ErrInvalidSize, cfg.Width, cfg.Height, MaxImagePixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cost image: %w", err)
	}
	return FromImage(img, cellSize, maxPenalty)
}

// Image renders the field as a grayscale image, one pixel per cell, scaled
// so that maxPenalty maps to white. Used for debugging overlays.
func (f *Field) Image(maxPenalty uint32) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Cols, f.Rows))
	if maxPenalty == 0 {
		maxPenalty = 1
	}
	for x := 0; x < f.Cols; x++ {
		for y := 0; y < f.Rows; y++ {
			v := min(f.At(x, y), maxPenalty)
			img.SetGray(x, y, color.Gray{Y: uint8(uint64(v) * math.MaxUint8 / uint64(maxPenalty))})
		}
	}
	return img
}
