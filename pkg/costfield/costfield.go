// Package costfield holds the per-cell routing penalty of the desktop.
//
// A [Field] covers the desktop with square cells of a fixed pitch. Each cell
// carries a non-negative penalty describing how visually busy that part of
// the screen is; the router adds it to the step cost of every path entering
// the cell. Generating the penalties from live desktop content belongs to
// the window monitor. This package only stores them, loads them from images
// and marks rectangles by hand for scenes and tests.
package costfield

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/linkroute/pkg/geom"
)

// DefaultCellSize is the cell pitch in pixels used when none is configured.
const DefaultCellSize = 32

// MaxCells bounds the cells of one field. Every routing target searches a
// grid of the same shape, so the limit also bounds the router's memory.
const MaxCells = 1 << 22

// ErrInvalidSize is returned for fields without cells, with a non-positive
// pitch or with more than MaxCells cells.
var ErrInvalidSize = errors.New("invalid cost field size")

// Field is a Cols × Rows grid of penalties at CellSize pixels per cell.
// The zero value is an empty field.
type Field struct {
	Cols     int
	Rows     int
	CellSize float64

	costs []uint32 // column-major: index x*Rows + y
}

// New creates a zero-penalty field.
func New(cols, rows int, cellSize float64) (*Field, error) {
	if cols <= 0 || rows <= 0 || !(cellSize > 0) {
		return nil, fmt.Errorf("%w: %dx%d cells of %.1fpx", ErrInvalidSize, cols, rows, cellSize)
	}
	if cols > MaxCells/rows {
		return nil, fmt.Errorf("%w: %dx%d cells exceed the limit of %d", ErrInvalidSize, cols, rows, MaxCells)
	}
	return &Field{Cols: cols, Rows: rows, CellSize: cellSize, costs: make([]uint32, cols*rows)}, nil
}

// ForViewport creates a zero-penalty field covering a width × height pixel
// viewport, rounding the cell count up.
func ForViewport(width, height, cellSize float64) (*Field, error) {
	cols, rows, err := Dims(width, height, cellSize)
	if err != nil {
		return nil, err
	}
	return New(cols, rows, cellSize)
}

// Dims returns the cell counts of a width × height viewport without
// allocating, failing with ErrInvalidSize where [New] would.
func Dims(width, height, cellSize float64) (cols, rows int, err error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return 0, 0, fmt.Errorf("%w: cell size %g", ErrInvalidSize, cellSize)
	}
	c, r := math.Ceil(width/cellSize), math.Ceil(height/cellSize)
	// Compare as floats: huge or NaN sizes must not reach an int conversion.
	if !(c >= 1 && r >= 1) || c*r > MaxCells {
		return 0, 0, fmt.Errorf("%w: %gx%g viewport at %gpx cells (want 1 to %d cells)", ErrInvalidSize, width, height, cellSize, MaxCells)
	}
	return int(c), int(r), nil
}

// Clamp moves a cell coordinate into range.
func (f *Field) Clamp(x, y int) (int, int) {
	return min(max(x, 0), f.Cols-1), min(max(y, 0), f.Rows-1)
}

// At returns the penalty of cell (x, y). Out-of-range coordinates are
// clamped into the grid.
func (f *Field) At(x, y int) uint32 {
	x, y = f.Clamp(x, y)
	return f.costs[x*f.Rows+y]
}

// Set stores the penalty of cell (x, y). Out-of-range cells are ignored.
func (f *Field) Set(x, y int, cost uint32) {
	if x < 0 || y < 0 || x >= f.Cols || y >= f.Rows {
		return
	}
	f.costs[x*f.Rows+y] = cost
}

// Fill sets every cell to cost.
func (f *Field) Fill(cost uint32) {
	for i := range f.costs {
		f.costs[i] = cost
	}
}

// AddRect adds penalty to every cell overlapping r (in pixels). Sums
// saturate instead of wrapping.
func (f *Field) AddRect(r geom.Rect, penalty uint32) {
	if r.Empty() {
		return
	}
	x0, y0 := f.Cell(r.Min)
	x1, y1 := f.Cell(geom.Pt(r.Max.X-1e-9, r.Max.Y-1e-9))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			i := x*f.Rows + y
			if sum := uint64(f.costs[i]) + uint64(penalty); sum > math.MaxUint32 {
				f.costs[i] = math.MaxUint32
			} else {
				f.costs[i] = uint32(sum)
			}
		}
	}
}

// Cell returns the clamped cell containing the pixel position p.
func (f *Field) Cell(p geom.Point) (int, int) {
	return f.Clamp(int(math.Floor(p.X/f.CellSize)), int(math.Floor(p.Y/f.CellSize)))
}

// CellCenter returns the pixel position of the center of cell (x, y).
func (f *Field) CellCenter(x, y int) geom.Point {
	return geom.Pt((float64(x)+0.5)*f.CellSize, (float64(y)+0.5)*f.CellSize)
}

// Bounds returns the pixel rectangle covered by the field.
func (f *Field) Bounds() geom.Rect {
	return geom.R(0, 0, float64(f.Cols)*f.CellSize, float64(f.Rows)*f.CellSize)
}

// Len returns the number of cells.
func (f *Field) Len() int { return len(f.costs) }

// MarshalBinary encodes the field as a little-endian header (cols, rows,
// cell size) followed by the penalties.
func (f *Field) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 16+4*len(f.costs))
	binary.LittleEndian.PutUint32(buf[0:], uint32(f.Cols))
	binary.LittleEndian.PutUint32(buf[4:], uint32(f.Rows))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(f.CellSize))
	for i, c := range f.costs {
		binary.LittleEndian.PutUint32(buf[16+4*i:], c)
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (f *Field) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return fmt.Errorf("cost field: short header (%d bytes)", len(data))
	}
	cols := int(binary.LittleEndian.Uint32(data[0:]))
	rows := int(binary.LittleEndian.Uint32(data[4:]))
	cell := math.Float64frombits(binary.LittleEndian.Uint64(data[8:]))
	if cols <= 0 || rows <= 0 || !(cell > 0) || cols > MaxCells/rows {
		return ErrInvalidSize
	}
	if want := 16 + 4*cols*rows; len(data) != want {
		return fmt.Errorf("cost field: %d bytes, want %d", len(data), want)
	}
	f.Cols, f.Rows, f.CellSize = cols, rows, cell
	f.costs = make([]uint32, cols*rows)
	for i := range f.costs {
		f.costs[i] = binary.LittleEndian.Uint32(data[16+4*i:])
	}
	return nil
}
