package route

import (
	"github.com/matzehuels/linkroute/pkg/costfield"
)

// Grid is the search state of one region over a cost field, in the same
// column-major layout as the field.
type Grid struct {
	Cols  int
	Rows  int
	SeedX int
	SeedY int

	cells []Cell
}

// NewGrid returns a grid of unreached cells matching the field's shape.
func NewGrid(field *costfield.Field) *Grid {
	g := &Grid{Cols: field.Cols, Rows: field.Rows, cells: make([]Cell, field.Cols*field.Rows)}
	for i := range g.cells {
		g.cells[i] = UnreachedCell
	}
	return g
}

// In reports whether (x, y) lies inside the grid.
func (g *Grid) In(x, y int) bool { return x >= 0 && y >= 0 && x < g.Cols && y < g.Rows }

// At returns the cell at (x, y). Callers must stay in range.
func (g *Grid) At(x, y int) Cell { return g.cells[x*g.Rows+y] }

// Cost returns the path cost of cell (x, y).
func (g *Grid) Cost(x, y int) uint32 { return g.At(x, y).Cost() }

func (g *Grid) set(x, y int, c Cell) { g.cells[x*g.Rows+y] = c }

// Reached counts the cells with a finite cost.
func (g *Grid) Reached() int {
	n := 0
	for _, c := range g.cells {
		if c.Reached() {
			n++
		}
	}
	return n
}
