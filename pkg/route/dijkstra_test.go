package route

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/linkroute/pkg/costfield"
)

func newField(t *testing.T, cols, rows int) *costfield.Field {
	t.Helper()
	f, err := costfield.New(cols, rows, 10)
	require.NoError(t, err)
	return f
}

func randomField(t *testing.T, cols, rows int, seed uint64) *costfield.Field {
	t.Helper()
	f := newField(t, cols, rows)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b9))
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			f.Set(x, y, uint32(rng.IntN(20)))
		}
	}
	return f
}

func TestSearchStepCosts(t *testing.T) {
	g := Search(newField(t, 3, 3), 1, 1)

	want := [3][3]uint32{
		{3, 2, 3},
		{2, 0, 2},
		{3, 2, 3},
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			assert.Equal(t, want[y][x], g.Cost(x, y), "cell (%d, %d)", x, y)
			assert.Equal(t, StatusVisited, g.At(x, y).Status())
		}
	}
}

func TestSearchAddsPenaltyOfEnteredCell(t *testing.T) {
	f := newField(t, 3, 1)
	f.Set(1, 0, 10)
	f.Set(0, 0, 99) // seed penalty is never paid

	g := Search(f, 0, 0)
	assert.Equal(t, uint32(0), g.Cost(0, 0))
	assert.Equal(t, uint32(12), g.Cost(1, 0))
	assert.Equal(t, uint32(14), g.Cost(2, 0))
}

func TestSearchClampsSeed(t *testing.T) {
	g := Search(newField(t, 4, 2), 10, -3)
	assert.Equal(t, 3, g.SeedX)
	assert.Equal(t, 0, g.SeedY)
	assert.Equal(t, uint32(0), g.Cost(3, 0))
}

func TestSearchWallIsUnreachable(t *testing.T) {
	f := newField(t, 5, 3)
	for y := 0; y < 3; y++ {
		f.Set(2, y, MaxCost)
	}
	g := Search(f, 0, 1)
	assert.False(t, g.At(2, 1).Reached())
	assert.False(t, g.At(4, 1).Reached())
	assert.Equal(t, 6, g.Reached())
}

func TestSearchVisitedCellsNeverChange(t *testing.T) {
	f := randomField(t, 12, 9, 7)
	s := newSearcher(f, 5, 4)

	settled := make(map[[2]int]Cell)
	for steps := 0; s.step(); steps++ {
		require.Less(t, steps, f.Len()+1, "search settles each cell once")
		for k, c := range settled {
			require.Equal(t, c, s.grid.At(k[0], k[1]), "settled cell (%d, %d) changed", k[0], k[1])
		}
		for x := 0; x < f.Cols; x++ {
			for y := 0; y < f.Rows; y++ {
				if c := s.grid.At(x, y); c.Status() == StatusVisited {
					settled[[2]int{x, y}] = c
				}
			}
		}
	}
	assert.Len(t, settled, f.Len())
}

func TestParentChainsTerminate(t *testing.T) {
	f := randomField(t, 15, 11, 42)
	g := Search(f, 3, 8)

	for x := 0; x < f.Cols; x++ {
		for y := 0; y < f.Rows; y++ {
			cx, cy := x, y
			for hops := 0; g.Cost(cx, cy) != 0; hops++ {
				require.Less(t, hops, f.Len(), "chain from (%d, %d) loops", x, y)
				dx, dy := g.At(cx, cy).Parent()
				require.False(t, dx == 0 && dy == 0)
				nx, ny := cx+dx, cy+dy
				require.Less(t, g.Cost(nx, ny), g.Cost(cx, cy), "cost must strictly decrease")
				cx, cy = nx, ny
			}
			assert.Equal(t, []int{3, 8}, []int{cx, cy})
		}
	}
}
