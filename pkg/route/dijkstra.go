package route

import (
	"container/heap"

	"github.com/matzehuels/linkroute/pkg/costfield"
)

// Step costs between 8-connected neighbours, roughly 2:3 ≈ 1:√2.
const (
	OrthogonalStep = 2
	DiagonalStep   = 3
)

// neighbours lists the 8 offsets in a fixed order so searches are
// reproducible.
var neighbours = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Search runs a single-source shortest-path search from cell (sx, sy) over
// field and returns the settled grid. The seed is clamped into the field.
// Entering a cell costs the step cost plus the cell's penalty.
func Search(field *costfield.Field, sx, sy int) *Grid {
	s := newSearcher(field, sx, sy)
	for s.step() {
	}
	return s.grid
}

// searcher is an in-progress search. A cell may appear in the queue more
// than once; stale entries are dropped when popped.
type searcher struct {
	field *costfield.Field
	grid  *Grid
	queue cellQueue
	seq   uint64
}

func newSearcher(field *costfield.Field, sx, sy int) *searcher {
	sx, sy = field.Clamp(sx, sy)
	g := NewGrid(field)
	g.SeedX, g.SeedY = sx, sy
	g.set(sx, sy, PackCell(0, StatusQueued, 0, 0))

	s := &searcher{field: field, grid: g}
	heap.Init(&s.queue)
	s.push(sx, sy, 0)
	return s
}

func (s *searcher) push(x, y int, cost uint32) {
	heap.Push(&s.queue, queueItem{x: x, y: y, cost: cost, seq: s.seq})
	s.seq++
}

// step settles at most one cell. It returns false once the frontier is
// empty.
func (s *searcher) step() bool {
	for s.queue.Len() > 0 {
		item := heap.Pop(&s.queue).(queueItem)
		cur := s.grid.At(item.x, item.y)
		if cur.Status() == StatusVisited || item.cost != cur.Cost() {
			continue
		}
		s.grid.set(item.x, item.y, cur.WithStatus(StatusVisited))
		s.relax(item.x, item.y, cur.Cost())
		return true
	}
	return false
}

func (s *searcher) relax(x, y int, cost uint32) {
	for _, d := range neighbours {
		nx, ny := x+d[0], y+d[1]
		if !s.grid.In(nx, ny) {
			continue
		}
		next := s.grid.At(nx, ny)
		if next.Status() == StatusVisited {
			continue
		}
		step := uint32(OrthogonalStep)
		if d[0] != 0 && d[1] != 0 {
			step = DiagonalStep
		}
		cand := saturatingAdd(saturatingAdd(cost, step), s.field.At(nx, ny))
		if cand >= next.Cost() {
			continue
		}
		s.grid.set(nx, ny, PackCell(cand, StatusQueued, -d[0], -d[1]))
		s.push(nx, ny, cand)
	}
}

type queueItem struct {
	x, y int
	cost uint32
	seq  uint64
}

// cellQueue is a min-heap on cost, FIFO among equal costs.
type cellQueue []queueItem

func (q cellQueue) Len() int { return len(q) }

func (q cellQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}

func (q cellQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *cellQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *cellQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
