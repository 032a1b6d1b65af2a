package route

import "math"

// Meeting is the cell where the paths of a group join.
type Meeting struct {
	X, Y int

	// Sum is the summed path cost over all grids. Unreached cells count
	// as MaxCost, so the sum stays finite.
	Sum uint64

	// Worst is the largest single path cost at the cell.
	Worst uint32

	// Reachable is false when at least one grid never reached the cell.
	Reachable bool
}

// Meet picks the cell minimising the summed cost of grids. Among equal sums
// the cell whose most expensive path is cheapest wins, which places the fork
// midway between equidistant targets. Remaining ties go to the first cell in
// a scan with x in the outer loop and y in the inner loop.
//
// All grids must share the same shape. Meet returns false for no grids.
func Meet(grids []*Grid) (Meeting, bool) {
	if len(grids) == 0 {
		return Meeting{}, false
	}
	cols, rows := grids[0].Cols, grids[0].Rows

	best := Meeting{Sum: math.MaxUint64, Worst: math.MaxUint32}
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			var sum uint64
			var worst uint32
			reachable := true
			for _, g := range grids {
				c := g.Cost(x, y)
				sum += uint64(c)
				worst = max(worst, c)
				if c >= MaxCost {
					reachable = false
				}
			}
			if sum < best.Sum || (sum == best.Sum && worst < best.Worst) {
				best = Meeting{X: x, Y: y, Sum: sum, Worst: worst, Reachable: reachable}
			}
		}
	}
	return best, true
}
