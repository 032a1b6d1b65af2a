package route

// Cell is the per-cell search state packed into 32 bits:
//
//	bits 31-30  parent x offset, encoded -1,0,1 as 0,1,2
//	bits 29-28  parent y offset, same encoding
//	bits 27-26  search status
//	bits 25-0   accumulated path cost
//
// The parent offset points from the cell back toward the seed.
type Cell uint32

// MaxCost is the largest representable path cost. It doubles as the
// "unreached" sentinel: costs saturate here instead of wrapping.
const MaxCost = 0x03FFFFFF

const (
	costMask     = MaxCost
	statusShift  = 26
	statusMask   = 0x3 << statusShift
	parentYShift = 28
	parentXShift = 30
	parentYMask  = 0x3 << parentYShift
	parentXMask  = 0x3 << parentXShift
)

// Status is the search state of a cell.
type Status uint8

const (
	StatusNormal  Status = iota // not yet reached
	StatusQueued                // reached, waiting in the frontier
	StatusVisited               // settled; its cost is final
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusQueued:
		return "queued"
	case StatusVisited:
		return "visited"
	}
	return "invalid"
}

// UnreachedCell is the initial state of every cell: sentinel cost, no
// parent offset.
const UnreachedCell = Cell(MaxCost | 1<<parentXShift | 1<<parentYShift)

// PackCell builds a cell. The cost saturates at MaxCost and the parent
// offsets are clamped to [-1, 1].
func PackCell(cost uint32, status Status, dx, dy int) Cell {
	return Cell(0).WithCost(cost).WithStatus(status).WithParent(dx, dy)
}

// Cost returns the accumulated path cost.
func (c Cell) Cost() uint32 { return uint32(c) & costMask }

// Status returns the search status.
func (c Cell) Status() Status { return Status((uint32(c) & statusMask) >> statusShift) }

// Parent returns the offset to the neighbour this cell was reached from.
func (c Cell) Parent() (dx, dy int) {
	dx = int((uint32(c)&parentXMask)>>parentXShift) - 1
	dy = int((uint32(c)&parentYMask)>>parentYShift) - 1
	return dx, dy
}

// Reached reports whether the cell has a finite cost.
func (c Cell) Reached() bool { return c.Cost() < MaxCost }

// WithCost returns c with its cost replaced, saturating at MaxCost.
func (c Cell) WithCost(cost uint32) Cell {
	cost = min(cost, MaxCost)
	return Cell(uint32(c)&^costMask | cost)
}

// WithStatus returns c with its search status replaced.
func (c Cell) WithStatus(s Status) Cell {
	return Cell(uint32(c)&^statusMask | uint32(s&0x3)<<statusShift)
}

// WithParent returns c with its parent offset replaced. Offsets outside
// [-1, 1] are clamped.
func (c Cell) WithParent(dx, dy int) Cell {
	ex := uint32(min(max(dx, -1), 1) + 1)
	ey := uint32(min(max(dy, -1), 1) + 1)
	return Cell(uint32(c)&^(parentXMask|parentYMask) | ex<<parentXShift | ey<<parentYShift)
}

// saturatingAdd adds step costs without leaving the cost range.
func saturatingAdd(a, b uint32) uint32 {
	if s := uint64(a) + uint64(b); s < MaxCost {
		return uint32(s)
	}
	return MaxCost
}
