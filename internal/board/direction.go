package board

// Direction is one of the eight principal moves on the grid.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
	UpLeft
	UpRight
	DownLeft
	DownRight
)

var (
	// AllDirections is the scan order used for N×M boards.
	AllDirections = []Direction{Up, Down, Left, Right, UpLeft, UpRight, DownLeft, DownRight}

	// ForwardDirections finds every line from one of its ends, which is enough for 3×3.
	ForwardDirections = []Direction{Down, Right, DownRight, DownLeft}
)

type delta struct {
	row int
	col int
}

var deltas = [...]delta{
	Up:        {-1, 0},
	Down:      {1, 0},
	Left:      {0, -1},
	Right:     {0, 1},
	UpLeft:    {-1, -1},
	UpRight:   {-1, 1},
	DownLeft:  {1, -1},
	DownRight: {1, 1},
}

var names = [...]string{
	Up:        "up",
	Down:      "down",
	Left:      "left",
	Right:     "right",
	UpLeft:    "up_left",
	UpRight:   "up_right",
	DownLeft:  "down_left",
	DownRight: "down_right",
}

func (d Direction) String() string {
	if int(d) < len(names) {
		return names[d]
	}

	return "unknown"
}

// Delta returns the row and column offsets of one step in d.
func (d Direction) Delta() (int, int) {
	return deltas[d].row, deltas[d].col
}

// IsDiagonal reports whether d moves on both axes.
func (d Direction) IsDiagonal() bool {
	return d >= UpLeft && d <= DownRight
}

// components splits a diagonal into its vertical and horizontal moves.
func (d Direction) components() (Direction, Direction) {
	switch d {
	case UpLeft:
		return Up, Left
	case UpRight:
		return Up, Right
	case DownLeft:
		return Down, Left
	default:
		return Down, Right
	}
}

// Neighbor returns the index one step from index in d, or false when the step
// leaves the grid. A diagonal is valid only when both of its orthogonal moves
// are valid from the same origin.
func Neighbor(b *Board, index int, d Direction) (int, bool) {
	if !b.Contains(index) || int(d) >= len(deltas) {
		return 0, false
	}

	if d.IsDiagonal() {
		vertical, horizontal := d.components()
		if _, ok := Neighbor(b, index, vertical); !ok {
			return 0, false
		}
		if _, ok := Neighbor(b, index, horizontal); !ok {
			return 0, false
		}
	}

	row, col := b.Position(index)
	dRow, dCol := d.Delta()
	row, col = row+dRow, col+dCol

	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return 0, false
	}

	return b.Index(row, col), true
}
