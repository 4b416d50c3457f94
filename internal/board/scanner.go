package board

// Status classifies a board after a scan.
type Status uint8

const (
	Playing Status = iota
	Winner
	Draw
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Winner:
		return "winner"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further move can change the outcome.
func (s Status) IsTerminal() bool {
	return s == Winner || s == Draw
}

// Result is the outcome of a scan. Marker and Run are set only for Winner;
// Run lists the cells of the winning line starting at its origin.
type Result struct {
	Status Status
	Marker Marker
	Run    []int
}

// Scanner looks for runs of the board target along its Directions.
// The zero value scans AllDirections.
type Scanner struct {
	Directions []Direction
}

var defaultScanner = Scanner{Directions: AllDirections}

// Scan walks every occupied cell in row-major order and every direction in
// list order; the first complete run found decides the winner.
func (that Scanner) Scan(b *Board) Result {
	directions := that.Directions
	if len(directions) == 0 {
		directions = AllDirections
	}

	for index, marker := range b.cells {
		if marker == Empty {
			continue
		}

		for _, d := range directions {
			if run, ok := runFrom(b, index, d); ok {
				return Result{Status: Winner, Marker: marker, Run: run}
			}
		}
	}

	if b.IsFull() {
		return Result{Status: Draw}
	}

	return Result{Status: Playing}
}

// CheckWinner is Scan reduced to its status.
func (that Scanner) CheckWinner(b *Board) Status {
	return that.Scan(b).Status
}

// runFrom walks target-1 steps from origin and reports whether every step
// stays on the board with the origin's marker.
func runFrom(b *Board, origin int, d Direction) ([]int, bool) {
	marker := b.cells[origin]
	run := make([]int, 1, min(b.target, max(b.rows, b.cols)))
	run[0] = origin

	next := origin
	for step := 1; step < b.target; step++ {
		var ok bool
		next, ok = Neighbor(b, next, d)
		if !ok || b.cells[next] != marker {
			return nil, false
		}
		run = append(run, next)
	}

	return run, true
}

// Scan checks b in all eight directions.
func Scan(b *Board) Result {
	return defaultScanner.Scan(b)
}

// CheckWinner checks b in all eight directions.
func CheckWinner(b *Board) Status {
	return defaultScanner.CheckWinner(b)
}
