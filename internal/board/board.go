package board

import (
	"errors"
	"fmt"
)

// Empty marks a cell nobody has played yet.
const Empty Marker = ""

// MaxCells caps rows*cols so a board always fits comfortably in memory.
const MaxCells = 1 << 20

var (
	ErrInvalidDimensions = errors.New("board dimensions must be positive")
	ErrInvalidTarget     = errors.New("run target must be positive")
	ErrCellCount         = errors.New("cell count does not match board dimensions")
	ErrBoardTooLarge     = errors.New("board has too many cells")
)

// Marker is the symbol occupying a cell: Empty or a player identifier.
type Marker = string

// Board is a flat rows*cols grid addressed as row*cols + col.
type Board struct {
	rows   int
	cols   int
	target int
	cells  []Marker
}

// New returns an empty board. A target of N means N same-marker cells in a line win.
func New(rows, cols, target int) (*Board, error) {
	if err := validate(rows, cols, target); err != nil {
		return nil, err
	}

	return &Board{
		rows:   rows,
		cols:   cols,
		target: target,
		cells:  make([]Marker, rows*cols),
	}, nil
}

// FromCells restores a board from stored cells. The slice is copied.
func FromCells(rows, cols, target int, cells []Marker) (*Board, error) {
	if err := validate(rows, cols, target); err != nil {
		return nil, err
	}

	if len(cells) != rows*cols {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCellCount, len(cells), rows*cols)
	}

	b := &Board{
		rows:   rows,
		cols:   cols,
		target: target,
		cells:  make([]Marker, len(cells)),
	}
	copy(b.cells, cells)

	return b, nil
}

func validate(rows, cols, target int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}

	// rows > MaxCells/cols is rows*cols > MaxCells without the overflow
	if rows > MaxCells/cols {
		return fmt.Errorf("%w: %dx%d, max %d cells", ErrBoardTooLarge, rows, cols, MaxCells)
	}

	if target < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidTarget, target)
	}

	return nil
}

// Rows, Cols and Target return the dimensions the board was built with.
func (that *Board) Rows() int   { return that.rows }
func (that *Board) Cols() int   { return that.cols }
func (that *Board) Target() int { return that.target }

// Len is the number of cells, rows*cols.
func (that *Board) Len() int { return len(that.cells) }

// Contains reports whether index addresses a cell of the board.
func (that *Board) Contains(index int) bool {
	return index >= 0 && index < len(that.cells)
}

// Index converts a (row, col) pair into a flat index. It does not check bounds.
func (that *Board) Index(row, col int) int {
	return row*that.cols + col
}

// Position converts a flat index into its (row, col) pair.
func (that *Board) Position(index int) (int, int) {
	return index / that.cols, index % that.cols
}

// At returns the marker at index. Callers must pass a valid index.
func (that *Board) At(index int) Marker {
	return that.cells[index]
}

// Set places marker at index. Callers must pass a valid index.
func (that *Board) Set(index int, marker Marker) {
	that.cells[index] = marker
}

// Cells returns a copy of the cells in row-major order.
func (that *Board) Cells() []Marker {
	cells := make([]Marker, len(that.cells))
	copy(cells, that.cells)

	return cells
}

// IsFull reports whether no cell is Empty.
func (that *Board) IsFull() bool {
	for _, cell := range that.cells {
		if cell == Empty {
			return false
		}
	}

	return true
}

// EmptyCells lists the indexes of empty cells in row-major order.
func (that *Board) EmptyCells() []int {
	var free []int
	for i, cell := range that.cells {
		if cell == Empty {
			free = append(free, i)
		}
	}

	return free
}

// DropRow returns the lowest empty row of col, where a dropped disc lands.
// It reports false when the column is full or out of range.
func (that *Board) DropRow(col int) (int, bool) {
	if col < 0 || col >= that.cols {
		return 0, false
	}

	for row := that.rows - 1; row >= 0; row-- {
		if that.cells[that.Index(row, col)] == Empty {
			return row, true
		}
	}

	return 0, false
}

// OpenColumns lists the columns that still accept a disc.
func (that *Board) OpenColumns() []int {
	var open []int
	for col := 0; col < that.cols; col++ {
		if that.cells[col] == Empty {
			open = append(open, col)
		}
	}

	return open
}
