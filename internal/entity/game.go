package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
	"github.com/rocketscienceinc/inarow-backend/internal/board"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = board.Empty
)

type Kind string

const (
	KindInARow    Kind = "in_a_row"
	KindTicTacToe Kind = "tic_tac_toe"
)

var (
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrUnknownGameStatus = errors.New("unknown game status")

	ticTacToeSettings = Settings{Rows: 3, Cols: 3, Target: 3, Players: 2}
	ticTacToeMarks    = []string{PlayerX, PlayerO}
)

func (k Kind) Validate() error {
	switch k {
	case KindInARow, KindTicTacToe:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownGameKind, string(k))
	}
}

type Game struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Settings   Settings  `json:"settings"`
	Board      []string  `json:"board"`
	Marks      []string  `json:"marks"`
	Turn       string    `json:"player_turn"`
	Winner     string    `json:"winner"`
	WinningRun []int     `json:"winning_run,omitempty"`
	Status     string    `json:"status"`
	Players    []*Player `json:"players,omitempty"`
	WithBot    bool      `json:"with_bot,omitempty"`
}

// NewGame builds a waiting game. Tic-Tac-Toe ignores settings and always
// plays 3x3 with X and O.
func NewGame(id string, kind Kind, settings Settings) (*Game, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	marks := ticTacToeMarks
	if kind == KindTicTacToe {
		settings = ticTacToeSettings
	} else {
		if err := settings.Validate(); err != nil {
			return nil, err
		}
		marks = PlayerColors[:settings.Players]
	}

	game := &Game{
		ID:       id,
		Kind:     kind,
		Settings: settings,
		Marks:    append([]string(nil), marks...),
		Status:   StatusWaiting,
	}
	game.Reset()

	return game, nil
}

// Reset recreates the board and gives the first move back to the first mark.
func (that *Game) Reset() {
	that.Board = make([]string, that.Settings.Rows*that.Settings.Cols)
	that.Winner = ""
	that.WinningRun = nil
	that.Turn = that.Marks[0]

	if that.IsFull() {
		that.Status = StatusOngoing
	} else {
		that.Status = StatusWaiting
	}
}

func (that *Game) board() (*board.Board, error) {
	b, err := board.FromCells(that.Settings.Rows, that.Settings.Cols, that.Settings.Target, that.Board)
	if err != nil {
		return nil, fmt.Errorf("corrupted board of game %s: %w", that.ID, err)
	}

	return b, nil
}

func (that *Game) scanner() board.Scanner {
	if that.Kind == KindTicTacToe {
		return board.Scanner{Directions: board.ForwardDirections}
	}

	return board.Scanner{Directions: board.AllDirections}
}

// DetermineGameResult scans the board without changing the game.
func (that *Game) DetermineGameResult() (board.Result, error) {
	b, err := that.board()
	if err != nil {
		return board.Result{}, err
	}

	return that.scanner().Scan(b), nil
}

// MakeTurn plays mark at cell. In A Row drops the disc into the column of
// cell; Tic-Tac-Toe takes the cell itself.
func (that *Game) MakeTurn(mark string, cell int) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	b, err := that.board()
	if err != nil {
		return err
	}

	index := cell
	if that.Kind == KindInARow {
		_, col := b.Position(cell)
		row, ok := b.DropRow(col)
		if !ok {
			return fmt.Errorf("%w: column %d", apperror.ErrColumnFull, col)
		}
		index = b.Index(row, col)
	} else if b.At(cell) != EmptyCell {
		return apperror.ErrCellOccupied
	}

	b.Set(index, mark)
	that.Board = b.Cells()

	that.updateGameState(that.scanner().Scan(b))

	return nil
}

func (that *Game) updateGameState(result board.Result) {
	switch result.Status {
	case board.Winner:
		that.Winner = result.Marker
		that.WinningRun = result.Run
		that.Status = StatusFinished
		that.Turn = ""
	case board.Draw:
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = ""
	default:
		that.Turn = that.nextMark(that.Turn)
	}
}

func (that *Game) nextMark(mark string) string {
	for i, m := range that.Marks {
		if m == mark {
			return that.Marks[(i+1)%len(that.Marks)]
		}
	}

	return that.Marks[0]
}

// LegalMoves lists the cells a move can be played at: one cell per open
// column for In A Row, every empty cell for Tic-Tac-Toe.
func (that *Game) LegalMoves() []int {
	b, err := that.board()
	if err != nil {
		return nil
	}

	if that.Kind == KindInARow {
		return b.OpenColumns()
	}

	return b.EmptyCells()
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// IsFull reports whether every mark has a player.
func (that *Game) IsFull() bool {
	return len(that.Players) >= len(that.Marks)
}

// FreeMark returns the first mark no player holds yet.
func (that *Game) FreeMark() (string, bool) {
	for _, mark := range that.Marks {
		if that.PlayerByMark(mark) == nil {
			return mark, true
		}
	}

	return "", false
}

func (that *Game) PlayerByMark(mark string) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

// IsSeated reports whether player holds the seat of its own mark.
func (that *Game) IsSeated(player *Player) bool {
	seated := that.PlayerByMark(player.Mark)

	return seated != nil && seated.ID == player.ID
}

// CurrentMark returns the mark to move, empty once the game is finished.
func (that *Game) CurrentMark() string {
	return that.Turn
}

// CurrentPlayer returns the player to move, nil when the game is not ongoing.
func (that *Game) CurrentPlayer() *Player {
	if !that.IsOngoing() {
		return nil
	}

	return that.PlayerByMark(that.Turn)
}

// AddPlayer seats player on the next free mark and starts the game once all
// marks are taken.
func (that *Game) AddPlayer(player *Player) error {
	mark, ok := that.FreeMark()
	if !ok {
		return fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, that.ID)
	}

	player.GameID = that.ID
	player.Mark = mark
	that.Players = append(that.Players, player)

	if that.IsFull() && that.IsWaiting() {
		that.Status = StatusOngoing
	}

	return nil
}

// RemovePlayer drops the player with id from the seat list.
func (that *Game) RemovePlayer(id string) {
	players := that.Players[:0]
	for _, player := range that.Players {
		if player.ID != id {
			players = append(players, player)
		}
	}
	that.Players = players
}
