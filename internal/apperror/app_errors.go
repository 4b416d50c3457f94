package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrGameIsNotFinished = errors.New("game is not finished")
	ErrGameIsFull        = errors.New("game is full")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrNotInGame         = errors.New("player is not in a game")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrColumnFull        = errors.New("column is full")
	ErrTooManyPlayers    = errors.New("too many players")
	ErrInvalidSettings   = errors.New("invalid game settings")
	ErrUnknownGameKind   = errors.New("unknown game kind")
	ErrGameAlreadyExists = errors.New("game already exists")
)
