package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	MakeTurn(game *entity.Game) error
}

type botService struct {
	intn func(n int) int
}

func NewBotService() BotService {
	return &botService{
		intn: rand.Intn, //nolint: gosec // it's ok
	}
}

// MakeTurn plays a random legal move for the bot whose turn it is.
func (that *botService) MakeTurn(game *entity.Game) error {
	botPlayer := game.CurrentPlayer()
	if botPlayer == nil || !botPlayer.IsBot() {
		return ErrBotNotFound
	}

	moves := game.LegalMoves()
	if len(moves) == 0 {
		return ErrNoAvailableMoves
	}

	chosenCell := moves[that.intn(len(moves))]

	if err := game.MakeTurn(botPlayer.Mark, chosenCell); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}
