package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
	"github.com/rocketscienceinc/inarow-backend/internal/repository"
	"github.com/rocketscienceinc/inarow-backend/internal/usecase"
)

func (that *Server) handleConnect(ctx context.Context, c *client, req *Request) error {
	log := that.logger.With("method", "handleConnect")

	playerID := c.playerID
	if req.Player != nil && req.Player.ID != "" {
		playerID = req.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		return c.sendError(actionConnect, "failed to create a new player")
	}

	that.unregister(c)
	c.playerID = player.ID
	that.register(c)

	resp := Response{Player: player}

	if player.InGame() {
		game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		switch {
		case err == nil:
			resp.Game = game
		case errors.Is(err, repository.ErrGameNotFound), errors.Is(err, apperror.ErrNotInGame):
			log.Info("player bound to a vanished game", "playerID", player.ID, "gameID", player.GameID)
		default:
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
			return c.sendError(actionConnect, "failed to get the game")
		}
	}

	if err = c.send(actionConnect, resp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, c *client, req *Request) error {
	newGame := usecase.NewGameRequest{
		Kind:    req.Kind,
		WithBot: req.WithBot,
	}

	if newGame.Kind == "" {
		newGame.Kind = entity.KindInARow
	}

	if req.Settings != "" {
		settings, err := entity.ParseSettings(req.Settings)
		if err != nil {
			return c.sendError(actionGameNew, err.Error())
		}
		newGame.Settings = &settings
	}

	game, err := that.gameUseCase.CreateGame(ctx, c.playerID, newGame)
	if err != nil {
		that.logger.Error("failed to create game", "playerID", c.playerID, "error", err)
		return c.sendError(actionGameNew, clientError(err, "failed to create a new game"))
	}

	that.broadcast(actionGameNew, game)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *client, req *Request) error {
	if req.GameID == "" {
		return c.sendError(actionGameJoin, "game_id is required")
	}

	game, err := that.gameUseCase.JoinGame(ctx, req.GameID, c.playerID)
	if err != nil {
		that.logger.Error("failed to join game", "playerID", c.playerID, "gameID", req.GameID, "error", err)
		return c.sendError(actionGameJoin, clientError(err, "failed to join the game"))
	}

	that.broadcast(actionGameJoin, game)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, req *Request) error {
	if req.Cell == nil {
		return c.sendError(actionGameTurn, "cell is required")
	}

	game, err := that.gameUseCase.MakeTurn(ctx, c.playerID, *req.Cell)
	if err != nil {
		return c.send(actionGameTurn, Response{
			Game:  game,
			Error: clientError(err, "failed to make turn"),
		})
	}

	that.broadcast(actionGameTurn, game)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, c *client, _ *Request) error {
	game, err := that.gameUseCase.ResetGame(ctx, c.playerID)
	if err != nil {
		return c.sendError(actionGameReset, clientError(err, "failed to reset the game"))
	}

	that.broadcast(actionGameReset, game)

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, c *client, _ *Request) error {
	game, err := that.gameUseCase.LeaveGame(ctx, c.playerID)
	if err != nil {
		return c.sendError(actionGameLeave, clientError(err, "failed to leave the game"))
	}

	that.broadcast(actionGameLeave, game)

	return nil
}

var clientErrors = []error{
	apperror.ErrGameFinished,
	apperror.ErrGameIsNotStarted,
	apperror.ErrGameIsNotFinished,
	apperror.ErrGameIsFull,
	apperror.ErrNotYourTurn,
	apperror.ErrNotInGame,
	apperror.ErrCellOccupied,
	apperror.ErrColumnFull,
	apperror.ErrTooManyPlayers,
	apperror.ErrInvalidSettings,
	apperror.ErrUnknownGameKind,
	apperror.ErrGameAlreadyExists,
	entity.ErrInvalidCell,
	repository.ErrGameNotFound,
	repository.ErrPlayerNotFound,
}

// clientError exposes known rule violations and hides everything else behind fallback.
func clientError(err error, fallback string) string {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return fallback
}
