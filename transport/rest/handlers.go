package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/inarow-backend/internal/entity"
	"github.com/rocketscienceinc/inarow-backend/internal/repository"
)

type gameGetter interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

type GameHandler interface {
	GetGame(w http.ResponseWriter, r *http.Request)
}

type gameHandler struct {
	logger *slog.Logger
	games  gameGetter
}

func NewGameHandler(logger *slog.Logger, games gameGetter) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

// GetGame responds with the stored state of the game named in the path.
func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")

	id := r.PathValue("id")

	game, err := that.games.GetGame(r.Context(), id)
	if errors.Is(err, repository.ErrGameNotFound) {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get game", "gameID", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(game); err != nil {
		log.Error("failed to encode game", "gameID", id, "error", err)
	}
}
