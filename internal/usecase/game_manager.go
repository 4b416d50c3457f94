package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
	"github.com/rocketscienceinc/inarow-backend/internal/repository"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	MakeTurn(game *entity.Game) error
}

// NewGameRequest describes a game a player wants to start.
// A nil Settings falls back to the manager defaults.
type NewGameRequest struct {
	Kind     entity.Kind
	Settings *entity.Settings
	WithBot  bool
}

type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	bot        botService

	defaults entity.Settings
	newID    func() string

	// gameLocks holds a *sync.Mutex per game id; every read-modify-write of
	// a stored game runs under it.
	gameLocks sync.Map
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, bot botService, defaults entity.Settings) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		bot:        bot,

		defaults: defaults,
		newID:    uuid.NewString,
	}
}

// GetOrCreatePlayer returns the player behind a session id. An empty or
// unknown id registers a new player.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = that.newID()
	} else {
		player, err := that.playerRepo.GetByID(ctx, id)
		if err == nil {
			return player, nil
		}
		if !errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to get player by id: %w", err)
		}
	}

	player := &entity.Player{ID: id}
	if err := that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	that.logger.Info("registered new player", "playerID", id)

	return player, nil
}

// CreateGame starts a new game with the player on the first mark. A player
// still seated in an unfinished game gets that game back instead.
func (that *GameManager) CreateGame(ctx context.Context, playerID string, req NewGameRequest) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame", "playerID", playerID)

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	current, err := that.activeGame(ctx, player)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}

	settings := that.defaults
	if req.Settings != nil {
		settings = *req.Settings
	}

	game, err := entity.NewGame(that.newID(), req.Kind, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = game.AddPlayer(player); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if req.WithBot {
		game.WithBot = true
		if err = that.addBots(ctx, game); err != nil {
			return nil, err
		}
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	log.Info("game created", "gameID", game.ID, "kind", game.Kind, "settings", game.Settings.String())

	return game, nil
}

// JoinGame seats the player on the next free mark of gameID.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	log := that.logger.With("method", "JoinGame", "playerID", playerID, "gameID", gameID)

	unlock := that.lockGame(gameID)
	defer unlock()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == game.ID && game.IsSeated(player) {
		return game, nil
	}

	current, err := that.activeGame(ctx, player)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("%w: player is in game %s", apperror.ErrGameAlreadyExists, current.ID)
	}

	if err = game.AddPlayer(player); err != nil {
		return nil, err
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	log.Info("player joined", "mark", player.Mark, "status", game.Status)

	return game, nil
}

// MakeTurn plays cell for the player and lets bots answer. The game is
// returned along with move errors so callers can show the current state.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "playerID", playerID)

	player, game, unlock, err := that.lockedPlayerGame(ctx, playerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err = game.MakeTurn(player.Mark, cell); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.runBots(game); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if game.IsFinished() {
		log.Info("game finished", "gameID", game.ID, "winner", game.Winner)
	}

	return game, nil
}

// ResetGame recreates the board of the player's game.
// Only a finished game can be reset.
func (that *GameManager) ResetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	_, game, unlock, err := that.lockedPlayerGame(ctx, playerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !game.IsFinished() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsNotFinished, game.ID)
	}

	game.Reset()

	if err = that.runBots(game); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game reset", "gameID", game.ID, "playerID", playerID)

	return game, nil
}

// LeaveGame ends the player's game for everyone seated in it. The returned
// game still lists its players so they can be notified.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	_, game, unlock, err := that.lockedPlayerGame(ctx, playerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	that.deleteGame(ctx, game)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	_, game, err := that.playerGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) addBots(ctx context.Context, game *entity.Game) error {
	for !game.IsFull() {
		mark, _ := game.FreeMark()

		botPlayer := entity.NewBotPlayer(game.ID, mark)
		if err := game.AddPlayer(botPlayer); err != nil {
			return fmt.Errorf("failed to add bot to game: %w", err)
		}

		if err := that.updatePlayer(ctx, botPlayer); err != nil {
			return fmt.Errorf("failed to update bot player: %w", err)
		}
	}

	return that.runBots(game)
}

// runBots moves for bots until a human is to play or the game ends.
func (that *GameManager) runBots(game *entity.Game) error {
	for {
		current := game.CurrentPlayer()
		if current == nil || !current.IsBot() {
			return nil
		}

		if err := that.bot.MakeTurn(game); err != nil {
			return fmt.Errorf("bot failed to make turn: %w", err)
		}
	}
}

// activeGame returns the unfinished game the player is seated in, or nil.
// Stale bindings to vanished or finished games are dropped.
func (that *GameManager) activeGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	if !player.InGame() {
		return nil, nil
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err == nil && !game.IsFinished() && game.IsSeated(player) {
		return game, nil
	}

	if game != nil && game.IsSeated(player) {
		game.RemovePlayer(player.ID)
		if err = that.updateGame(ctx, game); err != nil {
			return nil, err
		}
	}

	player.Detach()

	return nil, nil
}

func (that *GameManager) playerGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.boundPlayer(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	game, err := that.seatedGame(ctx, player)
	if err != nil {
		return nil, nil, err
	}

	return player, game, nil
}

// lockedPlayerGame is playerGame with the game lock held. The game is read
// after locking so the caller sees the latest stored state.
func (that *GameManager) lockedPlayerGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, func(), error) {
	player, err := that.boundPlayer(ctx, playerID)
	if err != nil {
		return nil, nil, nil, err
	}

	unlock := that.lockGame(player.GameID)

	game, err := that.seatedGame(ctx, player)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}

	return player, game, unlock, nil
}

func (that *GameManager) boundPlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	return player, nil
}

// seatedGame loads the game the player is bound to and checks the player
// still holds the seat the record claims.
func (that *GameManager) seatedGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	if !game.IsSeated(player) {
		return nil, fmt.Errorf("%w: not seated in game %s", apperror.ErrNotInGame, game.ID)
	}

	return game, nil
}

// lockGame serialises updates to one game within this process.
func (that *GameManager) lockGame(gameID string) func() {
	value, _ := that.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "deleteGame", "gameID", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		detached := *player
		detached.Detach()

		if err := that.playerRepo.CreateOrUpdate(ctx, &detached); err != nil {
			log.Error("failed to update player", "playerID", player.ID, "error", err)
		}
	}

	that.gameLocks.Delete(game.ID)

	log.Info("game deleted")
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
