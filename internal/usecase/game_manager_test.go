package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/inarow-backend/internal/apperror"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
	"github.com/rocketscienceinc/inarow-backend/internal/repository"
)

var errRedisDown = errors.New("redis down")

type fixture struct {
	manager *GameManager
	players *mockPlayerRepo
	games   *mockGameRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	players := &mockPlayerRepo{}
	games := &mockGameRepo{}
	t.Cleanup(func() {
		players.AssertExpectations(t)
		games.AssertExpectations(t)
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := NewGameManager(logger, players, games, firstMoveBot{}, entity.DefaultSettings())

	ids := 0
	manager.newID = func() string {
		ids++
		return "id" + string(rune('0'+ids))
	}

	return &fixture{manager: manager, players: players, games: games}
}

func ongoingGame(t *testing.T, kind entity.Kind, humans ...*entity.Player) *entity.Game {
	t.Helper()

	game, err := entity.NewGame("g1", kind, entity.DefaultSettings())
	require.NoError(t, err)
	for _, player := range humans {
		require.NoError(t, game.AddPlayer(player))
	}

	return game
}

func TestGameManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when id is empty", func(t *testing.T) {
		// Given: a repository accepting new players
		f := newFixture(t)
		f.players.On("CreateOrUpdate", mock.Anything, &entity.Player{ID: "id1"}).Return(nil).Once()

		// When: calling GetOrCreatePlayer without an id
		player, err := f.manager.GetOrCreatePlayer(ctx, "")

		// Then: a player with a fresh id is returned
		require.NoError(t, err)
		assert.Equal(t, "id1", player.ID)
	})

	t.Run("Returns an existing player", func(t *testing.T) {
		f := newFixture(t)
		existing := &entity.Player{ID: "p1", GameID: "g1", Mark: "red"}
		f.players.On("GetByID", mock.Anything, "p1").Return(existing, nil).Once()

		player, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, existing, player)
	})

	t.Run("Registers an unknown session id", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("GetByID", mock.Anything, "p1").Return(nil, repository.ErrPlayerNotFound).Once()
		f.players.On("CreateOrUpdate", mock.Anything, &entity.Player{ID: "p1"}).Return(nil).Once()

		player, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, "p1", player.ID)
	})

	t.Run("Returns storage errors", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("GetByID", mock.Anything, "p1").Return(nil, errRedisDown).Once()

		player, err := f.manager.GetOrCreatePlayer(ctx, "p1")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, player)
	})
}

func TestGameManager_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates an In A Row game with the default settings", func(t *testing.T) {
		// Given: a player without a game
		f := newFixture(t)
		f.players.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()
		f.players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()
		f.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: creating a game
		game, err := f.manager.CreateGame(ctx, "p1", NewGameRequest{Kind: entity.KindInARow})

		// Then: the game waits for the second player
		require.NoError(t, err)
		assert.Equal(t, "id1", game.ID)
		assert.Equal(t, entity.DefaultSettings(), game.Settings)
		assert.True(t, game.IsWaiting())
		require.Len(t, game.Players, 1)
		assert.Equal(t, "yellow", game.Players[0].Mark)
		assert.Equal(t, "id1", game.Players[0].GameID)
	})

	t.Run("Returns the unfinished game the player is in", func(t *testing.T) {
		f := newFixture(t)
		player := &entity.Player{ID: "p1"}
		existing := ongoingGame(t, entity.KindTicTacToe, player)
		f.players.On("GetByID", mock.Anything, "p1").Return(player, nil).Once()
		f.games.On("GetByID", mock.Anything, "g1").Return(existing, nil).Once()

		game, err := f.manager.CreateGame(ctx, "p1", NewGameRequest{Kind: entity.KindInARow})

		require.NoError(t, err)
		assert.Equal(t, existing, game)
	})

	t.Run("Starts a bot game immediately", func(t *testing.T) {
		f := newFixture(t)
		settings := entity.Settings{Rows: 6, Cols: 7, Target: 4, Players: 3}
		f.players.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()
		f.players.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Times(3)
		f.games.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		game, err := f.manager.CreateGame(ctx, "p1", NewGameRequest{Kind: entity.KindInARow, Settings: &settings, WithBot: true})

		require.NoError(t, err)
		assert.True(t, game.IsOngoing())
		assert.True(t, game.WithBot)
		require.Len(t, game.Players, 3)
		assert.True(t, game.Players[1].IsBot())
		assert.True(t, game.Players[2].IsBot())
		assert.Equal(t, "yellow", game.Turn)
	})

	t.Run("Rejects invalid settings", func(t *testing.T) {
		f := newFixture(t)
		settings := entity.Settings{Rows: 6, Cols: 7, Target: 4, Players: 8}
		f.players.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()

		_, err := f.manager.CreateGame(ctx, "p1", NewGameRequest{Kind: entity.KindInARow, Settings: &settings})

		require.ErrorIs(t, err, apperror.ErrTooManyPlayers)
	})
}

func TestGameManager_JoinGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Second player starts the game", func(t *testing.T) {
		// Given: a waiting game with one player
		f := newFixture(t)
		waiting := ongoingGame(t, entity.KindTicTacToe, &entity.Player{ID: "p1"})
		f.games.On("GetByID", mock.Anything, "g1").Return(waiting, nil).Once()
		f.players.On("GetByID", mock.Anything, "p2").Return(&entity.Player{ID: "p2"}, nil).Once()
		f.players.On("CreateOrUpdate", mock.Anything, &entity.Player{ID: "p2", Mark: entity.PlayerO, GameID: "g1"}).Return(nil).Once()
		f.games.On("CreateOrUpdate", mock.Anything, waiting).Return(nil).Once()

		// When: the second player joins
		game, err := f.manager.JoinGame(ctx, "g1", "p2")

		// Then: the game is ongoing with X to move
		require.NoError(t, err)
		assert.True(t, game.IsOngoing())
		assert.Equal(t, entity.PlayerX, game.Turn)
	})

	t.Run("Full game is refused", func(t *testing.T) {
		f := newFixture(t)
		full := ongoingGame(t, entity.KindTicTacToe, &entity.Player{ID: "p1"}, &entity.Player{ID: "p2"})
		f.games.On("GetByID", mock.Anything, "g1").Return(full, nil).Once()
		f.players.On("GetByID", mock.Anything, "p3").Return(&entity.Player{ID: "p3"}, nil).Once()

		_, err := f.manager.JoinGame(ctx, "g1", "p3")

		require.ErrorIs(t, err, apperror.ErrGameIsFull)
	})

	t.Run("Rejoining returns the same game", func(t *testing.T) {
		f := newFixture(t)
		player := &entity.Player{ID: "p1"}
		game := ongoingGame(t, entity.KindTicTacToe, player)
		f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		f.players.On("GetByID", mock.Anything, "p1").Return(player, nil).Once()

		got, err := f.manager.JoinGame(ctx, "g1", "p1")

		require.NoError(t, err)
		assert.Equal(t, game, got)
	})

	t.Run("Unknown game", func(t *testing.T) {
		f := newFixture(t)
		f.games.On("GetByID", mock.Anything, "nope").Return(nil, repository.ErrGameNotFound).Once()

		_, err := f.manager.JoinGame(ctx, "nope", "p1")

		require.ErrorIs(t, err, repository.ErrGameNotFound)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Move is applied and stored", func(t *testing.T) {
		f := newFixture(t)
		x, o := &entity.Player{ID: "p1"}, &entity.Player{ID: "p2"}
		game := ongoingGame(t, entity.KindTicTacToe, x, o)
		f.players.On("GetByID", mock.Anything, "p1").Return(x, nil).Once()
		f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		f.games.On("CreateOrUpdate", mock.Anything, game).Return(nil).Once()

		got, err := f.manager.MakeTurn(ctx, "p1", 4)

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, got.Board[4])
		assert.Equal(t, entity.PlayerO, got.Turn)
	})

	t.Run("Bot answers right away", func(t *testing.T) {
		f := newFixture(t)
		human := &entity.Player{ID: "p1"}
		game := ongoingGame(t, entity.KindTicTacToe, human, entity.NewBotPlayer("g1", entity.PlayerO))
		f.players.On("GetByID", mock.Anything, "p1").Return(human, nil).Once()
		f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		f.games.On("CreateOrUpdate", mock.Anything, game).Return(nil).Once()

		got, err := f.manager.MakeTurn(ctx, "p1", 4)

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, got.Board[0])
		assert.Equal(t, entity.PlayerX, got.Turn)
	})

	t.Run("Out of turn returns the game with the error", func(t *testing.T) {
		f := newFixture(t)
		x, o := &entity.Player{ID: "p1"}, &entity.Player{ID: "p2"}
		game := ongoingGame(t, entity.KindTicTacToe, x, o)
		f.players.On("GetByID", mock.Anything, "p2").Return(o, nil).Once()
		f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()

		got, err := f.manager.MakeTurn(ctx, "p2", 4)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, game, got)
	})

	t.Run("Player without a game", func(t *testing.T) {
		f := newFixture(t)
		f.players.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1"}, nil).Once()

		_, err := f.manager.MakeTurn(ctx, "p1", 0)

		require.ErrorIs(t, err, apperror.ErrNotInGame)
	})

	t.Run("Player record claiming another player's seat is refused", func(t *testing.T) {
		// Given: p3 is bound to g1 with the O mark, but p2 holds that seat
		f := newFixture(t)
		x, o := &entity.Player{ID: "p1"}, &entity.Player{ID: "p2"}
		game := ongoingGame(t, entity.KindTicTacToe, x, o)
		require.NoError(t, game.MakeTurn(entity.PlayerX, 0))
		stale := &entity.Player{ID: "p3", Mark: entity.PlayerO, GameID: "g1"}
		f.players.On("GetByID", mock.Anything, "p3").Return(stale, nil).Once()
		f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()

		// When: p3 tries to move on O's turn
		got, err := f.manager.MakeTurn(ctx, "p3", 4)

		// Then: nothing is played or stored
		require.ErrorIs(t, err, apperror.ErrNotInGame)
		assert.Nil(t, got)
		assert.Equal(t, entity.EmptyCell, game.Board[4])
	})
}

func TestGameManager_ResetGame(t *testing.T) {
	t.Run("Ongoing game cannot be reset", func(t *testing.T) {
		// Given: a game in progress
		f := newFixture(t)
		x, o := &entity.Player{ID: "p1"}, &entity.Player{ID: "p2"}
		game := ongoingGame(t, entity.KindTicTacToe, x, o)
		require.NoError(t, game.MakeTurn(entity.PlayerX, 4))
		f.players.On("GetByID", mock.Anything, "p2").Return(o, nil).Once()
		f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()

		// When: a player tries to reset it
		got, err := f.manager.ResetGame(context.Background(), "p2")

		// Then: the board is kept and nothing is stored
		require.ErrorIs(t, err, apperror.ErrGameIsNotFinished)
		assert.Nil(t, got)
		assert.Equal(t, entity.PlayerX, game.Board[4])
	})

	// Given: a finished game
	f := newFixture(t)
	x, o := &entity.Player{ID: "p1"}, &entity.Player{ID: "p2"}
	game := ongoingGame(t, entity.KindTicTacToe, x, o)
	for _, cell := range []int{0, 3, 1, 4, 2} {
		require.NoError(t, game.MakeTurn(game.Turn, cell))
	}
	require.True(t, game.IsFinished())

	f.players.On("GetByID", mock.Anything, "p2").Return(o, nil).Once()
	f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
	f.games.On("CreateOrUpdate", mock.Anything, game).Return(nil).Once()

	// When: any player resets it
	got, err := f.manager.ResetGame(context.Background(), "p2")

	// Then: the board is empty and play resumes
	require.NoError(t, err)
	assert.True(t, got.IsOngoing())
	assert.Equal(t, make([]string, 9), got.Board)
}

func TestGameManager_LeaveGame(t *testing.T) {
	// Given: a game with a human and a bot
	f := newFixture(t)
	human := &entity.Player{ID: "p1"}
	game := ongoingGame(t, entity.KindTicTacToe, human, entity.NewBotPlayer("g1", entity.PlayerO))
	f.players.On("GetByID", mock.Anything, "p1").Return(human, nil).Once()
	f.games.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
	f.games.On("DeleteByID", mock.Anything, "g1").Return(nil).Once()
	f.players.On("CreateOrUpdate", mock.Anything, &entity.Player{ID: "p1"}).Return(nil).Once()

	// When: the human leaves
	got, err := f.manager.LeaveGame(context.Background(), "p1")

	// Then: the game is deleted, the human detached, and the game still lists its players
	require.NoError(t, err)
	assert.Len(t, got.Players, 2)
}

func TestGameManager_ConcurrentJoin(t *testing.T) {
	// Given: a stored In A Row game waiting for its last seat and two free players
	ctx := context.Background()
	store := newMemStore()
	players, games := memPlayerRepo{store}, memGameRepo{store}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := NewGameManager(logger, players, games, firstMoveBot{}, entity.DefaultSettings())

	alice := &entity.Player{ID: "alice"}
	require.NoError(t, players.CreateOrUpdate(ctx, alice))
	game, err := manager.CreateGame(ctx, "alice", NewGameRequest{Kind: entity.KindInARow})
	require.NoError(t, err)
	for _, id := range []string{"bob", "carol"} {
		require.NoError(t, players.CreateOrUpdate(ctx, &entity.Player{ID: id}))
	}

	// When: both join at the same time
	joiners := []string{"bob", "carol"}
	errs := make([]error, len(joiners))
	var wg sync.WaitGroup
	for i, id := range joiners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = manager.JoinGame(ctx, game.ID, id)
		}()
	}
	wg.Wait()

	// Then: exactly one gets the seat
	winner, loser := 0, 1
	if errs[0] != nil {
		winner, loser = 1, 0
	}
	require.NoError(t, errs[winner])
	require.ErrorIs(t, errs[loser], apperror.ErrGameIsFull)

	stored, err := games.GetByID(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, stored.Players, 2)
	assert.Equal(t, joiners[winner], stored.Players[1].ID)

	lost, err := players.GetByID(ctx, joiners[loser])
	require.NoError(t, err)
	assert.False(t, lost.InGame())

	// And: the seated player moves normally
	_, err = manager.MakeTurn(ctx, "alice", 0)
	require.NoError(t, err)
	_, err = manager.MakeTurn(ctx, joiners[winner], 1)
	require.NoError(t, err)
}
