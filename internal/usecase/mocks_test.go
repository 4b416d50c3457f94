package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/inarow-backend/internal/entity"
	"github.com/rocketscienceinc/inarow-backend/internal/repository"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (m *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := m.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (m *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := m.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// firstMoveBot always plays the first legal move.
type firstMoveBot struct{}

func (firstMoveBot) MakeTurn(game *entity.Game) error {
	player := game.CurrentPlayer()
	return game.MakeTurn(player.Mark, game.LegalMoves()[0])
}

// memStore keeps JSON snapshots like the Redis repositories, so every read
// returns a fresh copy.
type memStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string][]byte)}
}

func (that *memStore) set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.values[key] = raw

	return nil
}

func (that *memStore) get(key string, value any) (bool, error) {
	that.mu.Lock()
	raw, ok := that.values[key]
	that.mu.Unlock()

	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(raw, value)
}

type memPlayerRepo struct{ store *memStore }

func (that memPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	return that.store.set("player:"+player.ID, player)
}

func (that memPlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	var player entity.Player
	ok, err := that.store.get("player:"+id, &player)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	return &player, nil
}

type memGameRepo struct{ store *memStore }

func (that memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	return that.store.set("game:"+game.ID, game)
}

func (that memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	var game entity.Game
	ok, err := that.store.get("game:"+id, &game)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrGameNotFound
	}

	return &game, nil
}

func (that memGameRepo) DeleteByID(_ context.Context, id string) error {
	that.store.mu.Lock()
	defer that.store.mu.Unlock()

	delete(that.store.values, "game:"+id)

	return nil
}
