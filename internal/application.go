package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/inarow-backend/internal/config"
	"github.com/rocketscienceinc/inarow-backend/internal/entity"
	"github.com/rocketscienceinc/inarow-backend/internal/repository"
	"github.com/rocketscienceinc/inarow-backend/internal/repository/storage"
	"github.com/rocketscienceinc/inarow-backend/internal/service"
	"github.com/rocketscienceinc/inarow-backend/internal/usecase"
	"github.com/rocketscienceinc/inarow-backend/transport/rest"
	"github.com/rocketscienceinc/inarow-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defaults := entity.Settings{
		Rows:    conf.Defaults.Rows,
		Cols:    conf.Defaults.Cols,
		Target:  conf.Defaults.Target,
		Players: conf.Defaults.Players,
	}
	if err := defaults.Validate(); err != nil {
		return fmt.Errorf("invalid game defaults: %w", err)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage, conf.GameTTL)
	gameRepo := repository.NewGameRepository(redisStorage, conf.GameTTL)
	gameManager := usecase.NewGameManager(logger, playerRepo, gameRepo, service.NewBotService(), defaults)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, gameManager); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
