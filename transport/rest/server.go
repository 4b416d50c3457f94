package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires the REST endpoints.
func NewRouter(logger *slog.Logger, games gameGetter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", NewPingHandler().PingHandler)
	mux.HandleFunc("GET /games/{id}", NewGameHandler(logger, games).GetGame)

	return mux
}

// Start serves the REST API on port until ctx is cancelled.
func Start(ctx context.Context, logger *slog.Logger, port string, games gameGetter) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(logger, games),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
