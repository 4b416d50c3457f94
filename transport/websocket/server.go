package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/inarow-backend/internal/entity"
	"github.com/rocketscienceinc/inarow-backend/internal/usecase"
)

const (
	sessionCookie   = "user_session"
	shutdownTimeout = 5 * time.Second
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	CreateGame(ctx context.Context, playerID string, req usecase.NewGameRequest) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
	ResetGame(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, c *client, req *Request) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc

	connections      map[string]*client
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		connections: make(map[string]*client),
	}

	server.handlers = map[string]handlerFunc{
		actionConnect:   server.handleConnect,
		actionGameNew:   server.handleNewGame,
		actionGameJoin:  server.handleJoinGame,
		actionGameTurn:  server.handleGameTurn,
		actionGameReset: server.handleGameReset,
		actionGameLeave: server.handleGameLeave,
	}

	return server
}

// Start serves the websocket endpoint on port until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.HandleWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// HandleWS upgrades the request and serves messages until the peer goes away.
func (that *Server) HandleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "HandleWS")

	sessionID, header := that.session(r)

	conn, err := that.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	c := newClient(conn, sessionID)
	defer that.unregister(c)

	log.Info("WebSocket connection established", "session", sessionID)

	that.handleMessages(ctx, c)
}

// session returns the session id of the request, issuing a cookie for new ones.
func (that *Server) session(r *http.Request) (string, http.Header) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	cookie := &http.Cookie{
		Name:    sessionCookie,
		Value:   uuid.NewString(),
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/ws",
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	return cookie.Value, header
}

func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		if err := that.dispatch(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) dispatch(ctx context.Context, c *client, message *Message) error {
	handler, ok := that.handlers[message.Action]
	if !ok {
		return c.sendError(message.Action, "unknown action")
	}

	var req Request
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &req); err != nil {
			return c.sendError(message.Action, "malformed payload")
		}
	}

	if message.Action != actionConnect && that.lookup(c.playerID) != c {
		return c.sendError(message.Action, "connect first")
	}

	return handler(ctx, c, &req)
}

func (that *Server) register(c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[c.playerID] = c
}

func (that *Server) unregister(c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.connections[c.playerID] == c {
		delete(that.connections, c.playerID)
	}
}

func (that *Server) lookup(playerID string) *client {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return that.connections[playerID]
}

// broadcast sends the game to every connected human seated in it.
func (that *Server) broadcast(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		c := that.lookup(player.ID)
		if c == nil {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		if err := c.send(action, Response{Player: player, Game: game}); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}
