package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameJoin  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request is the payload a client sends. Settings uses the
// "rows-cols[-target[-players]]" form.
type Request struct {
	Player   *entity.Player `json:"player,omitempty"`
	GameID   string         `json:"game_id,omitempty"`
	Kind     entity.Kind    `json:"kind,omitempty"`
	Settings string         `json:"settings,omitempty"`
	WithBot  bool           `json:"with_bot,omitempty"`
	Cell     *int           `json:"cell,omitempty"`
}

// Response is the payload the server sends back or broadcasts.
type Response struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// client is one websocket connection. gorilla connections allow a single
// concurrent writer, so every write goes through send.
type client struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	playerID string
}

func newClient(conn *websocket.Conn, playerID string) *client {
	return &client{
		conn:     conn,
		playerID: playerID,
	}
}

func (that *client) send(action string, payload Response) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) sendError(action, text string) error {
	return that.send(action, Response{Error: text})
}
