package entity

import "strings"

const botIDPrefix = "bot:"

type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
}

// NewBotPlayer returns the bot occupying mark in the given game.
func NewBotPlayer(gameID, mark string) *Player {
	return &Player{
		ID:     botIDPrefix + gameID + ":" + mark,
		Mark:   mark,
		GameID: gameID,
	}
}

func (that *Player) IsBot() bool {
	return strings.HasPrefix(that.ID, botIDPrefix)
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}

// Detach clears the game binding of the player.
func (that *Player) Detach() {
	that.GameID = ""
	that.Mark = ""
}
