// Package types defines the JSON messages exchanged over the websocket.
package types

import "github.com/avillega/conquian-backend/internal/engine"

// ClientMessage is one player action. The acting player is taken from the
// connection, never from the payload.
type ClientMessage struct {
	Type        string   `json:"type"`
	Seat        *int     `json:"seat,omitempty"`
	CardID      string   `json:"card_id,omitempty"`
	CardIDs     []string `json:"card_ids,omitempty"`
	MeldID      string   `json:"meld_id,omitempty"`
	FromDiscard bool     `json:"from_discard,omitempty"`
}

// ServerMessage is either a state snapshot broadcast or an error addressed
// to the client whose action was rejected.
type ServerMessage struct {
	Type    string            `json:"type"` // "StateSnapshot" | "Error"
	Version int64             `json:"version,omitempty"`
	State   *engine.GameState `json:"state,omitempty"`
	Events  []engine.Event    `json:"events,omitempty"`
	Error   string            `json:"error,omitempty"`
}
