package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/gridrunner/tictactoe-backend/internal/entity"
)

// Message is the wire envelope in both directions: an action name plus a
// payload decoded per action.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newMessage(action string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("could not marshal payload: %w", err)
	}

	return Message{Action: action, Payload: raw}, nil
}

const (
	actionConnect     = "connect"
	actionCreateGame  = "create_game"
	actionJoinGame    = "join_game"
	actionMakeMove    = "make_move"
	actionRestartGame = "restart_game"
	actionLeaveGame   = "leave_game"
	actionGameCreated = "game_created"
	actionLeftGame    = "left_game"
	actionError       = "error"
)

type connectPayload struct {
	Player string `json:"player"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type movePayload struct {
	Room string `json:"room"`
	Cell int    `json:"cell"`
}

// statePayload carries a game snapshot. Room and mark are set on the events
// that introduce a player to a room and omitted on plain state pushes.
type statePayload struct {
	Room  string      `json:"room,omitempty"`
	Mark  string      `json:"mark,omitempty"`
	State entity.Game `json:"state"`
}

type errorPayload struct {
	Message string `json:"message"`
}
