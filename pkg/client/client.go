// Package client is a thin proxy for the tictactoe WebSocket protocol. It
// forwards intents and mirrors the server's snapshots; it never computes
// game logic of its own, the server is the only authority.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	ws "github.com/gorilla/websocket"
)

const (
	actionConnect      = "connect"
	actionCreateGame   = "create_game"
	actionJoinGame     = "join_game"
	actionMakeMove     = "make_move"
	actionRestartGame  = "restart_game"
	actionLeaveGame    = "leave_game"
	actionGameCreated  = "game_created"
	actionPlayerJoined = "player_joined"
	actionUpdateState  = "update_state"
	actionLeftGame     = "left_game"
	actionError        = "error"
)

// GameState mirrors the server's snapshot: the board, whose turn it is, the
// match status and the winner once there is one.
type GameState struct {
	Board  [9]string `json:"board"`
	Turn   string    `json:"turn"`
	Status string    `json:"status"`
	Winner string    `json:"winner"`
}

type message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// eventPayload is the superset of every server payload; fields irrelevant to
// an action stay zero.
type eventPayload struct {
	Player  string     `json:"player,omitempty"`
	Room    string     `json:"room,omitempty"`
	Mark    string     `json:"mark,omitempty"`
	State   *GameState `json:"state,omitempty"`
	Message string     `json:"message,omitempty"`
}

type roomIntent struct {
	Room string `json:"room"`
}

type moveIntent struct {
	Room string `json:"room"`
	Cell int    `json:"cell"`
}

// Client holds one connection and the last snapshot the server pushed.
type Client struct {
	conn *ws.Conn

	writeMu sync.Mutex

	mu       sync.RWMutex
	playerID string
	room     string
	mark     string
	state    GameState
	onState  func(GameState)
	onError  func(string)

	done chan struct{}
}

// Dial - connects to a server's /ws endpoint and starts the read loop. The
// url uses the ws scheme, e.g. ws://localhost:8081/ws.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := ws.DefaultDialer.DialContext(ctx, url, nil) //nolint:bodyclose // gorilla hands back an already-consumed response
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	that := &Client{
		conn: conn,
		done: make(chan struct{}),
	}

	go that.readLoop()

	return that, nil
}

// CreateGame - asks the server for a fresh room with this client seated.
func (that *Client) CreateGame() error {
	return that.send(actionCreateGame, struct{}{})
}

// JoinGame - joins the room with the given code.
func (that *Client) JoinGame(room string) error {
	return that.send(actionJoinGame, roomIntent{Room: room})
}

// MakeMove - plays the given cell in the current room.
func (that *Client) MakeMove(cell int) error {
	return that.send(actionMakeMove, moveIntent{Room: that.Room(), Cell: cell})
}

// RestartGame - asks for a fresh game in the current room.
func (that *Client) RestartGame() error {
	return that.send(actionRestartGame, roomIntent{Room: that.Room()})
}

// LeaveGame - leaves the current room.
func (that *Client) LeaveGame() error {
	return that.send(actionLeaveGame, roomIntent{Room: that.Room()})
}

// State - the last snapshot the server pushed.
func (that *Client) State() GameState {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.state
}

// Room - the code of the room this client is in, empty outside a room.
func (that *Client) Room() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.room
}

// Mark - the symbol the server assigned to this client.
func (that *Client) Mark() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.mark
}

// PlayerID - the ephemeral identity from the server's greeting.
func (that *Client) PlayerID() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.playerID
}

// OnState - registers a hook fired on every snapshot the server pushes.
func (that *Client) OnState(fn func(GameState)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onState = fn
}

// OnError - registers a hook fired on server error replies. Errors never
// touch the held snapshot.
func (that *Client) OnError(fn func(string)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onError = fn
}

// Done - closed when the read loop exits, i.e. the connection is gone.
func (that *Client) Done() <-chan struct{} {
	return that.done
}

// Close - closes the connection gracefully.
func (that *Client) Close() error {
	that.writeMu.Lock()
	closeFrame := ws.FormatCloseMessage(ws.CloseNormalClosure, "")
	_ = that.conn.WriteMessage(ws.CloseMessage, closeFrame)
	that.writeMu.Unlock()

	if err := that.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

func (that *Client) send(action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}

	return nil
}

func (that *Client) readLoop() {
	defer close(that.done)

	for {
		var msg message
		if err := that.conn.ReadJSON(&msg); err != nil {
			return
		}

		that.dispatch(&msg)
	}
}

func (that *Client) dispatch(msg *message) {
	var payload eventPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
	}

	switch msg.Action {
	case actionConnect:
		that.mu.Lock()
		that.playerID = payload.Player
		that.mu.Unlock()

	case actionGameCreated, actionPlayerJoined, actionUpdateState:
		that.mu.Lock()

		if payload.Room != "" {
			that.room = payload.Room
		}

		if payload.Mark != "" {
			that.mark = payload.Mark
		}

		var snapshot GameState
		if payload.State != nil {
			that.state = *payload.State
			snapshot = that.state
		}

		callback := that.onState
		that.mu.Unlock()

		if callback != nil && payload.State != nil {
			callback(snapshot)
		}

	case actionLeftGame:
		that.mu.Lock()
		that.room = ""
		that.mark = ""
		that.mu.Unlock()

	case actionError:
		that.mu.RLock()
		callback := that.onError
		that.mu.RUnlock()

		if callback != nil {
			callback(payload.Message)
		}
	}
}
