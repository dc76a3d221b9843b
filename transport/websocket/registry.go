package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ws "github.com/gorilla/websocket"

	"github.com/gridrunner/tictactoe-backend/internal/metrics"
	"github.com/gridrunner/tictactoe-backend/internal/session"
)

var errPlayerNotConnected = errors.New("player is not connected")

// connection wraps one socket with a write mutex: gorilla allows a single
// concurrent writer, and both the read loop and the session manager's
// broadcasts write here.
type connection struct {
	mu sync.Mutex
	ws *ws.Conn
}

func (that *connection) send(message Message) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ws.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Registry tracks the open connections by player ID and delivers the session
// manager's events to them, implementing session.Notifier.
type Registry struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	conns map[string]*connection
}

func NewRegistry(logger *slog.Logger, metrics *metrics.Metrics) *Registry {
	return &Registry{
		logger:  logger,
		metrics: metrics,
		conns:   make(map[string]*connection),
	}
}

// Notify - sends one event to one player. A missing connection is reported,
// not fatal: the player may have dropped between mutation and delivery.
func (that *Registry) Notify(playerID string, event session.Event) error {
	conn, ok := that.get(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", errPlayerNotConnected, playerID)
	}

	payload := statePayload{State: event.Game}
	if event.Action == session.EventPlayerJoined {
		payload.Room = event.Room
		payload.Mark = event.Mark
	}

	message, err := newMessage(event.Action, payload)
	if err != nil {
		return err
	}

	return conn.send(message)
}

func (that *Registry) add(playerID string, socket *ws.Conn) *connection {
	conn := &connection{ws: socket}

	that.mu.Lock()
	that.conns[playerID] = conn
	that.mu.Unlock()

	that.metrics.PlayersConnected.Inc()

	return conn
}

func (that *Registry) remove(playerID string) {
	that.mu.Lock()

	if _, ok := that.conns[playerID]; !ok {
		that.mu.Unlock()
		return
	}

	delete(that.conns, playerID)
	that.mu.Unlock()

	that.metrics.PlayersConnected.Dec()
}

func (that *Registry) get(playerID string) (*connection, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.conns[playerID]

	return conn, ok
}
