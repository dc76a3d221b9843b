package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/gridrunner/tictactoe-backend/internal/entity"
	"github.com/gridrunner/tictactoe-backend/internal/pkg"
)

const shutdownTimeout = 5 * time.Second

type sessionManager interface {
	CreateRoom(ctx context.Context, playerID string) (*entity.Room, error)
	JoinRoom(ctx context.Context, playerID, roomID string) (*entity.Room, string, error)
	SubmitMove(ctx context.Context, playerID, roomID string, cell int) (*entity.Room, error)
	RestartRoom(ctx context.Context, playerID, roomID string) (*entity.Room, error)
	LeaveRoom(ctx context.Context, playerID, roomID string) error
	MemberDisconnected(ctx context.Context, playerID string)
}

// Server upgrades connections on /ws and feeds client intents into the
// session manager. Each connection gets an ephemeral player ID that lives
// exactly as long as the socket.
type Server struct {
	logger   *slog.Logger
	sessions sessionManager
	registry *Registry

	upgrader ws.Upgrader

	handlers map[string]func(ctx context.Context, playerID string, message *Message) error
}

func New(logger *slog.Logger, sessions sessionManager, registry *Registry) *Server {
	server := &Server{
		logger:   logger,
		sessions: sessions,
		registry: registry,

		upgrader: ws.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, string, *Message) error),
	}

	server.handlers[actionCreateGame] = server.handleCreateGame
	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionRestartGame] = server.handleRestartGame
	server.handlers[actionLeaveGame] = server.handleLeaveGame

	return server
}

// Handler - the HTTP handler serving the /ws endpoint, exposed so tests can
// mount it on httptest servers.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.handleConnection)

	return mux
}

// Start - serves WebSocket connections until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: that.Handler(),
		// no read timeout, connections stay open for the whole match
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleConnection - upgrades the socket, greets the client with its player
// ID and runs the read loop. A closed socket counts as leaving the room.
func (that *Server) handleConnection(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleConnection")

	socket, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	playerID := pkg.GeneratePlayerID()
	conn := that.registry.add(playerID, socket)

	log = log.With("player", playerID)
	log.Info("player connected")

	defer func() {
		that.registry.remove(playerID)
		that.sessions.MemberDisconnected(req.Context(), playerID)

		if err = socket.Close(); err != nil {
			log.Debug("failed to close socket", "error", err)
		}

		log.Info("player disconnected")
	}()

	greeting, err := newMessage(actionConnect, connectPayload{Player: playerID})
	if err != nil {
		log.Error("failed to build greeting", "error", err)
		return
	}

	if err = conn.send(greeting); err != nil {
		log.Error("failed to greet player", "error", err)
		return
	}

	that.readMessages(req.Context(), playerID, socket)
}

// readMessages - decodes intents off the socket until it closes. Bad input
// earns an error reply, never a dropped connection.
func (that *Server) readMessages(ctx context.Context, playerID string, socket *ws.Conn) {
	log := that.logger.With("method", "readMessages", "player", playerID)

	for {
		_, raw, err := socket.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				log.Debug("connection closed unexpectedly", "error", err)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			that.sendError(playerID, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.sendError(playerID, "unknown action: "+message.Action)
			continue
		}

		if err = handler(ctx, playerID, &message); err != nil {
			log.Debug("request failed", "action", message.Action, "error", err)
			that.sendError(playerID, err.Error())
		}
	}
}

// sendError - reports a failure to the requester only; errors are never
// broadcast.
func (that *Server) sendError(playerID, text string) {
	log := that.logger.With("method", "sendError", "player", playerID)

	message, err := newMessage(actionError, errorPayload{Message: text})
	if err != nil {
		log.Error("failed to build error message", "error", err)
		return
	}

	conn, ok := that.registry.get(playerID)
	if !ok {
		return
	}

	if err = conn.send(message); err != nil {
		log.Error("failed to send error message", "error", err)
	}
}
