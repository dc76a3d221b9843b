package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gridrunner/tictactoe-backend/internal/apperror"
	"github.com/gridrunner/tictactoe-backend/internal/entity"
	"github.com/gridrunner/tictactoe-backend/internal/metrics"
	"github.com/gridrunner/tictactoe-backend/internal/pkg"
)

// Event action names double as the wire actions the transport sends.
const (
	EventPlayerJoined = "player_joined"
	EventUpdateState  = "update_state"
)

var errRoomCodeTaken = errors.New("room code already taken")

// Event is one notification addressed to one player. Mark is the recipient's
// own mark, so every member of a room gets a personal copy.
type Event struct {
	Action string
	Room   string
	Mark   string
	Game   entity.Game
}

// Notifier - delivers an event to a single connected player. Implemented by
// the transport's connection registry; a fake records events in tests.
type Notifier interface {
	Notify(playerID string, event Event) error
}

type roomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

// Manager owns the multiplayer rooms. Every mutation of a room happens under
// that room's mutex, held across the whole load-validate-mutate-save-notify
// sequence, so two racing moves resolve to exactly one accepted move while
// unrelated rooms proceed in parallel.
type Manager struct {
	logger   *slog.Logger
	rooms    roomRepository
	notifier Notifier
	metrics  *metrics.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	index map[string]string // playerID -> roomID, for disconnect cleanup
}

func NewManager(logger *slog.Logger, rooms roomRepository, notifier Notifier, metrics *metrics.Metrics) *Manager {
	return &Manager{
		logger:   logger,
		rooms:    rooms,
		notifier: notifier,
		metrics:  metrics,
		locks:    make(map[string]*sync.Mutex),
		index:    make(map[string]string),
	}
}

// CreateRoom - opens a fresh room with the requester seated as X. The room
// code is rolled until it is unused, which in practice means once.
func (that *Manager) CreateRoom(ctx context.Context, playerID string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom")

	for {
		roomID := pkg.GenerateRoomCode()

		room, err := that.tryCreateRoom(ctx, playerID, roomID)
		if errors.Is(err, errRoomCodeTaken) {
			continue
		}

		if err != nil {
			return nil, err
		}

		that.metrics.RoomsActive.Inc()
		that.metrics.RoomsCreated.Inc()

		log.Info("room created", "room", roomID, "player", playerID)

		return room, nil
	}
}

func (that *Manager) tryCreateRoom(ctx context.Context, playerID, roomID string) (*entity.Room, error) {
	lock := that.lockRoom(roomID)
	defer lock.Unlock()

	_, err := that.rooms.GetByID(ctx, roomID)
	if err == nil {
		return nil, errRoomCodeTaken
	}

	if !errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, err
	}

	room := entity.NewRoom(roomID)
	if _, err = room.Seat(playerID); err != nil {
		return nil, err
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.setMembership(playerID, roomID)

	return room, nil
}

// JoinRoom - seats the requester on the room's free mark and resumes a
// suspended game when the seats fill up. Every member is then told who
// joined, each event carrying the recipient's own mark.
func (that *Manager) JoinRoom(ctx context.Context, playerID, roomID string) (*entity.Room, string, error) {
	log := that.logger.With("method", "JoinRoom")

	lock := that.lockRoom(roomID)
	defer lock.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, "", err
	}

	player, err := room.Seat(playerID)
	if err != nil {
		return nil, "", err
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, "", fmt.Errorf("failed to save room: %w", err)
	}

	that.setMembership(playerID, roomID)

	that.broadcast(room, EventPlayerJoined)

	log.Info("player joined", "room", roomID, "player", playerID, "mark", player.Mark)

	return room, player.Mark, nil
}

// SubmitMove - plays one move for the requester. Failures go back to the
// caller and leave the room untouched; an accepted move is saved and pushed
// to every member, the mover included.
func (that *Manager) SubmitMove(ctx context.Context, playerID, roomID string, cell int) (*entity.Room, error) {
	lock := that.lockRoom(roomID)
	defer lock.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	member, ok := room.Member(playerID)
	if !ok {
		return nil, apperror.ErrNotAMember
	}

	if err = room.ConfirmActionable(); err != nil {
		return nil, err
	}

	if err = room.Game.MakeTurn(member.Mark, cell); err != nil {
		return nil, err
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.metrics.MovesApplied.Inc()

	that.broadcast(room, EventUpdateState)

	return room, nil
}

// RestartRoom - replaces the room's game with a fresh one. Seats and marks
// are kept; with both members present the new game starts immediately.
func (that *Manager) RestartRoom(ctx context.Context, playerID, roomID string) (*entity.Room, error) {
	log := that.logger.With("method", "RestartRoom")

	lock := that.lockRoom(roomID)
	defer lock.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if _, ok := room.Member(playerID); !ok {
		return nil, apperror.ErrNotAMember
	}

	room.Reset()

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.broadcast(room, EventUpdateState)

	log.Info("room restarted", "room", roomID, "player", playerID)

	return room, nil
}

// LeaveRoom - removes the requester from the room. The last member out
// destroys the room; otherwise a running game suspends with the board kept
// and the remaining member is told.
func (that *Manager) LeaveRoom(ctx context.Context, playerID, roomID string) error {
	log := that.logger.With("method", "LeaveRoom")

	lock := that.lockRoom(roomID)
	defer lock.Unlock()

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}

	if err = room.Remove(playerID); err != nil {
		return err
	}

	that.clearMembership(playerID)

	if room.IsEmpty() {
		if err = that.rooms.DeleteByID(ctx, roomID); err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}

		that.dropLock(roomID)
		that.metrics.RoomsActive.Dec()

		log.Info("room destroyed", "room", roomID)

		return nil
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	that.broadcast(room, EventUpdateState)

	log.Info("player left", "room", roomID, "player", playerID)

	return nil
}

// MemberDisconnected - runs the leave path for a dropped connection. Players
// outside any room are ignored.
func (that *Manager) MemberDisconnected(ctx context.Context, playerID string) {
	log := that.logger.With("method", "MemberDisconnected")

	that.mu.Lock()
	roomID, ok := that.index[playerID]
	that.mu.Unlock()

	if !ok {
		return
	}

	if err := that.LeaveRoom(ctx, playerID, roomID); err != nil {
		log.Error("failed to leave room", "room", roomID, "player", playerID, "error", err)
	}
}

// broadcast - sends the room's current snapshot to every member. Failed
// deliveries are logged and skipped; the room state is already saved.
func (that *Manager) broadcast(room *entity.Room, action string) {
	log := that.logger.With("method", "broadcast")

	for _, member := range room.Players {
		event := Event{
			Action: action,
			Room:   room.ID,
			Mark:   member.Mark,
			Game:   *room.Game,
		}

		if err := that.notifier.Notify(member.ID, event); err != nil {
			log.Error("failed to notify player", "player", member.ID, "action", action, "error", err)
		}
	}
}

// lockRoom - returns the room's mutex locked. The registry lock is never
// held while waiting on a room, so slow rooms cannot stall the others.
func (that *Manager) lockRoom(roomID string) *sync.Mutex {
	that.mu.Lock()

	lock, ok := that.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[roomID] = lock
	}

	that.mu.Unlock()

	lock.Lock()

	return lock
}

func (that *Manager) dropLock(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.locks, roomID)
}

func (that *Manager) setMembership(playerID, roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.index[playerID] = roomID
}

func (that *Manager) clearMembership(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.index, playerID)
}
