package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gridrunner/tictactoe-backend/internal/apperror"
	"github.com/gridrunner/tictactoe-backend/internal/entity"
)

// memoryRoom keeps rooms as marshaled JSON in a map, so the server can run
// without Redis. Storing bytes instead of pointers gives the same detached
// copies the Redis store hands out.
type memoryRoom struct {
	mu    sync.RWMutex
	rooms map[string][]byte
}

func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoom{
		rooms: make(map[string][]byte),
	}
}

func (that *memoryRoom) CreateOrUpdate(_ context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = roomJSON

	return nil
}

func (that *memoryRoom) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	roomJSON, ok := that.rooms[id]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	var existingRoom entity.Room
	if err := json.Unmarshal(roomJSON, &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

func (that *memoryRoom) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[id]; !ok {
		return apperror.ErrRoomNotFound
	}

	delete(that.rooms, id)

	return nil
}
