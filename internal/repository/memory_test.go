package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridrunner/tictactoe-backend/internal/apperror"
	"github.com/gridrunner/tictactoe-backend/internal/entity"
)

func TestMemoryRoomRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores and retrieves a room", func(t *testing.T) {
		// Given: an empty store and a room mid-match
		roomRepo := NewMemoryRoomRepository()

		room := entity.NewRoom("ab12cd34")
		_, err := room.Seat("player-1")
		require.NoError(t, err)
		_, err = room.Seat("player-2")
		require.NoError(t, err)
		require.NoError(t, room.Game.MakeTurn("X", 0))

		// When: saving and loading it back
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

		retrievedRoom, err := roomRepo.GetByID(ctx, room.ID)

		// Then: the loaded room matches the saved one
		require.NoError(t, err)
		assert.Equal(t, room.ID, retrievedRoom.ID)
		assert.Equal(t, room.Players, retrievedRoom.Players)
		assert.Equal(t, room.Game, retrievedRoom.Game)
	})

	t.Run("Unknown room is not found", func(t *testing.T) {
		// Given: an empty store
		roomRepo := NewMemoryRoomRepository()

		// When: loading a room that was never saved
		_, err := roomRepo.GetByID(ctx, "00000000")

		// Then: ErrRoomNotFound should be returned
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Returned rooms are detached from the store", func(t *testing.T) {
		// Given: a stored room
		roomRepo := NewMemoryRoomRepository()

		room := entity.NewRoom("ab12cd34")
		_, err := room.Seat("player-1")
		require.NoError(t, err)
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

		// When: mutating a loaded copy without saving it back
		retrievedRoom, err := roomRepo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		retrievedRoom.Game.Status = entity.StatusFinished

		// Then: the stored room is unchanged
		storedRoom, err := roomRepo.GetByID(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWaiting, storedRoom.Game.Status)
	})

	t.Run("Delete removes the room once", func(t *testing.T) {
		// Given: a stored room
		roomRepo := NewMemoryRoomRepository()

		room := entity.NewRoom("ab12cd34")
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

		// When: deleting it twice
		require.NoError(t, roomRepo.DeleteByID(ctx, room.ID))
		err := roomRepo.DeleteByID(ctx, room.ID)

		// Then: the second delete reports the room is gone
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}
