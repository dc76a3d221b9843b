package pkg

import "github.com/google/uuid"

const roomCodeLength = 8

// GenerateRoomCode - generates a short shareable code for a new room.
func GenerateRoomCode() string {
	return uuid.NewString()[:roomCodeLength]
}

// GeneratePlayerID - generates a unique identifier for a connected player.
func GeneratePlayerID() string {
	return uuid.NewString()
}
