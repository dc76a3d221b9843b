package entity

import (
	"github.com/gridrunner/tictactoe-backend/internal/apperror"
	"github.com/gridrunner/tictactoe-backend/internal/tictactoe"
)

const maxPlayers = 2

// Room groups up to two players around one game. The session manager is the
// only writer of live rooms; methods here keep the game status consistent
// with the seat count but do no locking of their own.
type Room struct {
	ID      string    `json:"id"`
	Players []*Player `json:"players"`
	Game    *Game     `json:"game"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:   id,
		Game: NewGame(),
	}
}

// Seat - adds the player on the free mark and returns the seat. Seating the
// second member resumes a suspended game; seating into a finished game leaves
// it finished until someone restarts.
func (that *Room) Seat(playerID string) (*Player, error) {
	if player, ok := that.Member(playerID); ok {
		return player, nil
	}

	if len(that.Players) >= maxPlayers {
		return nil, apperror.ErrRoomFull
	}

	player := &Player{
		ID:   playerID,
		Mark: that.freeMark(),
	}
	that.Players = append(that.Players, player)

	that.syncStatus()

	return player, nil
}

// Remove - takes the player out of the room and frees their mark. A match
// that was still running suspends with the board kept, so a rejoiner can
// resume it.
func (that *Room) Remove(playerID string) error {
	for i, player := range that.Players {
		if player.ID != playerID {
			continue
		}

		that.Players = append(that.Players[:i], that.Players[i+1:]...)
		that.syncStatus()

		return nil
	}

	return apperror.ErrNotAMember
}

func (that *Room) Member(playerID string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player, true
		}
	}

	return nil, false
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

// Reset - starts a fresh game for the same seats; marks are kept, only the
// board and outcome go.
func (that *Room) Reset() {
	that.Game = NewGame()
	that.syncStatus()
}

// ConfirmActionable - reports why a move cannot be played right now, nil when
// it can. Suspension outranks conclusion: a room missing a member rejects
// moves even when the board would otherwise be playable.
func (that *Room) ConfirmActionable() error {
	switch {
	case that.Game.IsWaiting():
		if that.Game.Board == (tictactoe.Board{}) {
			return apperror.ErrGameIsNotStarted
		}

		return apperror.ErrOpponentLeft
	case that.Game.IsFinished():
		return apperror.ErrGameFinished
	default:
		return nil
	}
}

// freeMark - the mark the next seat gets: X in an empty room, otherwise
// whatever the lone member does not hold.
func (that *Room) freeMark() string {
	if len(that.Players) == 0 {
		return tictactoe.PlayerX
	}

	return tictactoe.NextMark(that.Players[0].Mark)
}

// syncStatus - aligns the game status with the seat count. A finished game
// stays finished; otherwise two seats play, fewer wait.
func (that *Room) syncStatus() {
	if that.Game.IsFinished() {
		return
	}

	if len(that.Players) == maxPlayers {
		that.Game.Status = StatusOngoing
		return
	}

	that.Game.Status = StatusWaiting
}
