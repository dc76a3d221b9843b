package entity

import (
	"errors"
	"fmt"

	"github.com/gridrunner/tictactoe-backend/internal/apperror"
	"github.com/gridrunner/tictactoe-backend/internal/tictactoe"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is a single match: the board plus whose turn it is and how it ended.
// Its JSON form is the snapshot clients see, so the field set stays minimal.
type Game struct {
	Board  tictactoe.Board `json:"board"`
	Turn   string          `json:"turn"`
	Status string          `json:"status"`
	Winner string          `json:"winner"`
}

func NewGame() *Game {
	return &Game{
		Board:  tictactoe.Board{},
		Turn:   tictactoe.PlayerX,
		Status: StatusWaiting,
	}
}

// MakeTurn - applies one move for the given mark and advances the game:
// the turn flips, or the game concludes when the move settles it.
func (that *Game) MakeTurn(playerMark string, cell int) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	board, err := tictactoe.Apply(that.Board, cell, playerMark)
	if err != nil {
		return err
	}

	that.Board = board

	if result := tictactoe.Evaluate(that.Board); result != tictactoe.EmptyCell {
		that.conclude(result)
		return nil
	}

	that.Turn = tictactoe.NextMark(playerMark)

	return nil
}

// conclude - seals the game; a concluded board is never mutated again.
func (that *Game) conclude(winner string) {
	that.Winner = winner
	that.Status = StatusFinished
	that.Turn = ""
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
