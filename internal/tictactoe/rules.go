package tictactoe

import (
	"fmt"

	"github.com/gridrunner/tictactoe-backend/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	WinnerDraw = "draw"

	EmptyCell = ""
)

// Board is the 3x3 grid in row-major order. The zero value is an empty board.
type Board [9]string

var winLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Apply - places mark on the given cell and returns the resulting board.
// The input board is a value and stays untouched; the result differs from it
// in exactly one cell.
func Apply(board Board, cell int, mark string) (Board, error) {
	if cell < 0 || cell >= len(board) {
		return board, fmt.Errorf("%w: %d", apperror.ErrInvalidCell, cell)
	}

	if board[cell] != EmptyCell {
		return board, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	board[cell] = mark

	return board, nil
}

// Evaluate - reports the outcome of a board: PlayerX or PlayerO when a line
// of three is complete, WinnerDraw when the board is full with no line, and
// EmptyCell while play continues. A board carrying lines for both marks
// cannot arise from alternating play, so it panics instead of guessing.
func Evaluate(board Board) string {
	winner := EmptyCell

	for _, line := range winLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a == EmptyCell || a != b || b != c {
			continue
		}

		if winner != EmptyCell && winner != a {
			panic(fmt.Sprintf("board holds winning lines for both %s and %s", winner, a))
		}

		winner = a
	}

	if winner != EmptyCell {
		return winner
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return WinnerDraw
}

// NextMark - returns the mark that acts after the given one.
func NextMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}

// Empty - returns the free cell indices in ascending order. The order is a
// contract: the search engine's tie-break relies on it.
func Empty(board Board) []int {
	cells := make([]int, 0, len(board))

	for i, cell := range board {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}
