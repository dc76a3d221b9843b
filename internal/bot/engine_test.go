package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridrunner/tictactoe-backend/internal/tictactoe"
)

func TestEngine_BestMove(t *testing.T) {
	engine := NewEngine()

	t.Run("Opens on cell 0 on an empty board", func(t *testing.T) {
		// Given: an empty board
		var board tictactoe.Board

		// When: X asks for the best move
		cell, err := engine.BestMove(board, tictactoe.PlayerX)
		require.NoError(t, err)

		// Then: the deterministic tie-break picks the first cell
		assert.Equal(t, 0, cell)
	})

	t.Run("Takes an immediate win", func(t *testing.T) {
		// Given: X holds two cells of the top row
		board := tictactoe.Board{
			tictactoe.PlayerX, tictactoe.PlayerX, "",
			tictactoe.PlayerO, tictactoe.PlayerO, "",
			"", "", "",
		}

		// When: X asks for the best move
		cell, err := engine.BestMove(board, tictactoe.PlayerX)
		require.NoError(t, err)

		// Then: it completes the row instead of blocking
		assert.Equal(t, 2, cell)
	})

	t.Run("Blocks an imminent loss", func(t *testing.T) {
		// Given: O threatens the middle row, X has no win of its own
		board := tictactoe.Board{
			tictactoe.PlayerX, "", "",
			tictactoe.PlayerO, tictactoe.PlayerO, "",
			tictactoe.PlayerX, "", "",
		}

		// When: X asks for the best move
		cell, err := engine.BestMove(board, tictactoe.PlayerX)
		require.NoError(t, err)

		// Then: it blocks cell 5
		assert.Equal(t, 5, cell)
	})

	t.Run("Fails on a full board", func(t *testing.T) {
		// Given: a drawn, full board
		board := tictactoe.Board{
			tictactoe.PlayerX, tictactoe.PlayerO, tictactoe.PlayerX,
			tictactoe.PlayerX, tictactoe.PlayerO, tictactoe.PlayerO,
			tictactoe.PlayerO, tictactoe.PlayerX, tictactoe.PlayerX,
		}

		// When: asking for a move anyway
		_, err := engine.BestMove(board, tictactoe.PlayerX)

		// Then: there is no legal move
		assert.ErrorIs(t, err, ErrNoLegalMove)
	})

	t.Run("Fails on a decided board", func(t *testing.T) {
		// Given: X already won
		board := tictactoe.Board{
			tictactoe.PlayerX, tictactoe.PlayerX, tictactoe.PlayerX,
			tictactoe.PlayerO, tictactoe.PlayerO, "",
			"", "", "",
		}

		// When: O asks for a move on the dead board
		_, err := engine.BestMove(board, tictactoe.PlayerO)

		// Then: there is no legal move
		assert.ErrorIs(t, err, ErrNoLegalMove)
	})
}

func TestEngine_SelfPlay(t *testing.T) {
	t.Run("Engine against itself always draws", func(t *testing.T) {
		// Given: two perfect players sharing one engine
		engine := NewEngine()

		var board tictactoe.Board
		turn := tictactoe.PlayerX

		// When: they play a full game
		for tictactoe.Evaluate(board) == tictactoe.EmptyCell {
			cell, err := engine.BestMove(board, turn)
			require.NoError(t, err)

			board, err = tictactoe.Apply(board, cell, turn)
			require.NoError(t, err)

			turn = tictactoe.NextMark(turn)
		}

		// Then: nobody wins
		assert.Equal(t, tictactoe.WinnerDraw, tictactoe.Evaluate(board))
	})
}

func TestEngine_NeverLoses(t *testing.T) {
	engine := NewEngine()

	t.Run("As X against every opponent line", func(t *testing.T) {
		var board tictactoe.Board
		exploreOpponentLines(t, engine, board, tictactoe.PlayerX, tictactoe.PlayerX)
	})

	t.Run("As O against every opponent line", func(t *testing.T) {
		var board tictactoe.Board
		exploreOpponentLines(t, engine, board, tictactoe.PlayerX, tictactoe.PlayerO)
	})
}

// exploreOpponentLines - plays engineMark's turns with the engine and
// branches over every legal reply for the other side, failing on any line
// the opponent wins.
func exploreOpponentLines(t *testing.T, engine *Engine, board tictactoe.Board, turn, engineMark string) {
	t.Helper()

	if result := tictactoe.Evaluate(board); result != tictactoe.EmptyCell {
		opponent := tictactoe.NextMark(engineMark)
		require.NotEqual(t, opponent, result, "engine lost the line ending in %v", board)

		return
	}

	if turn == engineMark {
		cell, err := engine.BestMove(board, engineMark)
		require.NoError(t, err)

		next, err := tictactoe.Apply(board, cell, engineMark)
		require.NoError(t, err)

		exploreOpponentLines(t, engine, next, tictactoe.NextMark(turn), engineMark)

		return
	}

	for _, cell := range tictactoe.Empty(board) {
		next, err := tictactoe.Apply(board, cell, turn)
		require.NoError(t, err)

		exploreOpponentLines(t, engine, next, tictactoe.NextMark(turn), engineMark)
	}
}
