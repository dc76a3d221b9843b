package bot

import (
	"errors"

	"github.com/gridrunner/tictactoe-backend/internal/tictactoe"
)

// ErrNoLegalMove - asking for a move on a concluded board is a caller bug;
// callers check the board is still open before asking.
var ErrNoLegalMove = errors.New("no legal move on the board")

const (
	scoreWin  = 10
	scoreLoss = -10
	scoreDraw = 0
)

// Engine picks moves by searching the full game tree. At nine cells the tree
// is small enough to walk to the end, so the engine never loses: it wins when
// the opponent slips and draws otherwise.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// BestMove - returns the cell the given mark should take on this board.
// Among equally scored moves the lowest cell index wins, which makes the
// choice deterministic: on an empty board X always opens on cell 0.
func (that *Engine) BestMove(board tictactoe.Board, mark string) (int, error) {
	if tictactoe.Evaluate(board) != tictactoe.EmptyCell {
		return 0, ErrNoLegalMove
	}

	bestCell := -1
	bestScore := scoreLoss - 1

	for _, cell := range tictactoe.Empty(board) {
		child := board
		child[cell] = mark

		score := that.minimax(child, tictactoe.NextMark(mark), mark)
		if score > bestScore {
			bestScore = score
			bestCell = cell
		}
	}

	return bestCell, nil
}

// minimax - scores a position for mark, assuming both sides play perfectly:
// mark maximizes on its turns, the opponent minimizes on theirs. No depth
// discount; a forced win counts the same however far off it is.
func (that *Engine) minimax(board tictactoe.Board, turn, mark string) int {
	if result := tictactoe.Evaluate(board); result != tictactoe.EmptyCell {
		switch result {
		case mark:
			return scoreWin
		case tictactoe.WinnerDraw:
			return scoreDraw
		default:
			return scoreLoss
		}
	}

	maximizing := turn == mark

	best := scoreLoss - 1
	if !maximizing {
		best = scoreWin + 1
	}

	for _, cell := range tictactoe.Empty(board) {
		child := board
		child[cell] = turn

		score := that.minimax(child, tictactoe.NextMark(turn), mark)

		if maximizing && score > best {
			best = score
		}

		if !maximizing && score < best {
			best = score
		}
	}

	return best
}
