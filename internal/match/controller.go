package match

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gridrunner/tictactoe-backend/internal/entity"
	"github.com/gridrunner/tictactoe-backend/internal/tictactoe"
)

const (
	VariantHumanVsHuman = "hotseat"
	VariantHumanVsBot   = "bot"
)

// In a vs-bot match the human always opens as X and the bot answers as O.
const (
	humanMark = tictactoe.PlayerX
	botMark   = tictactoe.PlayerO
)

type engine interface {
	BestMove(board tictactoe.Board, mark string) (int, error)
}

// Controller runs a single non-networked match: both hotseat and vs-bot.
// Rejected moves are dropped without an error; presentation reads State or
// subscribes with OnState instead of handling failures.
type Controller struct {
	logger   *slog.Logger
	engine   engine
	botDelay time.Duration

	mu         sync.Mutex
	game       *entity.Game
	variant    string
	generation uint64
	onState    func(entity.Game)
}

func NewController(logger *slog.Logger, engine engine, botDelay time.Duration) *Controller {
	return &Controller{
		logger:   logger,
		engine:   engine,
		botDelay: botDelay,
	}
}

// Start - begins a fresh match of the given variant. Any bot reply still
// pending from the previous match belongs to an older generation and is
// discarded when it fires.
func (that *Controller) Start(variant string) {
	that.mu.Lock()

	that.generation++
	that.variant = variant

	game := entity.NewGame()
	game.Status = entity.StatusOngoing
	that.game = game

	snapshot := *game
	callback := that.onState

	that.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// SubmitMove - plays the acting mark on the given cell. Moves that the rules
// reject, moves after the match concluded and human clicks while the bot is
// thinking are all ignored.
func (that *Controller) SubmitMove(cell int) {
	log := that.logger.With("method", "SubmitMove")

	that.mu.Lock()

	game := that.game
	if game == nil {
		that.mu.Unlock()
		return
	}

	if that.variant == VariantHumanVsBot && game.Turn != humanMark {
		that.mu.Unlock()
		return
	}

	if err := game.MakeTurn(game.Turn, cell); err != nil {
		that.mu.Unlock()
		log.Debug("move ignored", "cell", cell, "error", err)

		return
	}

	if that.variant == VariantHumanVsBot && game.IsOngoing() {
		that.scheduleBotReply(that.generation)
	}

	snapshot := *game
	callback := that.onState

	that.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// State - returns a copy of the current game.
func (that *Controller) State() entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil {
		return *entity.NewGame()
	}

	return *that.game
}

// OnState - registers the snapshot hook, fired after every accepted
// mutation, the bot's replies included.
func (that *Controller) OnState(fn func(entity.Game)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onState = fn
}

func (that *Controller) scheduleBotReply(generation uint64) {
	time.AfterFunc(that.botDelay, func() {
		that.playBotReply(generation)
	})
}

// playBotReply - runs the scheduled engine reply. The generation check drops
// replies that outlived their match; the rest is re-validated under the lock
// because the board may have changed since scheduling.
func (that *Controller) playBotReply(generation uint64) {
	log := that.logger.With("method", "playBotReply")

	that.mu.Lock()

	game := that.game
	if generation != that.generation || game == nil || !game.IsOngoing() || game.Turn != botMark {
		that.mu.Unlock()
		return
	}

	cell, err := that.engine.BestMove(game.Board, botMark)
	if err != nil {
		that.mu.Unlock()
		log.Error("failed to pick a reply", "error", err)

		return
	}

	if err := game.MakeTurn(botMark, cell); err != nil {
		that.mu.Unlock()
		log.Error("failed to play the reply", "cell", cell, "error", err)

		return
	}

	snapshot := *game
	callback := that.onState

	that.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}
