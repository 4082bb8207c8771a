// Package automatic plays the engine against itself. Games start from the
// initial position, optionally with a few random opening moves so that a
// batch of games is not a batch of copies.
package automatic

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/xiangqi/config"
	"github.com/domino14/xiangqi/game"
)

const (
	DefaultMaxPlies    = 200
	DefaultRandomPlies = 4

	ResultRed   = "red"
	ResultBlack = "black"
	// ResultDraw is a game cut off at the ply limit. There is no repetition
	// rule, so an undecided game would otherwise never end.
	ResultDraw = "draw"
)

// GameResult is one finished game.
type GameResult struct {
	GameID  string
	Winner  string
	Plies   int
	Opening []string
}

// GameRunner is the master struct here for the automatic game logic.
type GameRunner struct {
	game   *game.Game
	config *config.Config
	rng    *frand.RNG

	randomPlies int
	maxPlies    int
	budget      time.Duration

	logchan chan string
}

// NewGameRunner just instantiates and initializes a game runner.
func NewGameRunner(logchan chan string, cfg *config.Config) *GameRunner {
	r := &GameRunner{logchan: logchan, config: cfg}
	r.Init(0, DefaultRandomPlies, DefaultMaxPlies)
	return r
}

// Init sets the opening randomness and the ply limit, and makes a fresh
// game.
func (r *GameRunner) Init(seed uint64, randomPlies, maxPlies int) {
	r.game = game.NewGame(r.config)
	r.budget = r.config.GetDuration(config.ConfigSearchTime)
	r.randomPlies = randomPlies
	r.maxPlies = maxPlies
	r.Reseed(seed)
}

// Reseed restarts the opening RNG.
func (r *GameRunner) Reseed(seed uint64) {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	r.rng = frand.NewCustom(s[:], 1024, 12)
}

// SetSearchPlies sets the engine depth for both sides.
func (r *GameRunner) SetSearchPlies(p int) {
	r.game.SetSearchPlies(p)
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

// playRandomOpening plays up to randomPlies uniformly random legal moves.
func (r *GameRunner) playRandomOpening() ([]string, error) {
	var opening []string
	for i := 0; i < r.randomPlies && r.game.Playing() == game.PlayStatePlaying; i++ {
		moves := r.game.LegalMoves()
		m, err := r.game.PlayMove(moves[r.rng.Intn(len(moves))])
		if err != nil {
			return nil, err
		}
		opening = append(opening, m.ShortDescription())
	}
	return opening, nil
}

// PlayEngineTurn lets the engine move for the side on turn.
func (r *GameRunner) PlayEngineTurn(ctx context.Context, gameID string) error {
	side := r.game.SideToMove()
	m, v, err := r.game.PlayEngineMove(ctx)
	if err != nil {
		return err
	}
	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%v,%v\n",
			gameID, r.game.Turn(), side, m.ShortDescription(), v,
			r.game.Solver().CompletedDepth())
	}
	return nil
}

// PlayFullGame plays one game to the end or to the ply limit.
func (r *GameRunner) PlayFullGame(ctx context.Context, gameID string) (*GameResult, error) {
	r.game.Reset()
	r.game.Solver().SetTimeBudget(r.budget)
	opening, err := r.playRandomOpening()
	if err != nil {
		return nil, err
	}
	for r.game.Playing() == game.PlayStatePlaying && r.game.Turn() < r.maxPlies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.PlayEngineTurn(ctx, gameID); err != nil {
			return nil, err
		}
	}
	res := &GameResult{GameID: gameID, Plies: r.game.Turn(), Opening: opening}
	switch r.game.Playing() {
	case game.PlayStateRedWon:
		res.Winner = ResultRed
	case game.PlayStateBlackWon:
		res.Winner = ResultBlack
	default:
		res.Winner = ResultDraw
	}
	log.Debug().Str("game", gameID).Str("winner", res.Winner).Int("plies", res.Plies).
		Str("opening", strings.Join(opening, " ")).Msg("game-over")
	return res, nil
}
