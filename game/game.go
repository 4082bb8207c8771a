// Package game keeps a single xiangqi game: the board, whose turn it is,
// whether the game is over, and an engine to ask for moves.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/config"
	"github.com/domino14/xiangqi/eval"
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/movegen"
	"github.com/domino14/xiangqi/piece"
	"github.com/domino14/xiangqi/search/negamax"
	"github.com/domino14/xiangqi/zobrist"
)

type PlayState int

const (
	PlayStatePlaying PlayState = iota
	PlayStateRedWon
	PlayStateBlackWon
)

func (p PlayState) String() string {
	switch p {
	case PlayStateRedWon:
		return "red won"
	case PlayStateBlackWon:
		return "black won"
	}
	return "playing"
}

var (
	ErrInvalidMove = errors.New("invalid move")
	ErrGameOver    = errors.New("game is over")
)

// Game is the internal game structure. It validates moves from outside
// and hands its board to the solver for engine moves. A Game is not safe
// for concurrent use.
type Game struct {
	cfg     *config.Config
	board   *board.Board
	zobrist *zobrist.Zobrist
	solver  *negamax.Solver

	playing PlayState
	// searchPlies overrides the configured depth when positive.
	searchPlies int
	// moves is every move played since the game (or FEN) was set up.
	moves []move.Move
}

// NewGame returns a game in the starting position.
func NewGame(cfg *config.Config) *Game {
	z := zobrist.NewZobrist(cfg.GetUint64(config.ConfigZobristSeed))
	s := negamax.NewSolver(z, eval.MaterialPositional{})
	s.SetTranspositionTable(negamax.NewTranspositionTable(
		cfg.GetFloat64(config.ConfigTTableMemFraction),
		cfg.GetInt(config.ConfigTTableMaxEntries)))
	s.SetTimeBudget(cfg.GetDuration(config.ConfigSearchTime))

	return &Game{
		cfg:     cfg,
		board:   board.InitialBoard(),
		zobrist: z,
		solver:  s,
	}
}

// NewGameFromFEN returns a game set up from fen.
func NewGameFromFEN(cfg *config.Config, fen string) (*Game, error) {
	g := NewGame(cfg)
	if err := g.LoadFEN(fen); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset goes back to the starting position.
func (g *Game) Reset() {
	g.board.SetToInitial()
	g.moves = g.moves[:0]
	g.playing = PlayStatePlaying
}

// LoadFEN replaces the position. The move list starts over.
func (g *Game) LoadFEN(fen string) error {
	if err := g.board.SetFromFEN(fen); err != nil {
		return err
	}
	g.moves = g.moves[:0]
	g.updatePlayState()
	return nil
}

// LegalMoves returns the legal moves for the side to move.
func (g *Game) LegalMoves() []move.Move {
	return movegen.GenLegalMoves(g.board, g.board.SideToMove())
}

// ValidateMove returns the legal move with m's squares, with its pieces
// filled in from the board.
func (g *Game) ValidateMove(m move.Move) (move.Move, error) {
	if g.playing != PlayStatePlaying {
		return move.Move{}, ErrGameOver
	}
	legal, ok := lo.Find(g.LegalMoves(), func(l move.Move) bool {
		return l.SameSquares(m)
	})
	if !ok {
		return move.Move{}, fmt.Errorf("%w: %s", ErrInvalidMove, m.ShortDescription())
	}
	return legal, nil
}

// PlayMove validates and plays m, and returns the move as played.
func (g *Game) PlayMove(m move.Move) (move.Move, error) {
	legal, err := g.ValidateMove(m)
	if err != nil {
		return move.Move{}, err
	}
	g.board.PlayMove(legal)
	played := g.board.LastMove()
	g.moves = append(g.moves, played)
	g.updatePlayState()
	log.Debug().Str("move", played.String()).Str("state", g.playing.String()).Msg("played-move")
	return played, nil
}

// PlayMoveText plays a move given in ICCS text, like "h2e2".
func (g *Game) PlayMoveText(s string) (move.Move, error) {
	m, err := move.ParseMove(s)
	if err != nil {
		return move.Move{}, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
	return g.PlayMove(m)
}

// UnplayLastMove takes back the last move. Moves from before a LoadFEN
// cannot be taken back.
func (g *Game) UnplayLastMove() {
	if len(g.moves) == 0 {
		return
	}
	g.board.UnplayLastMove()
	g.moves = g.moves[:len(g.moves)-1]
	g.updatePlayState()
}

// EngineMove asks the solver for a move in the current position, using
// the configured depth and time budget. It does not play the move.
func (g *Game) EngineMove(ctx context.Context) (move.Move, int, error) {
	if g.playing != PlayStatePlaying {
		return move.Move{}, 0, ErrGameOver
	}
	plies := g.searchPlies
	if plies <= 0 {
		plies = g.cfg.GetInt(config.ConfigSearchPlies)
	}
	return g.solver.Solve(ctx, g.board, plies)
}

// SetSearchPlies overrides the configured engine depth. Zero goes back to
// the configured value.
func (g *Game) SetSearchPlies(p int) {
	g.searchPlies = p
}

// PlayEngineMove finds and plays the engine's move.
func (g *Game) PlayEngineMove(ctx context.Context) (move.Move, int, error) {
	m, v, err := g.EngineMove(ctx)
	if err != nil {
		return move.Move{}, 0, err
	}
	played, err := g.PlayMove(m)
	return played, v, err
}

// updatePlayState ends the game when the side to move has no legal move.
// Checkmate and stalemate both lose.
func (g *Game) updatePlayState() {
	side := g.board.SideToMove()
	if movegen.HasLegalMove(g.board, side) {
		g.playing = PlayStatePlaying
		return
	}
	if side == piece.Red {
		g.playing = PlayStateBlackWon
	} else {
		g.playing = PlayStateRedWon
	}
	log.Debug().Str("loser", side.String()).
		Bool("stalemate", !movegen.InCheck(g.board, side)).
		Msg("game-ended")
}

func (g *Game) Board() *board.Board {
	return g.board
}

func (g *Game) Solver() *negamax.Solver {
	return g.solver
}

func (g *Game) Zobrist() *zobrist.Zobrist {
	return g.zobrist
}

func (g *Game) Config() *config.Config {
	return g.cfg
}

func (g *Game) Playing() PlayState {
	return g.playing
}

func (g *Game) SideToMove() piece.Side {
	return g.board.SideToMove()
}

// Turn is the number of moves played so far.
func (g *Game) Turn() int {
	return len(g.moves)
}

// History returns the moves played so far in ICCS text.
func (g *Game) History() []string {
	return lo.Map(g.moves, func(m move.Move, _ int) string {
		return m.ShortDescription()
	})
}

// Hash is the zobrist key of the current position.
func (g *Game) Hash() uint64 {
	return g.zobrist.Hash(g.board)
}
