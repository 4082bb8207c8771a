// Package negamax picks a move with an iterative-deepening negamax search
// with alpha-beta pruning and a transposition table.
package negamax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/eval"
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/movegen"
	"github.com/domino14/xiangqi/piece"
	"github.com/domino14/xiangqi/zobrist"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
(* Initial call for Player A's root node *)
negamax(rootNode, depth, −∞, +∞, 1)
**/

const (
	Infinity  = 1_000_000
	MateValue = 100_000

	// Ordering weights. Only their relative order matters.
	HashMoveOffset    = 1_000_000
	CaptureMultiplier = 10

	DefaultTimeBudget = 10 * time.Second
)

var (
	ErrNoMove      = errors.New("no legal move available")
	ErrBadPlies    = errors.New("use at least 1 ply")
	ErrNoEvaluator = errors.New("solver has no evaluator")
)

// LogIteration is written to the log stream, if one is set, after every
// iteration of the deepening loop.
type LogIteration struct {
	Depth     int       `json:"depth" yaml:"depth"`
	Score     int       `json:"score" yaml:"score"`
	Best      string    `json:"best" yaml:"best"`
	Partial   bool      `json:"partial,omitempty" yaml:"partial,omitempty"`
	Nodes     uint64    `json:"nodes" yaml:"nodes"`
	ElapsedMs int64     `json:"elapsed_ms" yaml:"elapsed_ms"`
	PV        []string  `json:"pv" yaml:"pv,flow"`
	Plays     []LogPlay `json:"plays" yaml:"plays"`
}

// LogPlay is the value of a single root move.
type LogPlay struct {
	Play  string `json:"play" yaml:"play"`
	Value int    `json:"value" yaml:"value"`
}

// Solver is the search engine. It owns its transposition table, so one
// Solver runs one search at a time, and the board passed to Solve belongs
// to the search until Solve returns.
type Solver struct {
	zobrist   *zobrist.Zobrist
	evaluator eval.Evaluator
	ttable    *TranspositionTable

	transpositionTableOptim bool
	iterativeDeepeningOptim bool

	timeBudget time.Duration
	tstart     time.Time

	bestMove           move.Move
	bestValue          int
	searchedAny        bool
	completedDepth     int
	principalVariation PVLine

	nodes atomic.Uint64

	logStream io.Writer
}

// NewSolver returns a solver hashing positions with z and scoring leaves
// with ev. Unless one is set, a memory-sized transposition table is made
// on the first Solve.
func NewSolver(z *zobrist.Zobrist, ev eval.Evaluator) *Solver {
	s := &Solver{}
	s.Init(z, ev)
	return s
}

// Init initializes the solver
func (s *Solver) Init(z *zobrist.Zobrist, ev eval.Evaluator) {
	s.zobrist = z
	s.evaluator = ev
	s.transpositionTableOptim = true
	s.iterativeDeepeningOptim = true
	s.timeBudget = DefaultTimeBudget
}

// Solve searches b for the side to move, deepening one ply at a time up
// to plies, and returns the best move with its score from the mover's
// point of view. It returns ErrNoMove if the side to move has no legal
// move; detecting whether that is checkmate or stalemate is up to the
// caller.
//
// The time budget and ctx are only checked between root moves, never
// deeper in the tree, so a search can overrun the budget by however long
// the root move in progress takes. The first root move of a call is always
// searched, so a position with a legal move always yields one.
//
// The transposition table is cleared at the start of every call, so
// identical inputs give identical results.
func (s *Solver) Solve(ctx context.Context, b *board.Board, plies int) (move.Move, int, error) {
	if plies < 1 {
		return move.Move{}, 0, ErrBadPlies
	}
	if s.evaluator == nil {
		return move.Move{}, 0, ErrNoEvaluator
	}
	log.Debug().Int("plies", plies).Dur("time-budget", s.timeBudget).
		Str("fen", b.FEN()).Msg("negamax-solve-config")
	s.tstart = time.Now()
	s.nodes.Store(0)
	s.bestMove = move.Move{}
	s.bestValue = 0
	s.searchedAny = false
	s.completedDepth = 0
	s.principalVariation = PVLine{}
	if s.ttable == nil {
		s.ttable = NewTranspositionTable(0.05, 0)
	}
	if s.transpositionTableOptim {
		s.ttable.Clear()
	}

	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		defer close(done)
		return s.iterativelyDeepen(ctx, b, plies)
	})

	err := g.Wait()
	created, lookups, hits, clears := s.ttable.Stats()
	log.Info().
		Uint64("ttable-created", created).
		Uint64("ttable-lookups", lookups).
		Uint64("ttable-hits", hits).
		Uint64("ttable-clears", clears).
		Uint64("nodes", s.nodes.Load()).
		Int("completed-depth", s.completedDepth).
		Str("best", s.bestMove.ShortDescription()).
		Int("value", s.bestValue).
		Float64("time-elapsed-sec", time.Since(s.tstart).Seconds()).
		Msg("solve-returning")
	if err != nil {
		return move.Move{}, 0, err
	}
	if s.bestMove.IsNull() {
		return move.Move{}, 0, ErrNoMove
	}
	return s.bestMove, s.bestValue, nil
}

func (s *Solver) outOfTime(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.timeBudget > 0 && time.Since(s.tstart) > s.timeBudget
}

func (s *Solver) iterativelyDeepen(ctx context.Context, b *board.Board, plies int) error {
	start := 1
	if !s.iterativeDeepeningOptim {
		start = plies
	}
	for p := start; p <= plies; p++ {
		log.Debug().Int("plies", p).Msg("deepening-iteratively")
		moves := movegen.GenLegalMoves(b, b.SideToMove())
		if len(moves) == 0 {
			break
		}
		// the previous iteration's best move goes first.
		s.orderMoves(moves, s.bestMove)

		α := -Infinity
		β := Infinity
		bestValue := -Infinity
		var iterBest move.Move
		partial := false
		var plays []LogPlay
		pv := PVLine{}
		childPV := PVLine{}

		for _, m := range moves {
			if s.searchedAny && s.outOfTime(ctx) {
				partial = true
				break
			}
			b.PlayMove(m)
			s.nodes.Add(1)
			value := -s.negamax(b, p-1, -β, -α, &childPV)
			b.UnplayLastMove()
			s.searchedAny = true
			if s.logStream != nil {
				plays = append(plays, LogPlay{Play: m.ShortDescription(), Value: value})
			}
			if value > bestValue {
				bestValue = value
				iterBest = m
				pv.Update(m, childPV, value)
			}
			α = max(α, bestValue)
			childPV.Clear()
		}

		if !iterBest.IsNull() {
			s.bestMove = iterBest
			s.bestValue = bestValue
			s.principalVariation = pv.Copy()
			if !partial {
				s.completedDepth = p
			}
		}
		log.Debug().Int("value", bestValue).Int("ply", p).Bool("partial", partial).
			Str("pv", pv.NLBString()).Msg("best-val")
		if err := s.writeLogIteration(p, bestValue, iterBest, partial, pv, plays); err != nil {
			return err
		}
		if s.outOfTime(ctx) {
			break
		}
	}
	return nil
}

func (s *Solver) writeLogIteration(depth, value int, best move.Move, partial bool, pv PVLine, plays []LogPlay) error {
	if s.logStream == nil {
		return nil
	}
	out, err := yaml.Marshal([]LogIteration{{
		Depth:     depth,
		Score:     value,
		Best:      best.ShortDescription(),
		Partial:   partial,
		Nodes:     s.nodes.Load(),
		ElapsedMs: time.Since(s.tstart).Milliseconds(),
		PV:        pv.Descriptions(),
		Plays:     plays,
	}})
	if err != nil {
		return fmt.Errorf("marshalling log iteration: %w", err)
	}
	_, err = s.logStream.Write(out)
	return err
}

type playSorter struct {
	estimates []int
	moves     []move.Move
}

func (p playSorter) Len() int { return len(p.moves) }
func (p playSorter) Swap(i, j int) {
	p.estimates[i], p.estimates[j] = p.estimates[j], p.estimates[i]
	p.moves[i], p.moves[j] = p.moves[j], p.moves[i]
}
func (p playSorter) Less(i, j int) bool {
	return p.estimates[j] < p.estimates[i]
}

// orderMoves puts the hint move first, then captures by the value of the
// captured piece, then quiet moves in generation order.
func (s *Solver) orderMoves(moves []move.Move, hint move.Move) {
	estimates := make([]int, len(moves))
	for i, m := range moves {
		if m.IsCapture() {
			estimates[i] = CaptureMultiplier * eval.PieceValue(m.Captured.Type())
		}
		if !hint.IsNull() && m.SameSquares(hint) {
			estimates[i] += HashMoveOffset
		}
	}
	sort.Stable(playSorter{estimates: estimates, moves: moves})
}

// negamax returns the value of b for the side to move.
func (s *Solver) negamax(b *board.Board, depth int, α, β int, pv *PVLine) int {
	alphaOrig := α
	var nodeKey uint64
	var ttMove move.Move

	if s.transpositionTableOptim {
		nodeKey = s.zobrist.Hash(b)
		var score int
		var cutoff bool
		score, α, β, ttMove, cutoff = s.ttable.Probe(nodeKey, depth, α, β)
		if cutoff {
			// the PV stops here; the value is still correct.
			return score
		}
	}

	if depth <= 0 {
		val := s.evaluator.Evaluate(b)
		if b.SideToMove() == piece.Black {
			return -val
		}
		return val
	}

	children := movegen.GenLegalMoves(b, b.SideToMove())
	if len(children) == 0 {
		// Losing sooner (more depth left) scores worse.
		return -(MateValue + depth)
	}
	s.orderMoves(children, ttMove)

	childPV := PVLine{}
	bestValue := -Infinity
	var bestMove move.Move
	for _, child := range children {
		b.PlayMove(child)
		s.nodes.Add(1)
		value := -s.negamax(b, depth-1, -β, -α, &childPV)
		b.UnplayLastMove()
		if value > bestValue {
			bestValue = value
			bestMove = child
			pv.Update(child, childPV, bestValue)
		}
		α = max(α, bestValue)
		if α >= β {
			break // beta cut-off
		}
		childPV.Clear() // clear the child node's pv for the next child node
	}

	if s.transpositionTableOptim {
		var flag uint8
		if bestValue <= alphaOrig {
			flag = TTUpper
		} else if bestValue >= β {
			flag = TTLower
		} else {
			flag = TTExact
		}
		s.ttable.Store(nodeKey, depth, bestValue, flag, bestMove)
	}
	return bestValue
}

func (s *Solver) SetTimeBudget(d time.Duration) {
	s.timeBudget = d
}

func (s *Solver) TimeBudget() time.Duration {
	return s.timeBudget
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetTranspositionTable(tt *TranspositionTable) {
	s.ttable = tt
}

func (s *Solver) TranspositionTable() *TranspositionTable {
	return s.ttable
}

func (s *Solver) SetZobrist(z *zobrist.Zobrist) {
	s.zobrist = z
}

func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// Nodes is the number of positions visited by the last Solve.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// CompletedDepth is the deepest iteration of the last Solve that searched
// every root move.
func (s *Solver) CompletedDepth() int {
	return s.completedDepth
}

func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}
