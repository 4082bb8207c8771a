// Package eval scores a position statically: material plus a positional
// bonus from piece-square tables.
package eval

import (
	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/piece"
)

// Evaluator scores a board from Red's point of view: positive favours Red.
// Implementations must be deterministic and must not modify the board.
type Evaluator interface {
	Evaluate(b *board.Board) int
}

var pieceValues = [piece.NumTypes]int{
	piece.King:     10000,
	piece.Rook:     900,
	piece.Cannon:   450,
	piece.Knight:   400,
	piece.Elephant: 20,
	piece.Advisor:  20,
	piece.Pawn:     10,
}

// PieceValue is the material value of a piece type.
func PieceValue(t piece.Type) int {
	return pieceValues[t]
}

// pst is a piece-square table seen from the owner's side: row 0 is the
// owner's back rank and row 9 the enemy's.
type pst [piece.NumRows][piece.NumCols]int

// Pawns gain value once across the river and near the enemy palace.
var pawnTable = pst{
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 20, 0, 0, 0, 0},
	{0, 0, 0, 0, 20, 0, 0, 0, 0},
	{10, 10, 20, 30, 40, 30, 20, 10, 10},
	{20, 30, 40, 50, 60, 50, 40, 30, 20},
	{30, 40, 50, 60, 70, 60, 50, 40, 30},
	{40, 50, 60, 70, 80, 70, 60, 50, 40},
	{50, 60, 70, 80, 80, 80, 70, 60, 50},
}

// Knights are poor on the edge and on their own back rank.
var knightTable = pst{
	{0, -10, 0, 0, 0, 0, 0, -10, 0},
	{0, 0, 0, 0, -10, 0, 0, 0, 0},
	{0, 0, 10, 10, 10, 10, 10, 0, 0},
	{0, 5, 10, 15, 15, 15, 10, 5, 0},
	{0, 10, 15, 20, 20, 20, 15, 10, 0},
	{0, 15, 20, 25, 25, 25, 20, 15, 0},
	{5, 20, 25, 30, 30, 30, 25, 20, 5},
	{5, 20, 30, 30, 25, 30, 30, 20, 5},
	{0, 10, 20, 25, 20, 25, 20, 10, 0},
	{0, 0, 5, 10, 5, 10, 5, 0, 0},
}

var tables = [piece.NumTypes]*pst{
	piece.Pawn:   &pawnTable,
	piece.Knight: &knightTable,
}

// PositionalBonus returns the table bonus for a piece of type t owned by s
// standing on sq. Types without a table score 0.
func PositionalBonus(t piece.Type, s piece.Side, sq int) int {
	tbl := tables[t]
	if tbl == nil {
		return 0
	}
	r := piece.Row(sq)
	if s == piece.Red {
		r = piece.NumRows - 1 - r
	}
	return tbl[r][piece.Col(sq)]
}

// MaterialPositional is the default evaluator.
type MaterialPositional struct{}

func (MaterialPositional) Evaluate(b *board.Board) int {
	return Evaluate(b)
}

// Evaluate sums material and positional bonuses, Red positive.
func Evaluate(b *board.Board) int {
	score := 0
	for sq := 0; sq < piece.NumSquares; sq++ {
		p := b.At(sq)
		if p == piece.Empty {
			continue
		}
		t := p.Type()
		s := p.Side()
		v := pieceValues[t] + PositionalBonus(t, s, sq)
		score += v * int(s)
	}
	return score
}
