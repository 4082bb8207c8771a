package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/piece"
)

func TestStartingPositionIsBalanced(t *testing.T) {
	b := board.InitialBoard()
	assert.Equal(t, 0, Evaluate(b))
	assert.Equal(t, board.StartingFEN, b.FEN())
}

func TestMaterial(t *testing.T) {
	// kings cancel out; red has an extra rook.
	b, err := board.FromFEN("3k5/9/9/9/9/9/9/9/9/4KR3 w")
	assert.NoError(t, err)
	assert.Equal(t, 900, Evaluate(b))

	// side to move doesn't matter.
	b.SetSideToMove(piece.Black)
	assert.Equal(t, 900, Evaluate(b))
}

func TestPawnTableIsMirrored(t *testing.T) {
	// a red pawn on e5 (row 4) and a black pawn on e4 (row 5) have both
	// crossed the river by one rank.
	red := PositionalBonus(piece.Pawn, piece.Red, piece.Square(4, 4))
	black := PositionalBonus(piece.Pawn, piece.Black, piece.Square(5, 4))
	assert.Equal(t, 40, red)
	assert.Equal(t, red, black)

	b, err := board.FromFEN("3k5/9/9/9/4P4/4p4/9/9/9/5K3 w")
	assert.NoError(t, err)
	assert.Equal(t, 0, Evaluate(b))
}

func TestTypesWithoutTable(t *testing.T) {
	for _, tp := range []piece.Type{piece.King, piece.Advisor, piece.Elephant, piece.Rook, piece.Cannon} {
		for sq := 0; sq < piece.NumSquares; sq++ {
			assert.Equal(t, 0, PositionalBonus(tp, piece.Red, sq))
		}
	}
}

func TestEvaluateIsPure(t *testing.T) {
	b := board.InitialBoard()
	b.PlayMove(move.Move{From: piece.Square(7, 7), To: piece.Square(7, 4)})
	before := b.Copy()
	v1 := Evaluate(b)
	v2 := MaterialPositional{}.Evaluate(b)
	assert.Equal(t, v1, v2)
	assert.True(t, b.SamePosition(before))
	assert.Equal(t, 1, b.HistoryLen())
}
