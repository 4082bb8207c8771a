package movegen

import (
	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/piece"
)

// IsFaceToFace reports whether the two kings stand on the same file with
// nothing between them. A move that produces this is illegal, exactly
// like a move that leaves its own king in check.
func IsFaceToFace(b *board.Board) bool {
	red := b.KingSquare(piece.Red)
	black := b.KingSquare(piece.Black)
	if red < 0 || black < 0 {
		return false
	}
	c := piece.Col(red)
	if c != piece.Col(black) {
		return false
	}
	for r := piece.Row(black) + 1; r < piece.Row(red); r++ {
		if b.At(piece.Square(r, c)) != piece.Empty {
			return false
		}
	}
	return true
}

// InCheck reports whether some pseudo-legal move of side's opponent lands
// on side's king. Pseudo-legal moves are used on purpose: the legality
// filter calls InCheck, so using legal moves here would recurse forever.
func InCheck(b *board.Board, side piece.Side) bool {
	k := b.KingSquare(side)
	if k < 0 {
		return false
	}
	var buf [24]move.Move
	opp := side.Opponent()
	for sq := 0; sq < piece.NumSquares; sq++ {
		p := b.At(sq)
		if !p.Belongs(opp) {
			continue
		}
		moves := generators[p.Type()](b, sq, opp, buf[:0])
		for _, m := range moves {
			if m.To == k {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports whether side is in check and has no legal move.
func IsCheckmate(b *board.Board, side piece.Side) bool {
	return InCheck(b, side) && !HasLegalMove(b, side)
}

// IsStalemate reports whether side is not in check but has no legal move.
// Under xiangqi rules this loses the game just like checkmate does.
func IsStalemate(b *board.Board, side piece.Side) bool {
	return !InCheck(b, side) && !HasLegalMove(b, side)
}

// HasLegalMove is cheaper than len(GenLegalMoves(...)) > 0 since it stops
// at the first legal move.
func HasLegalMove(b *board.Board, side piece.Side) bool {
	for _, m := range GenPseudoLegalMoves(b, side) {
		if isLegal(b, m, side) {
			return true
		}
	}
	return false
}
