// Package movegen contains the per-piece move rules, the legality filter,
// and the check rules that the filter depends on.
package movegen

import (
	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/piece"
)

// genFunc appends the pseudo-legal moves of the piece of side on sq.
type genFunc func(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move

// generators is indexed by piece type.
var generators = [piece.NumTypes]genFunc{
	piece.King:     genKing,
	piece.Advisor:  genAdvisor,
	piece.Elephant: genElephant,
	piece.Rook:     genRook,
	piece.Knight:   genKnight,
	piece.Cannon:   genCannon,
	piece.Pawn:     genPawn,
}

type offset struct{ dr, dc int }

var orthogonal = [4]offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
var diagonal = [4]offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// knight jumps, each with the leg square that blocks it.
var knightJumps = [8]struct{ to, leg offset }{
	{offset{-2, -1}, offset{-1, 0}}, {offset{-2, 1}, offset{-1, 0}},
	{offset{2, -1}, offset{1, 0}}, {offset{2, 1}, offset{1, 0}},
	{offset{-1, -2}, offset{0, -1}}, {offset{-1, 2}, offset{0, 1}},
	{offset{1, -2}, offset{0, -1}}, {offset{1, 2}, offset{0, 1}},
}

// GenPseudoLegalMoves returns every move obeying the movement rules of
// side's pieces, without checking whether it leaves side's king exposed.
func GenPseudoLegalMoves(b *board.Board, side piece.Side) []move.Move {
	return appendPseudoLegalMoves(make([]move.Move, 0, 64), b, side)
}

func appendPseudoLegalMoves(moves []move.Move, b *board.Board, side piece.Side) []move.Move {
	for sq := 0; sq < piece.NumSquares; sq++ {
		p := b.At(sq)
		if !p.Belongs(side) {
			continue
		}
		moves = generators[p.Type()](b, sq, side, moves)
	}
	return moves
}

// GenLegalMoves returns the pseudo-legal moves of side that leave its king
// neither in check nor facing the other king. Each candidate is played and
// unplayed on b, so b must not be shared with anything else during the
// call; it is restored exactly on return.
func GenLegalMoves(b *board.Board, side piece.Side) []move.Move {
	pseudo := GenPseudoLegalMoves(b, side)
	legal := pseudo[:0]
	for _, m := range pseudo {
		if isLegal(b, m, side) {
			legal = append(legal, m)
		}
	}
	return legal
}

func isLegal(b *board.Board, m move.Move, side piece.Side) bool {
	b.PlayMove(m)
	ok := !IsFaceToFace(b) && !InCheck(b, side)
	b.UnplayLastMove()
	return ok
}

// addTarget appends a move to `to` if it is empty or holds an enemy piece.
// It returns false once the square is occupied, which ends a slide.
func addTarget(b *board.Board, side piece.Side, from, to int, moves []move.Move) ([]move.Move, bool) {
	target := b.At(to)
	if target == piece.Empty {
		return append(moves, move.NewMove(from, to, b.At(from), piece.Empty)), true
	}
	if !target.Belongs(side) {
		moves = append(moves, move.NewMove(from, to, b.At(from), target))
	}
	return moves, false
}

func genRook(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move {
	r, c := piece.Row(sq), piece.Col(sq)
	for _, d := range orthogonal {
		for rr, cc := r+d.dr, c+d.dc; piece.OnBoard(rr, cc); rr, cc = rr+d.dr, cc+d.dc {
			var cont bool
			moves, cont = addTarget(b, side, sq, piece.Square(rr, cc), moves)
			if !cont {
				break
			}
		}
	}
	return moves
}

func genKnight(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move {
	r, c := piece.Row(sq), piece.Col(sq)
	for _, j := range knightJumps {
		rr, cc := r+j.to.dr, c+j.to.dc
		if !piece.OnBoard(rr, cc) {
			continue
		}
		if b.At(piece.Square(r+j.leg.dr, c+j.leg.dc)) != piece.Empty {
			continue
		}
		moves, _ = addTarget(b, side, sq, piece.Square(rr, cc), moves)
	}
	return moves
}

// genCannon: quiet moves slide like a rook; captures need exactly one
// screen between the cannon and its target.
func genCannon(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move {
	r, c := piece.Row(sq), piece.Col(sq)
	p := b.At(sq)
	for _, d := range orthogonal {
		screen := false
		for rr, cc := r+d.dr, c+d.dc; piece.OnBoard(rr, cc); rr, cc = rr+d.dr, cc+d.dc {
			to := piece.Square(rr, cc)
			target := b.At(to)
			if !screen {
				if target == piece.Empty {
					moves = append(moves, move.NewMove(sq, to, p, piece.Empty))
				} else {
					screen = true
				}
				continue
			}
			if target != piece.Empty {
				if !target.Belongs(side) {
					moves = append(moves, move.NewMove(sq, to, p, target))
				}
				break
			}
		}
	}
	return moves
}

func genPawn(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move {
	r, c := piece.Row(sq), piece.Col(sq)
	forward := -1
	if side == piece.Black {
		forward = 1
	}
	if piece.OnBoard(r+forward, c) {
		moves, _ = addTarget(b, side, sq, piece.Square(r+forward, c), moves)
	}
	if piece.OwnHalf(r, side) {
		return moves
	}
	for _, dc := range [2]int{-1, 1} {
		if piece.OnBoard(r, c+dc) {
			moves, _ = addTarget(b, side, sq, piece.Square(r, c+dc), moves)
		}
	}
	return moves
}

func genKing(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move {
	return genPalaceStep(b, sq, side, orthogonal, moves)
}

func genAdvisor(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move {
	return genPalaceStep(b, sq, side, diagonal, moves)
}

func genPalaceStep(b *board.Board, sq int, side piece.Side, dirs [4]offset, moves []move.Move) []move.Move {
	r, c := piece.Row(sq), piece.Col(sq)
	for _, d := range dirs {
		rr, cc := r+d.dr, c+d.dc
		if piece.InPalace(rr, cc, side) {
			moves, _ = addTarget(b, side, sq, piece.Square(rr, cc), moves)
		}
	}
	return moves
}

// genElephant: two diagonal steps, blocked by a piece on the eye square,
// never across the river.
func genElephant(b *board.Board, sq int, side piece.Side, moves []move.Move) []move.Move {
	r, c := piece.Row(sq), piece.Col(sq)
	for _, d := range diagonal {
		rr, cc := r+2*d.dr, c+2*d.dc
		if !piece.OnBoard(rr, cc) || !piece.OwnHalf(rr, side) {
			continue
		}
		if b.At(piece.Square(r+d.dr, c+d.dc)) != piece.Empty {
			continue
		}
		moves, _ = addTarget(b, side, sq, piece.Square(rr, cc), moves)
	}
	return moves
}

// Perft counts the leaf nodes of the legal move tree of the given depth.
// b is restored on return.
func Perft(b *board.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := GenLegalMoves(b, b.SideToMove())
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		b.PlayMove(m)
		nodes += Perft(b, depth-1)
		b.UnplayLastMove()
	}
	return nodes
}
