// Package board holds the 90-square xiangqi position with in-place
// mutation and an undo stack.
//
// A Board is owned by exactly one game session or search at a time.
// Playing and unplaying moves mutates it in place, so two searches running
// against the same Board corrupt each other's history.
package board

import (
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/piece"
)

const defaultHistoryCap = 64

type Board struct {
	squares    [piece.NumSquares]piece.Piece
	sideToMove piece.Side
	history    []move.Move
}

// NewBoard returns an empty board with Red to move.
func NewBoard() *Board {
	return &Board{
		sideToMove: piece.Red,
		history:    make([]move.Move, 0, defaultHistoryCap),
	}
}

var backRank = [piece.NumCols]piece.Type{
	piece.Rook, piece.Knight, piece.Elephant, piece.Advisor, piece.King,
	piece.Advisor, piece.Elephant, piece.Knight, piece.Rook,
}

// InitialBoard returns the standard starting position, Red to move.
func InitialBoard() *Board {
	b := NewBoard()
	b.SetToInitial()
	return b
}

// SetToInitial resets b to the standard starting position and clears the
// history.
func (b *Board) SetToInitial() {
	b.Clear()
	for c, t := range backRank {
		b.squares[piece.Square(0, c)] = piece.Make(t, piece.Black)
		b.squares[piece.Square(9, c)] = piece.Make(t, piece.Red)
	}
	for _, c := range []int{1, 7} {
		b.squares[piece.Square(2, c)] = piece.Make(piece.Cannon, piece.Black)
		b.squares[piece.Square(7, c)] = piece.Make(piece.Cannon, piece.Red)
	}
	for c := 0; c < piece.NumCols; c += 2 {
		b.squares[piece.Square(3, c)] = piece.Make(piece.Pawn, piece.Black)
		b.squares[piece.Square(6, c)] = piece.Make(piece.Pawn, piece.Red)
	}
}

// Clear empties every square, clears the history and gives Red the move.
func (b *Board) Clear() {
	clear(b.squares[:])
	b.sideToMove = piece.Red
	b.history = b.history[:0]
}

func (b *Board) At(sq int) piece.Piece {
	return b.squares[sq]
}

// Set puts p on sq. It is meant for setting up positions and does not
// touch the history.
func (b *Board) Set(sq int, p piece.Piece) {
	b.squares[sq] = p
}

// Squares returns a copy of the cell array.
func (b *Board) Squares() [piece.NumSquares]piece.Piece {
	return b.squares
}

func (b *Board) SideToMove() piece.Side {
	return b.sideToMove
}

func (b *Board) SetSideToMove(s piece.Side) {
	b.sideToMove = s
}

// HistoryLen is the number of moves that can currently be unplayed.
func (b *Board) HistoryLen() int {
	return len(b.history)
}

// LastMove returns the most recently played move, or the null move.
func (b *Board) LastMove() move.Move {
	if len(b.history) == 0 {
		return move.Move{}
	}
	return b.history[len(b.history)-1]
}

// PlayMove applies m and flips the side to move. The piece on the
// destination is recorded as the captured piece, overriding whatever m
// carried, so UnplayLastMove always restores the board exactly.
//
// PlayMove trusts its caller: it does not check that m.From holds a piece
// of the side to move, or even that the squares are on the board. Moves
// from movegen are always valid; anything else must be validated first
// (see game.Game.PlayMove).
func (b *Board) PlayMove(m move.Move) {
	m.Piece = b.squares[m.From]
	m.Captured = b.squares[m.To]
	b.squares[m.To] = m.Piece
	b.squares[m.From] = piece.Empty
	b.sideToMove = -b.sideToMove
	b.history = append(b.history, m)
}

// UnplayLastMove reverts the last played move. It does nothing if there
// is no history.
func (b *Board) UnplayLastMove() {
	n := len(b.history)
	if n == 0 {
		return
	}
	m := b.history[n-1]
	b.history = b.history[:n-1]
	b.squares[m.From] = m.Piece
	b.squares[m.To] = m.Captured
	b.sideToMove = -b.sideToMove
}

// KingSquare scans the palace of s for its king. It returns -1 if the king
// is missing, which only happens in hand-built positions.
func (b *Board) KingSquare(s piece.Side) int {
	k := piece.Make(piece.King, s)
	rlo := 0
	if s == piece.Red {
		rlo = 7
	}
	for r := rlo; r < rlo+3; r++ {
		for c := 3; c <= 5; c++ {
			sq := piece.Square(r, c)
			if b.squares[sq] == k {
				return sq
			}
		}
	}
	return -1
}

// Copy returns a deep copy, including the history.
func (b *Board) Copy() *Board {
	n := &Board{
		squares:    b.squares,
		sideToMove: b.sideToMove,
		history:    make([]move.Move, len(b.history), max(cap(b.history), defaultHistoryCap)),
	}
	copy(n.history, b.history)
	return n
}

// SamePosition compares squares and side to move, ignoring history.
func (b *Board) SamePosition(o *Board) bool {
	return b.squares == o.squares && b.sideToMove == o.sideToMove
}
