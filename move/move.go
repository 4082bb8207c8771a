// Package move defines the Move value used to apply and reverse board
// transitions.
package move

import (
	"errors"
	"fmt"

	"github.com/domino14/xiangqi/piece"
)

var ErrBadCoords = errors.New("bad move coordinates")

// Move is a value type. Captured is filled in by the board when the move
// is played, and is what allows an exact undo.
type Move struct {
	From     int
	To       int
	Piece    piece.Piece
	Captured piece.Piece
}

// NewMove builds a move of p from one square to another, capturing
// whatever is on the destination (which may be empty).
func NewMove(from, to int, p, captured piece.Piece) Move {
	return Move{From: from, To: to, Piece: p, Captured: captured}
}

// IsNull reports whether m is the zero Move. No real move has the same
// source and destination, so the zero value is never a playable move.
func (m Move) IsNull() bool {
	return m.From == m.To
}

func (m Move) IsCapture() bool {
	return m.Captured != piece.Empty
}

// SameSquares compares only the source and destination squares.
func (m Move) SameSquares(o Move) bool {
	return m.From == o.From && m.To == o.To
}

// ShortDescription returns the ICCS coordinate form of the move, e.g.
// "h2e2". Files are a-i from left to right and ranks 0-9 count up from
// Red's back rank.
func (m Move) ShortDescription() string {
	if m.IsNull() {
		return "(none)"
	}
	return SquareName(m.From) + SquareName(m.To)
}

func (m Move) String() string {
	if m.IsCapture() {
		return fmt.Sprintf("%v %s x%v", m.Piece, m.ShortDescription(), m.Captured)
	}
	return fmt.Sprintf("%v %s", m.Piece, m.ShortDescription())
}

// SquareName returns the ICCS name of a square.
func SquareName(sq int) string {
	file := 'a' + byte(piece.Col(sq))
	rank := '0' + byte(piece.NumRows-1-piece.Row(sq))
	return string([]byte{file, rank})
}

// ParseSquare parses an ICCS square name like "e0".
func ParseSquare(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadCoords, s)
	}
	f, r := s[0], s[1]
	if f >= 'A' && f <= 'I' {
		f += 'a' - 'A'
	}
	if f < 'a' || f > 'i' || r < '0' || r > '9' {
		return 0, fmt.Errorf("%w: %q", ErrBadCoords, s)
	}
	return piece.Square(piece.NumRows-1-int(r-'0'), int(f-'a')), nil
}

// ParseMove parses an ICCS move like "h2e2" or "h2-e2". Only the squares
// are set; the caller looks up the pieces on its board.
func ParseMove(s string) (Move, error) {
	if len(s) == 5 && s[2] == '-' {
		s = s[:2] + s[3:]
	}
	if len(s) != 4 {
		return Move{}, fmt.Errorf("%w: %q", ErrBadCoords, s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return Move{}, err
	}
	if from == to {
		return Move{}, fmt.Errorf("%w: %q goes nowhere", ErrBadCoords, s)
	}
	return Move{From: from, To: to}, nil
}
