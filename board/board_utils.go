package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/xiangqi/piece"
)

// StartingFEN is the standard opening position.
const StartingFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w"

var ErrBadFEN = errors.New("bad FEN")

// FromFEN parses the placement and side-to-move fields of a xiangqi FEN.
// Any trailing fields (move counters) are ignored. The first rank in the
// string is row 0, Black's back rank.
func FromFEN(fen string) (*Board, error) {
	b := NewBoard()
	if err := b.SetFromFEN(fen); err != nil {
		return nil, err
	}
	return b, nil
}

// SetFromFEN replaces the contents of b with the given position and clears
// the history. b is left unchanged on error.
func (b *Board) SetFromFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty string", ErrBadFEN)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != piece.NumRows {
		return fmt.Errorf("%w: expected %d ranks, got %d", ErrBadFEN, piece.NumRows, len(ranks))
	}
	var squares [piece.NumSquares]piece.Piece
	for r, rank := range ranks {
		c := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '9' {
				c += int(ch - '0')
				continue
			}
			p, ok := piece.FromLetter(ch)
			if !ok {
				return fmt.Errorf("%w: unknown piece %q", ErrBadFEN, ch)
			}
			if c >= piece.NumCols {
				return fmt.Errorf("%w: rank %d is too long", ErrBadFEN, r)
			}
			squares[piece.Square(r, c)] = p
			c++
		}
		if c != piece.NumCols {
			return fmt.Errorf("%w: rank %d has %d columns", ErrBadFEN, r, c)
		}
	}
	if err := checkKings(&squares); err != nil {
		return err
	}
	side := piece.Red
	if len(fields) > 1 {
		switch fields[1] {
		case "w", "r", "red":
		case "b", "black":
			side = piece.Black
		default:
			return fmt.Errorf("%w: bad side to move %q", ErrBadFEN, fields[1])
		}
	}
	b.squares = squares
	b.sideToMove = side
	b.history = b.history[:0]
	return nil
}

// checkKings requires exactly one king per side, standing in its own
// palace. Check detection relies on it.
func checkKings(squares *[piece.NumSquares]piece.Piece) error {
	for _, s := range []piece.Side{piece.Red, piece.Black} {
		k := piece.Make(piece.King, s)
		n := 0
		for sq, p := range squares {
			if p != k {
				continue
			}
			n++
			if !piece.InPalace(piece.Row(sq), piece.Col(sq), s) {
				return fmt.Errorf("%w: %s king outside its palace", ErrBadFEN, s)
			}
		}
		if n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrBadFEN, s, n)
		}
	}
	return nil
}

// FEN returns the placement and side-to-move fields.
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 0; r < piece.NumRows; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < piece.NumCols; c++ {
			p := b.squares[piece.Square(r, c)]
			if p == piece.Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
	}
	if b.sideToMove == piece.Black {
		sb.WriteString(" b")
	} else {
		sb.WriteString(" w")
	}
	return sb.String()
}

// ToDisplayText is a diagnostic dump. Ranks are labelled the way ICCS
// move coordinates count them.
func (b *Board) ToDisplayText() string {
	var str string
	str += "   a b c d e f g h i\n"
	str += "   " + strings.Repeat("-", piece.NumCols*2) + "\n"
	for r := 0; r < piece.NumRows; r++ {
		row := fmt.Sprintf("%2d|", piece.NumRows-1-r)
		for c := 0; c < piece.NumCols; c++ {
			row += string(b.squares[piece.Square(r, c)].Letter()) + " "
		}
		str += row + "|\n"
		if r == 4 {
			str += "   " + strings.Repeat("~", piece.NumCols*2) + "\n"
		}
	}
	str += "   " + strings.Repeat("-", piece.NumCols*2) + "\n"
	str += "To move: " + b.sideToMove.String() + "\n"
	return "\n" + str
}
