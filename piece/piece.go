// Package piece holds the sides and piece codes shared by every other
// package. A piece code is a signed byte: the sign is the side (Red is
// positive) and the magnitude is the piece type.
package piece

// Side is +1 for Red and -1 for Black. Red is the reference side: it sits
// at the bottom of the board (rows 7-9) and moves first.
type Side int8

const (
	Red   Side = 1
	Black Side = -1
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return -s
}

func (s Side) String() string {
	switch s {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return "none"
}

// Type is the magnitude of a piece code.
type Type int8

const (
	NoType Type = iota
	King
	Advisor
	Elephant
	Rook
	Knight
	Cannon
	Pawn
)

// NumTypes includes the empty type at index 0.
const NumTypes = 8

// Piece is a signed piece code; 0 is an empty square.
type Piece int8

const Empty Piece = 0

// Make builds the piece code for a type belonging to side.
func Make(t Type, s Side) Piece {
	return Piece(int8(t) * int8(s))
}

func (p Piece) Type() Type {
	if p < 0 {
		return Type(-p)
	}
	return Type(p)
}

// Side returns the owner of p. It returns 0 for an empty square.
func (p Piece) Side() Side {
	switch {
	case p > 0:
		return Red
	case p < 0:
		return Black
	}
	return 0
}

// Belongs reports whether p is a piece of side s.
func (p Piece) Belongs(s Side) bool {
	return p != Empty && (p > 0) == (s == Red)
}

var typeLetters = [NumTypes]byte{'.', 'K', 'A', 'B', 'R', 'N', 'C', 'P'}

// Letter returns the FEN letter for p, upper case for Red and lower case
// for Black. Empty squares are '.'.
func (p Piece) Letter() byte {
	l := typeLetters[p.Type()]
	if p < 0 {
		return l + ('a' - 'A')
	}
	return l
}

func (p Piece) String() string {
	return string(p.Letter())
}

// FromLetter parses a FEN letter. E and H are accepted as the elephant
// and the knight, as some sources write them that way.
func FromLetter(c byte) (Piece, bool) {
	side := Red
	if c >= 'a' && c <= 'z' {
		side = Black
		c -= 'a' - 'A'
	}
	var t Type
	switch c {
	case 'K':
		t = King
	case 'A':
		t = Advisor
	case 'B', 'E':
		t = Elephant
	case 'R':
		t = Rook
	case 'N', 'H':
		t = Knight
	case 'C':
		t = Cannon
	case 'P':
		t = Pawn
	default:
		return Empty, false
	}
	return Make(t, side), true
}
