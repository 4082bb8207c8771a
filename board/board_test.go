package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/piece"
)

func TestInitialMatchesFEN(t *testing.T) {
	is := is.New(t)
	b := InitialBoard()
	is.Equal(b.FEN(), StartingFEN)
	is.Equal(b.SideToMove(), piece.Red)
	is.Equal(b.HistoryLen(), 0)

	b2, err := FromFEN(StartingFEN)
	is.NoErr(err)
	is.True(b.SamePosition(b2))
	is.Equal(b.KingSquare(piece.Red), piece.Square(9, 4))
	is.Equal(b.KingSquare(piece.Black), piece.Square(0, 4))
}

func TestPlayAndUnplay(t *testing.T) {
	is := is.New(t)
	b := InitialBoard()
	start := b.Copy()

	// cannon h2 takes the knight on h9 (after passing over the screen).
	m := move.Move{From: piece.Square(7, 7), To: piece.Square(0, 7)}
	b.PlayMove(m)
	is.Equal(b.SideToMove(), piece.Black)
	is.Equal(b.At(piece.Square(0, 7)), piece.Make(piece.Cannon, piece.Red))
	is.Equal(b.At(piece.Square(7, 7)), piece.Empty)
	last := b.LastMove()
	is.Equal(last.Captured, piece.Make(piece.Knight, piece.Black))
	is.Equal(last.Piece, piece.Make(piece.Cannon, piece.Red))

	b.UnplayLastMove()
	is.True(b.SamePosition(start))
	is.Equal(b.HistoryLen(), 0)
}

func TestPlayMoveIgnoresStaleCapture(t *testing.T) {
	is := is.New(t)
	b := InitialBoard()
	start := b.Copy()
	// captured is recomputed by PlayMove, so a wrong value can't leak into
	// the undo.
	m := move.Move{From: piece.Square(6, 0), To: piece.Square(5, 0),
		Captured: piece.Make(piece.Rook, piece.Black)}
	b.PlayMove(m)
	is.Equal(b.LastMove().Captured, piece.Empty)
	b.UnplayLastMove()
	is.True(b.SamePosition(start))
}

func TestUnplayEmptyHistory(t *testing.T) {
	is := is.New(t)
	b := InitialBoard()
	b.UnplayLastMove()
	is.Equal(b.FEN(), StartingFEN)
	is.True(b.LastMove().IsNull())
}

func TestFENRoundTrip(t *testing.T) {
	is := is.New(t)
	fens := []string{
		"3k5/9/9/9/9/9/9/9/9/4K4 w",
		"4ka3/4a4/9/9/2b6/9/9/9/4C4/3K5 b",
		"r1bakabr1/9/1cn4c1/p1p1p1p1p/9/9/P1P1P1P1P/1CN4C1/9/R1BAKABR1 w",
	}
	for _, f := range fens {
		b, err := FromFEN(f)
		is.NoErr(err)
		is.Equal(b.FEN(), f)
	}
}

func TestBadFEN(t *testing.T) {
	is := is.New(t)
	bad := []string{
		"",
		"rnbakabnr/9/1c5c1 w",
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNRR w",
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/8/RNBAKABNR w",
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKXBNR w",
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR x",
		// king outside its palace
		"9/9/9/9/4k4/9/9/9/4R4/3K5 b",
		"4k4/9/9/9/9/9/9/9/9/2K6 w",
		// missing kings
		"9/9/9/9/9/9/9/9/9/3K5 w",
		"4k4/9/9/9/9/9/9/9/9/9 w",
		// two kings for one side
		"3kk4/9/9/9/9/9/9/9/9/3K5 w",
		"4k4/9/9/9/9/9/9/4K4/9/3K5 w",
		// kings in the wrong palaces
		"4K4/9/9/9/9/9/9/9/9/3k5 w",
	}
	b := InitialBoard()
	for _, f := range bad {
		err := b.SetFromFEN(f)
		is.True(errors.Is(err, ErrBadFEN))
	}
	// unchanged on error
	is.Equal(b.FEN(), StartingFEN)
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	txt := InitialBoard().ToDisplayText()
	is.True(strings.Contains(txt, " 0|R N B A K A B N R |"))
	is.True(strings.Contains(txt, " 9|r n b a k a b n r |"))
	is.True(strings.Contains(txt, "To move: red"))
}

func TestCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	b := InitialBoard()
	c := b.Copy()
	c.PlayMove(move.Move{From: piece.Square(6, 4), To: piece.Square(5, 4)})
	is.Equal(b.HistoryLen(), 0)
	is.Equal(b.FEN(), StartingFEN)
	is.True(!b.SamePosition(c))
}
