package movegen_test

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/movegen"
	"github.com/domino14/xiangqi/piece"
	"github.com/domino14/xiangqi/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func mustFEN(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func destinations(moves []move.Move, from int) map[string]bool {
	d := map[string]bool{}
	for _, m := range moves {
		if m.From == from {
			d[move.SquareName(m.To)] = true
		}
	}
	return d
}

func sq(t *testing.T, name string) int {
	t.Helper()
	s, err := move.ParseSquare(name)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStartingPositionMoveCount(t *testing.T) {
	is := is.New(t)
	b := board.InitialBoard()
	is.Equal(len(movegen.GenLegalMoves(b, piece.Red)), 44)
	is.Equal(len(movegen.GenLegalMoves(b, piece.Black)), 44)
	is.Equal(b.FEN(), board.StartingFEN)
}

func TestPerft(t *testing.T) {
	is := is.New(t)
	b := board.InitialBoard()
	is.Equal(movegen.Perft(b, 1), uint64(44))
	is.Equal(movegen.Perft(b, 2), uint64(1920))
	if testing.Short() {
		t.Skip("skipping perft 3 in short mode")
	}
	is.Equal(movegen.Perft(b, 3), uint64(79666))
	is.Equal(b.FEN(), board.StartingFEN)
}

func TestRookAndCannon(t *testing.T) {
	is := is.New(t)
	// Red rook on e4 and cannon on a4; black pawn on e7, black rook on c4.
	b := mustFEN(t, "3k5/9/4p4/9/9/C1r1R4/9/9/9/5K3 w")
	moves := movegen.GenPseudoLegalMoves(b, piece.Red)

	rook := destinations(moves, sq(t, "e4"))
	is.True(rook["e7"])  // capture
	is.True(!rook["e8"]) // blocked behind the pawn
	is.True(rook["d4"])
	is.True(rook["c4"]) // capture
	is.True(!rook["b4"])
	is.True(rook["i4"])
	is.True(rook["e0"])
	is.Equal(len(rook), 3+2+4+4) // up, left, right, down

	cannon := destinations(moves, sq(t, "a4"))
	is.True(cannon["b4"])
	is.True(!cannon["c4"]) // the black rook is the screen
	is.True(!cannon["d4"])
	is.True(!cannon["e4"]) // own piece past the screen
	is.True(cannon["a9"])
	is.True(cannon["a0"])
	is.Equal(len(cannon), 1+5+4)
}

func TestCannonCapturesOverScreen(t *testing.T) {
	is := is.New(t)
	b := mustFEN(t, "3k5/9/9/9/9/C1P1r4/9/9/9/5K3 w")
	cannon := destinations(movegen.GenPseudoLegalMoves(b, piece.Red), sq(t, "a4"))
	is.True(cannon["b4"])
	is.True(!cannon["c4"])
	is.True(!cannon["d4"])
	is.True(cannon["e4"])
	is.True(!cannon["f4"])
}

func TestKnightLegs(t *testing.T) {
	is := is.New(t)
	// knight on e4, a red pawn on e5 blocks both upward jumps.
	b := mustFEN(t, "3k5/9/9/9/4P4/4N4/9/9/9/5K3 w")
	knight := destinations(movegen.GenPseudoLegalMoves(b, piece.Red), sq(t, "e4"))
	is.True(!knight["d6"])
	is.True(!knight["f6"])
	is.True(knight["d2"])
	is.True(knight["f2"])
	is.True(knight["c5"])
	is.True(knight["g5"])
	is.True(knight["c3"])
	is.True(knight["g3"])
	is.Equal(len(knight), 6)
}

func TestPawnRiver(t *testing.T) {
	is := is.New(t)
	b := mustFEN(t, "3k5/9/9/4P4/9/9/2P6/9/9/5K3 w")
	moves := movegen.GenPseudoLegalMoves(b, piece.Red)

	home := destinations(moves, sq(t, "c3"))
	is.Equal(len(home), 1)
	is.True(home["c4"])

	crossed := destinations(moves, sq(t, "e6"))
	is.Equal(len(crossed), 3)
	is.True(crossed["e7"])
	is.True(crossed["d6"])
	is.True(crossed["f6"])
	is.True(!crossed["e5"])

	// black pawns move down the board.
	b = mustFEN(t, "3k5/9/9/9/9/4p4/9/9/9/5K3 b")
	black := destinations(movegen.GenPseudoLegalMoves(b, piece.Black), sq(t, "e4"))
	is.Equal(len(black), 3)
	is.True(black["e3"])
	is.True(black["d4"])
	is.True(black["f4"])
}

func TestPalacePieces(t *testing.T) {
	is := is.New(t)
	b := mustFEN(t, "3k5/9/9/9/9/9/9/3A5/9/4K4 w")
	moves := movegen.GenPseudoLegalMoves(b, piece.Red)

	king := destinations(moves, sq(t, "e0"))
	is.Equal(len(king), 3)
	is.True(king["d0"] && king["f0"] && king["e1"])

	advisor := destinations(moves, sq(t, "d2"))
	is.Equal(len(advisor), 1)
	is.True(advisor["e1"])
}

func TestElephantEyeAndRiver(t *testing.T) {
	is := is.New(t)
	// elephant on e4 sits on its edge of the river; c6 and g6 would cross.
	b := mustFEN(t, "3k5/9/9/9/9/4B4/5P3/9/9/4K4 w")
	elephant := destinations(movegen.GenPseudoLegalMoves(b, piece.Red), sq(t, "e4"))
	is.True(elephant["c2"])
	is.True(!elephant["g2"]) // eye on f3 is blocked
	is.True(!elephant["c6"])
	is.True(!elephant["g6"])
	is.Equal(len(elephant), 1)
}

func TestFaceToFace(t *testing.T) {
	is := is.New(t)
	is.True(movegen.IsFaceToFace(mustFEN(t, "4k4/9/9/9/9/9/9/9/9/4K4 w")))
	is.True(!movegen.IsFaceToFace(mustFEN(t, "4k4/9/9/9/4p4/9/9/9/9/4K4 w")))
	is.True(!movegen.IsFaceToFace(mustFEN(t, "3k5/9/9/9/9/9/9/9/9/4K4 w")))

	// the red king may not step onto the d-file facing the black king.
	b := mustFEN(t, "3k5/9/9/9/9/9/9/9/9/4K4 w")
	legal := destinations(movegen.GenLegalMoves(b, piece.Red), sq(t, "e0"))
	is.Equal(len(legal), 2)
	is.True(legal["f0"])
	is.True(legal["e1"])
	is.True(!legal["d0"])

	// a blocking piece pinned by the kings cannot leave the file.
	b = mustFEN(t, "4k4/9/9/9/4R4/9/9/9/9/4K4 w")
	for _, m := range movegen.GenLegalMoves(b, piece.Red) {
		if m.From == sq(t, "e5") {
			is.Equal(piece.Col(m.To), 4)
		}
	}
}

func TestInCheck(t *testing.T) {
	is := is.New(t)
	cases := []struct {
		fen   string
		check bool
	}{
		{"4k4/9/9/9/9/9/9/9/9/3RK4 b", false},
		{"4k4/9/9/9/9/9/9/9/4R4/3K5 b", true},   // rook on the file
		{"4k4/9/9/9/4p4/9/9/9/4C4/3K5 b", true}, // cannon over a screen
		{"4k4/9/9/9/9/9/9/9/4C4/3K5 b", false},  // cannon with no screen
		{"4k4/9/5N3/9/9/9/9/9/9/3K5 b", true},   // knight
		{"4k4/4p4/5N3/9/9/9/9/9/9/3K5 b", true}, // leg on f8 is free
		{"4k4/5p3/5N3/9/9/9/9/9/9/3K5 b", false},
		{"4k4/4P4/9/9/9/9/9/9/9/3K5 b", true}, // pawn
	}
	for _, c := range cases {
		b := mustFEN(t, c.fen)
		is.Equal(movegen.InCheck(b, piece.Black), c.check) // c.fen
	}
}

func TestCheckmateAndStalemate(t *testing.T) {
	is := is.New(t)
	mate := mustFEN(t, "R3k4/R8/9/9/9/9/9/9/9/3K5 b")
	is.True(movegen.InCheck(mate, piece.Black))
	is.True(movegen.IsCheckmate(mate, piece.Black))
	is.True(!movegen.IsStalemate(mate, piece.Black))
	is.Equal(len(movegen.GenLegalMoves(mate, piece.Black)), 0)

	stale := mustFEN(t, "4k4/3P5/5R3/9/9/9/9/9/9/3K5 b")
	is.True(!movegen.InCheck(stale, piece.Black))
	is.True(movegen.IsStalemate(stale, piece.Black))
	is.True(!movegen.IsCheckmate(stale, piece.Black))

	is.True(!movegen.IsCheckmate(board.InitialBoard(), piece.Red))
	is.True(movegen.HasLegalMove(board.InitialBoard(), piece.Black))
}

func TestRandomPositionProperties(t *testing.T) {
	is := is.New(t)
	for _, b := range testhelpers.RandomPositions(20260101, 60, 40) {
		side := b.SideToMove()
		before := b.Copy()
		pseudo := movegen.GenPseudoLegalMoves(b, side)
		legal := movegen.GenLegalMoves(b, side)
		is.True(b.SamePosition(before))

		// legal moves are a subset of the pseudo-legal moves.
		for _, m := range legal {
			found := false
			for _, p := range pseudo {
				if p == m {
					found = true
					break
				}
			}
			is.True(found)
		}

		for _, m := range legal {
			b.PlayMove(m)
			// never expose the mover's king or face the kings.
			is.True(!movegen.IsFaceToFace(b))
			is.True(!movegen.InCheck(b, side))
			b.UnplayLastMove()
			is.True(b.SamePosition(before))
		}

		// InCheck agrees with a direct scan of the opponent's moves.
		k := b.KingSquare(side)
		attacked := false
		for _, m := range movegen.GenPseudoLegalMoves(b, side.Opponent()) {
			if m.To == k {
				attacked = true
			}
		}
		is.Equal(movegen.InCheck(b, side), attacked)
	}
}
