// Package testhelpers builds reproducible positions for tests.
package testhelpers

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/movegen"
)

// NewRNG returns a deterministic RNG for the given seed.
func NewRNG(seed uint64) *frand.RNG {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	return frand.NewCustom(s[:], 1024, 12)
}

// RandomPositions plays up to maxPlies random legal moves from the starting
// position, count times. The walk stops early if the side to move has no
// legal move. The same seed always gives the same positions.
func RandomPositions(seed uint64, count, maxPlies int) []*board.Board {
	rng := NewRNG(seed)
	positions := make([]*board.Board, 0, count)
	for i := 0; i < count; i++ {
		b := board.InitialBoard()
		plies := rng.Intn(maxPlies + 1)
		for p := 0; p < plies; p++ {
			moves := movegen.GenLegalMoves(b, b.SideToMove())
			if len(moves) == 0 {
				break
			}
			b.PlayMove(moves[rng.Intn(len(moves))])
		}
		positions = append(positions, b)
	}
	return positions
}
