package zobrist

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/domino14/xiangqi/board"
	"github.com/domino14/xiangqi/piece"
)

const bignum = 1<<63 - 2

// DefaultSeed is the seed used when none is configured.
const DefaultSeed = 42

// NumPieceCodes covers piece codes -7..7; code c lives in slot c+7.
const NumPieceCodes = 2*(piece.NumTypes-1) + 1

// Zobrist generates a hash for a xiangqi position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// The table is filled from a seeded ChaCha stream, so two Zobrist values
// initialized with the same seed hash every position identically, in this
// process or any other. It is never modified after Initialize and can be
// shared freely.
//
// Distinct positions can share a key. Nothing detects that; the chance is
// low enough to accept.
type Zobrist struct {
	blackToMove uint64
	posTable    [NumPieceCodes][piece.NumSquares]uint64
	seed        uint64
}

// NewZobrist returns an initialized table for seed.
func NewZobrist(seed uint64) *Zobrist {
	z := &Zobrist{}
	z.Initialize(seed)
	return z
}

func (z *Zobrist) Initialize(seed uint64) {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	rng := frand.NewCustom(s[:], 1024, 20)
	for i := 0; i < NumPieceCodes; i++ {
		for j := 0; j < piece.NumSquares; j++ {
			z.posTable[i][j] = rng.Uint64n(bignum) + 1
		}
	}
	z.blackToMove = rng.Uint64n(bignum) + 1
	z.seed = seed
}

func (z *Zobrist) Seed() uint64 {
	return z.seed
}

// PieceKey is the table entry for p standing on sq. Empty squares hash
// to 0.
func (z *Zobrist) PieceKey(p piece.Piece, sq int) uint64 {
	if p == piece.Empty {
		return 0
	}
	return z.posTable[int(p)+piece.NumTypes-1][sq]
}

// Hash computes the key of b from scratch.
func (z *Zobrist) Hash(b *board.Board) uint64 {
	key := uint64(0)
	for sq := 0; sq < piece.NumSquares; sq++ {
		p := b.At(sq)
		if p == piece.Empty {
			continue
		}
		key ^= z.posTable[int(p)+piece.NumTypes-1][sq]
	}
	if b.SideToMove() == piece.Black {
		key ^= z.blackToMove
	}
	return key
}
