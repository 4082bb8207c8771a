package negamax

import (
	"math"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xiangqi/move"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

// rough per-entry cost of a map slot, key and value included.
const entrySize = 80

const (
	minTableEntries = 1 << 16
	maxTableEntries = 1 << 24
)

type TableEntry struct {
	score int
	depth int
	flag  uint8
	play  move.Move
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag != 0
}

func (t TableEntry) move() move.Move {
	return t.play
}

// TranspositionTable maps a zobrist key to the result of searching that
// position. Stores always overwrite. The table is capped at maxEntries;
// storing a new key into a full table clears the whole table first.
//
// The table belongs to a single solver and is not safe for concurrent use.
type TranspositionTable struct {
	table      map[uint64]TableEntry
	maxEntries int

	created uint64
	lookups uint64
	hits    uint64
	clears  uint64
}

// NewTranspositionTable returns a table holding at most maxEntries
// entries. If maxEntries is not positive the cap is derived from
// fractionOfMemory of the system memory.
func NewTranspositionTable(fractionOfMemory float64, maxEntries int) *TranspositionTable {
	t := &TranspositionTable{}
	t.Reset(fractionOfMemory, maxEntries)
	return t
}

// Reset sets the capacity and empties the table.
func (t *TranspositionTable) Reset(fractionOfMemory float64, maxEntries int) {
	totalMem := memory.TotalMemory()
	if maxEntries <= 0 {
		desired := fractionOfMemory * (float64(totalMem) / float64(entrySize))
		maxEntries = int(math.Max(minTableEntries, math.Min(desired, maxTableEntries)))
	}
	t.maxEntries = maxEntries
	if t.table == nil {
		t.table = make(map[uint64]TableEntry, min(maxEntries, minTableEntries))
	} else {
		clear(t.table)
	}
	log.Debug().Int("max-entries", maxEntries).
		Int("estimated-max-bytes", maxEntries*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")
	t.resetStats()
}

// Clear drops every entry but keeps the capacity.
func (t *TranspositionTable) Clear() {
	clear(t.table)
	t.resetStats()
}

func (t *TranspositionTable) resetStats() {
	t.created = 0
	t.lookups = 0
	t.hits = 0
	t.clears = 0
}

func (t *TranspositionTable) Len() int {
	return len(t.table)
}

func (t *TranspositionTable) MaxEntries() int {
	return t.maxEntries
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.lookups++
	e, ok := t.table[zval]
	if !ok {
		return TableEntry{}
	}
	t.hits++
	// assume the same zobrist key means the same position. this fails
	// very, very rarely. but it could happen.
	return e
}

// Store records a search result for key, overwriting whatever was there.
func (t *TranspositionTable) Store(zval uint64, depth, score int, flag uint8, play move.Move) {
	if _, ok := t.table[zval]; !ok && len(t.table) >= t.maxEntries {
		log.Debug().Int("entries", len(t.table)).Msg("transposition-table-full-clearing")
		clear(t.table)
		t.clears++
	}
	t.table[zval] = TableEntry{score: score, depth: depth, flag: flag, play: play}
	t.created++
}

// Probe looks up key for a search of the given depth and window.
//
// If the stored entry is at least as deep as requested, an exact score
// resolves the node, and a bound tightens alpha or beta; cutoff is true
// when the score resolves the node or the window closes, and score is then
// the value to return. Otherwise the stored move, if any, is still
// returned as a move-ordering hint.
func (t *TranspositionTable) Probe(zval uint64, depth, α, β int) (score, alpha, beta int, hint move.Move, cutoff bool) {
	e := t.lookup(zval)
	if !e.valid() {
		return 0, α, β, move.Move{}, false
	}
	if e.depth >= depth {
		switch e.flag {
		case TTExact:
			return e.score, α, β, e.move(), true
		case TTLower:
			α = max(α, e.score)
		case TTUpper:
			β = min(β, e.score)
		}
		if α >= β {
			return e.score, α, β, e.move(), true
		}
	}
	return 0, α, β, e.move(), false
}

// Stats returns created, lookups, hits, and full-table clears since the
// last reset.
func (t *TranspositionTable) Stats() (created, lookups, hits, clears uint64) {
	return t.created, t.lookups, t.hits, t.clears
}
