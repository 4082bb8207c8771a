package negamax

import (
	"fmt"
	"strings"

	"github.com/domino14/xiangqi/move"
)

// Credit: MIT-licensed https://github.com/algerbrex/blunder/blob/main/engine/search.go
type PVLine struct {
	Moves []move.Move
	score int
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = pvLine.Moves[:0]
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(m move.Move, newPVLine PVLine, score int) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

// Copy returns a PVLine that does not share storage with pvLine.
func (pvLine PVLine) Copy() PVLine {
	return PVLine{Moves: append([]move.Move(nil), pvLine.Moves...), score: pvLine.score}
}

func (pvLine PVLine) Score() int {
	return pvLine.score
}

// Descriptions returns the ICCS text of each move in the line.
func (pvLine PVLine) Descriptions() []string {
	ds := make([]string, len(pvLine.Moves))
	for i, m := range pvLine.Moves {
		ds[i] = m.ShortDescription()
	}
	return ds
}

// NLBString prints the line with no line breaks.
func (pvLine PVLine) NLBString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d; ", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: %s; ", i+1, m.ShortDescription())
	}
	return sb.String()
}
