package automatic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/domino14/xiangqi/stats"
)

// Summary aggregates a set of self-play games.
type Summary struct {
	Games     int
	RedWins   int
	BlackWins int
	Draws     int
	// RedScore has one value per game: 1 for a red win, 0.5 for a draw,
	// 0 for a loss.
	RedScore stats.Statistic
	Plies    stats.Statistic

	plies []float64
}

// Summarize aggregates results.
func Summarize(results []*GameResult) *Summary {
	s := &Summary{}
	for _, r := range results {
		s.add(r.Winner, r.Plies)
	}
	return s
}

func (s *Summary) add(winner string, plies int) {
	s.Games++
	switch winner {
	case ResultRed:
		s.RedWins++
		s.RedScore.Push(1)
	case ResultBlack:
		s.BlackWins++
		s.RedScore.Push(0)
	default:
		s.Draws++
		s.RedScore.Push(0.5)
	}
	s.Plies.Push(float64(plies))
	s.plies = append(s.plies, float64(plies))
}

// Histogram draws the distribution of game lengths.
func (s *Summary) Histogram() (string, error) {
	if len(s.plies) == 0 {
		return "", errors.New("no games")
	}
	var sb strings.Builder
	if s.Plies.Min() == s.Plies.Max() {
		fmt.Fprintf(&sb, "%.0f plies: %d games\n", s.Plies.Min(), len(s.plies))
		return sb.String(), nil
	}
	hist := histogram.Hist(10, s.plies)
	if err := histogram.Fprint(&sb, hist, histogram.Linear(40)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.Games)
	fmt.Fprintf(&sb, "Red wins: %d  Black wins: %d  Draws: %d\n", s.RedWins, s.BlackWins, s.Draws)
	fmt.Fprintf(&sb, "Red score: %.3f ± %.3f (95%%)\n", s.RedScore.Mean(), s.RedScore.Interval(95))
	fmt.Fprintf(&sb, "Game length: %.1f ± %.1f plies (min %.0f, max %.0f)",
		s.Plies.Mean(), s.Plies.Stdev(), s.Plies.Min(), s.Plies.Max())
	return sb.String()
}

// AnalyzeLogFile reads a games file written by PlayCompVComp and
// summarizes it.
func AnalyzeLogFile(filepath string) (*Summary, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r := csv.NewReader(file)

	// Record looks like:
	// gameID,winner,plies,opening
	s := &Summary{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if record[0] == "gameID" {
			// this is the header line
			continue
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("short record for game %v", record[0])
		}
		plies, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, err
		}
		s.add(record[1], plies)
	}
	if s.Games == 0 {
		return nil, errors.New("no games in log file")
	}
	return s, nil
}

// AnalyzeStore summarizes one batch from a result database.
func AnalyzeStore(dbFile, batch string) (*Summary, error) {
	store, err := OpenResultStore(dbFile)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	results, err := store.Results(batch)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no games in batch %q", batch)
	}
	return Summarize(results), nil
}
