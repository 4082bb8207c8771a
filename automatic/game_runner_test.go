package automatic

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/xiangqi/config"
	"github.com/domino14/xiangqi/game"
	"github.com/domino14/xiangqi/stats"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSearchPlies, 1)
	cfg.Set(config.ConfigSearchTime, 0)
	cfg.Set(config.ConfigTTableMaxEntries, 1<<16)
	return cfg
}

func TestPlayFullGame(t *testing.T) {
	is := is.New(t)
	logchan := make(chan string, 100)
	r := NewGameRunner(logchan, testConfig())
	r.Init(3, 2, 12)

	res, err := r.PlayFullGame(context.Background(), "g1")
	is.NoErr(err)
	is.Equal(res.GameID, "g1")
	is.Equal(len(res.Opening), 2)
	is.True(res.Plies <= 12)
	if res.Winner == ResultDraw {
		is.Equal(res.Plies, 12)
		is.Equal(r.Game().Playing(), game.PlayStatePlaying)
	}
	// one line per engine move.
	is.Equal(len(logchan), res.Plies-len(res.Opening))
}

func TestSameSeedSameGame(t *testing.T) {
	is := is.New(t)
	r1 := NewGameRunner(nil, testConfig())
	r1.Init(9, 3, 10)
	r2 := NewGameRunner(nil, testConfig())
	r2.Init(9, 3, 10)

	g1, err := r1.PlayFullGame(context.Background(), "a")
	is.NoErr(err)
	g2, err := r2.PlayFullGame(context.Background(), "b")
	is.NoErr(err)
	is.Equal(g1.Opening, g2.Opening)
	is.Equal(r1.Game().History(), r2.Game().History())
}

func TestCancelledGame(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewGameRunner(nil, testConfig())
	_, err := r.PlayFullGame(ctx, "g1")
	is.Equal(err, context.Canceled)
}

func TestCompVCompCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// games made only of opening moves finish without looking at ctx, so
	// whatever was queued before the stop is kept.
	opts := CVCOptions{
		NumGames:    6,
		Threads:     2,
		Seed:        5,
		RandomPlies: 2,
		MaxPlies:    2,
	}
	results, err := PlayCompVComp(ctx, testConfig(), opts)
	is.True(errors.Is(err, context.Canceled))
	is.True(results != nil)
	is.True(len(results) <= opts.NumGames)
	is.Equal(int64(len(results)), CVCCounter.Value())
	for _, r := range results {
		is.Equal(r.Winner, ResultDraw)
		is.Equal(r.Plies, 2)
	}
	is.Equal(IsPlaying.Value(), int64(0))
}

func TestCompVCompStopsMidGame(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := CVCOptions{NumGames: 3, Threads: 1, Seed: 5, RandomPlies: 1, MaxPlies: 10}
	results, err := PlayCompVComp(ctx, testConfig(), opts)
	is.True(errors.Is(err, context.Canceled))
	is.Equal(len(results), 0)
}

func TestCompVComp(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	opts := CVCOptions{
		NumGames:    4,
		Threads:     2,
		Seed:        100,
		RandomPlies: 2,
		MaxPlies:    8,
		GamesFile:   filepath.Join(dir, "games.csv"),
		TurnsFile:   filepath.Join(dir, "turns.csv"),
	}
	results, err := PlayCompVComp(context.Background(), testConfig(), opts)
	is.NoErr(err)
	is.Equal(len(results), 4)
	is.Equal(results[0].GameID, "g1")
	is.Equal(CVCCounter.Value(), int64(4))
	is.Equal(IsPlaying.Value(), int64(0))

	summary, err := AnalyzeLogFile(opts.GamesFile)
	is.NoErr(err)
	want := Summarize(results)
	is.Equal(summary.Games, 4)
	is.Equal(summary.RedWins, want.RedWins)
	is.Equal(summary.Draws, want.Draws)
	is.True(stats.FuzzyEqual(summary.Plies.Mean(), want.Plies.Mean()))

	f, err := os.Open(opts.TurnsFile)
	is.NoErr(err)
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	enginePlies := 0
	for _, r := range results {
		enginePlies += r.Plies - len(r.Opening)
	}
	is.Equal(lines, enginePlies+1)

	// a single thread plays the same games.
	opts.Threads = 1
	opts.GamesFile, opts.TurnsFile = "", ""
	again, err := PlayCompVComp(context.Background(), testConfig(), opts)
	is.NoErr(err)
	for i := range results {
		is.Equal(again[i].Opening, results[i].Opening)
		is.Equal(again[i].Winner, results[i].Winner)
		is.Equal(again[i].Plies, results[i].Plies)
	}
}

func TestSummaryString(t *testing.T) {
	is := is.New(t)
	s := Summarize([]*GameResult{
		{Winner: ResultRed, Plies: 30},
		{Winner: ResultBlack, Plies: 50},
		{Winner: ResultDraw, Plies: 200},
	})
	is.Equal(s.Games, 3)
	is.Equal(s.RedScore.Mean(), 0.5)
	is.True(len(s.String()) > 0)
}

func TestCompVCompToStore(t *testing.T) {
	is := is.New(t)
	db := filepath.Join(t.TempDir(), "games.db")
	opts := CVCOptions{NumGames: 3, Threads: 2, Seed: 5, RandomPlies: 2, MaxPlies: 6, DBFile: db, Batch: "b"}
	results, err := PlayCompVComp(context.Background(), testConfig(), opts)
	is.NoErr(err)

	s, err := AnalyzeStore(db, "b")
	is.NoErr(err)
	is.Equal(s.Games, len(results))
	h, err := s.Histogram()
	is.NoErr(err)
	is.True(len(h) > 0)
}
