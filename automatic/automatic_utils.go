package automatic

// Data collection for automatic games: computer vs computer.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/xiangqi/config"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

// CVCOptions configures a batch of self-play games.
type CVCOptions struct {
	NumGames    int
	Threads     int
	Seed        uint64
	SearchPlies int
	RandomPlies int
	MaxPlies    int
	// GamesFile gets one CSV line per game. TurnsFile, if set, gets one per
	// engine move.
	GamesFile string
	TurnsFile string
	// DBFile, if set, is a SQLite file that gets every game under Batch.
	DBFile string
	Batch  string
}

const (
	gamesHeader = "gameID,winner,plies,opening\n"
	turnsHeader = "gameID,turn,side,move,value,depth\n"
)

type job struct {
	idx int
}

// PlayCompVComp plays opts.NumGames games over opts.Threads workers and
// blocks until they are done or ctx is cancelled. On cancellation it
// returns the games finished so far along with ctx.Err(). Game i uses seed
// opts.Seed+i for its opening, so a batch is reproducible whatever the
// thread count.
func PlayCompVComp(ctx context.Context, cfg *config.Config, opts CVCOptions) ([]*GameResult, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	if opts.NumGames < 1 {
		return nil, errors.New("need at least one game")
	}
	opts.Threads = max(1, min(opts.Threads, opts.NumGames))
	if opts.MaxPlies <= 0 {
		opts.MaxPlies = DefaultMaxPlies
	}

	gamesOut, err := createLog(opts.GamesFile, gamesHeader)
	if err != nil {
		return nil, err
	}
	defer gamesOut.Close()
	turnsOut, err := createLog(opts.TurnsFile, turnsHeader)
	if err != nil {
		return nil, err
	}
	defer turnsOut.Close()
	var store *ResultStore
	if opts.DBFile != "" {
		if store, err = OpenResultStore(opts.DBFile); err != nil {
			return nil, err
		}
		defer store.Close()
		if opts.Batch == "" {
			opts.Batch = "cvc-" + time.Now().UTC().Format("20060102-150405")
		}
		log.Info().Str("batch", opts.Batch).Str("db", opts.DBFile).Msg("saving-results")
	}

	log.Debug().Msgf("Starting %v games, %v threads", opts.NumGames, opts.Threads)
	CVCCounter.Set(0)

	jobs := make(chan job, 100)
	var logChan chan string
	if opts.TurnsFile != "" {
		logChan = make(chan string, 100)
	}
	results := make([]*GameResult, opts.NumGames)
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.NumGames; i++ {
			select {
			case jobs <- job{idx: i}:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return nil
			}
		}
		log.Debug().Msg("Finished queueing all jobs.")
		return nil
	})

	var workers sync.WaitGroup
	workers.Add(opts.Threads)
	for t := 0; t < opts.Threads; t++ {
		g.Go(func() error {
			defer workers.Done()
			r := NewGameRunner(logChan, cfg)
			r.Init(opts.Seed, opts.RandomPlies, opts.MaxPlies)
			r.SetSearchPlies(opts.SearchPlies)
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for j := range jobs {
				r.Reseed(opts.Seed + uint64(j.idx))
				res, err := r.PlayFullGame(gctx, fmt.Sprintf("g%d", j.idx+1))
				if err != nil {
					if gctx.Err() != nil && errors.Is(err, gctx.Err()) {
						// stopped; the unfinished game is dropped.
						return nil
					}
					return err
				}
				resultsMu.Lock()
				results[j.idx] = res
				fmt.Fprintf(gamesOut, "%s,%s,%d,%s\n", res.GameID, res.Winner,
					res.Plies, strings.Join(res.Opening, " "))
				if store != nil {
					err = store.Save(opts.Batch, res)
				}
				resultsMu.Unlock()
				if err != nil {
					return err
				}
				CVCCounter.Add(1)
			}
			return nil
		})
	}

	if logChan != nil {
		go func() {
			workers.Wait()
			close(logChan)
		}()
		g.Go(func() error {
			// keep draining after a write error so workers never block.
			var werr error
			for msg := range logChan {
				if werr == nil {
					_, werr = io.WriteString(turnsOut, msg)
				}
			}
			log.Debug().Msg("Exiting turn logger goroutine!")
			return werr
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info().Int64("games", CVCCounter.Value()).Msg("all-games-finished")

	finished := make([]*GameResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			finished = append(finished, r)
		}
	}
	return finished, ctx.Err()
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }

func createLog(filename, header string) (io.WriteCloser, error) {
	if filename == "" {
		return nopWriteCloser{}, nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(f, header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
