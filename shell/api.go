package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/xiangqi/automatic"
	"github.com/domino14/xiangqi/config"
	"github.com/domino14/xiangqi/eval"
	"github.com/domino14/xiangqi/game"
	"github.com/domino14/xiangqi/move"
	"github.com/domino14/xiangqi/movegen"
	"github.com/domino14/xiangqi/piece"
	"github.com/domino14/xiangqi/search/negamax"
)

// numbers prints node counts with digit grouping.
var numbers = message.NewPrinter(language.English)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

// DurationDefault accepts Go durations ("1.5s", "200ms") or a plain
// number of seconds.
func (c CmdOptions) DurationDefault(key string, defaultD time.Duration) (time.Duration, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultD, nil
	}
	if secs, err := strconv.ParseFloat(v[0], 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.game.Reset()
	return msg(sc.game.Board().ToDisplayText()), nil
}

func (sc *ShellController) fen(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.game.Board().FEN()), nil
	}
	if err := sc.game.LoadFEN(strings.Join(cmd.args, " ")); err != nil {
		return nil, err
	}
	return msg(sc.game.Board().ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	out := sc.game.Board().ToDisplayText()
	if sc.game.Playing() != game.PlayStatePlaying {
		out += "\nGame over: " + sc.game.Playing().String()
	}
	return msg(out), nil
}

func (sc *ShellController) gen(cmd *shellcmd) (*Response, error) {
	side := sc.game.SideToMove()
	if len(cmd.args) > 0 {
		switch strings.ToLower(cmd.args[0]) {
		case "red", "r", "w":
			side = piece.Red
		case "black", "b":
			side = piece.Black
		default:
			return nil, fmt.Errorf("unknown side %q; use red or black", cmd.args[0])
		}
	}
	moves := movegen.GenLegalMoves(sc.game.Board(), side)
	return msg(moveTable(moves)), nil
}

func moveTable(moves []move.Move) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d moves\n", len(moves))
	for i, m := range moves {
		fmt.Fprintf(&sb, "%3d: %s\n", i+1, m.String())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: move <from><to>, like move h2e2")
	}
	m, err := sc.game.PlayMoveText(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(sc.afterMove(m)), nil
}

func (sc *ShellController) afterMove(m move.Move) string {
	out := "Played " + m.String() + "\n" + sc.game.Board().ToDisplayText()
	if sc.game.Playing() != game.PlayStatePlaying {
		out += "\nGame over: " + sc.game.Playing().String()
	}
	return out
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.game.Turn() == 0 {
		return nil, errors.New("no moves to take back")
	}
	sc.game.UnplayLastMove()
	return msg(sc.game.Board().ToDisplayText()), nil
}

func (sc *ShellController) history(cmd *shellcmd) (*Response, error) {
	h := sc.game.History()
	if len(h) == 0 {
		return msg("no moves played"), nil
	}
	return msg(strings.Join(h, " ")), nil
}

func (sc *ShellController) check(cmd *shellcmd) (*Response, error) {
	b := sc.game.Board()
	side := b.SideToMove()
	lines := []string{
		fmt.Sprintf("to move: %s", side),
		fmt.Sprintf("in check: %v", movegen.InCheck(b, side)),
		fmt.Sprintf("checkmate: %v", movegen.IsCheckmate(b, side)),
		fmt.Sprintf("stalemate: %v", movegen.IsStalemate(b, side)),
		fmt.Sprintf("kings face: %v", movegen.IsFaceToFace(b)),
		fmt.Sprintf("state: %s", sc.game.Playing()),
	}
	return msg(strings.Join(lines, "\n")), nil
}

type searchParams struct {
	plies     int
	budget    time.Duration
	logFile   string
	disableTT bool
	disableID bool
}

func (sc *ShellController) searchPrepare(cmd *shellcmd) (*searchParams, error) {
	var err error
	params := &searchParams{}
	if params.plies, err = cmd.options.IntDefault("plies", sc.config.GetInt(config.ConfigSearchPlies)); err != nil {
		return nil, err
	}
	if params.plies < 1 {
		return nil, negamax.ErrBadPlies
	}
	if params.budget, err = cmd.options.DurationDefault("time", sc.config.GetDuration(config.ConfigSearchTime)); err != nil {
		return nil, err
	}
	params.logFile = cmd.options.String("log")
	params.disableTT = cmd.options.Bool("disable-tt")
	params.disableID = cmd.options.Bool("disable-id")
	return params, nil
}

func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	params, err := sc.searchPrepare(cmd)
	if err != nil {
		return nil, err
	}
	if sc.game.Playing() != game.PlayStatePlaying {
		return nil, game.ErrGameOver
	}
	sc.showMessage(fmt.Sprintf("plies %v, time %v, tt %v, id %v",
		params.plies, params.budget, !params.disableTT, !params.disableID))

	// a fresh solver so the options don't stick to the game's engine.
	s := negamax.NewSolver(sc.game.Zobrist(), eval.MaterialPositional{})
	s.SetTranspositionTable(sc.game.Solver().TranspositionTable())
	s.SetTimeBudget(params.budget)
	s.SetTranspositionTableOptim(!params.disableTT)
	s.SetIterativeDeepening(!params.disableID)

	if params.logFile != "" {
		f, err := os.Create(params.logFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		s.SetLogStream(f)
		sc.showMessage("search will log to " + params.logFile)
	}

	start := time.Now()
	m, v, err := s.Solve(context.Background(), sc.game.Board(), params.plies)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	pv := s.PrincipalVariation()
	nps := 0
	if elapsed > 0 {
		nps = int(float64(s.Nodes()) / elapsed.Seconds())
	}
	return msg(fmt.Sprintf("best: %s\nvalue: %d\ndepth: %d\n%s\ntime: %v\npv: %s",
		m.String(), v, s.CompletedDepth(),
		numbers.Sprintf("nodes: %d (%d/s)", s.Nodes(), nps),
		elapsed.Round(time.Millisecond),
		strings.Join(pv.Descriptions(), " "))), nil
}

func (sc *ShellController) aimove(cmd *shellcmd) (*Response, error) {
	m, v, err := sc.game.PlayEngineMove(context.Background())
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("%s\nvalue: %d", sc.afterMove(m), v)), nil
}

func (sc *ShellController) perft(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: perft <depth>")
	}
	depth, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if depth < 0 {
		return nil, errors.New("depth must not be negative")
	}
	start := time.Now()
	// perft walks a copy; the game board stays put.
	n := movegen.Perft(sc.game.Board().Copy(), depth)
	elapsed := time.Since(start)
	return msg(fmt.Sprintf("perft(%d) = %d (%v)", depth, n, elapsed.Round(time.Millisecond))), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	var err error
	opts := automatic.CVCOptions{}
	if opts.NumGames, err = cmd.options.IntDefault("games", 10); err != nil {
		return nil, err
	}
	if opts.Threads, err = cmd.options.IntDefault("threads", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if opts.SearchPlies, err = cmd.options.IntDefault("plies", 0); err != nil {
		return nil, err
	}
	if opts.RandomPlies, err = cmd.options.IntDefault("random", automatic.DefaultRandomPlies); err != nil {
		return nil, err
	}
	if opts.MaxPlies, err = cmd.options.IntDefault("maxplies", automatic.DefaultMaxPlies); err != nil {
		return nil, err
	}
	seed, err := cmd.options.IntDefault("seed", 1)
	if err != nil {
		return nil, err
	}
	opts.Seed = uint64(seed)
	opts.GamesFile = cmd.options.String("file")
	opts.TurnsFile = cmd.options.String("turnlog")
	opts.DBFile = cmd.options.String("db")
	opts.Batch = cmd.options.String("batch")

	sc.showMessage(fmt.Sprintf("playing %v games on %v threads", opts.NumGames, opts.Threads))
	results, err := automatic.PlayCompVComp(context.Background(), sc.config, opts)
	if err != nil {
		return nil, err
	}
	return summaryResponse(automatic.Summarize(results))
}

func summaryResponse(s *automatic.Summary) (*Response, error) {
	hist, err := s.Histogram()
	if err != nil {
		return nil, err
	}
	return msg(s.String() + "\n\nGame length histogram:\n" + hist), nil
}

func (sc *ShellController) autoanalyze(cmd *shellcmd) (*Response, error) {
	if db := cmd.options.String("db"); db != "" {
		batch := cmd.options.String("batch")
		if batch == "" {
			return nil, errors.New("usage: autoanalyze -db <file> -batch <name>")
		}
		s, err := automatic.AnalyzeStore(db, batch)
		if err != nil {
			return nil, err
		}
		return summaryResponse(s)
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: autoanalyze <games file>")
	}
	s, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return summaryResponse(s)
}
