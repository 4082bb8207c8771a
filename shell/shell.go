package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xiangqi/config"
	"github.com/domino14/xiangqi/game"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("sending quit signal")
)

type ShellController struct {
	l *readline.Instance
	// out is where responses go when there is no readline instance.
	out io.Writer

	config     *config.Config
	game       *game.Game
	execPath   string
	gitVersion string
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController returns a controller reading commands with readline.
func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := newController(cfg, execPath, gitVersion, os.Stdout)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mxiangqi>\033[0m ",
		HistoryFile:     "/tmp/xiangqi_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func newController(cfg *config.Config, execPath, gitVersion string, out io.Writer) *ShellController {
	return &ShellController{
		out:        out,
		config:     cfg,
		game:       game.NewGame(cfg),
		execPath:   execPath,
		gitVersion: gitVersion,
	}
}

func (sc *ShellController) stdout() io.Writer {
	if sc.l != nil {
		return sc.l.Stdout()
	}
	return sc.out
}

func (sc *ShellController) stderr() io.Writer {
	if sc.l != nil {
		return sc.l.Stderr()
	}
	return sc.out
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.stdout())
}

func (sc *ShellController) showError(err error) {
	showMessage("Error: "+err.Error(), sc.stderr())
}

// extractFields splits a line into a command, its positional arguments,
// and its -key value options. An option followed by another option, or by
// nothing, is a boolean switch and gets the value "true".
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}

	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		if !isOption(f) {
			args = append(args, f)
			continue
		}
		key := f[1:]
		if key == "" {
			return nil, errWrongOptionSyntax
		}
		if idx+1 >= len(fields) || isOption(fields[idx+1]) {
			options[key] = append(options[key], "true")
			continue
		}
		idx++
		options[key] = append(options[key], fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// isOption reports whether f looks like -key. Negative numbers are values.
func isOption(f string) bool {
	if !strings.HasPrefix(f, "-") {
		return false
	}
	if len(f) > 1 && f[1] >= '0' && f[1] <= '9' {
		return false
	}
	return true
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "fen":
		return sc.fen(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "gen":
		return sc.gen(cmd)
	case "move", "m":
		return sc.move(cmd)
	case "undo", "u":
		return sc.undo(cmd)
	case "check":
		return sc.check(cmd)
	case "search":
		return sc.search(cmd)
	case "aimove":
		return sc.aimove(cmd)
	case "perft":
		return sc.perft(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "autoanalyze":
		return sc.autoanalyze(cmd)
	case "script":
		return sc.script(cmd)
	case "history":
		return sc.history(cmd)
	default:
		log.Debug().Msgf("command %v not found", cmd.cmd)
		return nil, fmt.Errorf("command %v not found", cmd.cmd)
	}
}

// Execute runs a single command line, as when commands are given on the
// command line instead of interactively.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		if !errors.Is(err, errQuit) {
			sc.showError(err)
		}
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()

	for {

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		resp, err := sc.standardModeSwitch(line, sig)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
