package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-plies")
	Args    []string // Possible argument values (for non-option arguments)
}

var commandMetadata = map[string]CommandMetadata{
	"search": {
		Options: []string{"-plies", "-time", "-log", "-disable-tt", "-disable-id"},
	},
	"autoplay": {
		Options: []string{"-games", "-threads", "-plies", "-random", "-maxplies", "-seed", "-file", "-turnlog", "-db", "-batch"},
	},
	"autoanalyze": {
		Options: []string{"-db", "-batch"},
	},
	"gen": {
		Args: []string{"red", "black"},
	},
	"help": {
		Args: []string{"search", "move", "fen", "autoplay", "script"},
	},
}

// Common command names for command completion
var commandNames = []string{
	"new", "fen", "show", "gen", "move", "undo", "history", "check",
	"search", "aimove", "perft", "autoplay", "autoanalyze", "script", "help", "exit",
}

// Do implements the readline.AutoComplete interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// an unterminated quote; fall back to simple splitting.
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		if metadata, exists := commandMetadata[cmdName]; exists {
			if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
				completions = metadata.Options
			} else {
				completions = metadata.Args
			}
		}
		// suggest legal moves to the move command.
		if cmdName == "move" && c.sc != nil {
			for _, m := range c.sc.game.LegalMoves() {
				completions = append(completions, m.ShortDescription())
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
