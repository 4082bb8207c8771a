package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("xiangqi_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// runLine runs one shell command line and pushes its output, or a string
// starting with "ERROR: ".
func runLine(L *lua.LState, line string) int {
	sc := getShell(L)
	cmd, err := extractFields(line)
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-parsing-script-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	if cmd.cmd == "exit" || cmd.cmd == "script" {
		L.Push(lua.LString("ERROR: " + cmd.cmd + " is not allowed in a script"))
		return 1
	}
	r, err := sc.standardModeSwitch(line, nil)
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-executing-script-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	// return number of results pushed to stack.
	return 1
}

func runCommand(L *lua.LState, name string) int {
	line := name
	if L.GetTop() > 0 {
		line += " " + L.ToString(1)
	}
	return runLine(L, line)
}

// Run takes a whole command line, like "search -plies 3".
func Run(L *lua.LState) int {
	return runLine(L, L.ToString(1))
}

func Move(L *lua.LState) int   { return runCommand(L, "move") }
func Search(L *lua.LState) int { return runCommand(L, "search") }
func Fen(L *lua.LState) int    { return runCommand(L, "fen") }
func AIMove(L *lua.LState) int { return runCommand(L, "aimove") }

// State pushes the game state: "playing", "red won" or "black won".
func State(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LString(sc.game.Playing().String()))
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("xiangqi_shell", lsc)
	L.SetGlobal("xiangqi_run", L.NewFunction(Run))
	L.SetGlobal("xiangqi_move", L.NewFunction(Move))
	L.SetGlobal("xiangqi_search", L.NewFunction(Search))
	L.SetGlobal("xiangqi_fen", L.NewFunction(Fen))
	L.SetGlobal("xiangqi_aimove", L.NewFunction(AIMove))
	L.SetGlobal("xiangqi_state", L.NewFunction(State))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg(""), nil
}
