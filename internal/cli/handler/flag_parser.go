package handler

import (
	"fmt"

	"github.com/thenoetrevino/tablero/internal/cli"
)

// ID parses positional argument i as a positive ID
func (a *Arguments) ID(i int, what string) (int, error) {
	if i >= len(a.Args) {
		return 0, &cli.ExitCodeError{Code: cli.ExitUsage, Err: fmt.Errorf("%s ID required", what)}
	}
	return cli.ParseID(a.Args[i], what)
}

// RequireID reads a required ID flag
func (a *Arguments) RequireID(name string) (int, error) {
	id, err := a.MustGetInt(name)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, &cli.ExitCodeError{Code: cli.ExitUsage, Err: fmt.Errorf("--%s must be a positive ID, got %d", name, id)}
	}
	return id, nil
}

// Board resolves the board from --board or the shell's board context
func (a *Arguments) Board() (int, error) {
	return cli.GetBoardID(a.cmd)
}

// IDList parses a comma separated ID flag
func (a *Arguments) IDList(name string) ([]int, error) {
	s, err := a.MustGetString(name)
	if err != nil {
		return nil, err
	}
	return cli.ParseIDList(s)
}

// Version returns the optional --version flag; nil means unchecked
func (a *Arguments) Version() *int {
	v, ok := a.Flags["version"].(int)
	if !ok {
		return nil
	}
	return &v
}

// Moves parses every --move flag
func (a *Arguments) Moves() ([]cli.Move, error) {
	specs := a.GetStringArray("move")
	if len(specs) == 0 {
		return nil, &cli.ExitCodeError{Code: cli.ExitUsage, Err: fmt.Errorf("at least one --move is required")}
	}
	moves := make([]cli.Move, len(specs))
	for i, s := range specs {
		m, err := cli.ParseMove(s)
		if err != nil {
			return nil, err
		}
		moves[i] = m
	}
	return moves, nil
}
