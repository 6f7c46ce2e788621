package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// BoardEnv holds the board set by `tablero use board`
const BoardEnv = "TABLERO_BOARD"

// Move is one parsed --move value
type Move struct {
	CardID   int
	ColumnID int
	Index    int
}

// GetBoardID returns --board when set, else $TABLERO_BOARD
func GetBoardID(cmd *cobra.Command) (int, error) {
	if cmd.Flags().Changed("board") {
		id, _ := cmd.Flags().GetInt("board")
		if id <= 0 {
			return 0, usageError("--board must be a positive ID, got %d", id)
		}
		return id, nil
	}
	if v := os.Getenv(BoardEnv); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return 0, usageError("%s must be a positive board ID, got %q", BoardEnv, v)
		}
		return id, nil
	}
	return 0, usageError("no board selected: pass --board or run eval $(tablero use board <id>)")
}

// ParseID parses a positional ID argument
func ParseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, dataError("invalid %s ID: %s", what, arg)
	}
	return id, nil
}

// ParseIDList parses "3,1,2" into IDs, keeping their order. An empty string
// is the order of an empty container.
func ParseIDList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, dataError("invalid ID %q in list %q", p, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseMove parses "card:column:index"
func ParseMove(s string) (Move, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Move{}, dataError("move %q must be card:column:index", s)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Move{}, dataError("move %q must be card:column:index", s)
		}
		n[i] = v
	}
	return Move{CardID: n[0], ColumnID: n[1], Index: n[2]}, nil
}

func usageError(format string, args ...any) error {
	return &ExitCodeError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

func dataError(format string, args ...any) error {
	return &ExitCodeError{Code: ExitDataErr, Err: fmt.Errorf(format, args...)}
}
