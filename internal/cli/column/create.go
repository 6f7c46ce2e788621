package column

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	columnservice "github.com/thenoetrevino/tablero/internal/services/column"
	"github.com/thenoetrevino/tablero/internal/types"
)

// CreateCmd returns the column create subcommand
func CreateCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a column to a board",
		Long: `Append a new column to the end of a board.

Examples:
  # Create column at end (human-readable output)
  tablero column create --name="Review" --board=1

  # JSON output for agents
  tablero column create --name="Review" --board=1 --json

  # Quiet mode for bash capture
  COLUMN_ID=$(tablero column create --name="Review" --board=1 --quiet)
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(runCreate)),
	}

	cmd.Flags().String("name", "", "Column name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().Int("board", 0, "Board ID (default: $TABLERO_BOARD)")

	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	board, err := args.Board()
	if err != nil {
		return nil, err
	}
	name, err := args.MustGetString("name")
	if err != nil {
		return nil, err
	}

	column, err := c.App.ColumnService.CreateColumn(ctx, columnservice.CreateColumnRequest{
		BoardID: types.BoardID(board),
		Name:    name,
	})
	if err != nil {
		return nil, err
	}
	return columnResult{Column: column, action: "created"}, nil
}
