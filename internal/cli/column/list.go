package column

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ListCmd returns the column list subcommand
func ListCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a board's columns in order",
		Args:  cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			board, err := args.Board()
			if err != nil {
				return nil, err
			}
			columns, err := c.App.ColumnService.GetColumnsByBoard(ctx, types.BoardID(board))
			if err != nil {
				return nil, err
			}
			return columnList(columns), nil
		})),
	}
	cmd.Flags().Int("board", 0, "Board ID (default: $TABLERO_BOARD)")
	return cmd
}
