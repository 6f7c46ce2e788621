package column

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	columnservice "github.com/thenoetrevino/tablero/internal/services/column"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ReorderCmd returns the column reorder subcommand
func ReorderCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Replace a board's column order",
		Long: `Replace the column order of a board. --ids must list every column of
the board exactly once. With --version the reorder only applies if the
board is still at that version.

Examples:
  tablero column reorder --board=1 --ids=3,1,2
  tablero column reorder --board=1 --ids=3,1,2 --version=4
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(runReorder)),
	}
	cmd.Flags().Int("board", 0, "Board ID (default: $TABLERO_BOARD)")
	cmd.Flags().String("ids", "", "Column IDs in their new order (required)")
	cmd.Flags().Int("version", 0, "Expected board version")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

func runReorder(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	board, err := args.Board()
	if err != nil {
		return nil, err
	}
	ids, err := args.IDList("ids")
	if err != nil {
		return nil, err
	}

	columnIDs := make([]types.ColumnID, len(ids))
	for i, id := range ids {
		columnIDs[i] = types.ColumnID(id)
	}
	version, err := c.App.ColumnService.ReorderColumns(ctx, columnservice.ReorderColumnsRequest{
		BoardID:         types.BoardID(board),
		IDs:             columnIDs,
		ExpectedVersion: args.Version(),
	})
	if err != nil {
		return nil, err
	}
	return newOrderResult(ctx, c, types.BoardID(board), version)
}

func newOrderResult(ctx context.Context, c *cli.CLI, board types.BoardID, version int) (any, error) {
	columns, err := c.App.ColumnService.GetColumnsByBoard(ctx, board)
	if err != nil {
		return nil, err
	}
	return orderResult{BoardID: board, Version: version, Columns: columns}, nil
}
