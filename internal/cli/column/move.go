package column

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	columnservice "github.com/thenoetrevino/tablero/internal/services/column"
	"github.com/thenoetrevino/tablero/internal/types"
)

// MoveCmd returns the column move subcommand
func MoveCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <column-id>",
		Short: "Move one column to an index",
		Long: `Move a column to --index, shifting the columns in between. An index
past the end moves the column last.

Examples:
  tablero column move 7 --index=0
`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(runMove)),
	}
	cmd.Flags().Int("index", 0, "Target position, 0 based (required)")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func runMove(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.ID(0, "column")
	if err != nil {
		return nil, err
	}
	index, err := args.MustGetInt("index")
	if err != nil {
		return nil, err
	}
	version, err := c.App.ColumnService.MoveColumn(ctx, columnservice.MoveColumnRequest{
		ColumnID: types.ColumnID(id),
		Index:    index,
	})
	if err != nil {
		return nil, err
	}
	column, err := c.App.ColumnService.GetColumn(ctx, types.ColumnID(id))
	if err != nil {
		return nil, err
	}
	return newOrderResult(ctx, c, column.BoardID, version)
}
