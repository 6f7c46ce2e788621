package column

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	"github.com/thenoetrevino/tablero/internal/types"
)

// RenameCmd returns the column rename subcommand
func RenameCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <column-id>",
		Short: "Rename a column",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.Command(open, handler.Func(runRename)),
	}
	cmd.Flags().String("name", "", "New name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runRename(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.ID(0, "column")
	if err != nil {
		return nil, err
	}
	name, err := args.MustGetString("name")
	if err != nil {
		return nil, err
	}
	if err := c.App.ColumnService.RenameColumn(ctx, types.ColumnID(id), name); err != nil {
		return nil, err
	}
	column, err := c.App.ColumnService.GetColumn(ctx, types.ColumnID(id))
	if err != nil {
		return nil, err
	}
	return columnResult{Column: column, action: "renamed"}, nil
}
