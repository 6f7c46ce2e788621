package column

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/types"
)

type deleteResult struct {
	ID      types.ColumnID `json:"id"`
	Deleted bool           `json:"deleted"`
}

func (r deleteResult) GetID() int { return r.ID.ToInt() }

func (r deleteResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Column %d deleted, later columns moved up\n", styles.SuccessStyle.Render("OK"), r.ID)
	return err
}

// DeleteCmd returns the column delete subcommand
func DeleteCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <column-id>",
		Short: "Delete a column and its cards",
		Long: `Delete a column together with its cards. The columns after it move
up one position so the board stays gap free.`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			id, err := args.ID(0, "column")
			if err != nil {
				return nil, err
			}
			if err := c.App.ColumnService.DeleteColumn(ctx, types.ColumnID(id)); err != nil {
				return nil, err
			}
			return deleteResult{ID: types.ColumnID(id), Deleted: true}, nil
		})),
	}
}
