package card

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
	ID      types.CardID `json:"id"`
	Deleted bool         `json:"deleted"`
}

func (r deleteResult) GetID() int { return r.ID.ToInt() }

func (r deleteResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Card %d deleted\n", styles.SuccessStyle.Render("OK"), r.ID)
	return err
}

// DeleteCmd returns the card delete subcommand
func DeleteCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card",
		Long:  `Delete a card. The cards after it in its column move up one position.`,
		Args:  cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			id, err := args.ID(0, "card")
			if err != nil {
				return nil, err
			}
			if err := c.App.CardService.DeleteCard(ctx, types.CardID(id)); err != nil {
				return nil, err
			}
			return deleteResult{ID: types.CardID(id), Deleted: true}, nil
		})),
	}
}
