package card

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ShowCmd returns the card show subcommand
func ShowCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show a card with its labels and rendered description",
		Args:  cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			id, err := args.ID(0, "card")
			if err != nil {
				return nil, err
			}
			card, err := c.App.CardService.GetCard(ctx, types.CardID(id))
			if err != nil {
				return nil, err
			}
			return cardDetail{card}, nil
		})),
	}
}

// ListCmd returns the card list subcommand
func ListCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a column's cards in order",
		Args:  cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			column, err := args.RequireID("column")
			if err != nil {
				return nil, err
			}
			cards, err := c.App.CardService.GetCardsByColumn(ctx, types.ColumnID(column))
			if err != nil {
				return nil, err
			}
			return cardList(cards), nil
		})),
	}
	cmd.Flags().Int("column", 0, "Column ID (required)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}
