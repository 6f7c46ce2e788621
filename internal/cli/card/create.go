package card

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/types"
)

// CreateCmd returns the card create subcommand
func CreateCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a card to a column",
		Long: `Append a new card to the end of a column.

Examples:
  tablero card create --column=4 --title="Write release notes"
  tablero card create --column=4 --title="Spike" --description="## Goal\nfind out"
  CARD_ID=$(tablero card create --column=4 --title="Spike" --quiet)
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(runCreate)),
	}

	cmd.Flags().Int("column", 0, "Column ID (required)")
	cmd.Flags().String("title", "", "Card title (required)")
	cmd.Flags().String("description", "", "Markdown description")
	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	column, err := args.RequireID("column")
	if err != nil {
		return nil, err
	}
	title, err := args.MustGetString("title")
	if err != nil {
		return nil, err
	}

	card, err := c.App.CardService.CreateCard(ctx, cardservice.CreateCardRequest{
		ColumnID:    types.ColumnID(column),
		Title:       title,
		Description: args.GetString("description", ""),
	})
	if err != nil {
		return nil, err
	}
	return cardResult{Card: card, action: "created"}, nil
}
