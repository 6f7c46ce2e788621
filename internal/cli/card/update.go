package card

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/types"
)

// UpdateCmd returns the card update subcommand
func UpdateCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <card-id>",
		Short: "Change a card's title or description",
		Args:  cobra.ExactArgs(1),
		RunE:  handler.Command(open, handler.Func(runUpdate)),
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New markdown description")
	return cmd
}

func runUpdate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.ID(0, "card")
	if err != nil {
		return nil, err
	}

	req := cardservice.UpdateCardRequest{CardID: types.CardID(id)}
	if v, ok := args.Flags["title"].(string); ok {
		req.Title = &v
	}
	if v, ok := args.Flags["description"].(string); ok {
		req.Description = &v
	}

	card, err := c.App.CardService.UpdateCard(ctx, req)
	if err != nil {
		return nil, err
	}
	return cardResult{Card: card, action: "updated"}, nil
}
