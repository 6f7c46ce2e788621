package card

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ReorderCmd returns the card reorder subcommand
func ReorderCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Replace a column's card order",
		Long: `Replace the card order of a column. --ids must list every card of the
column exactly once. With --version the reorder only applies if the column
is still at that version.

Examples:
  tablero card reorder --column=4 --ids=12,10,11
  tablero card reorder --column=4 --ids=12,10,11 --version=7
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(runReorder)),
	}
	cmd.Flags().Int("column", 0, "Column ID (required)")
	cmd.Flags().String("ids", "", "Card IDs in their new order (required)")
	cmd.Flags().Int("version", 0, "Expected column version")
	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

func runReorder(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	column, err := args.RequireID("column")
	if err != nil {
		return nil, err
	}
	ids, err := args.IDList("ids")
	if err != nil {
		return nil, err
	}

	cardIDs := make([]types.CardID, len(ids))
	for i, id := range ids {
		cardIDs[i] = types.CardID(id)
	}
	version, err := c.App.CardService.ReorderCards(ctx, cardservice.ReorderCardsRequest{
		ColumnID:        types.ColumnID(column),
		IDs:             cardIDs,
		ExpectedVersion: args.Version(),
	})
	if err != nil {
		return nil, err
	}

	cards, err := c.App.CardService.GetCardsByColumn(ctx, types.ColumnID(column))
	if err != nil {
		return nil, err
	}
	return reorderResult{ColumnID: types.ColumnID(column), Version: version, Cards: cards}, nil
}

// MoveCmd returns the card move subcommand
func MoveCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <card-id>",
		Short: "Move one card to a column and index",
		Long: `Move a card to --index of --column. The gap it leaves is closed and
the destination shifts to make room. An index past the end appends.

Examples:
  tablero card move 12 --column=5 --index=0
`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(runMove)),
	}
	cmd.Flags().Int("column", 0, "Destination column ID (required)")
	cmd.Flags().Int("index", 0, "Destination position, 0 based (required)")
	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func runMove(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := args.ID(0, "card")
	if err != nil {
		return nil, err
	}
	column, err := args.RequireID("column")
	if err != nil {
		return nil, err
	}
	index, err := args.MustGetInt("index")
	if err != nil {
		return nil, err
	}
	res, err := c.App.CardService.MoveCard(ctx, cardservice.MoveCardRequest{
		CardID:   types.CardID(id),
		ColumnID: types.ColumnID(column),
		Index:    index,
	})
	if err != nil {
		return nil, err
	}
	return newMoveResult(res), nil
}

// BatchMoveCmd returns the card batch-move subcommand
func BatchMoveCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch-move",
		Short: "Apply several card placements atomically",
		Long: `Place several cards in one transaction. Each --move is card:column:index.
After the batch every touched column must be dense (positions 0..n-1 with
no gaps or collisions), so include the cards that shift to close gaps.
If any move is rejected, nothing changes.

Examples:
  # Move card 1 from column 10 to the top of column 20; card 2 closes the gap
  tablero card batch-move --board=3 --move=1:20:0 --move=2:10:0 --move=3:20:1
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(runBatchMove)),
	}
	cmd.Flags().Int("board", 0, "Board ID (default: $TABLERO_BOARD)")
	cmd.Flags().StringArray("move", nil, "card:column:index (repeatable, required)")
	return cmd
}

func runBatchMove(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	board, err := args.Board()
	if err != nil {
		return nil, err
	}
	parsed, err := args.Moves()
	if err != nil {
		return nil, err
	}

	moves := make([]cardservice.CardMove, len(parsed))
	for i, m := range parsed {
		moves[i] = cardservice.CardMove{
			CardID:   types.CardID(m.CardID),
			ColumnID: types.ColumnID(m.ColumnID),
			Index:    m.Index,
		}
	}
	res, err := c.App.CardService.MoveCards(ctx, cardservice.MoveCardsRequest{BoardID: types.BoardID(board), Moves: moves})
	if err != nil {
		return nil, err
	}
	return newMoveResult(res), nil
}
