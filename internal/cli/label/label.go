// Package label holds the label commands
package label

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/models"
	labelservice "github.com/thenoetrevino/tablero/internal/services/label"
	"github.com/thenoetrevino/tablero/internal/types"
)

// LabelCmd returns the label parent command
func LabelCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage board labels",
	}

	cmd.AddCommand(createCmd(open))
	cmd.AddCommand(listCmd(open))
	cmd.AddCommand(deleteCmd(open))
	cmd.AddCommand(attachCmd(open, true))
	cmd.AddCommand(attachCmd(open, false))

	return cmd
}

type labelResult struct {
	*models.Label
}

func (r labelResult) GetID() int { return r.ID.ToInt() }

func (r labelResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Label %s created (ID: %d)\n",
		styles.SuccessStyle.Render("OK"), styles.RenderLabelChip(r.Label), r.ID)
	return err
}

type labelList []*models.Label

func (l labelList) Render(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, styles.SubtitleStyle.Render("no labels"))
		return err
	}
	for _, lbl := range l {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", styles.SubtitleStyle.Render(fmt.Sprintf("#%d", lbl.ID)),
			styles.RenderLabelChip(lbl), styles.SubtitleStyle.Render(lbl.Color)); err != nil {
			return err
		}
	}
	return nil
}

func createCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a label on a board",
		Long: `Create a label on a board. Label names are unique per board, ignoring case.

Examples:
  tablero label create --board=1 --name=bug --color="#FF0000"
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			board, err := args.Board()
			if err != nil {
				return nil, err
			}
			name, err := args.MustGetString("name")
			if err != nil {
				return nil, err
			}
			label, err := c.App.LabelService.CreateLabel(ctx, labelservice.CreateLabelRequest{
				BoardID: types.BoardID(board),
				Name:    name,
				Color:   args.GetString("color", ""),
			})
			if err != nil {
				return nil, err
			}
			return labelResult{label}, nil
		})),
	}
	cmd.Flags().Int("board", 0, "Board ID (default: $TABLERO_BOARD)")
	cmd.Flags().String("name", "", "Label name (required)")
	cmd.Flags().String("color", "", "Hex color like #FF5733 (default "+labelservice.DefaultColor+")")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func listCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a board's labels",
		Args:  cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			board, err := args.Board()
			if err != nil {
				return nil, err
			}
			labels, err := c.App.LabelService.ListLabels(ctx, types.BoardID(board))
			if err != nil {
				return nil, err
			}
			return labelList(labels), nil
		})),
	}
	cmd.Flags().Int("board", 0, "Board ID (default: $TABLERO_BOARD)")
	return cmd
}

type changeResult struct {
	CardID  types.CardID  `json:"card_id"`
	LabelID types.LabelID `json:"label_id"`
	Action  string        `json:"action"`
}

func (r changeResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Label %d %s card %d\n", styles.SuccessStyle.Render("OK"), r.LabelID, r.Action, r.CardID)
	return err
}

func deleteCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <label-id>",
		Short: "Delete a label and detach it from every card",
		Args:  cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			id, err := args.ID(0, "label")
			if err != nil {
				return nil, err
			}
			if err := c.App.LabelService.DeleteLabel(ctx, types.LabelID(id)); err != nil {
				return nil, err
			}
			return changeResult{LabelID: types.LabelID(id), Action: "deleted from"}, nil
		})),
	}
}

// attachCmd builds "attach" or "detach"
func attachCmd(open cli.Opener, attach bool) *cobra.Command {
	use, short, action := "detach", "Remove a label from a card", "detached from"
	apply := labelservice.Service.DetachLabel
	if attach {
		use, short, action = "attach", "Put a label on a card", "attached to"
		apply = labelservice.Service.AttachLabel
	}

	return &cobra.Command{
		Use:   use + " <card-id> <label-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			card, err := args.ID(0, "card")
			if err != nil {
				return nil, err
			}
			label, err := args.ID(1, "label")
			if err != nil {
				return nil, err
			}
			if err := apply(c.App.LabelService, ctx, types.CardID(card), types.LabelID(label)); err != nil {
				return nil, err
			}
			return changeResult{CardID: types.CardID(card), LabelID: types.LabelID(label), Action: action}, nil
		})),
	}
}
