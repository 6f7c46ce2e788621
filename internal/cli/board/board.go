// Package board holds the board commands
package board

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/handler"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/models"
	boardservice "github.com/thenoetrevino/tablero/internal/services/board"
	"github.com/thenoetrevino/tablero/internal/types"
)

// BoardCmd returns the board parent command
func BoardCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
	}

	cmd.AddCommand(createCmd(open))
	cmd.AddCommand(listCmd(open))
	cmd.AddCommand(showCmd(open))
	cmd.AddCommand(renameCmd(open))
	cmd.AddCommand(deleteCmd(open))

	return cmd
}

type boardResult struct {
	*models.Board
	action string
}

func (r boardResult) GetID() int { return r.ID.ToInt() }

func (r boardResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Board '%s' %s (ID: %d)\n", styles.SuccessStyle.Render("OK"), r.Name, r.action, r.ID)
	return err
}

type boardList []*models.Board

func (l boardList) Render(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, styles.SubtitleStyle.Render("no boards"))
		return err
	}
	for _, b := range l {
		if _, err := fmt.Fprintf(w, "%s %s\n", styles.SubtitleStyle.Render(fmt.Sprintf("#%d", b.ID)), b.Name); err != nil {
			return err
		}
	}
	return nil
}

type boardView struct {
	*models.BoardView
}

func (v boardView) GetID() int { return v.Board.ID.ToInt() }

func (v boardView) Render(w io.Writer) error {
	_, err := io.WriteString(w, styles.RenderBoard(v.BoardView))
	return err
}

func createCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a board",
		Long: `Create a board in an organization. Counts against the plan's board limit.

Examples:
  tablero board create --org=1 --name="Roadmap"
  BOARD_ID=$(tablero board create --org=1 --name="Roadmap" --quiet)
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(runCreate)),
	}
	cmd.Flags().Int("org", 0, "Organization ID (required)")
	cmd.Flags().String("name", "", "Board name (required)")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	org, err := args.RequireID("org")
	if err != nil {
		return nil, err
	}
	name, err := args.MustGetString("name")
	if err != nil {
		return nil, err
	}
	board, err := c.App.BoardService.CreateBoard(ctx, boardservice.CreateBoardRequest{OrgID: types.OrgID(org), Name: name})
	if err != nil {
		return nil, err
	}
	return boardResult{Board: board, action: "created"}, nil
}

func listCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an organization's boards",
		Args:  cobra.NoArgs,
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			org, err := args.RequireID("org")
			if err != nil {
				return nil, err
			}
			boards, err := c.App.BoardService.ListBoards(ctx, types.OrgID(org))
			if err != nil {
				return nil, err
			}
			return boardList(boards), nil
		})),
	}
	cmd.Flags().Int("org", 0, "Organization ID (required)")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func showCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [board-id]",
		Short: "Show a board's columns and cards side by side",
		Long: `Show a board. Without an argument the board comes from --board or
the shell's board context (eval $(tablero use board <id>)).`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(open, handler.Func(runShow)),
	}
	cmd.Flags().Int("board", 0, "Board ID")
	return cmd
}

func runShow(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	var id int
	var err error
	if len(args.Args) > 0 {
		id, err = args.ID(0, "board")
	} else {
		id, err = args.Board()
	}
	if err != nil {
		return nil, err
	}
	view, err := c.App.BoardService.GetBoardView(ctx, types.BoardID(id))
	if err != nil {
		return nil, err
	}
	return boardView{view}, nil
}

func renameCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <board-id>",
		Short: "Rename a board",
		Args:  cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			id, err := args.ID(0, "board")
			if err != nil {
				return nil, err
			}
			name, err := args.MustGetString("name")
			if err != nil {
				return nil, err
			}
			if err := c.App.BoardService.RenameBoard(ctx, types.BoardID(id), name); err != nil {
				return nil, err
			}
			board, err := c.App.BoardService.GetBoard(ctx, types.BoardID(id))
			if err != nil {
				return nil, err
			}
			return boardResult{Board: board, action: "renamed"}, nil
		})),
	}
	cmd.Flags().String("name", "", "New name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

type deleteResult struct {
	ID      types.BoardID `json:"id"`
	Deleted bool          `json:"deleted"`
}

func (r deleteResult) GetID() int { return r.ID.ToInt() }

func (r deleteResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Board %d deleted\n", styles.SuccessStyle.Render("OK"), r.ID)
	return err
}

func deleteCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board",
		Long: `Delete a board with its columns, cards and labels. Boards that still
hold cards are only deleted with --force.`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Command(open, handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			id, err := args.ID(0, "board")
			if err != nil {
				return nil, err
			}
			req := boardservice.DeleteBoardRequest{ID: types.BoardID(id), Force: args.GetBool("force")}
			if err := c.App.BoardService.DeleteBoard(ctx, req); err != nil {
				return nil, err
			}
			return deleteResult{ID: req.ID, Deleted: true}, nil
		})),
	}
	cmd.Flags().Bool("force", false, "Delete even if the board holds cards")
	return cmd
}
