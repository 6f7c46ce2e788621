// Package column holds the column commands
package column

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ColumnCmd returns the column parent command
func ColumnCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage columns",
	}

	cmd.AddCommand(CreateCmd(open))
	cmd.AddCommand(ListCmd(open))
	cmd.AddCommand(RenameCmd(open))
	cmd.AddCommand(DeleteCmd(open))
	cmd.AddCommand(ReorderCmd(open))
	cmd.AddCommand(MoveCmd(open))

	return cmd
}

type columnResult struct {
	*models.Column
	action string
}

func (r columnResult) GetID() int { return r.ID.ToInt() }

func (r columnResult) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s Column '%s' %s (ID: %d)\n", styles.SuccessStyle.Render("OK"), r.Name, r.action, r.ID); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "  "+styles.RenderField("Position", r.Position))
	return err
}

// orderResult reports a board's column order after a reorder or move
type orderResult struct {
	BoardID types.BoardID    `json:"board_id"`
	Version int              `json:"version"`
	Columns []*models.Column `json:"columns"`
}

func (r orderResult) GetID() int { return r.BoardID.ToInt() }

func (r orderResult) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s Board %d is at version %d\n", styles.SuccessStyle.Render("OK"), r.BoardID, r.Version); err != nil {
		return err
	}
	return columnList(r.Columns).Render(w)
}

type columnList []*models.Column

func (l columnList) Render(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, styles.SubtitleStyle.Render("no columns"))
		return err
	}
	for _, c := range l {
		if _, err := fmt.Fprintf(w, "  %d. %s %s\n", c.Position, c.Name, styles.SubtitleStyle.Render(fmt.Sprintf("#%d", c.ID))); err != nil {
			return err
		}
	}
	return nil
}
