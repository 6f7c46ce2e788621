// Package card holds the card commands
package card

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/models"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/types"
)

// CardCmd returns the card parent command
func CardCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	cmd.AddCommand(CreateCmd(open))
	cmd.AddCommand(ListCmd(open))
	cmd.AddCommand(ShowCmd(open))
	cmd.AddCommand(UpdateCmd(open))
	cmd.AddCommand(DeleteCmd(open))
	cmd.AddCommand(ReorderCmd(open))
	cmd.AddCommand(MoveCmd(open))
	cmd.AddCommand(BatchMoveCmd(open))

	return cmd
}

type cardResult struct {
	*models.Card
	action string
}

func (r cardResult) GetID() int { return r.ID.ToInt() }

func (r cardResult) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s Card '%s' %s (ID: %d)\n  %s  %s\n",
		styles.SuccessStyle.Render("OK"), r.Title, r.action, r.ID,
		styles.RenderField("Column", r.ColumnID), styles.RenderField("Position", r.Position))
	return err
}

type cardList []*models.Card

func (l cardList) Render(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, styles.SubtitleStyle.Render("no cards"))
		return err
	}
	for _, c := range l {
		if _, err := fmt.Fprintf(w, "  %d. %s %s\n", c.Position, c.Title, styles.SubtitleStyle.Render(fmt.Sprintf("#%d", c.ID))); err != nil {
			return err
		}
	}
	return nil
}

// cardDetail is a card rendered with its markdown description
type cardDetail struct {
	*models.Card
}

func (d cardDetail) GetID() int { return d.ID.ToInt() }

func (d cardDetail) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("#%d", d.ID)))
	b.WriteString("\n\n")
	b.WriteString(styles.RenderField("Board", d.BoardID) + "  ")
	b.WriteString(styles.RenderField("Column", d.ColumnID) + "  ")
	b.WriteString(styles.RenderField("Position", d.Position))

	if len(d.Labels) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SectionStyle.Render("Labels"))
		b.WriteString("\n")
		chips := make([]string, len(d.Labels))
		for i, l := range d.Labels {
			chips[i] = styles.RenderLabelChip(l)
		}
		b.WriteString(strings.Join(chips, " "))
	}

	b.WriteString("\n")
	b.WriteString(styles.SectionStyle.Render("Description"))
	b.WriteString("\n")
	b.WriteString(styles.RenderDescription(d.Description, styles.CardWidth-6))

	_, err := fmt.Fprintln(w, styles.RenderCard(b.String()))
	return err
}

// placement is one card's position after a move
type placement struct {
	CardID   types.CardID   `json:"card_id"`
	ColumnID types.ColumnID `json:"column_id"`
	Position int            `json:"position"`
}

type moveResult struct {
	Placements []placement            `json:"placements"`
	Versions   map[types.ColumnID]int `json:"versions"`
}

func newMoveResult(res *cardservice.MoveResult) moveResult {
	out := moveResult{Placements: make([]placement, len(res.Placements)), Versions: res.Versions}
	for i, p := range res.Placements {
		out.Placements[i] = placement{CardID: p.Item, ColumnID: p.Container, Position: p.Position}
	}
	return out
}

func (r moveResult) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s %d cards placed\n", styles.SuccessStyle.Render("OK"), len(r.Placements)); err != nil {
		return err
	}
	for _, p := range r.Placements {
		if _, err := fmt.Fprintf(w, "  card %d -> column %d, position %d\n", p.CardID, p.ColumnID, p.Position); err != nil {
			return err
		}
	}
	return nil
}

type reorderResult struct {
	ColumnID types.ColumnID `json:"column_id"`
	Version  int            `json:"version"`
	Cards    []*models.Card `json:"cards"`
}

func (r reorderResult) GetID() int { return r.ColumnID.ToInt() }

func (r reorderResult) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s Column %d is at version %d\n", styles.SuccessStyle.Render("OK"), r.ColumnID, r.Version); err != nil {
		return err
	}
	return cardList(r.Cards).Render(w)
}
