package events

import (
	"fmt"
	"strings"
)

// Describe renders a one-line, human readable summary of e
func Describe(e Event) string {
	d := &describer{}
	e.Accept(d)
	return d.line
}

type describer struct {
	line string
}

func (d *describer) VisitBoardCreated(e BoardCreated) {
	d.line = fmt.Sprintf("board %d created: %q", e.BoardID, e.Name)
}

func (d *describer) VisitBoardDeleted(e BoardDeleted) {
	d.line = fmt.Sprintf("board %d deleted", e.BoardID)
}

func (d *describer) VisitColumnCreated(e ColumnCreated) {
	d.line = fmt.Sprintf("board %d: column %d %q added at %d", e.BoardID, e.ColumnID, e.Name, e.Position)
}

func (d *describer) VisitColumnRenamed(e ColumnRenamed) {
	d.line = fmt.Sprintf("board %d: column %d renamed to %q", e.BoardID, e.ColumnID, e.Name)
}

func (d *describer) VisitColumnDeleted(e ColumnDeleted) {
	d.line = fmt.Sprintf("board %d: column %d deleted", e.BoardID, e.ColumnID)
}

func (d *describer) VisitColumnsReordered(e ColumnsReordered) {
	d.line = fmt.Sprintf("board %d: columns reordered to %s (v%d)", e.BoardID, joinIDs(e.Order), e.Version)
}

func (d *describer) VisitCardCreated(e CardCreated) {
	d.line = fmt.Sprintf("board %d: card %d %q added to column %d at %d", e.BoardID, e.CardID, e.Title, e.ColumnID, e.Position)
}

func (d *describer) VisitCardUpdated(e CardUpdated) {
	d.line = fmt.Sprintf("board %d: card %d updated: %q", e.BoardID, e.CardID, e.Title)
}

func (d *describer) VisitCardDeleted(e CardDeleted) {
	d.line = fmt.Sprintf("board %d: card %d deleted from column %d", e.BoardID, e.CardID, e.ColumnID)
}

func (d *describer) VisitCardsReordered(e CardsReordered) {
	d.line = fmt.Sprintf("board %d: column %d reordered to %s (v%d)", e.BoardID, e.ColumnID, joinIDs(e.Order), e.Version)
}

func (d *describer) VisitCardsMoved(e CardsMoved) {
	parts := make([]string, len(e.Placements))
	for i, p := range e.Placements {
		parts[i] = fmt.Sprintf("%d→%d:%d", p.CardID, p.ColumnID, p.Position)
	}
	d.line = fmt.Sprintf("board %d: cards moved %s", e.BoardID, strings.Join(parts, " "))
}

func (d *describer) VisitLabelsChanged(e LabelsChanged) {
	d.line = fmt.Sprintf("board %d: card %d labels now %s", e.BoardID, e.CardID, joinIDs(e.LabelIDs))
}

func joinIDs[T ~int](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(int(id))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
