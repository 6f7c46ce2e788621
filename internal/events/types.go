package events

import (
	"github.com/thenoetrevino/tablero/internal/types"
)

// Type names an event variant on the wire
type Type string

const (
	TypeBoardCreated     Type = "board.created"
	TypeBoardDeleted     Type = "board.deleted"
	TypeColumnCreated    Type = "column.created"
	TypeColumnRenamed    Type = "column.renamed"
	TypeColumnDeleted    Type = "column.deleted"
	TypeColumnsReordered Type = "columns.reordered"
	TypeCardCreated      Type = "card.created"
	TypeCardUpdated      Type = "card.updated"
	TypeCardDeleted      Type = "card.deleted"
	TypeCardsReordered   Type = "cards.reordered"
	TypeCardsMoved       Type = "cards.moved"
	TypeLabelsChanged    Type = "labels.changed"
)

// Event is a committed change to a board. The set of variants is closed:
// only types in this package implement it.
type Event interface {
	Type() Type
	Board() types.BoardID
	Accept(v Visitor)
	sealed()
}

// Visitor handles every event variant. Adding a variant adds a method here,
// so each implementation must handle it.
type Visitor interface {
	VisitBoardCreated(BoardCreated)
	VisitBoardDeleted(BoardDeleted)
	VisitColumnCreated(ColumnCreated)
	VisitColumnRenamed(ColumnRenamed)
	VisitColumnDeleted(ColumnDeleted)
	VisitColumnsReordered(ColumnsReordered)
	VisitCardCreated(CardCreated)
	VisitCardUpdated(CardUpdated)
	VisitCardDeleted(CardDeleted)
	VisitCardsReordered(CardsReordered)
	VisitCardsMoved(CardsMoved)
	VisitLabelsChanged(LabelsChanged)
}

type BoardCreated struct {
	BoardID types.BoardID `json:"board_id"`
	OrgID   types.OrgID   `json:"org_id"`
	Name    string        `json:"name"`
}

type BoardDeleted struct {
	BoardID types.BoardID `json:"board_id"`
	OrgID   types.OrgID   `json:"org_id"`
}

type ColumnCreated struct {
	BoardID  types.BoardID  `json:"board_id"`
	ColumnID types.ColumnID `json:"column_id"`
	Name     string         `json:"name"`
	Position int            `json:"position"`
}

type ColumnRenamed struct {
	BoardID  types.BoardID  `json:"board_id"`
	ColumnID types.ColumnID `json:"column_id"`
	Name     string         `json:"name"`
}

type ColumnDeleted struct {
	BoardID  types.BoardID  `json:"board_id"`
	ColumnID types.ColumnID `json:"column_id"`
}

// ColumnsReordered carries the board's complete column order after the change
type ColumnsReordered struct {
	BoardID types.BoardID    `json:"board_id"`
	Order   []types.ColumnID `json:"order"`
	Version int              `json:"version"`
}

type CardCreated struct {
	BoardID  types.BoardID  `json:"board_id"`
	ColumnID types.ColumnID `json:"column_id"`
	CardID   types.CardID   `json:"card_id"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
}

type CardUpdated struct {
	BoardID types.BoardID `json:"board_id"`
	CardID  types.CardID  `json:"card_id"`
	Title   string        `json:"title"`
}

type CardDeleted struct {
	BoardID  types.BoardID  `json:"board_id"`
	ColumnID types.ColumnID `json:"column_id"`
	CardID   types.CardID   `json:"card_id"`
}

// CardsReordered carries the column's complete card order after the change
type CardsReordered struct {
	BoardID  types.BoardID  `json:"board_id"`
	ColumnID types.ColumnID `json:"column_id"`
	Order    []types.CardID `json:"order"`
	Version  int            `json:"version"`
}

// CardPlacement is where a card ended up after a move
type CardPlacement struct {
	CardID   types.CardID   `json:"card_id"`
	ColumnID types.ColumnID `json:"column_id"`
	Position int            `json:"position"`
}

// CardsMoved lists every card whose column or position changed in one batch
type CardsMoved struct {
	BoardID    types.BoardID   `json:"board_id"`
	Placements []CardPlacement `json:"placements"`
}

type LabelsChanged struct {
	BoardID  types.BoardID   `json:"board_id"`
	CardID   types.CardID    `json:"card_id"`
	LabelIDs []types.LabelID `json:"label_ids"`
}

func (BoardCreated) Type() Type     { return TypeBoardCreated }
func (BoardDeleted) Type() Type     { return TypeBoardDeleted }
func (ColumnCreated) Type() Type    { return TypeColumnCreated }
func (ColumnRenamed) Type() Type    { return TypeColumnRenamed }
func (ColumnDeleted) Type() Type    { return TypeColumnDeleted }
func (ColumnsReordered) Type() Type { return TypeColumnsReordered }
func (CardCreated) Type() Type      { return TypeCardCreated }
func (CardUpdated) Type() Type      { return TypeCardUpdated }
func (CardDeleted) Type() Type      { return TypeCardDeleted }
func (CardsReordered) Type() Type   { return TypeCardsReordered }
func (CardsMoved) Type() Type       { return TypeCardsMoved }
func (LabelsChanged) Type() Type    { return TypeLabelsChanged }

func (e BoardCreated) Board() types.BoardID     { return e.BoardID }
func (e BoardDeleted) Board() types.BoardID     { return e.BoardID }
func (e ColumnCreated) Board() types.BoardID    { return e.BoardID }
func (e ColumnRenamed) Board() types.BoardID    { return e.BoardID }
func (e ColumnDeleted) Board() types.BoardID    { return e.BoardID }
func (e ColumnsReordered) Board() types.BoardID { return e.BoardID }
func (e CardCreated) Board() types.BoardID      { return e.BoardID }
func (e CardUpdated) Board() types.BoardID      { return e.BoardID }
func (e CardDeleted) Board() types.BoardID      { return e.BoardID }
func (e CardsReordered) Board() types.BoardID   { return e.BoardID }
func (e CardsMoved) Board() types.BoardID       { return e.BoardID }
func (e LabelsChanged) Board() types.BoardID    { return e.BoardID }

func (e BoardCreated) Accept(v Visitor)     { v.VisitBoardCreated(e) }
func (e BoardDeleted) Accept(v Visitor)     { v.VisitBoardDeleted(e) }
func (e ColumnCreated) Accept(v Visitor)    { v.VisitColumnCreated(e) }
func (e ColumnRenamed) Accept(v Visitor)    { v.VisitColumnRenamed(e) }
func (e ColumnDeleted) Accept(v Visitor)    { v.VisitColumnDeleted(e) }
func (e ColumnsReordered) Accept(v Visitor) { v.VisitColumnsReordered(e) }
func (e CardCreated) Accept(v Visitor)      { v.VisitCardCreated(e) }
func (e CardUpdated) Accept(v Visitor)      { v.VisitCardUpdated(e) }
func (e CardDeleted) Accept(v Visitor)      { v.VisitCardDeleted(e) }
func (e CardsReordered) Accept(v Visitor)   { v.VisitCardsReordered(e) }
func (e CardsMoved) Accept(v Visitor)       { v.VisitCardsMoved(e) }
func (e LabelsChanged) Accept(v Visitor)    { v.VisitLabelsChanged(e) }

func (BoardCreated) sealed()     {}
func (BoardDeleted) sealed()     {}
func (ColumnCreated) sealed()    {}
func (ColumnRenamed) sealed()    {}
func (ColumnDeleted) sealed()    {}
func (ColumnsReordered) sealed() {}
func (CardCreated) sealed()      {}
func (CardUpdated) sealed()      {}
func (CardDeleted) sealed()      {}
func (CardsReordered) sealed()   {}
func (CardsMoved) sealed()       {}
func (LabelsChanged) sealed()    {}
