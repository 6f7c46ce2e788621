package database

import (
	"context"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/ordering"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ColumnPlacement is the position of a column inside its board
type ColumnPlacement = ordering.Placement[types.BoardID, types.ColumnID]

// CardPlacement is the column and position of a card
type CardPlacement = ordering.Placement[types.ColumnID, types.CardID]

// OrgRepository covers organizations and their memberships. LockOrganization
// holds an organization against concurrent quota checks until commit; take
// it before any board lock.
type OrgRepository interface {
	CreateOrganization(ctx context.Context, name string) (*models.Organization, error)
	GetOrganization(ctx context.Context, id types.OrgID) (*models.Organization, error)
	LockOrganization(ctx context.Context, id types.OrgID) (*models.Organization, error)
	ListOrganizationsForUser(ctx context.Context, user types.UserID) ([]*models.Organization, error)

	UpsertMembership(ctx context.Context, org types.OrgID, user types.UserID, role types.Role) error
	GetMembership(ctx context.Context, org types.OrgID, user types.UserID) (*models.Membership, error)
	ListMemberships(ctx context.Context, org types.OrgID) ([]*models.Membership, error)
	DeleteMembership(ctx context.Context, org types.OrgID, user types.UserID) error
	CountOwners(ctx context.Context, org types.OrgID) (int, error)
}

// SubscriptionRepository covers the local mirror of billing state.
type SubscriptionRepository interface {
	GetSubscription(ctx context.Context, org types.OrgID) (*models.Subscription, error)
	GetSubscriptionByCustomer(ctx context.Context, customerID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
}

// BoardRepository covers boards. LockBoard reads a board and, inside a
// transaction, holds it against concurrent writers until commit.
type BoardRepository interface {
	CreateBoard(ctx context.Context, org types.OrgID, name string) (*models.Board, error)
	GetBoard(ctx context.Context, id types.BoardID) (*models.Board, error)
	ListBoards(ctx context.Context, org types.OrgID) ([]*models.Board, error)
	RenameBoard(ctx context.Context, id types.BoardID, name string) error
	DeleteBoard(ctx context.Context, id types.BoardID) error
	LockBoard(ctx context.Context, id types.BoardID) (*models.Board, error)
	BumpBoardVersion(ctx context.Context, id types.BoardID) (int, error)
}

// ColumnReader defines read operations for columns.
type ColumnReader interface {
	GetColumn(ctx context.Context, id types.ColumnID) (*models.Column, error)
	ListColumns(ctx context.Context, board types.BoardID) ([]*models.Column, error)
	CountColumns(ctx context.Context, board types.BoardID) (int, error)
}

// ColumnWriter defines write operations for columns.
type ColumnWriter interface {
	CreateColumn(ctx context.Context, board types.BoardID, name string, position int) (*models.Column, error)
	RenameColumn(ctx context.Context, id types.ColumnID, name string) error
	DeleteColumn(ctx context.Context, id types.ColumnID) error
	LockColumn(ctx context.Context, id types.ColumnID) (*models.Column, error)
	BumpColumnVersion(ctx context.Context, id types.ColumnID) (int, error)
}

// ColumnMover rewrites column positions. Placements must leave the board
// dense; the write itself never collides on (board, position).
type ColumnMover interface {
	SetColumnPositions(ctx context.Context, placements []ColumnPlacement) error
}

// ColumnRepository combines all column-related operations.
type ColumnRepository interface {
	ColumnReader
	ColumnWriter
	ColumnMover
}

// CreateCardParams holds the fields of a new card
type CreateCardParams struct {
	ColumnID    types.ColumnID
	Title       string
	Description string
	Position    int
	Now         time.Time
}

// CardReader defines read operations for cards.
type CardReader interface {
	GetCard(ctx context.Context, id types.CardID) (*models.Card, error)
	ListCards(ctx context.Context, column types.ColumnID) ([]*models.Card, error)
	ListCardsByBoard(ctx context.Context, board types.BoardID) ([]*models.Card, error)
	CountCards(ctx context.Context, column types.ColumnID) (int, error)
}

// CardWriter defines write operations for cards.
type CardWriter interface {
	CreateCard(ctx context.Context, params CreateCardParams) (*models.Card, error)
	UpdateCard(ctx context.Context, id types.CardID, title, description string) error
	DeleteCard(ctx context.Context, id types.CardID) error
}

// CardMover rewrites card placements, possibly across columns.
type CardMover interface {
	SetCardPlacements(ctx context.Context, placements []CardPlacement) error
}

// CardRepository combines all card-related operations.
type CardRepository interface {
	CardReader
	CardWriter
	CardMover
}

// LabelRepository covers labels and their attachment to cards.
type LabelRepository interface {
	CreateLabel(ctx context.Context, board types.BoardID, name, color string) (*models.Label, error)
	GetLabel(ctx context.Context, id types.LabelID) (*models.Label, error)
	ListLabels(ctx context.Context, board types.BoardID) ([]*models.Label, error)
	DeleteLabel(ctx context.Context, id types.LabelID) error
	AttachLabel(ctx context.Context, card types.CardID, label types.LabelID) error
	DetachLabel(ctx context.Context, card types.CardID, label types.LabelID) error
}

// ResourceCounter counts what an organization owns, for quota checks.
type ResourceCounter interface {
	CountResources(ctx context.Context, org types.OrgID, resource types.Resource) (int, error)
}
