package models

import (
	"time"

	"github.com/thenoetrevino/tablero/internal/types"
)

// Organization is the tenant that owns boards and holds a subscription
type Organization struct {
	ID        types.OrgID `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
}

// Membership grants a user a role inside an organization
type Membership struct {
	OrgID     types.OrgID  `json:"org_id"`
	UserID    types.UserID `json:"user_id"`
	Role      types.Role   `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

// Board is the top-level container of columns.
// Version is bumped every time the column order changes.
type Board struct {
	ID        types.BoardID `json:"id"`
	OrgID     types.OrgID   `json:"org_id"`
	Name      string        `json:"name"`
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BoardView is a board with its columns and their cards, all in position order
type BoardView struct {
	Board   *Board        `json:"board"`
	Columns []*ColumnView `json:"columns"`
	Labels  []*Label      `json:"labels"`
}

// ColumnView is one column of a BoardView
type ColumnView struct {
	*Column
	Cards []*Card `json:"cards"`
}
