package models

import (
	"time"

	"github.com/thenoetrevino/tablero/internal/types"
)

// Card is an ordered item of a column
type Card struct {
	ID          types.CardID   `json:"id"`
	ColumnID    types.ColumnID `json:"column_id"`
	BoardID     types.BoardID  `json:"board_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Position    int            `json:"position"`
	Labels      []*Label       `json:"labels,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
