package models

import (
	"time"

	"github.com/thenoetrevino/tablero/internal/types"
)

// Column is an ordered item of a board and the container of cards.
// Position is dense within the board. Version is bumped every time the card
// order inside the column changes.
type Column struct {
	ID        types.ColumnID `json:"id"`
	BoardID   types.BoardID  `json:"board_id"`
	Name      string         `json:"name"`
	Position  int            `json:"position"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
}
