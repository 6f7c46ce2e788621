package models

import "github.com/thenoetrevino/tablero/internal/types"

// Label represents a tag that can be applied to cards
// Labels are board-specific, similar to GitHub labels
type Label struct {
	ID      types.LabelID `json:"id"`
	BoardID types.BoardID `json:"board_id"`
	Name    string        `json:"name"`
	Color   string        `json:"color"` // Hex color code (e.g., "#7D56F4")
}
