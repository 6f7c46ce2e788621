package database

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// LabelRepo handles labels and card_labels
type LabelRepo struct {
	db DBTX
}

// ============================================================================
// Label Operations
// ============================================================================

// CreateLabel creates a new label for a board
func (r *LabelRepo) CreateLabel(ctx context.Context, board types.BoardID, name, color string) (*models.Label, error) {
	label := &models.Label{BoardID: board, Name: name, Color: color}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO labels (board_id, name, color) VALUES (?, ?, ?) RETURNING id`,
		board, name, color,
	).Scan(&label.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return label, nil
}

// GetLabel retrieves a label by its ID
func (r *LabelRepo) GetLabel(ctx context.Context, id types.LabelID) (*models.Label, error) {
	label := &models.Label{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, board_id, name, color FROM labels WHERE id = ?`, id,
	).Scan(&label.ID, &label.BoardID, &label.Name, &label.Color)
	if err != nil {
		return nil, notFound(err, "label", id)
	}
	return label, nil
}

// ListLabels retrieves all labels of a board
func (r *LabelRepo) ListLabels(ctx context.Context, board types.BoardID) ([]*models.Label, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, board_id, name, color FROM labels WHERE board_id = ? ORDER BY name`, board)
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	defer rows.Close()

	labels := []*models.Label{}
	for rows.Next() {
		label := &models.Label{}
		if err := rows.Scan(&label.ID, &label.BoardID, &label.Name, &label.Color); err != nil {
			return nil, fmt.Errorf("scanning label row: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// DeleteLabel removes a label from every card and the board
func (r *LabelRepo) DeleteLabel(ctx context.Context, id types.LabelID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return requireAffected(res, "label", id)
}

// ============================================================================
// Card-Label Associations
// ============================================================================

// AttachLabel associates a label with a card. Attaching twice is a no-op.
func (r *LabelRepo) AttachLabel(ctx context.Context, card types.CardID, label types.LabelID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO card_labels (card_id, label_id) VALUES (?, ?)`, card, label)
	if err != nil {
		return fmt.Errorf("failed to attach label: %w", err)
	}
	return nil
}

// DetachLabel removes the association between a label and a card
func (r *LabelRepo) DetachLabel(ctx context.Context, card types.CardID, label types.LabelID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM card_labels WHERE card_id = ? AND label_id = ?`, card, label)
	if err != nil {
		return fmt.Errorf("failed to detach label: %w", err)
	}
	return nil
}
