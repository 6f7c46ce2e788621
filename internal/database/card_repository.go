package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// CardRepo handles card persistence
type CardRepo struct {
	db DBTX
}

const cardSelect = `SELECT k.id, k.column_id, c.board_id, k.title, k.description, k.position, k.created_at, k.updated_at
	FROM cards k JOIN columns c ON c.id = k.column_id`

func scanCard(row interface{ Scan(...any) error }) (*models.Card, error) {
	k := &models.Card{}
	var description sql.NullString
	if err := row.Scan(&k.ID, &k.ColumnID, &k.BoardID, &k.Title, &description, &k.Position, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	k.Description = NullStringToString(description)
	return k, nil
}

// CreateCard inserts a card at params.Position
func (r *CardRepo) CreateCard(ctx context.Context, params CreateCardParams) (*models.Card, error) {
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var id types.CardID
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cards (column_id, title, description, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		params.ColumnID, params.Title, params.Description, params.Position, now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return r.GetCard(ctx, id)
}

// GetCard retrieves a card and its labels
func (r *CardRepo) GetCard(ctx context.Context, id types.CardID) (*models.Card, error) {
	k, err := scanCard(r.db.QueryRowContext(ctx, cardSelect+` WHERE k.id = ?`, id))
	if err != nil {
		return nil, notFound(err, "card", id)
	}

	labels, err := r.labelsFor(ctx, `WHERE cl.card_id = ?`, id)
	if err != nil {
		return nil, err
	}
	k.Labels = labels[k.ID]
	return k, nil
}

// ListCards returns the cards of a column in position order
func (r *CardRepo) ListCards(ctx context.Context, column types.ColumnID) ([]*models.Card, error) {
	return r.listCards(ctx, `WHERE k.column_id = ? ORDER BY k.position`, `WHERE k.column_id = ?`, column)
}

// ListCardsByBoard returns every card of a board ordered by column position
// and card position
func (r *CardRepo) ListCardsByBoard(ctx context.Context, board types.BoardID) ([]*models.Card, error) {
	return r.listCards(ctx, `WHERE c.board_id = ? ORDER BY c.position, k.position`, `WHERE c.board_id = ?`, board)
}

func (r *CardRepo) listCards(ctx context.Context, where, labelWhere string, arg any) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx, cardSelect+` `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	cards := []*models.Card{}
	for rows.Next() {
		k, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		cards = append(cards, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}
	rows.Close()

	labels, err := r.labelsFor(ctx, labelWhere, arg)
	if err != nil {
		return nil, err
	}
	for _, k := range cards {
		k.Labels = labels[k.ID]
	}
	return cards, nil
}

// labelsFor loads labels grouped by card. where filters on cl (card_labels),
// k (cards) and c (columns).
func (r *CardRepo) labelsFor(ctx context.Context, where string, arg any) (map[types.CardID][]*models.Label, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cl.card_id, l.id, l.board_id, l.name, l.color
		 FROM card_labels cl
		 JOIN labels l ON l.id = cl.label_id
		 JOIN cards k ON k.id = cl.card_id
		 JOIN columns c ON c.id = k.column_id `+where+` ORDER BY l.name`, arg)
	if err != nil {
		return nil, fmt.Errorf("querying card labels: %w", err)
	}
	defer rows.Close()

	out := make(map[types.CardID][]*models.Label)
	for rows.Next() {
		var card types.CardID
		l := &models.Label{}
		if err := rows.Scan(&card, &l.ID, &l.BoardID, &l.Name, &l.Color); err != nil {
			return nil, fmt.Errorf("scanning card label row: %w", err)
		}
		out[card] = append(out[card], l)
	}
	return out, rows.Err()
}

// CountCards returns how many cards a column holds
func (r *CardRepo) CountCards(ctx context.Context, column types.ColumnID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE column_id = ?`, column).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

// UpdateCard replaces the title and description of a card
func (r *CardRepo) UpdateCard(ctx context.Context, id types.CardID, title, description string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cards SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		title, description, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return requireAffected(res, "card", id)
}

// DeleteCard removes a card. Sibling positions are left for the caller.
func (r *CardRepo) DeleteCard(ctx context.Context, id types.CardID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return requireAffected(res, "card", id)
}

// SetCardPlacements writes placements in two phases so
// UNIQUE(column_id, position) holds after each statement, including when a
// card changes column.
func (r *CardRepo) SetCardPlacements(ctx context.Context, placements []CardPlacement) error {
	for _, p := range placements {
		res, err := r.db.ExecContext(ctx,
			`UPDATE cards SET position = ? WHERE id = ?`, temporaryPosition(int(p.Item)), p.Item)
		if err != nil {
			return fmt.Errorf("failed to park card %d: %w", p.Item, err)
		}
		if err := requireAffected(res, "card", p.Item); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	for _, p := range placements {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE cards SET column_id = ?, position = ?, updated_at = ? WHERE id = ?`,
			p.Container, p.Position, now, p.Item); err != nil {
			return fmt.Errorf("failed to place card %d: %w", p.Item, err)
		}
	}
	return nil
}
