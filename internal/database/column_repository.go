package database

import (
	"context"
	"fmt"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ColumnRepo handles column persistence
type ColumnRepo struct {
	db DBTX
}

const columnColumns = `id, board_id, name, position, version, created_at`

func scanColumn(row interface{ Scan(...any) error }) (*models.Column, error) {
	c := &models.Column{}
	if err := row.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.Version, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateColumn inserts a column at position
func (r *ColumnRepo) CreateColumn(ctx context.Context, board types.BoardID, name string, position int) (*models.Column, error) {
	var id types.ColumnID
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO columns (board_id, name, position, version, created_at)
		 VALUES (?, ?, ?, 0, ?) RETURNING id`,
		board, name, position, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}
	return r.GetColumn(ctx, id)
}

// GetColumn retrieves a column by its ID
func (r *ColumnRepo) GetColumn(ctx context.Context, id types.ColumnID) (*models.Column, error) {
	c, err := scanColumn(r.db.QueryRowContext(ctx,
		`SELECT `+columnColumns+` FROM columns WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "column", id)
	}
	return c, nil
}

// ListColumns returns the columns of a board in position order
func (r *ColumnRepo) ListColumns(ctx context.Context, board types.BoardID) ([]*models.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columnColumns+` FROM columns WHERE board_id = ? ORDER BY position`, board)
	if err != nil {
		return nil, fmt.Errorf("querying columns for board: %w", err)
	}
	defer rows.Close()

	columns := []*models.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	return columns, nil
}

// CountColumns returns how many columns a board holds
func (r *ColumnRepo) CountColumns(ctx context.Context, board types.BoardID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM columns WHERE board_id = ?`, board).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count columns: %w", err)
	}
	return n, nil
}

// RenameColumn updates the name of an existing column
func (r *ColumnRepo) RenameColumn(ctx context.Context, id types.ColumnID, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE columns SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename column: %w", err)
	}
	return requireAffected(res, "column", id)
}

// DeleteColumn removes a column; its cards cascade. Sibling positions are
// left for the caller to renumber in the same transaction.
func (r *ColumnRepo) DeleteColumn(ctx context.Context, id types.ColumnID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM columns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}
	return requireAffected(res, "column", id)
}

// LockColumn reads a column under the transaction's write lock
func (r *ColumnRepo) LockColumn(ctx context.Context, id types.ColumnID) (*models.Column, error) {
	return r.GetColumn(ctx, id)
}

// BumpColumnVersion increments the card-order version of a column
func (r *ColumnRepo) BumpColumnVersion(ctx context.Context, id types.ColumnID) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx,
		`UPDATE columns SET version = version + 1 WHERE id = ? RETURNING version`, id,
	).Scan(&version)
	if err != nil {
		return 0, notFound(err, "column", id)
	}
	return version, nil
}

// SetColumnPositions writes placements in two phases: every affected row is
// first parked on a unique negative position, then moved to its final one,
// so UNIQUE(board_id, position) holds after each statement.
func (r *ColumnRepo) SetColumnPositions(ctx context.Context, placements []ColumnPlacement) error {
	for _, p := range placements {
		res, err := r.db.ExecContext(ctx,
			`UPDATE columns SET position = ? WHERE id = ? AND board_id = ?`,
			temporaryPosition(int(p.Item)), p.Item, p.Container)
		if err != nil {
			return fmt.Errorf("failed to park column %d: %w", p.Item, err)
		}
		if err := requireAffected(res, "column", p.Item); err != nil {
			return err
		}
	}
	for _, p := range placements {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE columns SET position = ? WHERE id = ?`, p.Position, p.Item); err != nil {
			return fmt.Errorf("failed to place column %d: %w", p.Item, err)
		}
	}
	return nil
}
