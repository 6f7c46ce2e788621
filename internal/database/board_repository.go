package database

import (
	"context"
	"fmt"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// BoardRepo handles board persistence
type BoardRepo struct {
	db DBTX
}

const boardColumns = `id, org_id, name, version, created_at, updated_at`

func scanBoard(row interface{ Scan(...any) error }) (*models.Board, error) {
	b := &models.Board{}
	if err := row.Scan(&b.ID, &b.OrgID, &b.Name, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBoard inserts a new board owned by org
func (r *BoardRepo) CreateBoard(ctx context.Context, org types.OrgID, name string) (*models.Board, error) {
	now := time.Now().UTC()
	var id types.BoardID
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO boards (org_id, name, version, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?) RETURNING id`,
		org, name, now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return r.GetBoard(ctx, id)
}

// GetBoard retrieves a board by its ID
func (r *BoardRepo) GetBoard(ctx context.Context, id types.BoardID) (*models.Board, error) {
	b, err := scanBoard(r.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "board", id)
	}
	return b, nil
}

// ListBoards returns every board of org in creation order
func (r *BoardRepo) ListBoards(ctx context.Context, org types.OrgID) ([]*models.Board, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE org_id = ? ORDER BY id`, org)
	if err != nil {
		return nil, fmt.Errorf("querying boards: %w", err)
	}
	defer rows.Close()

	boards := []*models.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning board row: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// RenameBoard updates the name of a board
func (r *BoardRepo) RenameBoard(ctx context.Context, id types.BoardID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE boards SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to rename board: %w", err)
	}
	return requireAffected(res, "board", id)
}

// DeleteBoard removes a board; columns, cards and labels cascade
func (r *BoardRepo) DeleteBoard(ctx context.Context, id types.BoardID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	return requireAffected(res, "board", id)
}

// LockBoard reads a board. SQLite transactions begin immediate, so the
// write lock is already held and a plain read is enough.
func (r *BoardRepo) LockBoard(ctx context.Context, id types.BoardID) (*models.Board, error) {
	return r.GetBoard(ctx, id)
}

// BumpBoardVersion increments the column-order version of a board
func (r *BoardRepo) BumpBoardVersion(ctx context.Context, id types.BoardID) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx,
		`UPDATE boards SET version = version + 1, updated_at = ? WHERE id = ? RETURNING version`,
		time.Now().UTC(), id,
	).Scan(&version)
	if err != nil {
		return 0, notFound(err, "board", id)
	}
	return version, nil
}

// CountResources counts the boards, columns or cards org owns
func (r *BoardRepo) CountResources(ctx context.Context, org types.OrgID, resource types.Resource) (int, error) {
	var query string
	switch resource {
	case types.ResourceBoards:
		query = `SELECT COUNT(*) FROM boards WHERE org_id = ?`
	case types.ResourceColumns:
		query = `SELECT COUNT(*) FROM columns c JOIN boards b ON b.id = c.board_id WHERE b.org_id = ?`
	case types.ResourceCards:
		query = `SELECT COUNT(*) FROM cards k
			JOIN columns c ON c.id = k.column_id
			JOIN boards b ON b.id = c.board_id
			WHERE b.org_id = ?`
	default:
		return 0, fmt.Errorf("unknown resource %q", resource)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, org).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return n, nil
}
