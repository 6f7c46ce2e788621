package column

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/ordering"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Service defines all column-related business operations
type Service interface {
	// Read operations
	GetColumnsByBoard(ctx context.Context, boardID types.BoardID) ([]*models.Column, error)
	GetColumn(ctx context.Context, id types.ColumnID) (*models.Column, error)

	// Write operations
	CreateColumn(ctx context.Context, req CreateColumnRequest) (*models.Column, error)
	RenameColumn(ctx context.Context, id types.ColumnID, name string) error
	DeleteColumn(ctx context.Context, id types.ColumnID) error

	// Ordering operations. Both return the board's new version.
	ReorderColumns(ctx context.Context, req ReorderColumnsRequest) (int, error)
	MoveColumn(ctx context.Context, req MoveColumnRequest) (int, error)
}

// CreateColumnRequest encapsulates data for creating a column. New columns
// are appended after the board's last column.
type CreateColumnRequest struct {
	BoardID types.BoardID
	Name    string
}

// ReorderColumnsRequest replaces the board's column order. IDs must list
// every column of the board exactly once. When ExpectedVersion is set the
// board's version must still match it.
type ReorderColumnsRequest struct {
	BoardID         types.BoardID
	IDs             []types.ColumnID
	ExpectedVersion *int
}

// MoveColumnRequest moves one column to Index, shifting the columns in
// between. An index past the end moves the column last.
type MoveColumnRequest struct {
	ColumnID types.ColumnID
	Index    int
}

type service struct {
	services.Deps
}

// NewService creates a new column service
func NewService(deps services.Deps) Service {
	return &service{Deps: deps.WithDefaults()}
}

// GetColumnsByBoard retrieves all columns for a board in position order
func (s *service) GetColumnsByBoard(ctx context.Context, boardID types.BoardID) ([]*models.Column, error) {
	if boardID <= 0 {
		return nil, ErrInvalidBoardID
	}
	board, err := s.Store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.Require(ctx, board.OrgID, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.Store.ListColumns(ctx, boardID)
}

// GetColumn retrieves a specific column
func (s *service) GetColumn(ctx context.Context, id types.ColumnID) (*models.Column, error) {
	if id <= 0 {
		return nil, ErrInvalidColumnID
	}
	col, _, err := s.gateColumn(ctx, id, types.RoleViewer)
	return col, err
}

// CreateColumn appends a column to its board
func (s *service) CreateColumn(ctx context.Context, req CreateColumnRequest) (*models.Column, error) {
	if err := s.validateCreateColumn(&req); err != nil {
		return nil, err
	}

	board, err := s.Store.GetBoard(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireQuota(ctx, board.OrgID, types.ResourceColumns); err != nil {
		return nil, err
	}

	var column *models.Column
	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if err := s.EnforceQuotaIn(ctx, q, board.OrgID, types.ResourceColumns); err != nil {
			return err
		}
		if _, err := q.LockBoard(ctx, req.BoardID); err != nil {
			return err
		}
		count, err := q.CountColumns(ctx, req.BoardID)
		if err != nil {
			return err
		}
		column, err = q.CreateColumn(ctx, req.BoardID, req.Name, ordering.AppendIndex(count))
		if err != nil {
			return err
		}
		_, err = q.BumpBoardVersion(ctx, req.BoardID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	s.Publish(ctx, events.ColumnCreated{
		BoardID:  column.BoardID,
		ColumnID: column.ID,
		Name:     column.Name,
		Position: column.Position,
	})

	return column, nil
}

// RenameColumn updates a column's name
func (s *service) RenameColumn(ctx context.Context, id types.ColumnID, name string) error {
	if id <= 0 {
		return ErrInvalidColumnID
	}
	name, err := validateName(name)
	if err != nil {
		return err
	}

	col, _, err := s.gateColumn(ctx, id, types.RoleMember)
	if err != nil {
		return err
	}
	if err := s.Store.RenameColumn(ctx, id, name); err != nil {
		return fmt.Errorf("failed to rename column: %w", err)
	}

	s.Publish(ctx, events.ColumnRenamed{BoardID: col.BoardID, ColumnID: id, Name: name})
	return nil
}

// DeleteColumn deletes a column and its cards, then closes the gap it left
// in the board's order
func (s *service) DeleteColumn(ctx context.Context, id types.ColumnID) error {
	if id <= 0 {
		return ErrInvalidColumnID
	}

	col, _, err := s.gateColumn(ctx, id, types.RoleMember)
	if err != nil {
		return err
	}

	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if _, err := q.LockBoard(ctx, col.BoardID); err != nil {
			return err
		}
		before, err := columnIDs(ctx, q, col.BoardID)
		if err != nil {
			return err
		}
		after, err := ordering.Remove(before, id)
		if err != nil {
			return err
		}
		if err := q.DeleteColumn(ctx, id); err != nil {
			return err
		}
		if err := q.SetColumnPositions(ctx, ordering.Changes(col.BoardID, before, after)); err != nil {
			return err
		}
		_, err = q.BumpBoardVersion(ctx, col.BoardID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}

	s.Publish(ctx, events.ColumnDeleted{BoardID: col.BoardID, ColumnID: id})
	return nil
}

// ReorderColumns replaces the board's column order with req.IDs
func (s *service) ReorderColumns(ctx context.Context, req ReorderColumnsRequest) (int, error) {
	if req.BoardID <= 0 {
		return 0, ErrInvalidBoardID
	}

	board, err := s.Store.GetBoard(ctx, req.BoardID)
	if err != nil {
		return 0, err
	}
	if err := s.Require(ctx, board.OrgID, types.RoleMember); err != nil {
		return 0, err
	}

	return s.rewriteOrder(ctx, req.BoardID, req.ExpectedVersion, func(current []types.ColumnID) ([]types.ColumnID, error) {
		if err := ordering.CheckOrderSet(current, req.IDs); err != nil {
			return nil, err
		}
		return slices.Clone(req.IDs), nil
	})
}

// MoveColumn moves a single column, computing the full order server-side
func (s *service) MoveColumn(ctx context.Context, req MoveColumnRequest) (int, error) {
	if req.ColumnID <= 0 {
		return 0, ErrInvalidColumnID
	}
	if req.Index < 0 {
		return 0, ErrInvalidIndex
	}

	col, _, err := s.gateColumn(ctx, req.ColumnID, types.RoleMember)
	if err != nil {
		return 0, err
	}

	return s.rewriteOrder(ctx, col.BoardID, nil, func(current []types.ColumnID) ([]types.ColumnID, error) {
		return ordering.MoveWithin(current, req.ColumnID, req.Index)
	})
}

// rewriteOrder locks the board, derives the new order from the current one
// and writes the positions that changed. The board version is bumped even
// when nothing moved so that every accepted reorder is observable.
func (s *service) rewriteOrder(ctx context.Context, boardID types.BoardID, expected *int, next func([]types.ColumnID) ([]types.ColumnID, error)) (int, error) {
	var (
		version int
		order   []types.ColumnID
	)
	err := database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		board, err := q.LockBoard(ctx, boardID)
		if err != nil {
			return err
		}
		if expected != nil && *expected != board.Version {
			return fmt.Errorf("board %d is at version %d, not %d: %w", boardID, board.Version, *expected, models.ErrConflict)
		}

		before, err := columnIDs(ctx, q, boardID)
		if err != nil {
			return err
		}
		order, err = next(before)
		if err != nil {
			return err
		}
		if err := q.SetColumnPositions(ctx, ordering.Changes(boardID, before, order)); err != nil {
			return err
		}
		version, err = q.BumpBoardVersion(ctx, boardID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reorder columns: %w", err)
	}

	s.Publish(ctx, events.ColumnsReordered{BoardID: boardID, Order: order, Version: version})
	return version, nil
}

// gateColumn loads a column and its board and checks the actor's role
func (s *service) gateColumn(ctx context.Context, id types.ColumnID, min types.Role) (*models.Column, *models.Board, error) {
	col, err := s.Store.GetColumn(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	board, err := s.Store.GetBoard(ctx, col.BoardID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Require(ctx, board.OrgID, min); err != nil {
		return nil, nil, err
	}
	return col, board, nil
}

func columnIDs(ctx context.Context, q database.ColumnReader, boardID types.BoardID) ([]types.ColumnID, error) {
	cols, err := q.ListColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}
	ids := make([]types.ColumnID, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids, nil
}

// validateCreateColumn validates a CreateColumnRequest and trims its name
func (s *service) validateCreateColumn(req *CreateColumnRequest) error {
	if req.BoardID <= 0 {
		return ErrInvalidBoardID
	}
	name, err := validateName(req.Name)
	if err != nil {
		return err
	}
	req.Name = name
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if len(name) > 50 {
		return "", ErrNameTooLong
	}
	return name, nil
}
