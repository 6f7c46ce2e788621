package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Service defines all board-related business operations
type Service interface {
	// Read operations
	ListBoards(ctx context.Context, org types.OrgID) ([]*models.Board, error)
	GetBoard(ctx context.Context, id types.BoardID) (*models.Board, error)
	GetBoardView(ctx context.Context, id types.BoardID) (*models.BoardView, error)

	// Write operations
	CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error)
	RenameBoard(ctx context.Context, id types.BoardID, name string) error
	DeleteBoard(ctx context.Context, req DeleteBoardRequest) error
}

// CreateBoardRequest encapsulates data for creating a board
type CreateBoardRequest struct {
	OrgID types.OrgID
	Name  string
}

// DeleteBoardRequest deletes a board. Boards that still hold cards are only
// deleted with Force.
type DeleteBoardRequest struct {
	ID    types.BoardID
	Force bool
}

type service struct {
	services.Deps
}

// NewService creates a new board service
func NewService(deps services.Deps) Service {
	return &service{Deps: deps.WithDefaults()}
}

// ListBoards retrieves every board of an organization
func (s *service) ListBoards(ctx context.Context, org types.OrgID) ([]*models.Board, error) {
	if org <= 0 {
		return nil, ErrInvalidOrgID
	}
	if err := s.Require(ctx, org, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.Store.ListBoards(ctx, org)
}

// GetBoard retrieves a specific board
func (s *service) GetBoard(ctx context.Context, id types.BoardID) (*models.Board, error) {
	if id <= 0 {
		return nil, ErrInvalidBoardID
	}
	return s.gate(ctx, id, types.RoleViewer)
}

// GetBoardView reads a board with its columns, cards and labels from one
// consistent snapshot
func (s *service) GetBoardView(ctx context.Context, id types.BoardID) (*models.BoardView, error) {
	if id <= 0 {
		return nil, ErrInvalidBoardID
	}
	if _, err := s.gate(ctx, id, types.RoleViewer); err != nil {
		return nil, err
	}

	var view *models.BoardView
	err := s.Store.InTx(ctx, func(q database.Queries) error {
		board, err := q.GetBoard(ctx, id)
		if err != nil {
			return err
		}
		cols, err := q.ListColumns(ctx, id)
		if err != nil {
			return err
		}
		cards, err := q.ListCardsByBoard(ctx, id)
		if err != nil {
			return err
		}
		labels, err := q.ListLabels(ctx, id)
		if err != nil {
			return err
		}

		byColumn := make(map[types.ColumnID][]*models.Card, len(cols))
		for _, k := range cards {
			byColumn[k.ColumnID] = append(byColumn[k.ColumnID], k)
		}
		view = &models.BoardView{Board: board, Labels: labels}
		for _, c := range cols {
			column := &models.ColumnView{Column: c, Cards: byColumn[c.ID]}
			if column.Cards == nil {
				column.Cards = []*models.Card{}
			}
			view.Columns = append(view.Columns, column)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load board view: %w", err)
	}
	return view, nil
}

// CreateBoard creates an empty board in an organization
func (s *service) CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error) {
	if req.OrgID <= 0 {
		return nil, ErrInvalidOrgID
	}
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.Store.GetOrganization(ctx, req.OrgID); err != nil {
		return nil, err
	}
	if err := s.RequireQuota(ctx, req.OrgID, types.ResourceBoards); err != nil {
		return nil, err
	}

	var board *models.Board
	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if err := s.EnforceQuotaIn(ctx, q, req.OrgID, types.ResourceBoards); err != nil {
			return err
		}
		board, err = q.CreateBoard(ctx, req.OrgID, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	s.Publish(ctx, events.BoardCreated{BoardID: board.ID, OrgID: board.OrgID, Name: board.Name})
	return board, nil
}

// RenameBoard updates a board's name
func (s *service) RenameBoard(ctx context.Context, id types.BoardID, name string) error {
	if id <= 0 {
		return ErrInvalidBoardID
	}
	name, err := validateName(name)
	if err != nil {
		return err
	}
	if _, err := s.gate(ctx, id, types.RoleMember); err != nil {
		return err
	}
	if err := s.Store.RenameBoard(ctx, id, name); err != nil {
		return fmt.Errorf("failed to rename board: %w", err)
	}
	return nil
}

// DeleteBoard deletes a board with its columns, cards and labels (business
// rule: admins only, and a board with cards needs Force)
func (s *service) DeleteBoard(ctx context.Context, req DeleteBoardRequest) error {
	if req.ID <= 0 {
		return ErrInvalidBoardID
	}
	board, err := s.gate(ctx, req.ID, types.RoleAdmin)
	if err != nil {
		return err
	}

	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if _, err := q.LockBoard(ctx, req.ID); err != nil {
			return err
		}
		if !req.Force {
			cards, err := q.ListCardsByBoard(ctx, req.ID)
			if err != nil {
				return err
			}
			if len(cards) > 0 {
				return ErrBoardNotEmpty
			}
		}
		return q.DeleteBoard(ctx, req.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	s.Publish(ctx, events.BoardDeleted{BoardID: req.ID, OrgID: board.OrgID})
	return nil
}

func (s *service) gate(ctx context.Context, id types.BoardID, min types.Role) (*models.Board, error) {
	board, err := s.Store.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Require(ctx, board.OrgID, min); err != nil {
		return nil, err
	}
	return board, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if len(name) > 100 {
		return "", ErrNameTooLong
	}
	return name, nil
}
