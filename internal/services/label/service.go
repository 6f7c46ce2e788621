package label

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/types"
)

// DefaultColor is used when a label is created without one
const DefaultColor = "#7D56F4"

// Hex color regex pattern
var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Service defines all label-related business operations
type Service interface {
	// Read operations
	ListLabels(ctx context.Context, boardID types.BoardID) ([]*models.Label, error)

	// Write operations
	CreateLabel(ctx context.Context, req CreateLabelRequest) (*models.Label, error)
	DeleteLabel(ctx context.Context, id types.LabelID) error

	// Card associations
	AttachLabel(ctx context.Context, cardID types.CardID, labelID types.LabelID) error
	DetachLabel(ctx context.Context, cardID types.CardID, labelID types.LabelID) error
}

// CreateLabelRequest encapsulates data for creating a label
type CreateLabelRequest struct {
	BoardID types.BoardID
	Name    string
	Color   string // Hex color like #FF5733
}

type service struct {
	services.Deps
}

// NewService creates a new label service
func NewService(deps services.Deps) Service {
	return &service{Deps: deps.WithDefaults()}
}

// ListLabels retrieves all labels of a board
func (s *service) ListLabels(ctx context.Context, boardID types.BoardID) ([]*models.Label, error) {
	if boardID <= 0 {
		return nil, ErrInvalidBoardID
	}
	if err := s.gateBoard(ctx, boardID, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.Store.ListLabels(ctx, boardID)
}

// CreateLabel creates a new label with validation
func (s *service) CreateLabel(ctx context.Context, req CreateLabelRequest) (*models.Label, error) {
	if err := validateCreateLabel(&req); err != nil {
		return nil, err
	}
	if err := s.gateBoard(ctx, req.BoardID, types.RoleMember); err != nil {
		return nil, err
	}

	existing, err := s.Store.ListLabels(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	for _, l := range existing {
		if strings.EqualFold(l.Name, req.Name) {
			return nil, ErrDuplicateName
		}
	}

	label, err := s.Store.CreateLabel(ctx, req.BoardID, req.Name, req.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return label, nil
}

// DeleteLabel deletes a label and detaches it from every card
func (s *service) DeleteLabel(ctx context.Context, id types.LabelID) error {
	if id <= 0 {
		return ErrInvalidLabelID
	}
	label, err := s.Store.GetLabel(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gateBoard(ctx, label.BoardID, types.RoleMember); err != nil {
		return err
	}
	if err := s.Store.DeleteLabel(ctx, id); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// AttachLabel tags a card. The label must belong to the card's board.
func (s *service) AttachLabel(ctx context.Context, cardID types.CardID, labelID types.LabelID) error {
	return s.changeLabels(ctx, cardID, labelID, database.Queries.AttachLabel)
}

// DetachLabel removes a tag from a card
func (s *service) DetachLabel(ctx context.Context, cardID types.CardID, labelID types.LabelID) error {
	return s.changeLabels(ctx, cardID, labelID, database.Queries.DetachLabel)
}

func (s *service) changeLabels(
	ctx context.Context,
	cardID types.CardID,
	labelID types.LabelID,
	apply func(database.Queries, context.Context, types.CardID, types.LabelID) error,
) error {
	if cardID <= 0 {
		return ErrInvalidCardID
	}
	if labelID <= 0 {
		return ErrInvalidLabelID
	}

	card, err := s.Store.GetCard(ctx, cardID)
	if err != nil {
		return err
	}
	label, err := s.Store.GetLabel(ctx, labelID)
	if err != nil {
		return err
	}
	if label.BoardID != card.BoardID {
		return fmt.Errorf("%w: label %d belongs to board %d, card %d to board %d",
			models.ErrScopeViolation, labelID, label.BoardID, cardID, card.BoardID)
	}
	if err := s.gateBoard(ctx, card.BoardID, types.RoleMember); err != nil {
		return err
	}

	var labelIDs []types.LabelID
	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if err := apply(q, ctx, cardID, labelID); err != nil {
			return err
		}
		updated, err := q.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		labelIDs = make([]types.LabelID, len(updated.Labels))
		for i, l := range updated.Labels {
			labelIDs[i] = l.ID
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update card labels: %w", err)
	}

	s.Publish(ctx, events.LabelsChanged{BoardID: card.BoardID, CardID: cardID, LabelIDs: labelIDs})
	return nil
}

func (s *service) gateBoard(ctx context.Context, id types.BoardID, min types.Role) error {
	board, err := s.Store.GetBoard(ctx, id)
	if err != nil {
		return err
	}
	return s.Require(ctx, board.OrgID, min)
}

// validateCreateLabel validates a CreateLabelRequest and fills the default
// color
func validateCreateLabel(req *CreateLabelRequest) error {
	if req.BoardID <= 0 {
		return ErrInvalidBoardID
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return ErrEmptyName
	}
	if len(req.Name) > 50 {
		return ErrNameTooLong
	}
	if req.Color == "" {
		req.Color = DefaultColor
	}
	if !hexColorRegex.MatchString(req.Color) {
		return ErrInvalidColor
	}
	return nil
}
