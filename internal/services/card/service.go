package card

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/ordering"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/types"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 10000
)

// Service defines all card-related business operations
type Service interface {
	// Read operations
	GetCard(ctx context.Context, id types.CardID) (*models.Card, error)
	GetCardsByColumn(ctx context.Context, columnID types.ColumnID) ([]*models.Card, error)

	// Write operations
	CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error)
	UpdateCard(ctx context.Context, req UpdateCardRequest) (*models.Card, error)
	DeleteCard(ctx context.Context, id types.CardID) error

	// Ordering operations
	ReorderCards(ctx context.Context, req ReorderCardsRequest) (int, error)
	MoveCards(ctx context.Context, req MoveCardsRequest) (*MoveResult, error)
	MoveCard(ctx context.Context, req MoveCardRequest) (*MoveResult, error)
}

// CreateCardRequest encapsulates data for creating a card. New cards are
// appended to the bottom of the column.
type CreateCardRequest struct {
	ColumnID    types.ColumnID
	Title       string
	Description string
}

// UpdateCardRequest encapsulates a card edit.
// Fields with pointers are optional - nil means don't update
type UpdateCardRequest struct {
	CardID      types.CardID
	Title       *string
	Description *string
}

// ReorderCardsRequest replaces the card order of one column. IDs must list
// every card of the column exactly once.
type ReorderCardsRequest struct {
	ColumnID        types.ColumnID
	IDs             []types.CardID
	ExpectedVersion *int
}

// CardMove sends a card to Index of ColumnID
type CardMove struct {
	CardID   types.CardID
	ColumnID types.ColumnID
	Index    int
}

// MoveCardsRequest applies every move atomically. The moves must describe
// the complete new order of every column they touch.
type MoveCardsRequest struct {
	BoardID types.BoardID
	Moves   []CardMove
}

// MoveCardRequest moves one card. The server closes the gap in the source
// column and shifts the destination column; an index past the end appends.
type MoveCardRequest struct {
	CardID   types.CardID
	ColumnID types.ColumnID
	Index    int
}

// MoveResult reports the placements written by a move and the new version
// of every column it touched
type MoveResult struct {
	Placements []database.CardPlacement
	Versions   map[types.ColumnID]int
}

type service struct {
	services.Deps
}

// NewService creates a new card service
func NewService(deps services.Deps) Service {
	return &service{Deps: deps.WithDefaults()}
}

// GetCard retrieves a card with its labels
func (s *service) GetCard(ctx context.Context, id types.CardID) (*models.Card, error) {
	if id <= 0 {
		return nil, ErrInvalidCardID
	}
	card, _, err := s.gateCard(ctx, id, types.RoleViewer)
	return card, err
}

// GetCardsByColumn retrieves a column's cards in position order
func (s *service) GetCardsByColumn(ctx context.Context, columnID types.ColumnID) ([]*models.Card, error) {
	if columnID <= 0 {
		return nil, ErrInvalidColumnID
	}
	if _, _, err := s.gateColumn(ctx, columnID, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.Store.ListCards(ctx, columnID)
}

// CreateCard appends a card to its column
func (s *service) CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error) {
	if err := validateCreateCard(&req); err != nil {
		return nil, err
	}

	col, err := s.Store.GetColumn(ctx, req.ColumnID)
	if err != nil {
		return nil, err
	}
	board, err := s.Store.GetBoard(ctx, col.BoardID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireQuota(ctx, board.OrgID, types.ResourceCards); err != nil {
		return nil, err
	}

	var card *models.Card
	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if err := s.EnforceQuotaIn(ctx, q, board.OrgID, types.ResourceCards); err != nil {
			return err
		}
		if _, err := q.LockBoard(ctx, board.ID); err != nil {
			return err
		}
		if _, err := q.LockColumn(ctx, req.ColumnID); err != nil {
			return err
		}
		count, err := q.CountCards(ctx, req.ColumnID)
		if err != nil {
			return err
		}
		card, err = q.CreateCard(ctx, database.CreateCardParams{
			ColumnID:    req.ColumnID,
			Title:       req.Title,
			Description: req.Description,
			Position:    ordering.AppendIndex(count),
		})
		if err != nil {
			return err
		}
		_, err = q.BumpColumnVersion(ctx, req.ColumnID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	s.Publish(ctx, events.CardCreated{
		BoardID:  card.BoardID,
		ColumnID: card.ColumnID,
		CardID:   card.ID,
		Title:    card.Title,
		Position: card.Position,
	})
	return card, nil
}

// UpdateCard edits a card's title and/or description. Placement is never
// touched here.
func (s *service) UpdateCard(ctx context.Context, req UpdateCardRequest) (*models.Card, error) {
	if err := validateUpdateCard(&req); err != nil {
		return nil, err
	}

	current, _, err := s.gateCard(ctx, req.CardID, types.RoleMember)
	if err != nil {
		return nil, err
	}

	title, description := current.Title, current.Description
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := s.Store.UpdateCard(ctx, req.CardID, title, description); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	s.Publish(ctx, events.CardUpdated{BoardID: current.BoardID, CardID: req.CardID, Title: title})

	return s.Store.GetCard(ctx, req.CardID)
}

// DeleteCard removes a card and closes the gap in its column
func (s *service) DeleteCard(ctx context.Context, id types.CardID) error {
	if id <= 0 {
		return ErrInvalidCardID
	}
	gated, _, err := s.gateCard(ctx, id, types.RoleMember)
	if err != nil {
		return err
	}

	var columnID types.ColumnID
	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if _, err := q.LockBoard(ctx, gated.BoardID); err != nil {
			return err
		}
		// the card may have moved since the gate read it
		card, err := q.GetCard(ctx, id)
		if err != nil {
			return err
		}
		columnID = card.ColumnID
		if _, err := q.LockColumn(ctx, columnID); err != nil {
			return err
		}

		before, err := cardIDs(ctx, q, columnID)
		if err != nil {
			return err
		}
		after, err := ordering.Remove(before, id)
		if err != nil {
			return err
		}
		if err := q.DeleteCard(ctx, id); err != nil {
			return err
		}
		if err := q.SetCardPlacements(ctx, ordering.Changes(columnID, before, after)); err != nil {
			return err
		}
		_, err = q.BumpColumnVersion(ctx, columnID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	s.Publish(ctx, events.CardDeleted{BoardID: gated.BoardID, ColumnID: columnID, CardID: id})
	return nil
}

// ReorderCards replaces one column's card order with req.IDs and returns the
// column's new version
func (s *service) ReorderCards(ctx context.Context, req ReorderCardsRequest) (int, error) {
	if req.ColumnID <= 0 {
		return 0, ErrInvalidColumnID
	}
	col, _, err := s.gateColumn(ctx, req.ColumnID, types.RoleMember)
	if err != nil {
		return 0, err
	}

	var version int
	order := slices.Clone(req.IDs)
	err = database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if _, err := q.LockBoard(ctx, col.BoardID); err != nil {
			return err
		}
		locked, err := q.LockColumn(ctx, req.ColumnID)
		if err != nil {
			return err
		}
		if req.ExpectedVersion != nil && *req.ExpectedVersion != locked.Version {
			return fmt.Errorf("column %d is at version %d, not %d: %w",
				req.ColumnID, locked.Version, *req.ExpectedVersion, models.ErrConflict)
		}

		before, err := cardIDs(ctx, q, req.ColumnID)
		if err != nil {
			return err
		}
		if err := ordering.CheckOrderSet(before, order); err != nil {
			return err
		}
		if err := q.SetCardPlacements(ctx, ordering.Changes(req.ColumnID, before, order)); err != nil {
			return err
		}
		version, err = q.BumpColumnVersion(ctx, req.ColumnID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reorder cards: %w", err)
	}

	s.Publish(ctx, events.CardsReordered{
		BoardID:  col.BoardID,
		ColumnID: req.ColumnID,
		Order:    order,
		Version:  version,
	})
	return version, nil
}

// MoveCards applies a batch of moves inside one board. Every column the
// batch takes a card from or puts a card into must end up dense; nothing is
// renumbered on the caller's behalf.
func (s *service) MoveCards(ctx context.Context, req MoveCardsRequest) (*MoveResult, error) {
	if err := validateMoveCards(req); err != nil {
		return nil, err
	}
	board, err := s.Store.GetBoard(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	if err := s.Require(ctx, board.OrgID, types.RoleMember); err != nil {
		return nil, err
	}

	moves := make([]ordering.Move[types.ColumnID, types.CardID], len(req.Moves))
	for i, m := range req.Moves {
		moves[i] = ordering.Move[types.ColumnID, types.CardID]{Item: m.CardID, Container: m.ColumnID, Index: m.Index}
	}

	result, err := s.applyMoves(ctx, req.BoardID, func(q database.Queries, snap *cardSnapshot) ([]cardMove, error) {
		if err := classifyMoves(ctx, q, snap, moves); err != nil {
			return nil, err
		}
		return moves, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move cards: %w", err)
	}
	return result, nil
}

// MoveCard moves one card to a column and index, computing the complete
// new order of the source and destination columns
func (s *service) MoveCard(ctx context.Context, req MoveCardRequest) (*MoveResult, error) {
	if req.CardID <= 0 {
		return nil, ErrInvalidCardID
	}
	if req.ColumnID <= 0 {
		return nil, ErrInvalidColumnID
	}
	if req.Index < 0 {
		return nil, ErrInvalidIndex
	}
	card, _, err := s.gateCard(ctx, req.CardID, types.RoleMember)
	if err != nil {
		return nil, err
	}

	result, err := s.applyMoves(ctx, card.BoardID, func(q database.Queries, snap *cardSnapshot) ([]cardMove, error) {
		single := []cardMove{{Item: req.CardID, Container: req.ColumnID, Index: req.Index}}
		if err := classifyMoves(ctx, q, snap, single); err != nil {
			return nil, err
		}
		return expandMove(snap, req.CardID, req.ColumnID, req.Index)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move card: %w", err)
	}
	return result, nil
}

type (
	cardMove     = ordering.Move[types.ColumnID, types.CardID]
	cardSnapshot = ordering.Snapshot[types.ColumnID, types.CardID]
)

// applyMoves locks the board, snapshots its columns and cards, asks plan for
// the batch and writes the placements that changed. Versions are bumped for
// every column a move touched, in column order.
func (s *service) applyMoves(ctx context.Context, boardID types.BoardID, plan func(database.Queries, *cardSnapshot) ([]cardMove, error)) (*MoveResult, error) {
	var result *MoveResult
	err := database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		if _, err := q.LockBoard(ctx, boardID); err != nil {
			return err
		}
		snap, err := loadSnapshot(ctx, q, boardID)
		if err != nil {
			return err
		}

		moves, err := plan(q, snap)
		if err != nil {
			return err
		}
		changed, err := ordering.PlanBatch(snap, moves)
		if err != nil {
			return err
		}

		touched := make(map[types.ColumnID]struct{})
		for _, m := range moves {
			if p, ok := snap.Lookup(m.Item); ok {
				touched[p.Container] = struct{}{}
			}
			touched[m.Container] = struct{}{}
		}

		if err := q.SetCardPlacements(ctx, changed); err != nil {
			return err
		}

		result = &MoveResult{Placements: changed, Versions: make(map[types.ColumnID]int, len(touched))}
		for _, id := range slices.Sorted(maps.Keys(touched)) {
			v, err := q.BumpColumnVersion(ctx, id)
			if err != nil {
				return err
			}
			result.Versions[id] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	placements := make([]events.CardPlacement, len(result.Placements))
	for i, p := range result.Placements {
		placements[i] = events.CardPlacement{CardID: p.Item, ColumnID: p.Container, Position: p.Position}
	}
	s.Publish(ctx, events.CardsMoved{BoardID: boardID, Placements: placements})
	return result, nil
}

// loadSnapshot reads every column of the board, including empty ones, and
// every card on it
func loadSnapshot(ctx context.Context, q database.Queries, boardID types.BoardID) (*cardSnapshot, error) {
	cols, err := q.ListColumns(ctx, boardID)
	if err != nil {
		return nil, err
	}
	cards, err := q.ListCardsByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	snap := ordering.NewSnapshot[types.ColumnID, types.CardID]()
	for _, c := range cols {
		snap.AddContainer(c.ID)
	}
	for _, k := range cards {
		snap.Add(k.ColumnID, k.ID, k.Position)
	}
	return snap, nil
}

// classifyMoves tells ids that do not exist apart from ids that exist on
// another board
func classifyMoves(ctx context.Context, q database.Queries, snap *cardSnapshot, moves []cardMove) error {
	for _, m := range moves {
		if _, ok := snap.Lookup(m.Item); !ok {
			if _, err := q.GetCard(ctx, m.Item); err != nil {
				return err
			}
			return fmt.Errorf("%w: card %d is on another board", models.ErrScopeViolation, m.Item)
		}
		if !snap.HasContainer(m.Container) {
			if _, err := q.GetColumn(ctx, m.Container); err != nil {
				return err
			}
			return fmt.Errorf("%w: column %d is on another board", models.ErrScopeViolation, m.Container)
		}
	}
	return nil
}

// expandMove turns a single move into the full placement of the source and
// destination columns
func expandMove(snap *cardSnapshot, id types.CardID, dest types.ColumnID, index int) ([]cardMove, error) {
	cur, _ := snap.Lookup(id)

	if cur.Container == dest {
		order, err := ordering.MoveWithin(snap.Order(dest), id, index)
		if err != nil {
			return nil, err
		}
		return placeAll(dest, order), nil
	}

	source, err := ordering.Remove(snap.Order(cur.Container), id)
	if err != nil {
		return nil, err
	}
	target, err := ordering.Insert(snap.Order(dest), id, index)
	if err != nil {
		return nil, err
	}
	return append(placeAll(cur.Container, source), placeAll(dest, target)...), nil
}

func placeAll(column types.ColumnID, ids []types.CardID) []cardMove {
	out := make([]cardMove, len(ids))
	for i, id := range ids {
		out[i] = cardMove{Item: id, Container: column, Index: i}
	}
	return out
}

// gateCard loads a card and its board and checks the actor's role
func (s *service) gateCard(ctx context.Context, id types.CardID, min types.Role) (*models.Card, *models.Board, error) {
	card, err := s.Store.GetCard(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	board, err := s.Store.GetBoard(ctx, card.BoardID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Require(ctx, board.OrgID, min); err != nil {
		return nil, nil, err
	}
	return card, board, nil
}

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

func cardIDs(ctx context.Context, q database.CardReader, columnID types.ColumnID) ([]types.CardID, error) {
	cards, err := q.ListCards(ctx, columnID)
	if err != nil {
		return nil, err
	}
	ids := make([]types.CardID, len(cards))
	for i, k := range cards {
		ids[i] = k.ID
	}
	return ids, nil
}

// validateCreateCard validates a CreateCardRequest and trims its title
func validateCreateCard(req *CreateCardRequest) error {
	if req.ColumnID <= 0 {
		return ErrInvalidColumnID
	}
	title, err := validateTitle(req.Title)
	if err != nil {
		return err
	}
	req.Title = title
	if len(req.Description) > maxDescriptionLength {
		return ErrDescriptionTooBig
	}
	return nil
}

func validateUpdateCard(req *UpdateCardRequest) error {
	if req.CardID <= 0 {
		return ErrInvalidCardID
	}
	if req.Title == nil && req.Description == nil {
		return ErrNothingToUpdate
	}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return err
		}
		req.Title = &title
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLength {
		return ErrDescriptionTooBig
	}
	return nil
}

func validateMoveCards(req MoveCardsRequest) error {
	if req.BoardID <= 0 {
		return ErrInvalidBoardID
	}
	if len(req.Moves) == 0 {
		return ErrEmptyBatch
	}
	for _, m := range req.Moves {
		if m.CardID <= 0 {
			return ErrInvalidCardID
		}
		if m.ColumnID <= 0 {
			return ErrInvalidColumnID
		}
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}
