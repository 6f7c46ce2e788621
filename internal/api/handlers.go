package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/thenoetrevino/tablero/internal/services/board"
	"github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/services/column"
	"github.com/thenoetrevino/tablero/internal/services/label"
	"github.com/thenoetrevino/tablero/internal/services/org"
	"github.com/thenoetrevino/tablero/internal/types"
)

type handlers struct {
	svcs Services
}

// pathID reads a positive integer path parameter
func pathID[T ~int](c echo.Context, name string) (T, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" id")
	}
	return T(n), nil
}

// ============================================================================
// Request and response bodies
// ============================================================================

type nameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required,max=255"`
	Role   string `json:"role" validate:"required,oneof=viewer member admin owner"`
}

type reorderRequest struct {
	IDs     []int `json:"ids" validate:"required,dive,gt=0"`
	Version *int  `json:"version" validate:"omitempty,gte=0"`
}

type versionResponse struct {
	Version int `json:"version"`
}

type createCardRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=10000"`
}

type updateCardRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
}

type moveRequest struct {
	CardID   int `json:"card_id" validate:"gt=0"`
	ColumnID int `json:"column_id" validate:"gt=0"`
	Index    int `json:"index" validate:"gte=0"`
}

type batchMoveRequest struct {
	Moves []moveRequest `json:"moves" validate:"required,min=1,dive"`
}

type moveCardRequest struct {
	ColumnID int `json:"column_id" validate:"gt=0"`
	Index    int `json:"index" validate:"gte=0"`
}

type moveColumnRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

type createLabelRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type placementResponse struct {
	CardID   types.CardID   `json:"card_id"`
	ColumnID types.ColumnID `json:"column_id"`
	Position int            `json:"position"`
}

type moveResponse struct {
	Placements []placementResponse    `json:"placements"`
	Versions   map[types.ColumnID]int `json:"versions"`
}

func newMoveResponse(res *card.MoveResult) moveResponse {
	out := moveResponse{Placements: make([]placementResponse, len(res.Placements)), Versions: res.Versions}
	for i, p := range res.Placements {
		out.Placements[i] = placementResponse{CardID: p.Item, ColumnID: p.Container, Position: p.Position}
	}
	return out
}

func toIDs[T ~int](ids []int) []T {
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = T(id)
	}
	return out
}

// ============================================================================
// Organizations
// ============================================================================

func (h *handlers) listOrgs(c echo.Context) error {
	orgs, err := h.svcs.Orgs.ListOrganizations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orgs)
}

func (h *handlers) createOrg(c echo.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.svcs.Orgs.CreateOrganization(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *handlers) listMembers(c echo.Context) error {
	id, err := pathID[types.OrgID](c, "org")
	if err != nil {
		return err
	}
	members, err := h.svcs.Orgs.ListMembers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, members)
}

func (h *handlers) addMember(c echo.Context) error {
	id, err := pathID[types.OrgID](c, "org")
	if err != nil {
		return err
	}
	var req addMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := types.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = h.svcs.Orgs.AddMember(c.Request().Context(), org.AddMemberRequest{
		OrgID:  id,
		UserID: types.UserID(req.UserID),
		Role:   role,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) removeMember(c echo.Context) error {
	id, err := pathID[types.OrgID](c, "org")
	if err != nil {
		return err
	}
	if err := h.svcs.Orgs.RemoveMember(c.Request().Context(), id, types.UserID(c.Param("user"))); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) quota(c echo.Context) error {
	id, err := pathID[types.OrgID](c, "org")
	if err != nil {
		return err
	}
	q, err := h.svcs.Orgs.GetQuota(c.Request().Context(), id, types.Resource(c.Param("resource")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// ============================================================================
// Boards
// ============================================================================

func (h *handlers) listBoards(c echo.Context) error {
	id, err := pathID[types.OrgID](c, "org")
	if err != nil {
		return err
	}
	boards, err := h.svcs.Boards.ListBoards(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, boards)
}

func (h *handlers) createBoard(c echo.Context) error {
	id, err := pathID[types.OrgID](c, "org")
	if err != nil {
		return err
	}
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.svcs.Boards.CreateBoard(c.Request().Context(), board.CreateBoardRequest{OrgID: id, Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *handlers) boardView(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	view, err := h.svcs.Boards.GetBoardView(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *handlers) renameBoard(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svcs.Boards.RenameBoard(c.Request().Context(), id, req.Name); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) deleteBoard(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	force, _ := strconv.ParseBool(c.QueryParam("force"))
	if err := h.svcs.Boards.DeleteBoard(c.Request().Context(), board.DeleteBoardRequest{ID: id, Force: force}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ============================================================================
// Columns
// ============================================================================

func (h *handlers) createColumn(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.svcs.Columns.CreateColumn(c.Request().Context(), column.CreateColumnRequest{BoardID: id, Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *handlers) reorderColumns(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	version, err := h.svcs.Columns.ReorderColumns(c.Request().Context(), column.ReorderColumnsRequest{
		BoardID:         id,
		IDs:             toIDs[types.ColumnID](req.IDs),
		ExpectedVersion: req.Version,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, versionResponse{Version: version})
}

func (h *handlers) moveColumn(c echo.Context) error {
	id, err := pathID[types.ColumnID](c, "column")
	if err != nil {
		return err
	}
	var req moveColumnRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	version, err := h.svcs.Columns.MoveColumn(c.Request().Context(), column.MoveColumnRequest{ColumnID: id, Index: req.Index})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, versionResponse{Version: version})
}

func (h *handlers) renameColumn(c echo.Context) error {
	id, err := pathID[types.ColumnID](c, "column")
	if err != nil {
		return err
	}
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svcs.Columns.RenameColumn(c.Request().Context(), id, req.Name); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) deleteColumn(c echo.Context) error {
	id, err := pathID[types.ColumnID](c, "column")
	if err != nil {
		return err
	}
	if err := h.svcs.Columns.DeleteColumn(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ============================================================================
// Cards
// ============================================================================

func (h *handlers) listCards(c echo.Context) error {
	id, err := pathID[types.ColumnID](c, "column")
	if err != nil {
		return err
	}
	cards, err := h.svcs.Cards.GetCardsByColumn(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *handlers) createCard(c echo.Context) error {
	id, err := pathID[types.ColumnID](c, "column")
	if err != nil {
		return err
	}
	var req createCardRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.svcs.Cards.CreateCard(c.Request().Context(), card.CreateCardRequest{
		ColumnID:    id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *handlers) reorderCards(c echo.Context) error {
	id, err := pathID[types.ColumnID](c, "column")
	if err != nil {
		return err
	}
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	version, err := h.svcs.Cards.ReorderCards(c.Request().Context(), card.ReorderCardsRequest{
		ColumnID:        id,
		IDs:             toIDs[types.CardID](req.IDs),
		ExpectedVersion: req.Version,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, versionResponse{Version: version})
}

func (h *handlers) moveCards(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	var req batchMoveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	moves := make([]card.CardMove, len(req.Moves))
	for i, m := range req.Moves {
		moves[i] = card.CardMove{CardID: types.CardID(m.CardID), ColumnID: types.ColumnID(m.ColumnID), Index: m.Index}
	}
	res, err := h.svcs.Cards.MoveCards(c.Request().Context(), card.MoveCardsRequest{BoardID: id, Moves: moves})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newMoveResponse(res))
}

func (h *handlers) moveCard(c echo.Context) error {
	id, err := pathID[types.CardID](c, "card")
	if err != nil {
		return err
	}
	var req moveCardRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svcs.Cards.MoveCard(c.Request().Context(), card.MoveCardRequest{
		CardID:   id,
		ColumnID: types.ColumnID(req.ColumnID),
		Index:    req.Index,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newMoveResponse(res))
}

func (h *handlers) getCard(c echo.Context) error {
	id, err := pathID[types.CardID](c, "card")
	if err != nil {
		return err
	}
	found, err := h.svcs.Cards.GetCard(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, found)
}

func (h *handlers) updateCard(c echo.Context) error {
	id, err := pathID[types.CardID](c, "card")
	if err != nil {
		return err
	}
	var req updateCardRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.svcs.Cards.UpdateCard(c.Request().Context(), card.UpdateCardRequest{
		CardID:      id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *handlers) deleteCard(c echo.Context) error {
	id, err := pathID[types.CardID](c, "card")
	if err != nil {
		return err
	}
	if err := h.svcs.Cards.DeleteCard(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ============================================================================
// Labels
// ============================================================================

func (h *handlers) listLabels(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	labels, err := h.svcs.Labels.ListLabels(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, labels)
}

func (h *handlers) createLabel(c echo.Context) error {
	id, err := pathID[types.BoardID](c, "board")
	if err != nil {
		return err
	}
	var req createLabelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.svcs.Labels.CreateLabel(c.Request().Context(), label.CreateLabelRequest{
		BoardID: id,
		Name:    req.Name,
		Color:   req.Color,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *handlers) deleteLabel(c echo.Context) error {
	id, err := pathID[types.LabelID](c, "label")
	if err != nil {
		return err
	}
	if err := h.svcs.Labels.DeleteLabel(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) attachLabel(c echo.Context) error {
	return h.changeLabel(c, h.svcs.Labels.AttachLabel)
}

func (h *handlers) detachLabel(c echo.Context) error {
	return h.changeLabel(c, h.svcs.Labels.DetachLabel)
}

func (h *handlers) changeLabel(c echo.Context, apply func(ctx context.Context, card types.CardID, label types.LabelID) error) error {
	cardID, err := pathID[types.CardID](c, "card")
	if err != nil {
		return err
	}
	labelID, err := pathID[types.LabelID](c, "label")
	if err != nil {
		return err
	}
	if err := apply(c.Request().Context(), cardID, labelID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
