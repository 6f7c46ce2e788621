package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// queries implements database.Queries over a *gorm.DB that is either the
// pool or a transaction.
type queries struct {
	db *gorm.DB
}

var _ database.Queries = (*queries)(nil)

func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", entity, id, models.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %v: %w", entity, id, err)
}

func requireAffected(res *gorm.DB, entity string, id any) error {
	if res.Error != nil {
		return fmt.Errorf("failed to write %s %v: %w", entity, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %v: %w", entity, id, models.ErrNotFound)
	}
	return nil
}

// ============================================================================
// Organizations and memberships
// ============================================================================

func (q *queries) CreateOrganization(ctx context.Context, name string) (*models.Organization, error) {
	row := &orgRow{Name: name, CreatedAt: time.Now().UTC()}
	if err := q.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return toOrganization(row), nil
}

func (q *queries) GetOrganization(ctx context.Context, id types.OrgID) (*models.Organization, error) {
	var row orgRow
	if err := q.db.WithContext(ctx).First(&row, int(id)).Error; err != nil {
		return nil, notFound(err, "organization", id)
	}
	return toOrganization(&row), nil
}

func (q *queries) LockOrganization(ctx context.Context, id types.OrgID) (*models.Organization, error) {
	var row orgRow
	err := q.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, int(id)).Error
	if err != nil {
		return nil, notFound(err, "organization", id)
	}
	return toOrganization(&row), nil
}

func (q *queries) ListOrganizationsForUser(ctx context.Context, user types.UserID) ([]*models.Organization, error) {
	var rows []orgRow
	err := q.db.WithContext(ctx).
		Joins("JOIN memberships m ON m.org_id = organizations.id").
		Where("m.user_id = ?", string(user)).
		Order("organizations.id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying organizations for user: %w", err)
	}
	out := make([]*models.Organization, len(rows))
	for i := range rows {
		out[i] = toOrganization(&rows[i])
	}
	return out, nil
}

func (q *queries) UpsertMembership(ctx context.Context, org types.OrgID, user types.UserID, role types.Role) error {
	row := &membershipRow{OrgID: int(org), UserID: string(user), Role: int(role), CreatedAt: time.Now().UTC()}
	err := q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}
	return nil
}

func (q *queries) GetMembership(ctx context.Context, org types.OrgID, user types.UserID) (*models.Membership, error) {
	var row membershipRow
	err := q.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", int(org), string(user)).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "membership", fmt.Sprintf("%d/%s", org, user))
	}
	return toMembership(&row), nil
}

func (q *queries) ListMemberships(ctx context.Context, org types.OrgID) ([]*models.Membership, error) {
	var rows []membershipRow
	err := q.db.WithContext(ctx).
		Where("org_id = ?", int(org)).
		Order("role DESC, user_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", err)
	}
	out := make([]*models.Membership, len(rows))
	for i := range rows {
		out[i] = toMembership(&rows[i])
	}
	return out, nil
}

func (q *queries) DeleteMembership(ctx context.Context, org types.OrgID, user types.UserID) error {
	res := q.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", int(org), string(user)).
		Delete(&membershipRow{})
	return requireAffected(res, "membership", fmt.Sprintf("%d/%s", org, user))
}

func (q *queries) CountOwners(ctx context.Context, org types.OrgID) (int, error) {
	var n int64
	err := q.db.WithContext(ctx).Model(&membershipRow{}).
		Where("org_id = ? AND role = ?", int(org), int(types.RoleOwner)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return int(n), nil
}

// ============================================================================
// Subscriptions
// ============================================================================

func (q *queries) GetSubscription(ctx context.Context, org types.OrgID) (*models.Subscription, error) {
	var row subscriptionRow
	if err := q.db.WithContext(ctx).Where("org_id = ?", int(org)).First(&row).Error; err != nil {
		return nil, notFound(err, "subscription", org)
	}
	return toSubscription(&row), nil
}

func (q *queries) GetSubscriptionByCustomer(ctx context.Context, customerID string) (*models.Subscription, error) {
	var row subscriptionRow
	if err := q.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&row).Error; err != nil {
		return nil, notFound(err, "subscription for customer", customerID)
	}
	return toSubscription(&row), nil
}

func (q *queries) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()
	err := q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan", "status", "stripe_customer_id", "stripe_subscription_id",
			"price_id", "current_period_end", "updated_at",
		}),
	}).Create(fromSubscription(sub)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// ============================================================================
// Boards
// ============================================================================

func (q *queries) CreateBoard(ctx context.Context, org types.OrgID, name string) (*models.Board, error) {
	now := time.Now().UTC()
	row := &boardRow{OrgID: int(org), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := q.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return toBoard(row), nil
}

func (q *queries) GetBoard(ctx context.Context, id types.BoardID) (*models.Board, error) {
	var row boardRow
	if err := q.db.WithContext(ctx).First(&row, int(id)).Error; err != nil {
		return nil, notFound(err, "board", id)
	}
	return toBoard(&row), nil
}

func (q *queries) ListBoards(ctx context.Context, org types.OrgID) ([]*models.Board, error) {
	var rows []boardRow
	if err := q.db.WithContext(ctx).Where("org_id = ?", int(org)).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying boards: %w", err)
	}
	out := make([]*models.Board, len(rows))
	for i := range rows {
		out[i] = toBoard(&rows[i])
	}
	return out, nil
}

func (q *queries) RenameBoard(ctx context.Context, id types.BoardID, name string) error {
	res := q.db.WithContext(ctx).Model(&boardRow{}).Where("id = ?", int(id)).
		Updates(map[string]any{"name": name, "updated_at": time.Now().UTC()})
	return requireAffected(res, "board", id)
}

func (q *queries) DeleteBoard(ctx context.Context, id types.BoardID) error {
	return requireAffected(q.db.WithContext(ctx).Delete(&boardRow{}, int(id)), "board", id)
}

// LockBoard reads the board with SELECT ... FOR UPDATE
func (q *queries) LockBoard(ctx context.Context, id types.BoardID) (*models.Board, error) {
	var row boardRow
	err := q.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, int(id)).Error
	if err != nil {
		return nil, notFound(err, "board", id)
	}
	return toBoard(&row), nil
}

func (q *queries) BumpBoardVersion(ctx context.Context, id types.BoardID) (int, error) {
	res := q.db.WithContext(ctx).Model(&boardRow{}).Where("id = ?", int(id)).
		Updates(map[string]any{"version": gorm.Expr("version + 1"), "updated_at": time.Now().UTC()})
	if err := requireAffected(res, "board", id); err != nil {
		return 0, err
	}
	var version int
	if err := q.db.WithContext(ctx).Model(&boardRow{}).Select("version").Where("id = ?", int(id)).Row().Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read board version: %w", err)
	}
	return version, nil
}

func (q *queries) CountResources(ctx context.Context, org types.OrgID, resource types.Resource) (int, error) {
	var n int64
	db := q.db.WithContext(ctx)
	var err error
	switch resource {
	case types.ResourceBoards:
		err = db.Model(&boardRow{}).Where("org_id = ?", int(org)).Count(&n).Error
	case types.ResourceColumns:
		err = db.Model(&columnRow{}).
			Joins("JOIN boards b ON b.id = columns.board_id").
			Where("b.org_id = ?", int(org)).Count(&n).Error
	case types.ResourceCards:
		err = db.Model(&cardRow{}).
			Joins("JOIN columns c ON c.id = cards.column_id").
			Joins("JOIN boards b ON b.id = c.board_id").
			Where("b.org_id = ?", int(org)).Count(&n).Error
	default:
		return 0, fmt.Errorf("unknown resource %q", resource)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return int(n), nil
}

// ============================================================================
// Columns
// ============================================================================

func (q *queries) CreateColumn(ctx context.Context, board types.BoardID, name string, position int) (*models.Column, error) {
	row := &columnRow{BoardID: int(board), Name: name, Position: position, CreatedAt: time.Now().UTC()}
	if err := q.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}
	return toColumn(row), nil
}

func (q *queries) GetColumn(ctx context.Context, id types.ColumnID) (*models.Column, error) {
	var row columnRow
	if err := q.db.WithContext(ctx).First(&row, int(id)).Error; err != nil {
		return nil, notFound(err, "column", id)
	}
	return toColumn(&row), nil
}

func (q *queries) ListColumns(ctx context.Context, board types.BoardID) ([]*models.Column, error) {
	var rows []columnRow
	if err := q.db.WithContext(ctx).Where("board_id = ?", int(board)).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying columns for board: %w", err)
	}
	out := make([]*models.Column, len(rows))
	for i := range rows {
		out[i] = toColumn(&rows[i])
	}
	return out, nil
}

func (q *queries) CountColumns(ctx context.Context, board types.BoardID) (int, error) {
	var n int64
	if err := q.db.WithContext(ctx).Model(&columnRow{}).Where("board_id = ?", int(board)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count columns: %w", err)
	}
	return int(n), nil
}

func (q *queries) RenameColumn(ctx context.Context, id types.ColumnID, name string) error {
	res := q.db.WithContext(ctx).Model(&columnRow{}).Where("id = ?", int(id)).Update("name", name)
	return requireAffected(res, "column", id)
}

func (q *queries) DeleteColumn(ctx context.Context, id types.ColumnID) error {
	return requireAffected(q.db.WithContext(ctx).Delete(&columnRow{}, int(id)), "column", id)
}

// LockColumn reads the column with SELECT ... FOR UPDATE
func (q *queries) LockColumn(ctx context.Context, id types.ColumnID) (*models.Column, error) {
	var row columnRow
	err := q.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, int(id)).Error
	if err != nil {
		return nil, notFound(err, "column", id)
	}
	return toColumn(&row), nil
}

func (q *queries) BumpColumnVersion(ctx context.Context, id types.ColumnID) (int, error) {
	res := q.db.WithContext(ctx).Model(&columnRow{}).Where("id = ?", int(id)).
		Update("version", gorm.Expr("version + 1"))
	if err := requireAffected(res, "column", id); err != nil {
		return 0, err
	}
	var version int
	if err := q.db.WithContext(ctx).Model(&columnRow{}).Select("version").Where("id = ?", int(id)).Row().Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read column version: %w", err)
	}
	return version, nil
}

// SetColumnPositions parks every row on a negative position before writing
// the final ones, keeping idx_columns_board_position valid per statement.
func (q *queries) SetColumnPositions(ctx context.Context, placements []database.ColumnPlacement) error {
	db := q.db.WithContext(ctx)
	for _, p := range placements {
		res := db.Model(&columnRow{}).
			Where("id = ? AND board_id = ?", int(p.Item), int(p.Container)).
			Update("position", -int(p.Item)-1)
		if err := requireAffected(res, "column", p.Item); err != nil {
			return err
		}
	}
	for _, p := range placements {
		if err := db.Model(&columnRow{}).Where("id = ?", int(p.Item)).Update("position", p.Position).Error; err != nil {
			return fmt.Errorf("failed to place column %d: %w", p.Item, err)
		}
	}
	return nil
}

// ============================================================================
// Cards
// ============================================================================

func (q *queries) cardQuery(ctx context.Context) *gorm.DB {
	return q.db.WithContext(ctx).Table("cards").
		Select("cards.id, cards.column_id, c.board_id, cards.title, cards.description, cards.position, cards.created_at, cards.updated_at").
		Joins("JOIN columns c ON c.id = cards.column_id")
}

func (q *queries) CreateCard(ctx context.Context, params database.CreateCardParams) (*models.Card, error) {
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	row := &cardRow{
		ColumnID:    int(params.ColumnID),
		Title:       params.Title,
		Description: params.Description,
		Position:    params.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := q.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return q.GetCard(ctx, types.CardID(row.ID))
}

func (q *queries) GetCard(ctx context.Context, id types.CardID) (*models.Card, error) {
	var row cardView
	if err := q.cardQuery(ctx).Where("cards.id = ?", int(id)).Take(&row).Error; err != nil {
		return nil, notFound(err, "card", id)
	}
	card := toCard(&row)
	labels, err := q.labelsFor(ctx, "card_labels.card_id = ?", int(id))
	if err != nil {
		return nil, err
	}
	card.Labels = labels[card.ID]
	return card, nil
}

func (q *queries) ListCards(ctx context.Context, column types.ColumnID) ([]*models.Card, error) {
	return q.listCards(ctx, "cards.column_id = ?", "cards.position", int(column))
}

func (q *queries) ListCardsByBoard(ctx context.Context, board types.BoardID) ([]*models.Card, error) {
	return q.listCards(ctx, "c.board_id = ?", "c.position, cards.position", int(board))
}

func (q *queries) listCards(ctx context.Context, where, order string, arg any) ([]*models.Card, error) {
	var rows []cardView
	if err := q.cardQuery(ctx).Where(where, arg).Order(order).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	labels, err := q.labelsFor(ctx, where, arg)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Card, len(rows))
	for i := range rows {
		out[i] = toCard(&rows[i])
		out[i].Labels = labels[out[i].ID]
	}
	return out, nil
}

func (q *queries) labelsFor(ctx context.Context, where string, arg any) (map[types.CardID][]*models.Label, error) {
	var rows []cardLabelView
	err := q.db.WithContext(ctx).Table("card_labels").
		Select("card_labels.card_id, l.id, l.board_id, l.name, l.color").
		Joins("JOIN labels l ON l.id = card_labels.label_id").
		Joins("JOIN cards ON cards.id = card_labels.card_id").
		Joins("JOIN columns c ON c.id = cards.column_id").
		Where(where, arg).
		Order("l.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying card labels: %w", err)
	}
	out := make(map[types.CardID][]*models.Label)
	for _, r := range rows {
		out[types.CardID(r.CardID)] = append(out[types.CardID(r.CardID)], &models.Label{
			ID: types.LabelID(r.ID), BoardID: types.BoardID(r.BoardID), Name: r.Name, Color: r.Color,
		})
	}
	return out, nil
}

func (q *queries) CountCards(ctx context.Context, column types.ColumnID) (int, error) {
	var n int64
	if err := q.db.WithContext(ctx).Model(&cardRow{}).Where("column_id = ?", int(column)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return int(n), nil
}

func (q *queries) UpdateCard(ctx context.Context, id types.CardID, title, description string) error {
	res := q.db.WithContext(ctx).Model(&cardRow{}).Where("id = ?", int(id)).
		Updates(map[string]any{"title": title, "description": description, "updated_at": time.Now().UTC()})
	return requireAffected(res, "card", id)
}

func (q *queries) DeleteCard(ctx context.Context, id types.CardID) error {
	return requireAffected(q.db.WithContext(ctx).Delete(&cardRow{}, int(id)), "card", id)
}

// SetCardPlacements parks then places, as SetColumnPositions does
func (q *queries) SetCardPlacements(ctx context.Context, placements []database.CardPlacement) error {
	db := q.db.WithContext(ctx)
	for _, p := range placements {
		res := db.Model(&cardRow{}).Where("id = ?", int(p.Item)).Update("position", -int(p.Item)-1)
		if err := requireAffected(res, "card", p.Item); err != nil {
			return err
		}
	}
	now := time.Now().UTC()
	for _, p := range placements {
		err := db.Model(&cardRow{}).Where("id = ?", int(p.Item)).
			Updates(map[string]any{"column_id": int(p.Container), "position": p.Position, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("failed to place card %d: %w", p.Item, err)
		}
	}
	return nil
}

// ============================================================================
// Labels
// ============================================================================

func (q *queries) CreateLabel(ctx context.Context, board types.BoardID, name, color string) (*models.Label, error) {
	row := &labelRow{BoardID: int(board), Name: name, Color: color}
	if err := q.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return toLabel(row), nil
}

func (q *queries) GetLabel(ctx context.Context, id types.LabelID) (*models.Label, error) {
	var row labelRow
	if err := q.db.WithContext(ctx).First(&row, int(id)).Error; err != nil {
		return nil, notFound(err, "label", id)
	}
	return toLabel(&row), nil
}

func (q *queries) ListLabels(ctx context.Context, board types.BoardID) ([]*models.Label, error) {
	var rows []labelRow
	if err := q.db.WithContext(ctx).Where("board_id = ?", int(board)).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	out := make([]*models.Label, len(rows))
	for i := range rows {
		out[i] = toLabel(&rows[i])
	}
	return out, nil
}

func (q *queries) DeleteLabel(ctx context.Context, id types.LabelID) error {
	return requireAffected(q.db.WithContext(ctx).Delete(&labelRow{}, int(id)), "label", id)
}

func (q *queries) AttachLabel(ctx context.Context, card types.CardID, label types.LabelID) error {
	err := q.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&cardLabelRow{CardID: int(card), LabelID: int(label)}).Error
	if err != nil {
		return fmt.Errorf("failed to attach label: %w", err)
	}
	return nil
}

func (q *queries) DetachLabel(ctx context.Context, card types.CardID, label types.LabelID) error {
	err := q.db.WithContext(ctx).
		Where("card_id = ? AND label_id = ?", int(card), int(label)).
		Delete(&cardLabelRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to detach label: %w", err)
	}
	return nil
}
