package postgres

import (
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Row types mirror the SQLite schema. Associations exist only to declare
// ON DELETE CASCADE foreign keys for AutoMigrate.

type orgRow struct {
	ID        int       `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (orgRow) TableName() string { return "organizations" }

type membershipRow struct {
	OrgID     int       `gorm:"primaryKey"`
	UserID    string    `gorm:"primaryKey;index"`
	Role      int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	Org       *orgRow   `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE"`
}

func (membershipRow) TableName() string { return "memberships" }

type subscriptionRow struct {
	OrgID                int     `gorm:"primaryKey;autoIncrement:false"`
	Plan                 string  `gorm:"not null"`
	Status               string  `gorm:"not null"`
	StripeCustomerID     *string `gorm:"index"`
	StripeSubscriptionID *string
	PriceID              *string
	CurrentPeriodEnd     *time.Time
	UpdatedAt            time.Time `gorm:"not null"`
	Org                  *orgRow   `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE"`
}

func (subscriptionRow) TableName() string { return "subscriptions" }

type boardRow struct {
	ID        int       `gorm:"primaryKey"`
	OrgID     int       `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	Version   int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Org       *orgRow   `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE"`
}

func (boardRow) TableName() string { return "boards" }

type columnRow struct {
	ID        int       `gorm:"primaryKey"`
	BoardID   int       `gorm:"not null;uniqueIndex:idx_columns_board_position"`
	Name      string    `gorm:"not null"`
	Position  int       `gorm:"not null;uniqueIndex:idx_columns_board_position"`
	Version   int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	Board     *boardRow `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
}

func (columnRow) TableName() string { return "columns" }

type cardRow struct {
	ID          int        `gorm:"primaryKey"`
	ColumnID    int        `gorm:"not null;uniqueIndex:idx_cards_column_position"`
	Title       string     `gorm:"not null"`
	Description string     `gorm:"not null;default:''"`
	Position    int        `gorm:"not null;uniqueIndex:idx_cards_column_position"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
	Column      *columnRow `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE"`
}

func (cardRow) TableName() string { return "cards" }

type labelRow struct {
	ID      int       `gorm:"primaryKey"`
	BoardID int       `gorm:"not null;uniqueIndex:idx_labels_board_name"`
	Name    string    `gorm:"not null;uniqueIndex:idx_labels_board_name"`
	Color   string    `gorm:"not null"`
	Board   *boardRow `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
}

func (labelRow) TableName() string { return "labels" }

type cardLabelRow struct {
	CardID  int       `gorm:"primaryKey"`
	LabelID int       `gorm:"primaryKey"`
	Card    *cardRow  `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	Label   *labelRow `gorm:"foreignKey:LabelID;constraint:OnDelete:CASCADE"`
}

func (cardLabelRow) TableName() string { return "card_labels" }

// cardView is a card joined with its column's board
type cardView struct {
	ID          int
	ColumnID    int
	BoardID     int
	Title       string
	Description string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// cardLabelView is a label joined with the card it is attached to
type cardLabelView struct {
	CardID  int
	ID      int
	BoardID int
	Name    string
	Color   string
}

// Model conversion helpers

func toOrganization(r *orgRow) *models.Organization {
	return &models.Organization{ID: types.OrgID(r.ID), Name: r.Name, CreatedAt: r.CreatedAt}
}

func toMembership(r *membershipRow) *models.Membership {
	return &models.Membership{
		OrgID:     types.OrgID(r.OrgID),
		UserID:    types.UserID(r.UserID),
		Role:      types.Role(r.Role),
		CreatedAt: r.CreatedAt,
	}
}

func toSubscription(r *subscriptionRow) *models.Subscription {
	s := &models.Subscription{
		OrgID:     types.OrgID(r.OrgID),
		Plan:      r.Plan,
		Status:    r.Status,
		UpdatedAt: r.UpdatedAt,
	}
	if r.StripeCustomerID != nil {
		s.StripeCustomerID = *r.StripeCustomerID
	}
	if r.StripeSubscriptionID != nil {
		s.StripeSubscriptionID = *r.StripeSubscriptionID
	}
	if r.PriceID != nil {
		s.PriceID = *r.PriceID
	}
	if r.CurrentPeriodEnd != nil {
		s.CurrentPeriodEnd = *r.CurrentPeriodEnd
	}
	return s
}

func fromSubscription(s *models.Subscription) *subscriptionRow {
	r := &subscriptionRow{
		OrgID:                int(s.OrgID),
		Plan:                 s.Plan,
		Status:               s.Status,
		StripeCustomerID:     optional(s.StripeCustomerID),
		StripeSubscriptionID: optional(s.StripeSubscriptionID),
		PriceID:              optional(s.PriceID),
		UpdatedAt:            s.UpdatedAt,
	}
	if !s.CurrentPeriodEnd.IsZero() {
		end := s.CurrentPeriodEnd
		r.CurrentPeriodEnd = &end
	}
	return r
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toBoard(r *boardRow) *models.Board {
	return &models.Board{
		ID:        types.BoardID(r.ID),
		OrgID:     types.OrgID(r.OrgID),
		Name:      r.Name,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toColumn(r *columnRow) *models.Column {
	return &models.Column{
		ID:        types.ColumnID(r.ID),
		BoardID:   types.BoardID(r.BoardID),
		Name:      r.Name,
		Position:  r.Position,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
	}
}

func toCard(r *cardView) *models.Card {
	return &models.Card{
		ID:          types.CardID(r.ID),
		ColumnID:    types.ColumnID(r.ColumnID),
		BoardID:     types.BoardID(r.BoardID),
		Title:       r.Title,
		Description: r.Description,
		Position:    r.Position,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toLabel(r *labelRow) *models.Label {
	return &models.Label{
		ID:      types.LabelID(r.ID),
		BoardID: types.BoardID(r.BoardID),
		Name:    r.Name,
		Color:   r.Color,
	}
}
