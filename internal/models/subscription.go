package models

import (
	"time"

	"github.com/thenoetrevino/tablero/internal/types"
)

// PlanFree is the plan every organization has without a paid subscription
const PlanFree = "free"

// Subscription mirrors the billing provider's view of an organization's plan
type Subscription struct {
	OrgID                types.OrgID `json:"org_id"`
	Plan                 string      `json:"plan"`
	Status               string      `json:"status"`
	StripeCustomerID     string      `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string      `json:"stripe_subscription_id,omitempty"`
	PriceID              string      `json:"price_id,omitempty"`
	CurrentPeriodEnd     time.Time   `json:"current_period_end"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// Active reports whether the subscription still entitles the org to its plan
func (s *Subscription) Active() bool {
	switch s.Status {
	case "canceled", "unpaid", "incomplete_expired":
		return false
	}
	return true
}
