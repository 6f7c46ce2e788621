package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// SubscriptionRepo handles the local copy of billing state
type SubscriptionRepo struct {
	db DBTX
}

const subscriptionColumns = `org_id, plan, status, stripe_customer_id, stripe_subscription_id,
	price_id, current_period_end, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	s := &models.Subscription{}
	var customer, subscription, price sql.NullString
	var periodEnd sql.NullTime
	if err := row.Scan(&s.OrgID, &s.Plan, &s.Status, &customer, &subscription, &price, &periodEnd, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.StripeCustomerID = NullStringToString(customer)
	s.StripeSubscriptionID = NullStringToString(subscription)
	s.PriceID = NullStringToString(price)
	s.CurrentPeriodEnd = NullTimeToTime(periodEnd)
	return s, nil
}

// GetSubscription returns the subscription of org
func (r *SubscriptionRepo) GetSubscription(ctx context.Context, org types.OrgID) (*models.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE org_id = ?`, org))
	if err != nil {
		return nil, notFound(err, "subscription", org)
	}
	return s, nil
}

// GetSubscriptionByCustomer returns the subscription linked to a billing customer
func (r *SubscriptionRepo) GetSubscriptionByCustomer(ctx context.Context, customerID string) (*models.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE stripe_customer_id = ?`, customerID))
	if err != nil {
		return nil, notFound(err, "subscription for customer", customerID)
	}
	return s, nil
}

// UpsertSubscription inserts or replaces the subscription of sub.OrgID
func (r *SubscriptionRepo) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (org_id) DO UPDATE SET
			plan = excluded.plan,
			status = excluded.status,
			stripe_customer_id = excluded.stripe_customer_id,
			stripe_subscription_id = excluded.stripe_subscription_id,
			price_id = excluded.price_id,
			current_period_end = excluded.current_period_end,
			updated_at = excluded.updated_at`,
		sub.OrgID, sub.Plan, sub.Status,
		sql.NullString{String: sub.StripeCustomerID, Valid: sub.StripeCustomerID != ""},
		sql.NullString{String: sub.StripeSubscriptionID, Valid: sub.StripeSubscriptionID != ""},
		sql.NullString{String: sub.PriceID, Valid: sub.PriceID != ""},
		timeToNullTime(sub.CurrentPeriodEnd), sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}
