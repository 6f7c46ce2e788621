// Package billing mirrors Stripe subscription state into the local
// subscriptions table so quota checks never call out to Stripe.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// MetadataOrgKey is the Stripe metadata key carrying the organization id
const MetadataOrgKey = "org_id"

// ErrUnknownOrganization means an event could not be tied to an organization
var ErrUnknownOrganization = errors.New("event does not reference a known organization")

// Store is the slice of the datastore the syncer writes to
type Store interface {
	GetOrganization(ctx context.Context, id types.OrgID) (*models.Organization, error)
	GetSubscription(ctx context.Context, org types.OrgID) (*models.Subscription, error)
	GetSubscriptionByCustomer(ctx context.Context, customerID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
}

// Syncer applies Stripe webhook events to stored subscriptions
type Syncer struct {
	store  Store
	prices map[string]string
	logger *zap.Logger
}

// NewSyncer creates a syncer mapping price ids to plans through cfg.Prices
func NewSyncer(store Store, cfg config.BillingConfig, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: store, prices: cfg.Prices, logger: logger}
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event
func ParseWebhook(payload []byte, signature, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// HandleEvent applies one event. Event types it does not care about are
// ignored.
func (s *Syncer) HandleEvent(ctx context.Context, event stripe.Event) error {
	s.logger.Info("billing event received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID))

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := decode(event, &session); err != nil {
			return err
		}
		return s.checkoutCompleted(ctx, &session)

	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		var sub stripe.Subscription
		if err := decode(event, &sub); err != nil {
			return err
		}
		return s.subscriptionChanged(ctx, &sub)

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := decode(event, &sub); err != nil {
			return err
		}
		return s.subscriptionDeleted(ctx, &sub)

	default:
		s.logger.Debug("billing event ignored", zap.String("type", string(event.Type)))
		return nil
	}
}

// checkoutCompleted records the customer of a finished checkout so later
// subscription events without metadata can still be matched
func (s *Syncer) checkoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	org, ok := orgFromMetadata(session.Metadata)
	if !ok && session.ClientReferenceID != "" {
		org, ok = parseOrg(session.ClientReferenceID)
	}
	if !ok {
		return fmt.Errorf("checkout session %s: %w", session.ID, ErrUnknownOrganization)
	}

	sub, err := s.current(ctx, org)
	if err != nil {
		return err
	}
	if session.Customer != nil {
		sub.StripeCustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		sub.StripeSubscriptionID = session.Subscription.ID
	}
	return s.store.UpsertSubscription(ctx, sub)
}

func (s *Syncer) subscriptionChanged(ctx context.Context, ss *stripe.Subscription) error {
	sub, err := s.resolve(ctx, ss)
	if err != nil {
		return err
	}

	priceID := firstPrice(ss)
	plan, known := s.prices[priceID]
	if !known {
		s.logger.Warn("subscription uses an unmapped price, keeping free plan",
			zap.String("subscription_id", ss.ID),
			zap.String("price_id", priceID))
		plan = models.PlanFree
	}

	sub.Plan = plan
	sub.Status = string(ss.Status)
	sub.PriceID = priceID
	sub.StripeSubscriptionID = ss.ID
	if ss.Customer != nil {
		sub.StripeCustomerID = ss.Customer.ID
	}
	if ss.CurrentPeriodEnd > 0 {
		sub.CurrentPeriodEnd = time.Unix(ss.CurrentPeriodEnd, 0).UTC()
	}

	s.logger.Info("subscription synced",
		zap.Int("org_id", sub.OrgID.ToInt()),
		zap.String("plan", sub.Plan),
		zap.String("status", sub.Status))
	return s.store.UpsertSubscription(ctx, sub)
}

func (s *Syncer) subscriptionDeleted(ctx context.Context, ss *stripe.Subscription) error {
	sub, err := s.resolve(ctx, ss)
	if err != nil {
		return err
	}
	sub.Plan = models.PlanFree
	sub.Status = string(stripe.SubscriptionStatusCanceled)

	s.logger.Info("subscription canceled, reverting to free plan", zap.Int("org_id", sub.OrgID.ToInt()))
	return s.store.UpsertSubscription(ctx, sub)
}

// resolve finds the organization of a subscription through its metadata or,
// failing that, a customer id recorded earlier
func (s *Syncer) resolve(ctx context.Context, ss *stripe.Subscription) (*models.Subscription, error) {
	if org, ok := orgFromMetadata(ss.Metadata); ok {
		return s.current(ctx, org)
	}
	if ss.Customer == nil || ss.Customer.ID == "" {
		return nil, fmt.Errorf("subscription %s: %w", ss.ID, ErrUnknownOrganization)
	}

	sub, err := s.store.GetSubscriptionByCustomer(ctx, ss.Customer.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("customer %s: %w", ss.Customer.ID, ErrUnknownOrganization)
	}
	return sub, err
}

// current returns the stored subscription of org, or a fresh free one. An
// org that does not exist is unknown rather than a storage failure.
func (s *Syncer) current(ctx context.Context, org types.OrgID) (*models.Subscription, error) {
	if _, err := s.store.GetOrganization(ctx, org); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("organization %d: %w", org.ToInt(), ErrUnknownOrganization)
		}
		return nil, err
	}

	sub, err := s.store.GetSubscription(ctx, org)
	if errors.Is(err, models.ErrNotFound) {
		return &models.Subscription{OrgID: org, Plan: models.PlanFree, Status: "incomplete"}, nil
	}
	return sub, err
}

func decode(event stripe.Event, v any) error {
	if event.Data == nil {
		return fmt.Errorf("event %s has no data", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", event.Type, err)
	}
	return nil
}

func firstPrice(ss *stripe.Subscription) string {
	if ss.Items == nil {
		return ""
	}
	for _, item := range ss.Items.Data {
		if item.Price != nil && item.Price.ID != "" {
			return item.Price.ID
		}
	}
	return ""
}

func orgFromMetadata(md map[string]string) (types.OrgID, bool) {
	return parseOrg(md[MetadataOrgKey])
}

func parseOrg(s string) (types.OrgID, bool) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return types.OrgID(id), true
}
