package billing

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func newEvent(t *testing.T, typ stripe.EventType, payload map[string]any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return stripe.Event{ID: "evt_test", Type: typ, Data: &stripe.EventData{Raw: raw}}
}

func subscriptionPayload(org, customer, price, status string) map[string]any {
	p := map[string]any{
		"id":                 "sub_123",
		"object":             "subscription",
		"status":             status,
		"customer":           customer,
		"current_period_end": 1893456000,
		"items": map[string]any{
			"object": "list",
			"data": []any{
				map[string]any{"id": "si_1", "price": map[string]any{"id": price}},
			},
		},
	}
	if org != "" {
		p["metadata"] = map[string]string{MetadataOrgKey: org}
	}
	return p
}

func setupSyncer(t *testing.T) (*testutil.Fixture, *Syncer) {
	t.Helper()
	f := testutil.NewFixture(t)
	return f, NewSyncer(f.Store, config.BillingConfig{Prices: map[string]string{"price_pro": "pro"}}, nil)
}

func TestSubscriptionLifecycle(t *testing.T) {
	t.Parallel()
	f, syncer := setupSyncer(t)
	ctx := context.Background()
	org := f.Org.ID.ToInt()

	err := syncer.HandleEvent(ctx, newEvent(t, stripe.EventTypeCheckoutSessionCompleted, map[string]any{
		"id":                  "cs_1",
		"object":              "checkout.session",
		"mode":                "subscription",
		"client_reference_id": itoa(org),
		"customer":            "cus_42",
	}))
	require.NoError(t, err)

	// no metadata: matched through the customer recorded at checkout
	err = syncer.HandleEvent(ctx, newEvent(t, stripe.EventTypeCustomerSubscriptionCreated,
		subscriptionPayload("", "cus_42", "price_pro", "active")))
	require.NoError(t, err)

	sub, err := f.Store.GetSubscription(ctx, f.Org.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro", sub.Plan)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "cus_42", sub.StripeCustomerID)
	assert.Equal(t, "price_pro", sub.PriceID)
	assert.True(t, time.Unix(1893456000, 0).Equal(sub.CurrentPeriodEnd), "period end %v", sub.CurrentPeriodEnd)

	err = syncer.HandleEvent(ctx, newEvent(t, stripe.EventTypeCustomerSubscriptionDeleted,
		subscriptionPayload(itoa(org), "cus_42", "price_pro", "canceled")))
	require.NoError(t, err)

	sub, err = f.Store.GetSubscription(ctx, f.Org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.False(t, sub.Active())
}

func TestUnmappedPriceKeepsFree(t *testing.T) {
	t.Parallel()
	f, syncer := setupSyncer(t)
	ctx := context.Background()

	err := syncer.HandleEvent(ctx, newEvent(t, stripe.EventTypeCustomerSubscriptionUpdated,
		subscriptionPayload(itoa(f.Org.ID.ToInt()), "cus_1", "price_mystery", "active")))
	require.NoError(t, err)

	sub, err := f.Store.GetSubscription(ctx, f.Org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
}

func TestUnknownOrganization(t *testing.T) {
	t.Parallel()
	_, syncer := setupSyncer(t)

	err := syncer.HandleEvent(context.Background(), newEvent(t, stripe.EventTypeCustomerSubscriptionUpdated,
		subscriptionPayload("", "cus_nobody", "price_pro", "active")))
	assert.ErrorIs(t, err, ErrUnknownOrganization)
}

func TestMissingOrganization(t *testing.T) {
	t.Parallel()
	f, syncer := setupSyncer(t)
	ctx := context.Background()

	err := syncer.HandleEvent(ctx, newEvent(t, stripe.EventTypeCustomerSubscriptionUpdated,
		subscriptionPayload("9999", "cus_ghost", "price_pro", "active")))
	assert.ErrorIs(t, err, ErrUnknownOrganization)

	err = syncer.HandleEvent(ctx, newEvent(t, stripe.EventTypeCheckoutSessionCompleted, map[string]any{
		"id":                  "cs_ghost",
		"client_reference_id": "9999",
	}))
	assert.ErrorIs(t, err, ErrUnknownOrganization)

	_, err = f.Store.GetSubscriptionByCustomer(ctx, "cus_ghost")
	assert.ErrorIs(t, err, models.ErrNotFound, "Expected nothing stored for a missing organization")
}

func TestIgnoredEvent(t *testing.T) {
	t.Parallel()
	_, syncer := setupSyncer(t)

	err := syncer.HandleEvent(context.Background(), newEvent(t, "invoice.created", map[string]any{"id": "in_1"}))
	assert.NoError(t, err)
}

func TestParseWebhook(t *testing.T) {
	t.Parallel()
	payload := []byte(`{"id":"evt_1","object":"event","type":"customer.subscription.updated","data":{"object":{}}}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_test"})

	event, err := ParseWebhook(signed.Payload, signed.Header, "whsec_test")
	require.NoError(t, err)
	assert.Equal(t, stripe.EventTypeCustomerSubscriptionUpdated, event.Type)

	_, err = ParseWebhook(signed.Payload, signed.Header, "whsec_other")
	assert.Error(t, err)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
