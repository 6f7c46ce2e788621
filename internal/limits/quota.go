// Package limits bounds what an organization may own and how fast a
// principal may call the API.
package limits

import (
	"context"
	"errors"
	"fmt"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Unlimited marks a plan limit that never denies
const Unlimited = config.Unlimited

// Quota is the outcome of a quota check. Current is what the organization
// owns now; one more is allowed when Current < Max.
type Quota struct {
	Allowed bool `json:"allowed"`
	Current int  `json:"current"`
	Max     int  `json:"max"`
}

// Authority answers quota questions for an organization
type Authority interface {
	CheckQuota(ctx context.Context, org types.OrgID, resource types.Resource) (Quota, error)
}

// Source is the slice of the datastore quota checks read from
type Source interface {
	GetSubscription(ctx context.Context, org types.OrgID) (*models.Subscription, error)
	CountResources(ctx context.Context, org types.OrgID, resource types.Resource) (int, error)
}

// Scoped is an Authority that can answer from another Source, such as the
// Queries of an open transaction
type Scoped interface {
	Authority
	Within(source Source) Authority
}

type planAuthority struct {
	source Source
	plans  map[string]config.PlanLimits
}

// NewAuthority returns an Authority that maps each organization's
// subscription onto plans. Organizations without an active subscription
// get the free plan.
func NewAuthority(source Source, plans map[string]config.PlanLimits) Authority {
	return &planAuthority{source: source, plans: plans}
}

// Plan returns the plan that currently applies to org
func Plan(ctx context.Context, source Source, org types.OrgID) (string, error) {
	sub, err := source.GetSubscription(ctx, org)
	if errors.Is(err, models.ErrNotFound) {
		return models.PlanFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read subscription: %w", err)
	}
	if !sub.Active() || sub.Plan == "" {
		return models.PlanFree, nil
	}
	return sub.Plan, nil
}

func (a *planAuthority) Within(source Source) Authority {
	return &planAuthority{source: source, plans: a.plans}
}

func (a *planAuthority) CheckQuota(ctx context.Context, org types.OrgID, resource types.Resource) (Quota, error) {
	if !resource.Valid() {
		return Quota{}, fmt.Errorf("unknown resource %q", resource)
	}

	plan, err := Plan(ctx, a.source, org)
	if err != nil {
		return Quota{}, err
	}
	limits, ok := a.plans[plan]
	if !ok {
		limits = a.plans[models.PlanFree]
	}

	max := limitFor(limits, resource)
	current, err := a.source.CountResources(ctx, org, resource)
	if err != nil {
		return Quota{}, fmt.Errorf("failed to count %s: %w", resource, err)
	}

	return Quota{
		Allowed: max == Unlimited || current < max,
		Current: current,
		Max:     max,
	}, nil
}

func limitFor(l config.PlanLimits, resource types.Resource) int {
	switch resource {
	case types.ResourceBoards:
		return l.Boards
	case types.ResourceColumns:
		return l.Columns
	default:
		return l.Cards
	}
}

// EnforceWithin runs Enforce against source when authority supports it
func EnforceWithin(ctx context.Context, authority Authority, source Source, org types.OrgID, resource types.Resource) error {
	if scoped, ok := authority.(Scoped); ok {
		authority = scoped.Within(source)
	}
	return Enforce(ctx, authority, org, resource)
}

// Enforce checks the quota and returns models.ErrQuotaExceeded when one more
// resource is not allowed.
func Enforce(ctx context.Context, authority Authority, org types.OrgID, resource types.Resource) error {
	q, err := authority.CheckQuota(ctx, org, resource)
	if err != nil {
		return err
	}
	if !q.Allowed {
		return fmt.Errorf("%s limit %d reached: %w", resource, q.Max, models.ErrQuotaExceeded)
	}
	return nil
}

// NoLimits allows everything
type NoLimits struct{}

func (NoLimits) CheckQuota(context.Context, types.OrgID, types.Resource) (Quota, error) {
	return Quota{Allowed: true, Max: Unlimited}, nil
}
