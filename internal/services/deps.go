// Package services holds what every domain service shares: the datastore,
// the gate collaborators and the event sink.
package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/authz"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Deps are the collaborators injected into every service
type Deps struct {
	Store  database.Store
	Authz  authz.Authorizer
	Limits limits.Authority
	Events events.Publisher
	Logger *zap.Logger
}

// WithDefaults fills optional collaborators: memberships from Store, no
// quota, no events and a no-op logger.
func (d Deps) WithDefaults() Deps {
	if d.Authz == nil {
		d.Authz = authz.NewAuthorizer(d.Store)
	}
	if d.Limits == nil {
		d.Limits = limits.NoLimits{}
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Require checks that the context's actor holds at least min in org
func (d Deps) Require(ctx context.Context, org types.OrgID, min types.Role) error {
	return d.Authz.Require(ctx, org, authz.ActorFrom(ctx), min)
}

// RequireQuota checks that the actor may write to org and that org may own
// one more resource
func (d Deps) RequireQuota(ctx context.Context, org types.OrgID, resource types.Resource) error {
	if err := d.Require(ctx, org, types.RoleMember); err != nil {
		return err
	}
	return limits.Enforce(ctx, d.Limits, org, resource)
}

// EnforceQuotaIn locks org inside the transaction q and checks its quota
// again, so concurrent creates cannot both pass a check made before commit
func (d Deps) EnforceQuotaIn(ctx context.Context, q database.Queries, org types.OrgID, resource types.Resource) error {
	if _, err := q.LockOrganization(ctx, org); err != nil {
		return err
	}
	return limits.EnforceWithin(ctx, d.Limits, q, org, resource)
}

// Publish hands e to the event sink. It runs after commit; failures are
// logged and never reach the caller.
func (d Deps) Publish(ctx context.Context, e events.Event) {
	if err := d.Events.Publish(ctx, e); err != nil {
		d.Logger.Warn("failed to publish event",
			zap.String("event_type", string(e.Type())),
			zap.Int("board_id", e.Board().ToInt()),
			zap.Error(err))
	}
}
