// Package authz answers whether a user may act inside an organization.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Authorizer is the membership authority consulted before every operation.
type Authorizer interface {
	// Role returns the user's role in org, or RoleNone when they are not a
	// member
	Role(ctx context.Context, org types.OrgID, user types.UserID) (types.Role, error)

	// Require returns models.ErrForbidden unless the user holds at least min
	Require(ctx context.Context, org types.OrgID, user types.UserID, min types.Role) error
}

// MembershipReader is the slice of the datastore the authorizer needs
type MembershipReader interface {
	GetMembership(ctx context.Context, org types.OrgID, user types.UserID) (*models.Membership, error)
}

type storeAuthorizer struct {
	memberships MembershipReader
}

// NewAuthorizer returns an Authorizer backed by stored memberships
func NewAuthorizer(memberships MembershipReader) Authorizer {
	return &storeAuthorizer{memberships: memberships}
}

func (a *storeAuthorizer) Role(ctx context.Context, org types.OrgID, user types.UserID) (types.Role, error) {
	if user == "" {
		return types.RoleNone, nil
	}
	m, err := a.memberships.GetMembership(ctx, org, user)
	if errors.Is(err, models.ErrNotFound) {
		return types.RoleNone, nil
	}
	if err != nil {
		return types.RoleNone, fmt.Errorf("failed to read membership: %w", err)
	}
	return m.Role, nil
}

func (a *storeAuthorizer) Require(ctx context.Context, org types.OrgID, user types.UserID, min types.Role) error {
	role, err := a.Role(ctx, org, user)
	if err != nil {
		return err
	}
	if role == types.RoleNone {
		return fmt.Errorf("%s is not a member of organization %d: %w", user, org, models.ErrForbidden)
	}
	if !role.AtLeast(min) {
		return fmt.Errorf("%s is %s, %s required: %w", user, role, min, models.ErrForbidden)
	}
	return nil
}

// AllowAll grants every user the owner role. It backs single-user local
// tooling and tests that do not exercise authorization.
type AllowAll struct{}

func (AllowAll) Role(context.Context, types.OrgID, types.UserID) (types.Role, error) {
	return types.RoleOwner, nil
}

func (AllowAll) Require(context.Context, types.OrgID, types.UserID, types.Role) error {
	return nil
}

var _ Authorizer = AllowAll{}
