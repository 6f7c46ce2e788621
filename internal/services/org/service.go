package org

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/authz"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Service defines organization and membership operations
type Service interface {
	// Read operations
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)
	ListMembers(ctx context.Context, org types.OrgID) ([]*models.Membership, error)
	GetQuota(ctx context.Context, org types.OrgID, resource types.Resource) (limits.Quota, error)

	// Write operations
	CreateOrganization(ctx context.Context, name string) (*models.Organization, error)
	AddMember(ctx context.Context, req AddMemberRequest) error
	RemoveMember(ctx context.Context, org types.OrgID, user types.UserID) error
}

// AddMemberRequest grants or changes a user's role
type AddMemberRequest struct {
	OrgID  types.OrgID
	UserID types.UserID
	Role   types.Role
}

type service struct {
	services.Deps
}

// NewService creates a new organization service
func NewService(deps services.Deps) Service {
	return &service{Deps: deps.WithDefaults()}
}

// ListOrganizations lists the organizations the actor belongs to
func (s *service) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	actor := authz.ActorFrom(ctx)
	if actor == "" {
		return nil, ErrNoActor
	}
	return s.Store.ListOrganizationsForUser(ctx, actor)
}

// ListMembers lists an organization's memberships
func (s *service) ListMembers(ctx context.Context, org types.OrgID) ([]*models.Membership, error) {
	if org <= 0 {
		return nil, ErrInvalidOrgID
	}
	if err := s.Require(ctx, org, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.Store.ListMemberships(ctx, org)
}

// GetQuota reports how much of resource the organization uses and may use
func (s *service) GetQuota(ctx context.Context, org types.OrgID, resource types.Resource) (limits.Quota, error) {
	if org <= 0 {
		return limits.Quota{}, ErrInvalidOrgID
	}
	if !resource.Valid() {
		return limits.Quota{}, ErrInvalidResource
	}
	if err := s.Require(ctx, org, types.RoleViewer); err != nil {
		return limits.Quota{}, err
	}
	return s.Limits.CheckQuota(ctx, org, resource)
}

// CreateOrganization creates an organization owned by the actor
func (s *service) CreateOrganization(ctx context.Context, name string) (*models.Organization, error) {
	actor := authz.ActorFrom(ctx)
	if actor == "" {
		return nil, ErrNoActor
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(name) > 100 {
		return nil, ErrNameTooLong
	}

	var org *models.Organization
	err := database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		var err error
		org, err = q.CreateOrganization(ctx, name)
		if err != nil {
			return err
		}
		return q.UpsertMembership(ctx, org.ID, actor, types.RoleOwner)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.Logger.Info("organization created",
		zap.Int("org_id", org.ID.ToInt()),
		zap.String("owner", actor.String()))
	return org, nil
}

// AddMember grants a role, or changes an existing member's role. Admins
// manage members; only owners grant or take away ownership.
func (s *service) AddMember(ctx context.Context, req AddMemberRequest) error {
	if err := validateAddMember(req); err != nil {
		return err
	}
	if err := s.Require(ctx, req.OrgID, types.RoleAdmin); err != nil {
		return err
	}
	actorRole, err := s.Authz.Role(ctx, req.OrgID, authz.ActorFrom(ctx))
	if err != nil {
		return err
	}

	return database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		current, err := roleOf(ctx, q, req.OrgID, req.UserID)
		if err != nil {
			return err
		}
		if (req.Role == types.RoleOwner || current == types.RoleOwner) && actorRole != types.RoleOwner {
			return fmt.Errorf("only owners manage ownership: %w", models.ErrForbidden)
		}
		if current == types.RoleOwner && req.Role != types.RoleOwner {
			if err := keepAnOwner(ctx, q, req.OrgID); err != nil {
				return err
			}
		}
		return q.UpsertMembership(ctx, req.OrgID, req.UserID, req.Role)
	})
}

// RemoveMember removes a user from an organization. Members may always
// remove themselves; removing someone else takes an admin, or an owner when
// the target is an owner.
func (s *service) RemoveMember(ctx context.Context, org types.OrgID, user types.UserID) error {
	if org <= 0 {
		return ErrInvalidOrgID
	}
	if user == "" {
		return ErrInvalidUserID
	}
	actor := authz.ActorFrom(ctx)
	self := user == actor
	if !self {
		if err := s.Require(ctx, org, types.RoleAdmin); err != nil {
			return err
		}
	}
	actorRole, err := s.Authz.Role(ctx, org, actor)
	if err != nil {
		return err
	}

	return database.RunInTx(ctx, s.Store, func(q database.Queries) error {
		current, err := roleOf(ctx, q, org, user)
		if err != nil {
			return err
		}
		if current == types.RoleNone {
			return fmt.Errorf("member %s: %w", user, models.ErrNotFound)
		}
		if current == types.RoleOwner {
			if !self && actorRole != types.RoleOwner {
				return fmt.Errorf("only owners remove owners: %w", models.ErrForbidden)
			}
			if err := keepAnOwner(ctx, q, org); err != nil {
				return err
			}
		}
		return q.DeleteMembership(ctx, org, user)
	})
}

// roleOf reads a member's role through q so it sees the transaction
func roleOf(ctx context.Context, q database.Queries, org types.OrgID, user types.UserID) (types.Role, error) {
	if _, err := q.GetOrganization(ctx, org); err != nil {
		return types.RoleNone, err
	}
	return authz.NewAuthorizer(q).Role(ctx, org, user)
}

// keepAnOwner fails when org has a single owner left
func keepAnOwner(ctx context.Context, q database.Queries, org types.OrgID) error {
	owners, err := q.CountOwners(ctx, org)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

func validateAddMember(req AddMemberRequest) error {
	if req.OrgID <= 0 {
		return ErrInvalidOrgID
	}
	if strings.TrimSpace(req.UserID.String()) == "" {
		return ErrInvalidUserID
	}
	if req.Role < types.RoleViewer || req.Role > types.RoleOwner {
		return ErrInvalidRole
	}
	return nil
}
