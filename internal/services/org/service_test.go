package org

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/testutil"
	"github.com/thenoetrevino/tablero/internal/types"
)

func setupService(t *testing.T) (*testutil.Fixture, Service) {
	t.Helper()
	f := testutil.NewFixture(t)
	return f, NewService(services.Deps{Store: f.Store})
}

func roleIn(t *testing.T, f *testutil.Fixture, user types.UserID) types.Role {
	t.Helper()
	m, err := f.Store.GetMembership(context.Background(), f.Org.ID, user)
	if err != nil {
		return types.RoleNone
	}
	return m.Role
}

func TestCreateOrganization_CreatorOwns(t *testing.T) {
	t.Parallel()
	f, svc := setupService(t)

	org, err := svc.CreateOrganization(testutil.As(testutil.Stranger), "  Initech ")
	require.NoError(t, err)
	assert.Equal(t, "Initech", org.Name)

	m, err := f.Store.GetMembership(context.Background(), org.ID, testutil.Stranger)
	require.NoError(t, err)
	assert.Equal(t, types.RoleOwner, m.Role)

	orgs, err := svc.ListOrganizations(testutil.As(testutil.Stranger))
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, org.ID, orgs[0].ID)

	_, err = svc.CreateOrganization(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNoActor)
	_, err = svc.CreateOrganization(testutil.As(testutil.Stranger), " ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestAddMember(t *testing.T) {
	t.Parallel()
	f, svc := setupService(t)

	tests := []struct {
		name  string
		actor types.UserID
		user  types.UserID
		role  types.Role
		want  error
	}{
		{"member cannot invite", testutil.Member, "ann", types.RoleViewer, models.ErrForbidden},
		{"owner invites", testutil.Owner, "ann", types.RoleAdmin, nil},
		{"admin invites", "ann", "bob", types.RoleMember, nil},
		{"admin cannot grant owner", "ann", "bob", types.RoleOwner, models.ErrForbidden},
		{"admin cannot demote owner", "ann", testutil.Owner, types.RoleViewer, models.ErrForbidden},
		{"last owner cannot step down", testutil.Owner, testutil.Owner, types.RoleAdmin, ErrLastOwner},
		{"owner promotes", testutil.Owner, "bob", types.RoleOwner, nil},
		{"invalid role", testutil.Owner, "bob", types.RoleNone, ErrInvalidRole},
	}
	// cases build on each other
	for _, tt := range tests {
		err := svc.AddMember(testutil.As(tt.actor), AddMemberRequest{OrgID: f.Org.ID, UserID: tt.user, Role: tt.role})
		if tt.want == nil {
			assert.NoError(t, err, tt.name)
			continue
		}
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	assert.Equal(t, types.RoleAdmin, roleIn(t, f, "ann"))
	assert.Equal(t, types.RoleOwner, roleIn(t, f, "bob"))
	assert.Equal(t, types.RoleOwner, roleIn(t, f, testutil.Owner))
}

func TestRemoveMember(t *testing.T) {
	t.Parallel()
	f, svc := setupService(t)

	err := svc.RemoveMember(testutil.As(testutil.Member), f.Org.ID, testutil.Viewer)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// leaving is always allowed
	require.NoError(t, svc.RemoveMember(testutil.As(testutil.Viewer), f.Org.ID, testutil.Viewer))
	assert.Equal(t, types.RoleNone, roleIn(t, f, testutil.Viewer))

	err = svc.RemoveMember(testutil.As(testutil.Owner), f.Org.ID, testutil.Owner)
	assert.ErrorIs(t, err, ErrLastOwner)

	err = svc.RemoveMember(testutil.As(testutil.Owner), f.Org.ID, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.RemoveMember(testutil.As(testutil.Owner), f.Org.ID, testutil.Member))
	members, err := svc.ListMembers(testutil.As(testutil.Owner), f.Org.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestGetQuota(t *testing.T) {
	t.Parallel()
	f := testutil.NewFixture(t)
	quota := limits.NewAuthority(f.Store, map[string]config.PlanLimits{
		models.PlanFree: {Boards: 3, Columns: 10, Cards: config.Unlimited},
	})
	svc := NewService(services.Deps{Store: f.Store, Limits: quota})

	q, err := svc.GetQuota(testutil.As(testutil.Viewer), f.Org.ID, types.ResourceBoards)
	require.NoError(t, err)
	assert.Equal(t, limits.Quota{Allowed: true, Current: 1, Max: 3}, q)

	q, err = svc.GetQuota(testutil.As(testutil.Viewer), f.Org.ID, types.ResourceCards)
	require.NoError(t, err)
	assert.True(t, q.Allowed)
	assert.Equal(t, config.Unlimited, q.Max)

	_, err = svc.GetQuota(testutil.As(testutil.Viewer), f.Org.ID, "widgets")
	assert.ErrorIs(t, err, ErrInvalidResource)
	_, err = svc.GetQuota(testutil.As(testutil.Stranger), f.Org.ID, types.ResourceBoards)
	assert.ErrorIs(t, err, models.ErrForbidden)
}
