package database

import (
	"context"
	"fmt"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// OrgRepo handles organization and membership persistence
type OrgRepo struct {
	db DBTX
}

// CreateOrganization inserts a new organization
func (r *OrgRepo) CreateOrganization(ctx context.Context, name string) (*models.Organization, error) {
	org := &models.Organization{Name: name, CreatedAt: time.Now().UTC()}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO organizations (name, created_at) VALUES (?, ?) RETURNING id`,
		name, org.CreatedAt,
	).Scan(&org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// GetOrganization retrieves an organization by its ID
func (r *OrgRepo) GetOrganization(ctx context.Context, id types.OrgID) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		return nil, notFound(err, "organization", id)
	}
	return org, nil
}

// LockOrganization reads an organization. SQLite transactions are immediate,
// so the write lock is already held.
func (r *OrgRepo) LockOrganization(ctx context.Context, id types.OrgID) (*models.Organization, error) {
	return r.GetOrganization(ctx, id)
}

// ListOrganizationsForUser returns every organization user belongs to
func (r *OrgRepo) ListOrganizationsForUser(ctx context.Context, user types.UserID) ([]*models.Organization, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, o.name, o.created_at
		 FROM organizations o JOIN memberships m ON m.org_id = o.id
		 WHERE m.user_id = ? ORDER BY o.id`, user)
	if err != nil {
		return nil, fmt.Errorf("querying organizations for user: %w", err)
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning organization row: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// UpsertMembership grants role to user, replacing any previous role
func (r *OrgRepo) UpsertMembership(ctx context.Context, org types.OrgID, user types.UserID, role types.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (org_id, user_id, role, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (org_id, user_id) DO UPDATE SET role = excluded.role`,
		org, user, role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}
	return nil
}

// GetMembership returns the membership of user in org
func (r *OrgRepo) GetMembership(ctx context.Context, org types.OrgID, user types.UserID) (*models.Membership, error) {
	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx,
		`SELECT org_id, user_id, role, created_at FROM memberships WHERE org_id = ? AND user_id = ?`,
		org, user,
	).Scan(&m.OrgID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, notFound(err, "membership", fmt.Sprintf("%d/%s", org, user))
	}
	return m, nil
}

// ListMemberships returns every member of org, highest role first
func (r *OrgRepo) ListMemberships(ctx context.Context, org types.OrgID) ([]*models.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT org_id, user_id, role, created_at FROM memberships
		 WHERE org_id = ? ORDER BY role DESC, user_id`, org)
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", err)
	}
	defer rows.Close()

	members := []*models.Membership{}
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.OrgID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// DeleteMembership removes user from org
func (r *OrgRepo) DeleteMembership(ctx context.Context, org types.OrgID, user types.UserID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE org_id = ? AND user_id = ?`, org, user)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return requireAffected(res, "membership", fmt.Sprintf("%d/%s", org, user))
}

// CountOwners returns how many owners org has
func (r *OrgRepo) CountOwners(ctx context.Context, org types.OrgID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE org_id = ? AND role = ?`,
		org, types.RoleOwner,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return n, nil
}
