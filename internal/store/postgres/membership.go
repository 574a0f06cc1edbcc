package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookmehq/bookme/internal/domain"
)

type MembershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{pool: pool}
}

func (r *MembershipRepo) GetActive(ctx context.Context, tenantID, principalID uuid.UUID) (*domain.Membership, error) {
	var m domain.Membership

	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, principal_id, role_id, is_active, joined_at, updated_at
		 FROM memberships
		 WHERE tenant_id = $1 AND principal_id = $2 AND is_active`,
		tenantID, principalID,
	).Scan(&m.ID, &m.TenantID, &m.PrincipalID, &m.RoleID, &m.IsActive, &m.JoinedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("membershipRepo.GetActive: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("membershipRepo.GetActive: %w", err)
	}

	return &m, nil
}

func (r *MembershipRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, principal_id, role_id, is_active, joined_at, updated_at
		 FROM memberships WHERE tenant_id = $1 ORDER BY joined_at`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("membershipRepo.ListByTenant: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows, "membershipRepo.ListByTenant")
}

func (r *MembershipRepo) ListByPrincipal(ctx context.Context, principalID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, principal_id, role_id, is_active, joined_at, updated_at
		 FROM memberships WHERE principal_id = $1 ORDER BY joined_at`,
		principalID,
	)
	if err != nil {
		return nil, fmt.Errorf("membershipRepo.ListByPrincipal: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows, "membershipRepo.ListByPrincipal")
}

func (r *MembershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	// The role must belong to the same tenant; a cross-tenant role id is a
	// caller bug surfaced as not-found, not a grant.
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE tenant_id = $1 AND id = $2)`,
		m.TenantID, m.RoleID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("membershipRepo.Create: role check: %w", err)
	}
	if !exists {
		return fmt.Errorf("membershipRepo.Create: role: %w", domain.ErrNotFound)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO memberships (id, tenant_id, principal_id, role_id, is_active, joined_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.TenantID, m.PrincipalID, m.RoleID, m.IsActive, m.JoinedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "memberships_active_pair_idx") {
			return fmt.Errorf("membershipRepo.Create: active membership exists: %w", domain.ErrConflict)
		}
		return fmt.Errorf("membershipRepo.Create: %w", err)
	}

	return nil
}

func (r *MembershipRepo) UpdateRole(ctx context.Context, tenantID, id, roleID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("membershipRepo.UpdateRole: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE tenant_id = $1 AND id = $2)`,
		tenantID, roleID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("membershipRepo.UpdateRole: role check: %w", err)
	}
	if !exists {
		return fmt.Errorf("membershipRepo.UpdateRole: role: %w", domain.ErrNotFound)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE memberships SET role_id = $1, updated_at = now()
		 WHERE tenant_id = $2 AND id = $3`,
		roleID, tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("membershipRepo.UpdateRole: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membershipRepo.UpdateRole: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("membershipRepo.UpdateRole: commit: %w", err)
	}

	return nil
}

// Deactivate soft-removes a membership, preserving audit history.
func (r *MembershipRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE memberships SET is_active = false, updated_at = now()
		 WHERE tenant_id = $1 AND id = $2 AND is_active`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("membershipRepo.Deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membershipRepo.Deactivate: %w", domain.ErrNotFound)
	}

	return nil
}

func scanMemberships(rows pgx.Rows, op string) ([]*domain.Membership, error) {
	var memberships []*domain.Membership
	for rows.Next() {
		var m domain.Membership

		err := rows.Scan(&m.ID, &m.TenantID, &m.PrincipalID, &m.RoleID, &m.IsActive, &m.JoinedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		memberships = append(memberships, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return memberships, nil
}
