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

type RoleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *RoleRepo {
	return &RoleRepo{pool: pool}
}

const roleColumns = `id, tenant_id, name, description, capabilities, is_system, protected, created_at, updated_at`

func scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		r     domain.Role
		codes []string
	)
	err := row.Scan(&r.ID, &r.TenantID, &r.Name, &r.Description, &codes,
		&r.System, &r.Protected, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Capabilities = domain.CapabilitySetFromStrings(codes)
	return &r, nil
}

func (r *RoleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 AND id = $2`,
		tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("roleRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("roleRepo.GetByID: %w", err)
	}

	return role, nil
}

func (r *RoleRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*domain.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 AND name = $2`,
		tenantID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("roleRepo.GetByName: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("roleRepo.GetByName: %w", err)
	}

	return role, nil
}

func (r *RoleRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 ORDER BY name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("roleRepo.ListByTenant: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows, "roleRepo.ListByTenant")
}

func (r *RoleRepo) ListSystem(ctx context.Context, tenantID uuid.UUID) ([]*domain.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 AND is_system ORDER BY name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("roleRepo.ListSystem: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows, "roleRepo.ListSystem")
}

func (r *RoleRepo) Create(ctx context.Context, role *domain.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, tenant_id, name, description, capabilities, is_system, protected, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		role.ID, role.TenantID, role.Name, role.Description, role.Capabilities.Strings(),
		role.System, role.Protected, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "roles_tenant_id_name_key") {
			return fmt.Errorf("roleRepo.Create: role %q: %w", role.Name, domain.ErrConflict)
		}
		return fmt.Errorf("roleRepo.Create: %w", err)
	}

	return nil
}

// UpdateCapabilities rewrites the capability set under a row lock. Permission
// reads within a tenant are serialized against this write, so a role being
// edited is never read half-updated.
func (r *RoleRepo) UpdateCapabilities(ctx context.Context, tenantID, id uuid.UUID, caps domain.CapabilitySet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("roleRepo.UpdateCapabilities: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM roles WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, id,
	).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("roleRepo.UpdateCapabilities: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("roleRepo.UpdateCapabilities: lock: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE roles SET capabilities = $1, updated_at = now()
		 WHERE tenant_id = $2 AND id = $3`,
		caps.Strings(), tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("roleRepo.UpdateCapabilities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("roleRepo.UpdateCapabilities: commit: %w", err)
	}

	return nil
}

func (r *RoleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("roleRepo.Delete: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var system bool
	err = tx.QueryRow(ctx,
		`SELECT is_system FROM roles WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, id,
	).Scan(&system)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("roleRepo.Delete: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("roleRepo.Delete: %w", err)
	}
	if system {
		return fmt.Errorf("roleRepo.Delete: %w", domain.ErrProtectedRole)
	}

	var inUse bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM memberships WHERE tenant_id = $1 AND role_id = $2 AND is_active)`,
		tenantID, id,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("roleRepo.Delete: usage check: %w", err)
	}
	if inUse {
		return fmt.Errorf("roleRepo.Delete: role has active memberships: %w", domain.ErrConflict)
	}

	_, err = tx.Exec(ctx, `DELETE FROM roles WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("roleRepo.Delete: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("roleRepo.Delete: commit: %w", err)
	}

	return nil
}

func scanRoles(rows pgx.Rows, op string) ([]*domain.Role, error) {
	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return roles, nil
}
