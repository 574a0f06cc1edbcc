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

type TenantRepo struct {
	pool *pgxpool.Pool
}

func NewTenantRepo(pool *pgxpool.Pool) *TenantRepo {
	return &TenantRepo{pool: pool}
}

func (r *TenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	var t domain.Tenant

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, partition_name, status, contact_email, created_at, updated_at
		 FROM tenants WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.PartitionName, &t.Status, &t.ContactEmail, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TenantRepo) List(ctx context.Context) ([]*domain.Tenant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, partition_name, status, contact_email, created_at, updated_at
		 FROM tenants ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.List: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		var t domain.Tenant

		err = rows.Scan(&t.ID, &t.Name, &t.PartitionName, &t.Status, &t.ContactEmail, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("tenantRepo.List: scan: %w", err)
		}

		tenants = append(tenants, &t)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.List: rows: %w", err)
	}

	return tenants, nil
}

func (r *TenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	if !status.Valid() {
		return fmt.Errorf("tenantRepo.UpdateStatus: invalid status %q", status)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE tenants SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("tenantRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenantRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

// Provision creates the tenant row, its primary routing key, its system roles
// and the storage partition in one transaction. A tenant with zero routing
// keys is never observable.
func (s *Store) Provision(ctx context.Context, p domain.Provision) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store.Provision: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t := p.Tenant
	_, err = tx.Exec(ctx,
		`INSERT INTO tenants (id, name, partition_name, status, contact_email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Name, t.PartitionName, t.Status, t.ContactEmail, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "tenants_partition_name_key") {
			return fmt.Errorf("store.Provision: partition %q: %w", t.PartitionName, domain.ErrConflict)
		}
		return fmt.Errorf("store.Provision: tenant: %w", err)
	}

	k := p.PrimaryKey
	_, err = tx.Exec(ctx,
		`INSERT INTO routing_keys (id, tenant_id, host, is_primary, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		k.ID, k.TenantID, k.Host, k.IsPrimary, k.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "routing_keys_host_key") {
			return fmt.Errorf("store.Provision: host %q: %w", k.Host, domain.ErrDuplicateRoutingKey)
		}
		return fmt.Errorf("store.Provision: routing key: %w", err)
	}

	for _, role := range p.Roles {
		_, err = tx.Exec(ctx,
			`INSERT INTO roles (id, tenant_id, name, description, capabilities, is_system, protected, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			role.ID, role.TenantID, role.Name, role.Description, role.Capabilities.Strings(),
			role.System, role.Protected, role.CreatedAt, role.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("store.Provision: role %q: %w", role.Name, err)
		}
	}

	// Partition names come from a validated tenant label, but quote anyway.
	_, err = tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{t.PartitionName}.Sanitize())
	if err != nil {
		return fmt.Errorf("store.Provision: create partition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store.Provision: commit: %w", err)
	}

	return nil
}

// Teardown irreversibly deletes a tenant and drops its storage partition in
// one transaction.
func (s *Store) Teardown(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, []string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("store.Teardown: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var t domain.Tenant
	err = tx.QueryRow(ctx,
		`SELECT id, name, partition_name, status, contact_email, created_at, updated_at
		 FROM tenants WHERE id = $1 FOR UPDATE`,
		tenantID,
	).Scan(&t.ID, &t.Name, &t.PartitionName, &t.Status, &t.ContactEmail, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("store.Teardown: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store.Teardown: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT host FROM routing_keys WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("store.Teardown: hosts: %w", err)
	}
	var hosts []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("store.Teardown: scan host: %w", err)
		}
		hosts = append(hosts, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store.Teardown: hosts: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM memberships WHERE tenant_id = $1`,
		`DELETE FROM roles WHERE tenant_id = $1`,
		`DELETE FROM routing_keys WHERE tenant_id = $1`,
		`DELETE FROM tenants WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, tenantID); err != nil {
			return nil, nil, fmt.Errorf("store.Teardown: %w", err)
		}
	}

	_, err = tx.Exec(ctx, "DROP SCHEMA IF EXISTS "+pgx.Identifier{t.PartitionName}.Sanitize()+" CASCADE")
	if err != nil {
		return nil, nil, fmt.Errorf("store.Teardown: drop partition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("store.Teardown: commit: %w", err)
	}

	return &t, hosts, nil
}
