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

type RoutingKeyRepo struct {
	pool *pgxpool.Pool
}

func NewRoutingKeyRepo(pool *pgxpool.Pool) *RoutingKeyRepo {
	return &RoutingKeyRepo{pool: pool}
}

func (r *RoutingKeyRepo) GetByHost(ctx context.Context, host string) (*domain.RoutingKey, error) {
	var k domain.RoutingKey

	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, host, is_primary, created_at
		 FROM routing_keys WHERE host = $1`,
		host,
	).Scan(&k.ID, &k.TenantID, &k.Host, &k.IsPrimary, &k.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("routingKeyRepo.GetByHost: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("routingKeyRepo.GetByHost: %w", err)
	}

	return &k, nil
}

func (r *RoutingKeyRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.RoutingKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, host, is_primary, created_at
		 FROM routing_keys WHERE tenant_id = $1 ORDER BY is_primary DESC, host`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("routingKeyRepo.ListByTenant: %w", err)
	}
	defer rows.Close()

	return scanRoutingKeys(rows, "routingKeyRepo.ListByTenant")
}

func (r *RoutingKeyRepo) ListBySuffix(ctx context.Context, suffix string) ([]*domain.RoutingKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, host, is_primary, created_at
		 FROM routing_keys WHERE host LIKE '%' || $1 ORDER BY host`,
		suffix,
	)
	if err != nil {
		return nil, fmt.Errorf("routingKeyRepo.ListBySuffix: %w", err)
	}
	defer rows.Close()

	return scanRoutingKeys(rows, "routingKeyRepo.ListBySuffix")
}

func (r *RoutingKeyRepo) Create(ctx context.Context, k *domain.RoutingKey) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO routing_keys (id, tenant_id, host, is_primary, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		k.ID, k.TenantID, k.Host, k.IsPrimary, k.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "routing_keys_host_key") {
			return fmt.Errorf("routingKeyRepo.Create: host %q: %w", k.Host, domain.ErrDuplicateRoutingKey)
		}
		return fmt.Errorf("routingKeyRepo.Create: %w", err)
	}

	return nil
}

func (r *RoutingKeyRepo) UpdateHost(ctx context.Context, id uuid.UUID, host string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE routing_keys SET host = $1 WHERE id = $2`,
		host, id,
	)
	if err != nil {
		if isUniqueViolation(err, "routing_keys_host_key") {
			return fmt.Errorf("routingKeyRepo.UpdateHost: host %q: %w", host, domain.ErrDuplicateRoutingKey)
		}
		return fmt.Errorf("routingKeyRepo.UpdateHost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("routingKeyRepo.UpdateHost: %w", domain.ErrNotFound)
	}

	return nil
}

// SetPrimary promotes one routing key and demotes the tenant's current
// primary in the same transaction, so exactly one primary exists at any time.
func (r *RoutingKeyRepo) SetPrimary(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("routingKeyRepo.SetPrimary: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE routing_keys SET is_primary = false WHERE tenant_id = $1 AND is_primary`,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("routingKeyRepo.SetPrimary: demote: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE routing_keys SET is_primary = true WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("routingKeyRepo.SetPrimary: promote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("routingKeyRepo.SetPrimary: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("routingKeyRepo.SetPrimary: commit: %w", err)
	}

	return nil
}

func scanRoutingKeys(rows pgx.Rows, op string) ([]*domain.RoutingKey, error) {
	var keys []*domain.RoutingKey
	for rows.Next() {
		var k domain.RoutingKey

		err := rows.Scan(&k.ID, &k.TenantID, &k.Host, &k.IsPrimary, &k.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		keys = append(keys, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return keys, nil
}
