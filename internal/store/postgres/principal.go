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

type PrincipalRepo struct {
	pool *pgxpool.Pool
}

func NewPrincipalRepo(pool *pgxpool.Pool) *PrincipalRepo {
	return &PrincipalRepo{pool: pool}
}

const principalColumns = `id, email, password_hash, first_name, last_name, is_active,
	platform_owner, platform_operator, admin_surface_eligible,
	created_at, updated_at, last_login_at`

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var p domain.Principal
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FirstName, &p.LastName, &p.IsActive,
		&p.PlatformOwner, &p.PlatformOperator, &p.AdminSurfaceEligible,
		&p.CreatedAt, &p.UpdatedAt, &p.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PrincipalRepo) Create(ctx context.Context, p *domain.Principal) error {
	p.Normalize()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO principals (id, email, password_hash, first_name, last_name, is_active,
		   platform_owner, platform_operator, admin_surface_eligible, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.IsActive,
		p.PlatformOwner, p.PlatformOperator, p.AdminSurfaceEligible, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "principals_email_key") {
			return fmt.Errorf("principalRepo.Create: email %q: %w", p.Email, domain.ErrConflict)
		}
		return fmt.Errorf("principalRepo.Create: %w", err)
	}

	return nil
}

func (r *PrincipalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Principal, error) {
	p, err := scanPrincipal(r.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("principalRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("principalRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *PrincipalRepo) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	p, err := scanPrincipal(r.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("principalRepo.GetByEmail: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("principalRepo.GetByEmail: %w", err)
	}

	return p, nil
}

func (r *PrincipalRepo) Update(ctx context.Context, p *domain.Principal) error {
	p.Normalize()

	tag, err := r.pool.Exec(ctx,
		`UPDATE principals
		 SET email = $1, first_name = $2, last_name = $3, is_active = $4,
		     platform_owner = $5, platform_operator = $6, admin_surface_eligible = $7,
		     updated_at = now()
		 WHERE id = $8`,
		p.Email, p.FirstName, p.LastName, p.IsActive,
		p.PlatformOwner, p.PlatformOperator, p.AdminSurfaceEligible, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "principals_email_key") {
			return fmt.Errorf("principalRepo.Update: email %q: %w", p.Email, domain.ErrConflict)
		}
		return fmt.Errorf("principalRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("principalRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *PrincipalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM principals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("principalRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("principalRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *PrincipalRepo) List(ctx context.Context, limit, offset int) ([]*domain.Principal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+principalColumns+` FROM principals ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("principalRepo.List: %w", err)
	}
	defer rows.Close()

	var principals []*domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("principalRepo.List: scan: %w", err)
		}
		principals = append(principals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("principalRepo.List: rows: %w", err)
	}

	return principals, nil
}

func (r *PrincipalRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE principals SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("principalRepo.UpdateLastLogin: %w", err)
	}

	return nil
}
