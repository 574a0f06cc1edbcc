package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookmehq/bookme/internal/domain"
)

type Store struct {
	pool        *pgxpool.Pool
	tenants     *TenantRepo
	routingKeys *RoutingKeyRepo
	principals  *PrincipalRepo
	memberships *MembershipRepo
	roles       *RoleRepo
	audit       *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:        pool,
		tenants:     NewTenantRepo(pool),
		routingKeys: NewRoutingKeyRepo(pool),
		principals:  NewPrincipalRepo(pool),
		memberships: NewMembershipRepo(pool),
		roles:       NewRoleRepo(pool),
		audit:       NewAuditRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Tenants() domain.TenantRepository         { return s.tenants }
func (s *Store) RoutingKeys() domain.RoutingKeyRepository { return s.routingKeys }
func (s *Store) Principals() domain.PrincipalRepository   { return s.principals }
func (s *Store) Memberships() domain.MembershipRepository { return s.memberships }
func (s *Store) Roles() domain.RoleRepository             { return s.roles }
func (s *Store) Audit() domain.AuditRepository            { return s.audit }

// isUniqueViolation reports whether err is a unique-constraint violation on
// the named constraint (any constraint when name is empty).
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
