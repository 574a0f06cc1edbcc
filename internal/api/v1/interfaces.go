package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/rolesync"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tenants() domain.TenantRepository
	RoutingKeys() domain.RoutingKeyRepository
	Principals() domain.PrincipalRepository
	Memberships() domain.MembershipRepository
	Roles() domain.RoleRepository
	Audit() domain.AuditRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// TenantDirectory abstracts tenant provisioning and routing-key management.
// *tenancy.Directory satisfies this interface.
type TenantDirectory interface {
	Register(ctx context.Context, req tenancy.RegisterTenant) (*domain.Tenant, error)
	AddRoutingKey(ctx context.Context, tenantID uuid.UUID, host string) (*domain.RoutingKey, error)
	SetPrimary(ctx context.Context, tenantID, keyID uuid.UUID) error
	Teardown(ctx context.Context, tenantID, actorID uuid.UUID) error
}

// PermissionResolver abstracts capability checks for handler testing.
// *authz.Resolver satisfies this interface.
type PermissionResolver interface {
	Can(ctx context.Context, p *domain.Principal, scope tenancy.Scope, cap domain.Capability) (bool, error)
}

// RoleResyncer abstracts the system-role maintainer for handler testing.
// *rolesync.Maintainer satisfies this interface.
type RoleResyncer interface {
	Resync(ctx context.Context, defs []domain.RoleDefinition, dryRun bool) (*rolesync.Report, error)
}
