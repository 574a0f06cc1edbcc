package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TenantStatus is the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantStatusTrial     TenantStatus = "trial"
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusArchived  TenantStatus = "archived"
)

// Valid reports whether s is one of the known lifecycle states.
func (s TenantStatus) Valid() bool {
	switch s {
	case TenantStatusTrial, TenantStatusActive, TenantStatusSuspended, TenantStatusArchived:
		return true
	}
	return false
}

// Admissible reports whether a tenant in this state may admit principals to
// its admin surface. Suspended and archived tenants still resolve (resolution
// is a pure lookup) but refuse admission.
func (s TenantStatus) Admissible() bool {
	return s == TenantStatusTrial || s == TenantStatusActive
}

// Tenant is an isolated customer account. PartitionName is the storage
// partition (Postgres schema) assigned at provisioning; it is immutable,
// since stored cross-references are keyed by it.
type Tenant struct {
	ID            uuid.UUID
	Name          string
	PartitionName string
	Status        TenantStatus
	ContactEmail  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoutingKey maps one hostname to one tenant. A hostname is owned by at most
// one tenant system-wide; each tenant has exactly one primary key.
type RoutingKey struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Host      string
	IsPrimary bool
	CreatedAt time.Time
}

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status TenantStatus) error
}

type RoutingKeyRepository interface {
	GetByHost(ctx context.Context, host string) (*RoutingKey, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*RoutingKey, error)
	ListBySuffix(ctx context.Context, suffix string) ([]*RoutingKey, error)
	Create(ctx context.Context, k *RoutingKey) error
	UpdateHost(ctx context.Context, id uuid.UUID, host string) error
	SetPrimary(ctx context.Context, tenantID, id uuid.UUID) error
}

// Provision bundles everything created atomically when a tenant registers:
// the tenant row, its primary routing key, its five system roles, and the
// storage partition. Either all of it becomes observable or none of it does;
// a tenant without a routing key would be permanently unreachable.
type Provision struct {
	Tenant     *Tenant
	PrimaryKey *RoutingKey
	Roles      []*Role
}

// TenantProvisioner is the transactional boundary around tenant creation and
// teardown. Implemented by the postgres store.
type TenantProvisioner interface {
	Provision(ctx context.Context, p Provision) error

	// Teardown irreversibly deletes the tenant, its routing keys, roles and
	// memberships, and drops the storage partition. Returns the deleted
	// tenant and the hostnames it owned so callers can invalidate caches.
	Teardown(ctx context.Context, tenantID uuid.UUID) (*Tenant, []string, error)
}
