package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Membership binds one principal to one tenant with exactly one role. At most
// one active membership exists per (tenant, principal) pair; removal
// deactivates rather than deletes, preserving audit history.
type Membership struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	PrincipalID uuid.UUID
	RoleID      uuid.UUID
	IsActive    bool
	JoinedAt    time.Time
	UpdatedAt   time.Time
}

// MembershipRepository accessors take tenantID as a mandatory leading
// parameter. There is deliberately no way to query memberships without
// naming the tenant; an unscoped lookup is the bug class this interface
// exists to prevent.
type MembershipRepository interface {
	// GetActive returns the active membership for the pair, or ErrNotFound.
	GetActive(ctx context.Context, tenantID, principalID uuid.UUID) (*Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Membership, error)
	ListByPrincipal(ctx context.Context, principalID uuid.UUID) ([]*Membership, error)

	// Create fails with ErrConflict when an active membership already exists
	// for the (tenant, principal) pair.
	Create(ctx context.Context, m *Membership) error
	UpdateRole(ctx context.Context, tenantID, id, roleID uuid.UUID) error
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
}
