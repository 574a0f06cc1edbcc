package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// System role names, in ascending capability order. The ordering is
// platform-defined: each role's capability set is a subset of the next.
const (
	RoleViewer   = "Viewer"
	RoleStaff    = "Staff"
	RoleManager  = "Manager"
	RoleOperator = "Operator"
	RoleOwner    = "Owner"
)

// Role is a named capability set scoped to exactly one tenant. System roles
// are regenerated identically for every tenant and carry the protected flag,
// which blocks end-user mutation; only the role hierarchy maintainer may
// rewrite them.
type Role struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Description  string
	Capabilities CapabilitySet
	System       bool
	Protected    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateCustom checks a custom role's capability set against the registry
// and the reserved list. A violation rejects the write with a named error;
// offending codes are never silently stripped.
func (r *Role) ValidateCustom(caps CapabilitySet) error {
	for _, c := range caps.Sorted() {
		if !c.Registered() {
			return fmt.Errorf("role %q: capability %q: %w", r.Name, c, ErrUnknownCapability)
		}
		if c.Reserved() {
			return fmt.Errorf("role %q: capability %q: %w", r.Name, c, ErrReservedCapability)
		}
	}
	return nil
}

// RoleDefinition is one entry of an ordered system-role target set, as
// consumed by the role hierarchy maintainer.
type RoleDefinition struct {
	Name         string
	Description  string
	Capabilities CapabilitySet
}

// ValidateChain verifies the subset-hierarchy invariant over an ordered
// definition list: defs[i].Capabilities must be contained in
// defs[i+1].Capabilities, and every code must be registered.
func ValidateChain(defs []RoleDefinition) error {
	for _, d := range defs {
		for _, c := range d.Capabilities.Sorted() {
			if !c.Registered() {
				return fmt.Errorf("role %q: capability %q: %w", d.Name, c, ErrUnknownCapability)
			}
		}
	}
	for i := 1; i < len(defs); i++ {
		if !defs[i-1].Capabilities.SubsetOf(defs[i].Capabilities) {
			return fmt.Errorf("capabilities(%s) are not a subset of capabilities(%s): %w",
				defs[i-1].Name, defs[i].Name, ErrInvariantViolation)
		}
	}
	return nil
}

// SystemRoleDefinitions returns the platform-defined five-role chain. Each
// set is built as the previous set plus additions, so the subset invariant
// holds by construction.
func SystemRoleDefinitions() []RoleDefinition {
	viewer := NewCapabilitySet(
		CapBookingView, CapCustomerView, CapServiceView, CapStaffView,
		CapResourceView, CapNotificationView, CapPaymentView,
	)

	staff := viewer.Union(
		CapBookingEdit, CapPrincipalView,
	)

	manager := staff.Union(
		CapBookingCreate, CapBookingDelete,
		CapCustomerCreate, CapCustomerEdit,
		CapServiceEdit, CapStaffEdit, CapResourceEdit,
		CapNotificationCreate, CapMembershipView,
	)

	operator := manager.Union(
		CapCustomerDelete,
		CapServiceCreate, CapServiceDelete,
		CapStaffCreate, CapStaffDelete,
		CapResourceCreate, CapResourceDelete,
		CapNotificationEdit,
		CapMembershipAssign,
		CapPrincipalCreate, CapPrincipalEdit,
		CapRoleView, CapTenantView,
	)

	owner := operator.Union(
		CapPrincipalDelete, CapMembershipRevoke,
		CapRoleCreate, CapRoleEdit, CapRoleDelete,
		CapTenantEdit, CapPaymentEdit,
	)

	return []RoleDefinition{
		{Name: RoleViewer, Description: "Read-only access to bookings, customers and reports.", Capabilities: viewer},
		{Name: RoleStaff, Description: "View schedules and manage assigned bookings.", Capabilities: staff},
		{Name: RoleManager, Description: "Run daily operations: bookings, customers, staff schedules.", Capabilities: manager},
		{Name: RoleOperator, Description: "Administer services, staff, customers and team members.", Capabilities: operator},
		{Name: RoleOwner, Description: "Full access, including roles, memberships and tenant settings.", Capabilities: owner},
	}
}

// RoleRepository accessors take tenantID as a mandatory leading parameter;
// roles are never addressable without naming their tenant.
type RoleRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Role, error)
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*Role, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Role, error)
	ListSystem(ctx context.Context, tenantID uuid.UUID) ([]*Role, error)
	Create(ctx context.Context, r *Role) error

	// UpdateCapabilities replaces the capability set inside a row-locked
	// transaction, so permission reads never observe a half-updated role.
	UpdateCapabilities(ctx context.Context, tenantID, id uuid.UUID, caps CapabilitySet) error

	// Delete removes a role. Fails with ErrProtectedRole for system roles and
	// ErrConflict while active memberships still reference it.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
