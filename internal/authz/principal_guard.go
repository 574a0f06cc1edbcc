package authz

import (
	"fmt"

	"github.com/bookmehq/bookme/internal/domain"
)

// PrincipalWrite describes an attempted mutation of a principal record.
// Target is nil for creates; Desired is nil for deletes. Desired carries the
// flags exactly as the client submitted them, so the guard sees attempted
// escalations instead of whatever a form layer chose to keep.
type PrincipalWrite struct {
	Target  *domain.Principal
	Desired *domain.Principal
}

// AuthorizePrincipalWrite decides whether actor may apply the write. Owners
// may do anything. Operators may create, edit and delete only principals that
// are not themselves platform-eligible, may never touch their own record, and
// any attempt to set a reserved flag fails with ErrPrivilegeEscalation: the
// write is rejected outright, never saved with the flags quietly dropped.
func AuthorizePrincipalWrite(actor *domain.Principal, w PrincipalWrite) error {
	if actor == nil || !actor.IsActive {
		return fmt.Errorf("authz: principal write: %w", domain.ErrUnauthorized)
	}
	if actor.PlatformOwner {
		return nil
	}
	if !actor.PlatformOperator {
		return fmt.Errorf("authz: principal write: %w", domain.ErrPermissionDenied)
	}

	// Escalation check comes first: setting a reserved flag without owner
	// authority is reported as an escalation attempt even when the write
	// would have been refused for another reason too.
	if w.Desired != nil && escalatesFlags(w.Target, w.Desired) {
		return fmt.Errorf("authz: principal write by operator %s: %w", actor.ID, domain.ErrPrivilegeEscalation)
	}

	if w.Target != nil {
		if w.Target.ID == actor.ID {
			return fmt.Errorf("authz: operator editing own record: %w", domain.ErrPermissionDenied)
		}
		if w.Target.PlatformEligible() {
			return fmt.Errorf("authz: operator editing platform-eligible principal: %w", domain.ErrPermissionDenied)
		}
	}

	return nil
}

// escalatesFlags reports whether desired turns on any reserved flag the
// target does not already hold (target nil means create: any flag counts).
func escalatesFlags(target, desired *domain.Principal) bool {
	var owner, operator, eligible bool
	if target != nil {
		owner = target.PlatformOwner
		operator = target.PlatformOperator
		eligible = target.AdminSurfaceEligible
	}
	return (desired.PlatformOwner && !owner) ||
		(desired.PlatformOperator && !operator) ||
		(desired.AdminSurfaceEligible && !eligible)
}
