// Package authz evaluates whether a principal may perform a capability in a
// resolved access scope, and guards the two admin surfaces built on top of
// that decision.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// Resolver answers Can(principal, scope, capability). It is a pure,
// idempotent query with no side effects, cheap enough to call once per UI
// element; callers may cache per request but never across requests.
type Resolver struct {
	memberships domain.MembershipRepository
	roles       domain.RoleRepository
}

func NewResolver(memberships domain.MembershipRepository, roles domain.RoleRepository) *Resolver {
	return &Resolver{memberships: memberships, roles: roles}
}

// Can applies the layered decision, first match wins:
//
//  1. Platform scope: owners are allowed everything; operators everything
//     except platform-sensitive capabilities. Nobody else gets anything.
//  2. Tenant scope: an active membership whose role contains the capability,
//     and nothing else. Platform flags are deliberately not consulted here:
//     a platform owner without a membership has no tenant access, so there is
//     no unaudited back door into tenant data.
//  3. Everything remaining denies. There is no default-allow path.
func (r *Resolver) Can(ctx context.Context, p *domain.Principal, scope tenancy.Scope, cap domain.Capability) (bool, error) {
	if p == nil || !p.IsActive || !cap.Registered() {
		return false, nil
	}

	if scope.IsPlatform() {
		if p.PlatformOwner {
			return true, nil
		}
		if p.PlatformOperator {
			return !cap.PlatformSensitive(), nil
		}
		return false, nil
	}

	tenant, ok := scope.Tenant()
	if !ok {
		return false, nil
	}

	m, err := r.memberships.GetActive(ctx, tenant.ID, p.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("authz.Can: membership: %w", err)
	}

	role, err := r.roles.GetByID(ctx, tenant.ID, m.RoleID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("authz.Can: role: %w", err)
	}

	return role.Capabilities.Contains(cap), nil
}
