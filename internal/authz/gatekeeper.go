package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// Surface is an admin surface's admission check. Admission is a function of
// the resolved scope, never of the principal's identity alone: the same
// session admitted on one surface is re-evaluated from scratch against the
// scope of every request.
//
// Per request the states are: unresolved -> {platform | tenant | rejected}
// (the binder), then Admit -> admitted or denied. No state permits retry
// within the same request.
type Surface interface {
	Name() string
	Admit(ctx context.Context, p *domain.Principal, scope tenancy.Scope) error
}

// PlatformSurface admits platform staff in the platform-wide scope only. A
// request bound to a tenant is refused unconditionally, regardless of flags.
type PlatformSurface struct{}

func (PlatformSurface) Name() string { return "platform" }

func (PlatformSurface) Admit(_ context.Context, p *domain.Principal, scope tenancy.Scope) error {
	if p == nil || !p.IsActive {
		return fmt.Errorf("authz: platform surface: %w", domain.ErrUnauthorized)
	}
	if !scope.IsPlatform() {
		return fmt.Errorf("authz: platform surface from tenant context: %w", domain.ErrPermissionDenied)
	}
	if !p.AdminSurfaceEligible {
		return fmt.Errorf("authz: platform surface: %w", domain.ErrPermissionDenied)
	}
	if !p.PlatformOwner && !p.PlatformOperator {
		return fmt.Errorf("authz: platform surface: %w", domain.ErrPermissionDenied)
	}
	return nil
}

// TenantSurface admits a tenant's own staff: the scope must be bound to a
// tenant in an admissible lifecycle state and the principal must hold an
// active membership there. Platform flags never substitute for a membership;
// a platform owner without one is denied like anyone else.
type TenantSurface struct {
	memberships domain.MembershipRepository
}

func NewTenantSurface(memberships domain.MembershipRepository) *TenantSurface {
	return &TenantSurface{memberships: memberships}
}

func (*TenantSurface) Name() string { return "tenant" }

func (s *TenantSurface) Admit(ctx context.Context, p *domain.Principal, scope tenancy.Scope) error {
	if p == nil || !p.IsActive {
		return fmt.Errorf("authz: tenant surface: %w", domain.ErrUnauthorized)
	}

	tenant, ok := scope.Tenant()
	if !ok {
		return fmt.Errorf("authz: tenant surface from platform context: %w", domain.ErrPermissionDenied)
	}
	if !tenant.Status.Admissible() {
		return fmt.Errorf("authz: tenant surface: %w", domain.ErrPermissionDenied)
	}

	_, err := s.memberships.GetActive(ctx, tenant.ID, p.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("authz: tenant surface: %w", domain.ErrPermissionDenied)
	}
	if err != nil {
		return fmt.Errorf("authz: tenant surface: %w", err)
	}

	return nil
}
