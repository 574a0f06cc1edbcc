package authz_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmehq/bookme/internal/authz"
	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/tenancy"
)

func TestPlatformSurfaceAdmit(t *testing.T) {
	t.Parallel()

	surface := authz.PlatformSurface{}
	ctx := context.Background()
	platform := tenancy.PlatformScope()

	t.Run("owner_admitted", func(t *testing.T) {
		t.Parallel()

		p := activePrincipal()
		p.PlatformOwner = true
		p.PlatformOperator = true
		p.AdminSurfaceEligible = true

		assert.NoError(t, surface.Admit(ctx, p, platform))
	})

	t.Run("operator_admitted", func(t *testing.T) {
		t.Parallel()

		p := activePrincipal()
		p.PlatformOperator = true
		p.AdminSurfaceEligible = true

		assert.NoError(t, surface.Admit(ctx, p, platform))
	})

	t.Run("eligible_without_staff_flag_denied", func(t *testing.T) {
		t.Parallel()

		p := activePrincipal()
		p.AdminSurfaceEligible = true

		err := surface.Admit(ctx, p, platform)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("staff_flag_without_eligibility_denied", func(t *testing.T) {
		t.Parallel()

		// Eligibility is necessary, never implied by the staff flags.
		p := activePrincipal()
		p.PlatformOperator = true

		err := surface.Admit(ctx, p, platform)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("tenant_scope_refused_regardless_of_flags", func(t *testing.T) {
		t.Parallel()

		p := activePrincipal()
		p.PlatformOwner = true
		p.PlatformOperator = true
		p.AdminSurfaceEligible = true

		tenant := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusActive}
		err := surface.Admit(ctx, p, tenancy.TenantScope(tenant))
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("nil_principal_unauthorized", func(t *testing.T) {
		t.Parallel()

		err := surface.Admit(ctx, nil, platform)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("inactive_principal_unauthorized", func(t *testing.T) {
		t.Parallel()

		p := activePrincipal()
		p.IsActive = false
		p.PlatformOwner = true
		p.AdminSurfaceEligible = true

		err := surface.Admit(ctx, p, platform)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestTenantSurfaceAdmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	memberOf := func(tenantID uuid.UUID) *authz.TenantSurface {
		return authz.NewTenantSurface(&mockMembershipRepo{
			getActiveFunc: func(_ context.Context, tid, pid uuid.UUID) (*domain.Membership, error) {
				if tid == tenantID {
					return &domain.Membership{TenantID: tid, PrincipalID: pid, IsActive: true}, nil
				}
				return nil, domain.ErrNotFound
			},
		})
	}

	t.Run("member_admitted", func(t *testing.T) {
		t.Parallel()

		tenant := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusActive}

		err := memberOf(tenant.ID).Admit(ctx, activePrincipal(), tenancy.TenantScope(tenant))
		assert.NoError(t, err)
	})

	t.Run("trial_tenant_admits", func(t *testing.T) {
		t.Parallel()

		tenant := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusTrial}

		err := memberOf(tenant.ID).Admit(ctx, activePrincipal(), tenancy.TenantScope(tenant))
		assert.NoError(t, err)
	})

	t.Run("suspended_tenant_refuses_members", func(t *testing.T) {
		t.Parallel()

		tenant := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusSuspended}

		err := memberOf(tenant.ID).Admit(ctx, activePrincipal(), tenancy.TenantScope(tenant))
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("platform_owner_without_membership_denied", func(t *testing.T) {
		t.Parallel()

		tenant := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusActive}
		surface := authz.NewTenantSurface(&mockMembershipRepo{
			getActiveFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.Membership, error) {
				return nil, domain.ErrNotFound
			},
		})

		p := activePrincipal()
		p.PlatformOwner = true
		p.PlatformOperator = true
		p.AdminSurfaceEligible = true

		err := surface.Admit(ctx, p, tenancy.TenantScope(tenant))
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("platform_scope_refused", func(t *testing.T) {
		t.Parallel()

		tenant := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusActive}

		err := memberOf(tenant.ID).Admit(ctx, activePrincipal(), tenancy.PlatformScope())
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("nil_principal_unauthorized", func(t *testing.T) {
		t.Parallel()

		tenant := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusActive}

		err := memberOf(tenant.ID).Admit(ctx, nil, tenancy.TenantScope(tenant))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

// The same principal admitted on one tenant's surface is denied on another:
// admission is a function of the scope, not of the session.
func TestTenantSurfaceScopeReevaluation(t *testing.T) {
	t.Parallel()

	home := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusActive}
	other := &domain.Tenant{ID: uuid.New(), Status: domain.TenantStatusActive}

	surface := authz.NewTenantSurface(&mockMembershipRepo{
		getActiveFunc: func(_ context.Context, tid, pid uuid.UUID) (*domain.Membership, error) {
			if tid == home.ID {
				return &domain.Membership{TenantID: tid, PrincipalID: pid, IsActive: true}, nil
			}
			return nil, domain.ErrNotFound
		},
	})

	p := activePrincipal()
	ctx := context.Background()

	require.NoError(t, surface.Admit(ctx, p, tenancy.TenantScope(home)))
	assert.ErrorIs(t, surface.Admit(ctx, p, tenancy.TenantScope(other)), domain.ErrPermissionDenied)
}
