package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/bookmehq/bookme/internal/api/v1"
	"github.com/bookmehq/bookme/internal/domain"
)

// ---------------------------------------------------------------------------
// GET /memberships
// ---------------------------------------------------------------------------

func TestListMemberships(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		tenant := fixedTenant()
		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				listByTenantFunc: func(_ context.Context, tenantID uuid.UUID) ([]*domain.Membership, error) {
					assert.Equal(t, tenant.ID, tenantID)
					return []*domain.Membership{
						{ID: uuid.New(), TenantID: tenantID, PrincipalID: uuid.New(), IsActive: true},
					}, nil
				},
			},
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.GetCtx(tenantCtx(tenant, tenantManager()), "/memberships")

		require.Equal(t, http.StatusOK, resp.Code)

		var body []*domain.Membership
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, tenant.ID, body[0].TenantID)
	})

	t.Run("platform_scope_refused", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterMembershipRoutes(api, &mockDataStore{}, allowAll())

		resp := api.GetCtx(platformCtx(platformOwner()), "/memberships")

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("denied_without_capability", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterMembershipRoutes(api, &mockDataStore{}, denyAll())

		resp := api.GetCtx(tenantCtx(fixedTenant(), tenantManager()), "/memberships")

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// POST /memberships
// ---------------------------------------------------------------------------

func TestAssignMembership(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_and_audited", func(t *testing.T) {
		t.Parallel()

		tenant := fixedTenant()
		manager := tenantManager()
		principalID := uuid.New()
		roleID := uuid.New()
		audit := &mockAuditRepo{}
		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				createFunc: func(_ context.Context, m *domain.Membership) error {
					assert.Equal(t, tenant.ID, m.TenantID)
					assert.Equal(t, principalID, m.PrincipalID)
					assert.Equal(t, roleID, m.RoleID)
					assert.True(t, m.IsActive)
					return nil
				},
			},
			audit: audit,
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.PostCtx(tenantCtx(tenant, manager), "/memberships", map[string]any{
			"principal_id": principalID.String(),
			"role_id":      roleID.String(),
		})

		require.Equal(t, http.StatusOK, resp.Code)

		entries := audit.recorded()
		require.Len(t, entries, 1)
		assert.Equal(t, domain.AuditMembershipAssigned, entries[0].Event)
		assert.Equal(t, manager.ID, entries[0].ActorID)
	})

	t.Run("already_member", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				createFunc: func(_ context.Context, _ *domain.Membership) error {
					return domain.ErrConflict
				},
			},
			audit: &mockAuditRepo{},
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.PostCtx(tenantCtx(fixedTenant(), tenantManager()), "/memberships", map[string]any{
			"principal_id": uuid.NewString(),
			"role_id":      uuid.NewString(),
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("role_from_another_tenant", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				createFunc: func(_ context.Context, _ *domain.Membership) error {
					return domain.ErrNotFound
				},
			},
			audit: &mockAuditRepo{},
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.PostCtx(tenantCtx(fixedTenant(), tenantManager()), "/memberships", map[string]any{
			"principal_id": uuid.NewString(),
			"role_id":      uuid.NewString(),
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// PUT /memberships/{membershipID}/role
// ---------------------------------------------------------------------------

func TestUpdateMembershipRole(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		tenant := fixedTenant()
		membershipID := uuid.New()
		roleID := uuid.New()
		var updated bool
		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				updateRoleFunc: func(_ context.Context, tenantID, id, newRoleID uuid.UUID) error {
					assert.Equal(t, tenant.ID, tenantID)
					assert.Equal(t, membershipID, id)
					assert.Equal(t, roleID, newRoleID)
					updated = true
					return nil
				},
			},
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.PutCtx(tenantCtx(tenant, tenantManager()), "/memberships/"+membershipID.String()+"/role", map[string]any{
			"role_id": roleID.String(),
		})

		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.True(t, updated)
	})

	t.Run("membership_of_another_tenant_reads_as_missing", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				updateRoleFunc: func(_ context.Context, _, _, _ uuid.UUID) error {
					return domain.ErrNotFound
				},
			},
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.PutCtx(tenantCtx(fixedTenant(), tenantManager()), "/memberships/"+uuid.NewString()+"/role", map[string]any{
			"role_id": uuid.NewString(),
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// DELETE /memberships/{membershipID}
// ---------------------------------------------------------------------------

func TestRevokeMembership(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_and_audited", func(t *testing.T) {
		t.Parallel()

		tenant := fixedTenant()
		membershipID := uuid.New()
		audit := &mockAuditRepo{}
		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				deactivateFunc: func(_ context.Context, tenantID, id uuid.UUID) error {
					assert.Equal(t, tenant.ID, tenantID)
					assert.Equal(t, membershipID, id)
					return nil
				},
			},
			audit: audit,
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.DeleteCtx(tenantCtx(tenant, tenantManager()), "/memberships/"+membershipID.String())

		assert.Equal(t, http.StatusNoContent, resp.Code)

		entries := audit.recorded()
		require.Len(t, entries, 1)
		assert.Equal(t, domain.AuditMembershipRevoked, entries[0].Event)
	})

	t.Run("unknown_membership", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			memberships: &mockMembershipRepo{
				deactivateFunc: func(_ context.Context, _, _ uuid.UUID) error {
					return domain.ErrNotFound
				},
			},
		}

		v1.RegisterMembershipRoutes(api, store, allowAll())

		resp := api.DeleteCtx(tenantCtx(fixedTenant(), tenantManager()), "/memberships/"+uuid.NewString())

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
