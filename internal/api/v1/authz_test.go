package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/bookmehq/bookme/internal/api/v1"
	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// ---------------------------------------------------------------------------
// GET /authz/can
// ---------------------------------------------------------------------------

func TestCan(t *testing.T) {
	t.Parallel()

	t.Run("allowed", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		resolver := &mockResolver{
			canFunc: func(_ context.Context, p *domain.Principal, scope tenancy.Scope, cap domain.Capability) (bool, error) {
				assert.NotNil(t, p)
				assert.True(t, scope.IsPlatform())
				assert.Equal(t, domain.CapTenantView, cap)
				return true, nil
			},
		}

		v1.RegisterAuthzRoutes(api, resolver)

		resp := api.GetCtx(platformCtx(platformOwner()), "/authz/can?capability=tenant.view")

		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "tenant.view", body["capability"])
		assert.Equal(t, true, body["allowed"])
	})

	t.Run("unknown_capability_reads_as_denied", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		resolver := &mockResolver{
			canFunc: func(_ context.Context, _ *domain.Principal, _ tenancy.Scope, _ domain.Capability) (bool, error) {
				return false, nil
			},
		}

		v1.RegisterAuthzRoutes(api, resolver)

		resp := api.GetCtx(tenantCtx(fixedTenant(), tenantManager()), "/authz/can?capability=booking.telepathy")

		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, false, body["allowed"])
	})

	t.Run("resolver_failure_is_500", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		resolver := &mockResolver{
			canFunc: func(_ context.Context, _ *domain.Principal, _ tenancy.Scope, _ domain.Capability) (bool, error) {
				return false, errors.New("pg: connection refused")
			},
		}

		v1.RegisterAuthzRoutes(api, resolver)

		resp := api.GetCtx(tenantCtx(fixedTenant(), tenantManager()), "/authz/can?capability=booking.view")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
