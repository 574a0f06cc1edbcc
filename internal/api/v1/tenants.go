package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/server/middleware"
	"github.com/bookmehq/bookme/internal/tenancy"
)

type RegisterTenantInput struct {
	Body struct {
		Name         string `json:"name" minLength:"1" maxLength:"255" doc:"Tenant display name"`
		RoutingKey   string `json:"routing_key" minLength:"1" maxLength:"253" doc:"Routing label (\"acme\") or full hostname (\"book.acme.com\")"`
		ContactEmail string `json:"contact_email,omitempty" maxLength:"255" doc:"Billing contact"`
	}
}

type RegisterTenantOutput struct {
	Body *domain.Tenant
}

type ListTenantsOutput struct {
	Body []*domain.Tenant
}

type GetTenantInput struct {
	TenantID uuid.UUID `path:"tenantID" doc:"Tenant ID"`
}

type GetTenantOutput struct {
	Body struct {
		Tenant      *domain.Tenant       `json:"tenant"`
		RoutingKeys []*domain.RoutingKey `json:"routing_keys"`
	}
}

type UpdateTenantStatusInput struct {
	TenantID uuid.UUID `path:"tenantID" doc:"Tenant ID"`
	Body     struct {
		Status string `json:"status" enum:"trial,active,suspended,archived" doc:"New lifecycle state"`
	}
}

type UpdateTenantStatusOutput struct {
	Body *domain.Tenant
}

type TeardownTenantInput struct {
	TenantID uuid.UUID `path:"tenantID" doc:"Tenant ID"`
}

type AddRoutingKeyInput struct {
	TenantID uuid.UUID `path:"tenantID" doc:"Tenant ID"`
	Body     struct {
		Host string `json:"host" minLength:"1" maxLength:"253" doc:"Routing label or full hostname"`
	}
}

type AddRoutingKeyOutput struct {
	Body *domain.RoutingKey
}

type SetPrimaryKeyInput struct {
	TenantID uuid.UUID `path:"tenantID" doc:"Tenant ID"`
	KeyID    uuid.UUID `path:"keyID" doc:"Routing key ID"`
}

// requireCapability runs the permission check for the authenticated principal
// in the request's bound scope. Every denial maps to the same 403.
func requireCapability(ctx context.Context, resolver PermissionResolver, cap domain.Capability) (*domain.Principal, error) {
	principal, _ := middleware.PrincipalFromContext(ctx)
	scope, _ := tenancy.ScopeFromContext(ctx)

	allowed, err := resolver.Can(ctx, principal, scope, cap)
	if err != nil {
		return nil, huma.Error500InternalServerError("permission check failed", err)
	}
	if !allowed {
		return nil, huma.Error403Forbidden("access denied")
	}
	return principal, nil
}

func RegisterTenantRoutes(api huma.API, store DataStore, directory TenantDirectory, resolver PermissionResolver) {
	huma.Register(api, huma.Operation{
		OperationID: "register-tenant",
		Method:      http.MethodPost,
		Path:        "/tenants",
		Summary:     "Provision a new tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *RegisterTenantInput) (*RegisterTenantOutput, error) {
		actor, err := requireCapability(ctx, resolver, domain.CapTenantRegister)
		if err != nil {
			return nil, err
		}

		tenant, err := directory.Register(ctx, tenancy.RegisterTenant{
			Name:         input.Body.Name,
			RoutingKey:   input.Body.RoutingKey,
			ContactEmail: input.Body.ContactEmail,
			ActorID:      actor.ID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateRoutingKey) {
				return nil, huma.Error409Conflict("routing key already in use")
			}
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("tenant already exists")
			}
			return nil, huma.Error500InternalServerError("failed to register tenant", err)
		}

		return &RegisterTenantOutput{Body: tenant}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/tenants",
		Summary:     "List all tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, _ *struct{}) (*ListTenantsOutput, error) {
		if _, err := requireCapability(ctx, resolver, domain.CapTenantView); err != nil {
			return nil, err
		}

		tenants, err := store.Tenants().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tenants", err)
		}

		return &ListTenantsOutput{Body: tenants}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/tenants/{tenantID}",
		Summary:     "Get a tenant with its routing keys",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetTenantOutput, error) {
		if _, err := requireCapability(ctx, resolver, domain.CapTenantView); err != nil {
			return nil, err
		}

		tenant, err := store.Tenants().GetByID(ctx, input.TenantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("tenant not found")
			}
			return nil, huma.Error500InternalServerError("failed to load tenant", err)
		}

		keys, err := store.RoutingKeys().ListByTenant(ctx, tenant.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load routing keys", err)
		}

		out := &GetTenantOutput{}
		out.Body.Tenant = tenant
		out.Body.RoutingKeys = keys
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant-status",
		Method:      http.MethodPut,
		Path:        "/tenants/{tenantID}/status",
		Summary:     "Change a tenant's lifecycle state",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *UpdateTenantStatusInput) (*UpdateTenantStatusOutput, error) {
		actor, err := requireCapability(ctx, resolver, domain.CapTenantSuspend)
		if err != nil {
			return nil, err
		}

		status := domain.TenantStatus(input.Body.Status)
		if !status.Valid() {
			return nil, huma.Error422UnprocessableEntity("unknown tenant status")
		}

		if err := store.Tenants().UpdateStatus(ctx, input.TenantID, status); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("tenant not found")
			}
			return nil, huma.Error500InternalServerError("failed to update tenant status", err)
		}

		if status == domain.TenantStatusSuspended {
			_ = store.Audit().Record(ctx, &domain.AuditEntry{
				ID:        uuid.New(),
				TenantID:  input.TenantID,
				ActorID:   actor.ID,
				Event:     domain.AuditTenantSuspended,
				CreatedAt: time.Now(),
			})
		}

		tenant, err := store.Tenants().GetByID(ctx, input.TenantID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load tenant", err)
		}

		return &UpdateTenantStatusOutput{Body: tenant}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "teardown-tenant",
		Method:        http.MethodDelete,
		Path:          "/tenants/{tenantID}",
		Summary:       "Irreversibly tear down a tenant",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *TeardownTenantInput) (*struct{}, error) {
		actor, err := requireCapability(ctx, resolver, domain.CapTenantTeardown)
		if err != nil {
			return nil, err
		}

		if err := directory.Teardown(ctx, input.TenantID, actor.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("tenant not found")
			}
			return nil, huma.Error500InternalServerError("failed to tear down tenant", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-routing-key",
		Method:      http.MethodPost,
		Path:        "/tenants/{tenantID}/routing-keys",
		Summary:     "Add a routing key to a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *AddRoutingKeyInput) (*AddRoutingKeyOutput, error) {
		if _, err := requireCapability(ctx, resolver, domain.CapTenantRegister); err != nil {
			return nil, err
		}

		key, err := directory.AddRoutingKey(ctx, input.TenantID, input.Body.Host)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateRoutingKey) {
				return nil, huma.Error409Conflict("routing key already in use")
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("tenant not found")
			}
			return nil, huma.Error500InternalServerError("failed to add routing key", err)
		}

		return &AddRoutingKeyOutput{Body: key}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "set-primary-routing-key",
		Method:        http.MethodPut,
		Path:          "/tenants/{tenantID}/routing-keys/{keyID}/primary",
		Summary:       "Promote a routing key to primary",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *SetPrimaryKeyInput) (*struct{}, error) {
		if _, err := requireCapability(ctx, resolver, domain.CapTenantRegister); err != nil {
			return nil, err
		}

		if err := directory.SetPrimary(ctx, input.TenantID, input.KeyID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("routing key not found")
			}
			return nil, huma.Error500InternalServerError("failed to set primary routing key", err)
		}

		return nil, nil
	})
}
