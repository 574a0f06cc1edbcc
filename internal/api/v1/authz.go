package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/server/middleware"
	"github.com/bookmehq/bookme/internal/tenancy"
)

type CanInput struct {
	Capability string `query:"capability" minLength:"1" maxLength:"100" doc:"Capability code to probe"`
}

type CanOutput struct {
	Body struct {
		Capability string `json:"capability"`
		Allowed    bool   `json:"allowed"`
	}
}

// RegisterAuthzRoutes mounts the capability probe. UIs call it to decide
// which controls to render; the answer carries no other detail, so an
// unknown capability and a denied one are indistinguishable.
func RegisterAuthzRoutes(api huma.API, resolver PermissionResolver) {
	huma.Register(api, huma.Operation{
		OperationID: "can",
		Method:      http.MethodGet,
		Path:        "/authz/can",
		Summary:     "Probe a capability in the current scope",
		Tags:        []string{"Authz"},
	}, func(ctx context.Context, input *CanInput) (*CanOutput, error) {
		principal, _ := middleware.PrincipalFromContext(ctx)
		scope, _ := tenancy.ScopeFromContext(ctx)

		allowed, err := resolver.Can(ctx, principal, scope, domain.Capability(input.Capability))
		if err != nil {
			return nil, huma.Error500InternalServerError("permission check failed", err)
		}

		out := &CanOutput{}
		out.Body.Capability = input.Capability
		out.Body.Allowed = allowed
		return out, nil
	})
}
