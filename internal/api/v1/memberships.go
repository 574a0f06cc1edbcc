package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/tenancy"
)

type ListMembershipsOutput struct {
	Body []*domain.Membership
}

type AssignMembershipInput struct {
	Body struct {
		PrincipalID uuid.UUID `json:"principal_id" doc:"Principal to add"`
		RoleID      uuid.UUID `json:"role_id" doc:"Role within this tenant"`
	}
}

type AssignMembershipOutput struct {
	Body *domain.Membership
}

type UpdateMembershipRoleInput struct {
	MembershipID uuid.UUID `path:"membershipID" doc:"Membership ID"`
	Body         struct {
		RoleID uuid.UUID `json:"role_id" doc:"New role within this tenant"`
	}
}

type RevokeMembershipInput struct {
	MembershipID uuid.UUID `path:"membershipID" doc:"Membership ID"`
}

// tenantFromScope returns the tenant the request is bound to. Handlers on the
// tenant surface are only mounted behind BindScope + RequireSurface, so a
// missing tenant here is a wiring bug, not a client error.
func tenantFromScope(ctx context.Context) (*domain.Tenant, error) {
	scope, ok := tenancy.ScopeFromContext(ctx)
	if !ok {
		return nil, huma.Error500InternalServerError("no scope bound to request")
	}
	tenant, ok := scope.Tenant()
	if !ok {
		return nil, huma.Error403Forbidden("access denied")
	}
	return tenant, nil
}

func RegisterMembershipRoutes(api huma.API, store DataStore, resolver PermissionResolver) {
	huma.Register(api, huma.Operation{
		OperationID: "list-memberships",
		Method:      http.MethodGet,
		Path:        "/memberships",
		Summary:     "List this tenant's memberships",
		Tags:        []string{"Memberships"},
	}, func(ctx context.Context, _ *struct{}) (*ListMembershipsOutput, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := requireCapability(ctx, resolver, domain.CapMembershipView); err != nil {
			return nil, err
		}

		memberships, err := store.Memberships().ListByTenant(ctx, tenant.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list memberships", err)
		}

		return &ListMembershipsOutput{Body: memberships}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-membership",
		Method:      http.MethodPost,
		Path:        "/memberships",
		Summary:     "Add a principal to this tenant with a role",
		Tags:        []string{"Memberships"},
	}, func(ctx context.Context, input *AssignMembershipInput) (*AssignMembershipOutput, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		actor, err := requireCapability(ctx, resolver, domain.CapMembershipAssign)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		m := &domain.Membership{
			ID:          uuid.New(),
			TenantID:    tenant.ID,
			PrincipalID: input.Body.PrincipalID,
			RoleID:      input.Body.RoleID,
			IsActive:    true,
			JoinedAt:    now,
			UpdatedAt:   now,
		}

		if err := store.Memberships().Create(ctx, m); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("principal already has an active membership")
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("role not found in this tenant")
			}
			return nil, huma.Error500InternalServerError("failed to assign membership", err)
		}

		_ = store.Audit().Record(ctx, &domain.AuditEntry{
			ID:       uuid.New(),
			TenantID: tenant.ID,
			ActorID:  actor.ID,
			Event:    domain.AuditMembershipAssigned,
			Details: map[string]any{
				"principal_id": m.PrincipalID.String(),
				"role_id":      m.RoleID.String(),
			},
			CreatedAt: time.Now(),
		})

		return &AssignMembershipOutput{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "update-membership-role",
		Method:        http.MethodPut,
		Path:          "/memberships/{membershipID}/role",
		Summary:       "Change a member's role",
		Tags:          []string{"Memberships"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *UpdateMembershipRoleInput) (*struct{}, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := requireCapability(ctx, resolver, domain.CapMembershipAssign); err != nil {
			return nil, err
		}

		if err := store.Memberships().UpdateRole(ctx, tenant.ID, input.MembershipID, input.Body.RoleID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("membership or role not found in this tenant")
			}
			return nil, huma.Error500InternalServerError("failed to update membership role", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "revoke-membership",
		Method:        http.MethodDelete,
		Path:          "/memberships/{membershipID}",
		Summary:       "Deactivate a membership",
		Tags:          []string{"Memberships"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RevokeMembershipInput) (*struct{}, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		actor, err := requireCapability(ctx, resolver, domain.CapMembershipRevoke)
		if err != nil {
			return nil, err
		}

		if err := store.Memberships().Deactivate(ctx, tenant.ID, input.MembershipID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("membership not found in this tenant")
			}
			return nil, huma.Error500InternalServerError("failed to revoke membership", err)
		}

		_ = store.Audit().Record(ctx, &domain.AuditEntry{
			ID:       uuid.New(),
			TenantID: tenant.ID,
			ActorID:  actor.ID,
			Event:    domain.AuditMembershipRevoked,
			Details: map[string]any{
				"membership_id": input.MembershipID.String(),
			},
			CreatedAt: time.Now(),
		})

		return nil, nil
	})
}
