package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/rolesync"
)

type ListRolesOutput struct {
	Body []*domain.Role
}

type CreateRoleInput struct {
	Body struct {
		Name         string   `json:"name" minLength:"1" maxLength:"100" doc:"Role name, unique within the tenant"`
		Description  string   `json:"description,omitempty" maxLength:"255"`
		Capabilities []string `json:"capabilities" minItems:"1" doc:"Capability codes from the registry"`
	}
}

type CreateRoleOutput struct {
	Body *domain.Role
}

type UpdateRoleInput struct {
	RoleID uuid.UUID `path:"roleID" doc:"Role ID"`
	Body   struct {
		Capabilities []string `json:"capabilities" minItems:"1" doc:"Replacement capability set"`
	}
}

type UpdateRoleOutput struct {
	Body *domain.Role
}

type DeleteRoleInput struct {
	RoleID uuid.UUID `path:"roleID" doc:"Role ID"`
}

type ResyncRolesInput struct {
	DryRun bool `query:"dry_run" default:"false" doc:"Report changes without applying them"`
}

type RoleChange struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Role       string    `json:"role"`
	Created    bool      `json:"created"`
	Added      []string  `json:"added,omitempty"`
	Removed    []string  `json:"removed,omitempty"`
}

type RoleSyncFailure struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Error      string    `json:"error"`
}

type ResyncRolesOutput struct {
	Body struct {
		DryRun   bool              `json:"dry_run"`
		Tenants  int               `json:"tenants"`
		Changes  []RoleChange      `json:"changes"`
		Failures []RoleSyncFailure `json:"failures"`
	}
}

func resyncReportBody(report *rolesync.Report) (out ResyncRolesOutput) {
	out.Body.DryRun = report.DryRun
	out.Body.Tenants = report.Tenants
	out.Body.Changes = make([]RoleChange, 0, len(report.Changes))
	for _, c := range report.Changes {
		change := RoleChange{
			TenantID:   c.TenantID,
			TenantName: c.TenantName,
			Role:       c.Role,
			Created:    c.Created,
		}
		for _, cap := range c.Added {
			change.Added = append(change.Added, string(cap))
		}
		for _, cap := range c.Removed {
			change.Removed = append(change.Removed, string(cap))
		}
		out.Body.Changes = append(out.Body.Changes, change)
	}
	out.Body.Failures = make([]RoleSyncFailure, 0, len(report.Failures))
	for _, f := range report.Failures {
		out.Body.Failures = append(out.Body.Failures, RoleSyncFailure{
			TenantID:   f.TenantID,
			TenantName: f.TenantName,
			Error:      f.Err.Error(),
		})
	}
	return out
}

func RegisterRoleRoutes(api huma.API, store DataStore, resolver PermissionResolver) {
	huma.Register(api, huma.Operation{
		OperationID: "list-roles",
		Method:      http.MethodGet,
		Path:        "/roles",
		Summary:     "List this tenant's roles",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, _ *struct{}) (*ListRolesOutput, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := requireCapability(ctx, resolver, domain.CapRoleView); err != nil {
			return nil, err
		}

		roles, err := store.Roles().ListByTenant(ctx, tenant.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list roles", err)
		}

		return &ListRolesOutput{Body: roles}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-role",
		Method:      http.MethodPost,
		Path:        "/roles",
		Summary:     "Create a custom role",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, input *CreateRoleInput) (*CreateRoleOutput, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := requireCapability(ctx, resolver, domain.CapRoleCreate); err != nil {
			return nil, err
		}

		caps := domain.CapabilitySetFromStrings(input.Body.Capabilities)

		now := time.Now()
		role := &domain.Role{
			ID:           uuid.New(),
			TenantID:     tenant.ID,
			Name:         input.Body.Name,
			Description:  input.Body.Description,
			Capabilities: caps,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := role.ValidateCustom(caps); err != nil {
			if errors.Is(err, domain.ErrUnknownCapability) || errors.Is(err, domain.ErrReservedCapability) {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			return nil, huma.Error500InternalServerError("role validation failed", err)
		}

		if err := store.Roles().Create(ctx, role); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("role name already in use")
			}
			return nil, huma.Error500InternalServerError("failed to create role", err)
		}

		return &CreateRoleOutput{Body: role}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-role",
		Method:      http.MethodPut,
		Path:        "/roles/{roleID}",
		Summary:     "Replace a custom role's capabilities",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, input *UpdateRoleInput) (*UpdateRoleOutput, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := requireCapability(ctx, resolver, domain.CapRoleEdit); err != nil {
			return nil, err
		}

		role, err := store.Roles().GetByID(ctx, tenant.ID, input.RoleID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("role not found in this tenant")
			}
			return nil, huma.Error500InternalServerError("failed to load role", err)
		}

		if role.Protected {
			return nil, huma.Error403Forbidden("system roles cannot be edited")
		}

		caps := domain.CapabilitySetFromStrings(input.Body.Capabilities)

		if err := role.ValidateCustom(caps); err != nil {
			if errors.Is(err, domain.ErrUnknownCapability) || errors.Is(err, domain.ErrReservedCapability) {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			return nil, huma.Error500InternalServerError("role validation failed", err)
		}

		if err := store.Roles().UpdateCapabilities(ctx, tenant.ID, role.ID, caps); err != nil {
			return nil, huma.Error500InternalServerError("failed to update role", err)
		}

		role.Capabilities = caps
		return &UpdateRoleOutput{Body: role}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-role",
		Method:        http.MethodDelete,
		Path:          "/roles/{roleID}",
		Summary:       "Delete a custom role",
		Tags:          []string{"Roles"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteRoleInput) (*struct{}, error) {
		tenant, err := tenantFromScope(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := requireCapability(ctx, resolver, domain.CapRoleDelete); err != nil {
			return nil, err
		}

		if err := store.Roles().Delete(ctx, tenant.ID, input.RoleID); err != nil {
			if errors.Is(err, domain.ErrProtectedRole) {
				return nil, huma.Error403Forbidden("system roles cannot be deleted")
			}
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("role still has active memberships")
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("role not found in this tenant")
			}
			return nil, huma.Error500InternalServerError("failed to delete role", err)
		}

		return nil, nil
	})
}

// RegisterRoleSyncRoutes mounts the system-role resync operation on the
// platform surface.
func RegisterRoleSyncRoutes(api huma.API, resyncer RoleResyncer, resolver PermissionResolver) {
	huma.Register(api, huma.Operation{
		OperationID: "resync-system-roles",
		Method:      http.MethodPost,
		Path:        "/roles/resync",
		Summary:     "Reconcile every tenant's system roles with the platform definitions",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, input *ResyncRolesInput) (*ResyncRolesOutput, error) {
		if _, err := requireCapability(ctx, resolver, domain.CapRoleResync); err != nil {
			return nil, err
		}

		report, err := resyncer.Resync(ctx, domain.SystemRoleDefinitions(), input.DryRun)
		if err != nil {
			if errors.Is(err, domain.ErrInvariantViolation) {
				return nil, huma.Error422UnprocessableEntity("system role definitions violate the hierarchy invariant")
			}
			return nil, huma.Error500InternalServerError("role resync failed", err)
		}

		out := resyncReportBody(report)
		return &out, nil
	})
}
