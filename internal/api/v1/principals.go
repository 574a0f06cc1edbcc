package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookmehq/bookme/internal/auth"
	"github.com/bookmehq/bookme/internal/authz"
	"github.com/bookmehq/bookme/internal/domain"
)

type CreatePrincipalInput struct {
	Body struct {
		Email                string `json:"email" minLength:"3" maxLength:"255" doc:"Login email"`
		Password             string `json:"password" minLength:"8" maxLength:"128" doc:"Initial password"` //nolint:gosec // G117: credential DTO
		FirstName            string `json:"first_name,omitempty" maxLength:"150"`
		LastName             string `json:"last_name,omitempty" maxLength:"150"`
		PlatformOwner        bool   `json:"platform_owner,omitempty" doc:"Reserved flag, owner-grantable only"`
		PlatformOperator     bool   `json:"platform_operator,omitempty" doc:"Reserved flag, owner-grantable only"`
		AdminSurfaceEligible bool   `json:"admin_surface_eligible,omitempty" doc:"Reserved flag, owner-grantable only"`
	}
}

type CreatePrincipalOutput struct {
	Body *domain.Principal
}

type ListPrincipalsInput struct {
	Limit  int `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListPrincipalsOutput struct {
	Body []*domain.Principal
}

type GetPrincipalInput struct {
	PrincipalID uuid.UUID `path:"principalID" doc:"Principal ID"`
}

type GetPrincipalOutput struct {
	Body *domain.Principal
}

type UpdatePrincipalInput struct {
	PrincipalID uuid.UUID `path:"principalID" doc:"Principal ID"`
	Body        struct {
		FirstName            string `json:"first_name,omitempty" maxLength:"150"`
		LastName             string `json:"last_name,omitempty" maxLength:"150"`
		IsActive             *bool  `json:"is_active,omitempty"`
		PlatformOwner        *bool  `json:"platform_owner,omitempty"`
		PlatformOperator     *bool  `json:"platform_operator,omitempty"`
		AdminSurfaceEligible *bool  `json:"admin_surface_eligible,omitempty"`
	}
}

type UpdatePrincipalOutput struct {
	Body *domain.Principal
}

type DeletePrincipalInput struct {
	PrincipalID uuid.UUID `path:"principalID" doc:"Principal ID"`
}

// denyPrincipalWrite converts a guard rejection into the uniform 403 and
// records escalation attempts in the audit log before returning.
func denyPrincipalWrite(ctx context.Context, store DataStore, actor *domain.Principal, targetID uuid.UUID, err error) error {
	if errors.Is(err, domain.ErrPrivilegeEscalation) {
		auditErr := store.Audit().Record(ctx, &domain.AuditEntry{
			ID:      uuid.New(),
			ActorID: actor.ID,
			Event:   domain.AuditEscalationAttempt,
			Details: map[string]any{
				"target_id": targetID.String(),
			},
			CreatedAt: time.Now(),
		})
		if auditErr != nil {
			log.Error().Err(auditErr).Str("actor_id", actor.ID.String()).Msg("principals: failed to record escalation attempt")
		}
		log.Warn().Str("actor_id", actor.ID.String()).Str("target_id", targetID.String()).Msg("principals: privilege escalation attempt rejected")
	}

	if errors.Is(err, domain.ErrUnauthorized) {
		return huma.Error401Unauthorized("authentication required")
	}
	if domain.IsDenied(err) {
		return huma.Error403Forbidden("access denied")
	}
	return huma.Error500InternalServerError("authorization failed", err)
}

func RegisterPrincipalRoutes(api huma.API, store DataStore, resolver PermissionResolver) {
	huma.Register(api, huma.Operation{
		OperationID: "create-principal",
		Method:      http.MethodPost,
		Path:        "/principals",
		Summary:     "Create a principal",
		Tags:        []string{"Principals"},
	}, func(ctx context.Context, input *CreatePrincipalInput) (*CreatePrincipalOutput, error) {
		actor, err := requireCapability(ctx, resolver, domain.CapPrincipalCreate)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		desired := &domain.Principal{
			ID:                   uuid.New(),
			Email:                input.Body.Email,
			FirstName:            input.Body.FirstName,
			LastName:             input.Body.LastName,
			IsActive:             true,
			PlatformOwner:        input.Body.PlatformOwner,
			PlatformOperator:     input.Body.PlatformOperator,
			AdminSurfaceEligible: input.Body.AdminSurfaceEligible,
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		if err := authz.AuthorizePrincipalWrite(actor, authz.PrincipalWrite{Desired: desired}); err != nil {
			return nil, denyPrincipalWrite(ctx, store, actor, desired.ID, err)
		}

		hash, err := auth.HashPassword(input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to hash password", err)
		}
		desired.PasswordHash = hash

		if err := store.Principals().Create(ctx, desired); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("email already registered")
			}
			return nil, huma.Error500InternalServerError("failed to create principal", err)
		}

		desired.PasswordHash = ""
		return &CreatePrincipalOutput{Body: desired}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-principals",
		Method:      http.MethodGet,
		Path:        "/principals",
		Summary:     "List principals",
		Tags:        []string{"Principals"},
	}, func(ctx context.Context, input *ListPrincipalsInput) (*ListPrincipalsOutput, error) {
		if _, err := requireCapability(ctx, resolver, domain.CapPrincipalView); err != nil {
			return nil, err
		}

		principals, err := store.Principals().List(ctx, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list principals", err)
		}

		for _, p := range principals {
			p.PasswordHash = ""
		}
		return &ListPrincipalsOutput{Body: principals}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-principal",
		Method:      http.MethodGet,
		Path:        "/principals/{principalID}",
		Summary:     "Get a principal",
		Tags:        []string{"Principals"},
	}, func(ctx context.Context, input *GetPrincipalInput) (*GetPrincipalOutput, error) {
		if _, err := requireCapability(ctx, resolver, domain.CapPrincipalView); err != nil {
			return nil, err
		}

		principal, err := store.Principals().GetByID(ctx, input.PrincipalID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("principal not found")
			}
			return nil, huma.Error500InternalServerError("failed to load principal", err)
		}

		principal.PasswordHash = ""
		return &GetPrincipalOutput{Body: principal}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-principal",
		Method:      http.MethodPut,
		Path:        "/principals/{principalID}",
		Summary:     "Update a principal's profile and flags",
		Tags:        []string{"Principals"},
	}, func(ctx context.Context, input *UpdatePrincipalInput) (*UpdatePrincipalOutput, error) {
		actor, err := requireCapability(ctx, resolver, domain.CapPrincipalEdit)
		if err != nil {
			return nil, err
		}

		target, err := store.Principals().GetByID(ctx, input.PrincipalID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("principal not found")
			}
			return nil, huma.Error500InternalServerError("failed to load principal", err)
		}

		// Build the desired state exactly as submitted; omitted flags keep
		// the target's current value so they never read as an escalation.
		desired := *target
		if input.Body.FirstName != "" {
			desired.FirstName = input.Body.FirstName
		}
		if input.Body.LastName != "" {
			desired.LastName = input.Body.LastName
		}
		if input.Body.IsActive != nil {
			desired.IsActive = *input.Body.IsActive
		}
		if input.Body.PlatformOwner != nil {
			desired.PlatformOwner = *input.Body.PlatformOwner
		}
		if input.Body.PlatformOperator != nil {
			desired.PlatformOperator = *input.Body.PlatformOperator
		}
		if input.Body.AdminSurfaceEligible != nil {
			desired.AdminSurfaceEligible = *input.Body.AdminSurfaceEligible
		}

		if err := authz.AuthorizePrincipalWrite(actor, authz.PrincipalWrite{Target: target, Desired: &desired}); err != nil {
			return nil, denyPrincipalWrite(ctx, store, actor, target.ID, err)
		}

		desired.UpdatedAt = time.Now()
		if err := store.Principals().Update(ctx, &desired); err != nil {
			return nil, huma.Error500InternalServerError("failed to update principal", err)
		}

		desired.PasswordHash = ""
		return &UpdatePrincipalOutput{Body: &desired}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-principal",
		Method:        http.MethodDelete,
		Path:          "/principals/{principalID}",
		Summary:       "Delete a principal",
		Tags:          []string{"Principals"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeletePrincipalInput) (*struct{}, error) {
		actor, err := requireCapability(ctx, resolver, domain.CapPrincipalDelete)
		if err != nil {
			return nil, err
		}

		target, err := store.Principals().GetByID(ctx, input.PrincipalID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("principal not found")
			}
			return nil, huma.Error500InternalServerError("failed to load principal", err)
		}

		if err := authz.AuthorizePrincipalWrite(actor, authz.PrincipalWrite{Target: target}); err != nil {
			return nil, denyPrincipalWrite(ctx, store, actor, target.ID, err)
		}

		if err := store.Principals().Delete(ctx, target.ID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete principal", err)
		}

		return nil, nil
	})
}
