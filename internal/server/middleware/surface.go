package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bookmehq/bookme/internal/authz"
	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// RequireSurface admits the authenticated principal to the given surface.
// Every denial gets the same 403 body; the reason is logged, never leaked.
// Must be chained after Auth and BindScope.
func RequireSurface(surface authz.Surface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())
			scope, _ := tenancy.ScopeFromContext(r.Context())

			err := surface.Admit(r.Context(), principal, scope)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			if errors.Is(err, domain.ErrUnauthorized) {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			if !domain.IsDenied(err) {
				log.Error().Err(err).Str("surface", surface.Name()).Msg("surface: admission check failed")
				http.Error(w, `{"title":"Internal Server Error","status":500,"detail":"admission check failed"}`, http.StatusInternalServerError)
				return
			}

			log.Debug().Err(err).Str("surface", surface.Name()).Msg("surface: admission denied")
			http.Error(w, `{"title":"Forbidden","status":403,"detail":"access denied"}`, http.StatusForbidden)
		})
	}
}
