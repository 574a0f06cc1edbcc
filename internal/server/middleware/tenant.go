package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// ScopeResolver maps a request host to a tenancy scope.
type ScopeResolver interface {
	Resolve(ctx context.Context, host string) (tenancy.Scope, error)
}

// BindScope resolves the request host to a platform or tenant scope and binds
// it to the request context. An unknown host gets the same 404 body whether
// the host never existed or belonged to a tenant that was torn down.
func BindScope(resolver ScopeResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := resolver.Resolve(r.Context(), r.Host)
			if err != nil {
				if errors.Is(err, domain.ErrRoutingKeyNotFound) {
					http.Error(w, `{"title":"Not Found","status":404,"detail":"unknown host"}`, http.StatusNotFound)
					return
				}
				log.Error().Err(err).Str("host", r.Host).Msg("tenant: host resolution failed")
				http.Error(w, `{"title":"Internal Server Error","status":500,"detail":"host resolution failed"}`, http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(tenancy.WithScope(r.Context(), scope)))
		})
	}
}
