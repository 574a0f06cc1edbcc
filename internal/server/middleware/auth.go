package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bookmehq/bookme/internal/auth"
	"github.com/bookmehq/bookme/internal/domain"
)

// Auth validates the Bearer token and loads the principal from the store.
// Claims carry only the principal ID; flags and memberships are always read
// fresh so revoking a flag takes effect on the next request, not at token
// expiry.
func Auth(jwtSecret string, principals domain.PrincipalRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, tok)
			if err != nil || claims.TokenType != "access" {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
				return
			}

			principalID, err := uuid.Parse(claims.PrincipalID)
			if err != nil {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
				return
			}

			principal, err := principals.GetByID(r.Context(), principalID)
			if err != nil || !principal.IsActive {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}
