package middleware

import (
	"context"

	"github.com/bookmehq/bookme/internal/domain"
)

type contextKey string

const contextKeyPrincipal contextKey = "principal"

// WithPrincipal stores the authenticated principal in the request context.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(contextKeyPrincipal).(*domain.Principal)
	return p, ok && p != nil
}
