// Package tenancy resolves inbound routing keys to tenants and carries the
// resulting access scope through the request as an explicit context value.
//
// The scope is immutable and request-local. There is intentionally no
// package-level "current tenant" anywhere in this codebase; concurrent
// requests bound to different tenants can never observe each other's scope.
package tenancy

import (
	"context"

	"github.com/bookmehq/bookme/internal/domain"
)

// Scope is the resolved access context of one request: either the
// platform-wide (tenant-less) context, or a context bound to exactly one
// tenant. The zero value is unresolved and matches neither.
type Scope struct {
	platform bool
	tenant   *domain.Tenant
}

// PlatformScope returns the explicit platform-wide scope. It is reachable
// only via the platform's own reserved routing keys, never as a fallback for
// an unknown host.
func PlatformScope() Scope {
	return Scope{platform: true}
}

// TenantScope returns a scope bound to t.
func TenantScope(t *domain.Tenant) Scope {
	return Scope{tenant: t}
}

// IsPlatform reports whether the scope is the platform-wide context.
func (s Scope) IsPlatform() bool { return s.platform }

// Tenant returns the bound tenant, if any.
func (s Scope) Tenant() (*domain.Tenant, bool) {
	if s.tenant == nil {
		return nil, false
	}
	return s.tenant, true
}

// Resolved reports whether the scope is either platform or tenant bound.
func (s Scope) Resolved() bool { return s.platform || s.tenant != nil }

type contextKey struct{}

// WithScope returns a child context carrying s.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// ScopeFromContext extracts the scope bound by WithScope.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(contextKey{}).(Scope)
	return s, ok
}
