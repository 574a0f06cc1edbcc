package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")

	// ErrPermissionDenied is terminal for the request. Denial responses built
	// from it must stay uniform and not reveal whether the resource exists in
	// another tenant.
	ErrPermissionDenied = errors.New("domain: permission denied")

	// ErrPrivilegeEscalation is a loggable sub-case of permission denial: a
	// write tried to set a reserved flag or capability without authority. The
	// HTTP effect is the same as ErrPermissionDenied; it exists so the
	// attempt can be surfaced distinctly for audit.
	ErrPrivilegeEscalation = errors.New("domain: privilege escalation attempt")

	// ErrRoutingKeyNotFound means a hostname resolved to no tenant. Terminal
	// for the request; maps to a 404, never to a fallback tenant.
	ErrRoutingKeyNotFound = errors.New("domain: routing key not found")

	// ErrDuplicateRoutingKey rejects registering a hostname already owned by
	// another tenant.
	ErrDuplicateRoutingKey = errors.New("domain: duplicate routing key")

	// ErrInvariantViolation blocks a role resync whose target definitions
	// break the system-role subset chain, before any tenant is touched.
	ErrInvariantViolation = errors.New("domain: role hierarchy invariant violation")

	ErrProtectedRole      = errors.New("domain: protected role")
	ErrReservedCapability = errors.New("domain: reserved capability")
	ErrUnknownCapability  = errors.New("domain: unknown capability")
)

// IsDenied reports whether err belongs to the permission-denied family,
// including privilege escalation attempts.
func IsDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrPrivilegeEscalation)
}
