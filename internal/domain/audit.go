package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit event codes.
const (
	AuditTenantCreated       = "tenant.created"
	AuditTenantSuspended     = "tenant.suspended"
	AuditTenantTeardown      = "tenant.teardown"
	AuditMembershipAssigned  = "membership.assigned"
	AuditMembershipRevoked   = "membership.revoked"
	AuditEscalationAttempt   = "principal.escalation_attempt"
	AuditSystemRolesResynced = "role.system_resync"
)

// AuditEntry records an operator-relevant event. TenantID is Nil for
// platform-level events (e.g. escalation attempts on the platform surface).
type AuditEntry struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ActorID   uuid.UUID // Nil when performed by the system
	Event     string
	Details   map[string]any
	CreatedAt time.Time
}

type AuditRepository interface {
	Record(ctx context.Context, e *AuditEntry) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*AuditEntry, error)
	ListByEvent(ctx context.Context, event string, limit, offset int) ([]*AuditEntry, error)
}
