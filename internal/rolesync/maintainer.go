// Package rolesync resynchronizes system-defined role permission sets across
// every tenant while preserving the subset-hierarchy invariant. It is an
// operator-facing tool; unlike the public surfaces, its reports are verbose.
package rolesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookmehq/bookme/internal/domain"
)

// Change is one role diff for one tenant.
type Change struct {
	TenantID   uuid.UUID
	TenantName string
	Role       string
	Created    bool
	Added      []domain.Capability
	Removed    []domain.Capability
}

// Failure records a tenant whose resync failed. Other tenants' committed
// results are unaffected.
type Failure struct {
	TenantID   uuid.UUID
	TenantName string
	Err        error
}

// Report is the outcome of one resync run.
type Report struct {
	DryRun   bool
	Tenants  int
	Changes  []Change
	Failures []Failure
}

// Empty reports whether the run changed (or would change) nothing anywhere.
// A second run with identical definitions must be empty.
func (r *Report) Empty() bool {
	return len(r.Changes) == 0 && len(r.Failures) == 0
}

// Maintainer applies system-role target definitions fleet-wide.
type Maintainer struct {
	tenants domain.TenantRepository
	roles   domain.RoleRepository
	log     zerolog.Logger
}

func NewMaintainer(tenants domain.TenantRepository, roles domain.RoleRepository, log zerolog.Logger) *Maintainer {
	return &Maintainer{tenants: tenants, roles: roles, log: log}
}

// Resync validates the subset chain of defs up front, so a violation fails the
// whole operation before any tenant is touched, then processes tenants
// independently: missing system roles are created, drifted capability sets
// rewritten, each tenant in its own transaction. A failure on one tenant is
// reported and does not roll back tenants already resynced. With dryRun the
// diff is computed and reported without any write.
func (m *Maintainer) Resync(ctx context.Context, defs []domain.RoleDefinition, dryRun bool) (*Report, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("rolesync.Resync: no target definitions")
	}
	if err := domain.ValidateChain(defs); err != nil {
		return nil, fmt.Errorf("rolesync.Resync: %w", err)
	}

	tenants, err := m.tenants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("rolesync.Resync: list tenants: %w", err)
	}

	report := &Report{DryRun: dryRun, Tenants: len(tenants)}

	for _, t := range tenants {
		changes, err := m.resyncTenant(ctx, t, defs, dryRun)
		if err != nil {
			m.log.Error().Err(err).Str("tenant", t.Name).Msg("tenant resync failed")
			report.Failures = append(report.Failures, Failure{TenantID: t.ID, TenantName: t.Name, Err: err})
			continue
		}
		report.Changes = append(report.Changes, changes...)
	}

	m.log.Info().
		Bool("dry_run", dryRun).
		Int("tenants", report.Tenants).
		Int("changes", len(report.Changes)).
		Int("failures", len(report.Failures)).
		Msg("system role resync complete")

	return report, nil
}

func (m *Maintainer) resyncTenant(ctx context.Context, t *domain.Tenant, defs []domain.RoleDefinition, dryRun bool) ([]Change, error) {
	var changes []Change

	for _, def := range defs {
		existing, err := m.roles.GetByName(ctx, t.ID, def.Name)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			changes = append(changes, Change{
				TenantID:   t.ID,
				TenantName: t.Name,
				Role:       def.Name,
				Created:    true,
				Added:      def.Capabilities.Sorted(),
			})
			if dryRun {
				continue
			}
			now := time.Now()
			err = m.roles.Create(ctx, &domain.Role{
				ID:           uuid.New(),
				TenantID:     t.ID,
				Name:         def.Name,
				Description:  def.Description,
				Capabilities: def.Capabilities,
				System:       true,
				Protected:    true,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return changes, fmt.Errorf("create role %q: %w", def.Name, err)
			}

		case err != nil:
			return changes, fmt.Errorf("load role %q: %w", def.Name, err)

		default:
			added := def.Capabilities.Diff(existing.Capabilities)
			removed := existing.Capabilities.Diff(def.Capabilities)
			if len(added) == 0 && len(removed) == 0 {
				continue
			}
			changes = append(changes, Change{
				TenantID:   t.ID,
				TenantName: t.Name,
				Role:       def.Name,
				Added:      added,
				Removed:    removed,
			})
			if dryRun {
				continue
			}
			if err := m.roles.UpdateCapabilities(ctx, t.ID, existing.ID, def.Capabilities); err != nil {
				return changes, fmt.Errorf("update role %q: %w", def.Name, err)
			}
		}
	}

	return changes, nil
}
