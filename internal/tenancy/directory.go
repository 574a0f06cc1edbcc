package tenancy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookmehq/bookme/internal/domain"
)

// hostCacheTTL bounds how stale the hostname cache may get. Routing keys
// mutate rarely; 30 seconds keeps the resolve path off the database for the
// common case without making new tenants unreachable for long.
const hostCacheTTL = 30 * time.Second

var labelPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// HostCache caches host -> tenant-id mappings in front of the routing key
// table. Implemented by the redis store; a nil cache disables caching.
type HostCache interface {
	GetTenantID(ctx context.Context, host string) (uuid.UUID, bool, error)
	SetTenantID(ctx context.Context, host string, tenantID uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, hosts ...string) error
}

// Directory is the authoritative mapping from routing key to tenant and the
// entry point for tenant provisioning. Resolve is a pure lookup, safe for
// concurrent high-frequency use (once per inbound request).
type Directory struct {
	tenants     domain.TenantRepository
	keys        domain.RoutingKeyRepository
	provisioner domain.TenantProvisioner
	audit       domain.AuditRepository
	cache       HostCache
	baseDomain  string
	platform    map[string]struct{}
	log         zerolog.Logger
}

// Config for NewDirectory. BaseDomain expands short tenant labels into full
// routing keys; PlatformHosts are the reserved hostnames that resolve to the
// platform-wide scope. The bare base domain is always a platform host.
type Config struct {
	BaseDomain    string
	PlatformHosts []string
}

func NewDirectory(
	tenants domain.TenantRepository,
	keys domain.RoutingKeyRepository,
	provisioner domain.TenantProvisioner,
	audit domain.AuditRepository,
	cache HostCache,
	cfg Config,
	log zerolog.Logger,
) *Directory {
	platform := make(map[string]struct{}, len(cfg.PlatformHosts)+1)
	for _, h := range cfg.PlatformHosts {
		platform[NormalizeHost(h)] = struct{}{}
	}
	if cfg.BaseDomain != "" {
		platform[NormalizeHost(cfg.BaseDomain)] = struct{}{}
	}

	return &Directory{
		tenants:     tenants,
		keys:        keys,
		provisioner: provisioner,
		audit:       audit,
		cache:       cache,
		baseDomain:  NormalizeHost(cfg.BaseDomain),
		platform:    platform,
		log:         log,
	}
}

// NormalizeHost lowercases a hostname and strips any port suffix.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// Resolve maps a routing key to an access scope. Platform hosts yield the
// platform scope; registered tenant hosts yield that tenant's scope; anything
// else is ErrRoutingKeyNotFound. There is no default tenant.
func (d *Directory) Resolve(ctx context.Context, host string) (Scope, error) {
	host = NormalizeHost(host)
	if host == "" {
		return Scope{}, fmt.Errorf("tenancy.Resolve: empty host: %w", domain.ErrRoutingKeyNotFound)
	}

	if _, ok := d.platform[host]; ok {
		return PlatformScope(), nil
	}

	if d.cache != nil {
		id, hit, err := d.cache.GetTenantID(ctx, host)
		if err != nil {
			// A broken cache must not take resolution down with it.
			d.log.Warn().Err(err).Str("host", host).Msg("host cache lookup failed")
		} else if hit {
			t, err := d.tenants.GetByID(ctx, id)
			if err == nil {
				return TenantScope(t), nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return Scope{}, fmt.Errorf("tenancy.Resolve: %w", err)
			}
			// Stale cache entry; fall through to the directory.
		}
	}

	key, err := d.keys.GetByHost(ctx, host)
	if errors.Is(err, domain.ErrNotFound) {
		return Scope{}, fmt.Errorf("tenancy.Resolve: host %q: %w", host, domain.ErrRoutingKeyNotFound)
	}
	if err != nil {
		return Scope{}, fmt.Errorf("tenancy.Resolve: %w", err)
	}

	t, err := d.tenants.GetByID(ctx, key.TenantID)
	if err != nil {
		return Scope{}, fmt.Errorf("tenancy.Resolve: tenant for host %q: %w", host, err)
	}

	if d.cache != nil {
		if err := d.cache.SetTenantID(ctx, host, t.ID, hostCacheTTL); err != nil {
			d.log.Warn().Err(err).Str("host", host).Msg("host cache store failed")
		}
	}

	return TenantScope(t), nil
}

// RegisterTenant is the provisioning request. RoutingKey may be a short label
// ("acme"), expanded against the base domain, or a full hostname.
type RegisterTenant struct {
	Name         string
	RoutingKey   string
	ContactEmail string
	ActorID      uuid.UUID
}

// Register provisions a tenant: tenant row, primary routing key, the five
// system roles, and the storage partition, all in one transaction. A hostname
// already owned by another tenant fails with ErrDuplicateRoutingKey.
func (d *Directory) Register(ctx context.Context, req RegisterTenant) (*domain.Tenant, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("tenancy.Register: tenant name required")
	}

	host, label, err := d.expandRoutingKey(req.RoutingKey)
	if err != nil {
		return nil, fmt.Errorf("tenancy.Register: %w", err)
	}
	if _, reserved := d.platform[host]; reserved {
		return nil, fmt.Errorf("tenancy.Register: host %q is reserved: %w", host, domain.ErrDuplicateRoutingKey)
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:            uuid.New(),
		Name:          req.Name,
		PartitionName: "tenant_" + strings.ReplaceAll(label, "-", "_"),
		Status:        domain.TenantStatusTrial,
		ContactEmail:  req.ContactEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	primary := &domain.RoutingKey{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Host:      host,
		IsPrimary: true,
		CreatedAt: now,
	}

	roles := make([]*domain.Role, 0, 5)
	for _, def := range domain.SystemRoleDefinitions() {
		roles = append(roles, &domain.Role{
			ID:           uuid.New(),
			TenantID:     tenant.ID,
			Name:         def.Name,
			Description:  def.Description,
			Capabilities: def.Capabilities,
			System:       true,
			Protected:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	err = d.provisioner.Provision(ctx, domain.Provision{
		Tenant:     tenant,
		PrimaryKey: primary,
		Roles:      roles,
	})
	if err != nil {
		return nil, fmt.Errorf("tenancy.Register: %w", err)
	}

	d.invalidateHosts(ctx, host)
	d.recordAudit(ctx, tenant.ID, req.ActorID, domain.AuditTenantCreated, map[string]any{
		"partition": tenant.PartitionName,
		"host":      host,
	})

	d.log.Info().
		Str("tenant", tenant.Name).
		Str("host", host).
		Str("partition", tenant.PartitionName).
		Msg("tenant provisioned")

	return tenant, nil
}

// AddRoutingKey attaches a secondary hostname to an existing tenant.
func (d *Directory) AddRoutingKey(ctx context.Context, tenantID uuid.UUID, host string) (*domain.RoutingKey, error) {
	host, _, err := d.expandRoutingKey(host)
	if err != nil {
		return nil, fmt.Errorf("tenancy.AddRoutingKey: %w", err)
	}
	if _, reserved := d.platform[host]; reserved {
		return nil, fmt.Errorf("tenancy.AddRoutingKey: host %q is reserved: %w", host, domain.ErrDuplicateRoutingKey)
	}

	if _, err := d.tenants.GetByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("tenancy.AddRoutingKey: %w", err)
	}

	key := &domain.RoutingKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Host:      host,
		IsPrimary: false,
		CreatedAt: time.Now(),
	}
	if err := d.keys.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("tenancy.AddRoutingKey: %w", err)
	}

	d.invalidateHosts(ctx, host)
	return key, nil
}

// SetPrimary promotes one of a tenant's routing keys to primary, demoting the
// current one in the same transaction.
func (d *Directory) SetPrimary(ctx context.Context, tenantID, keyID uuid.UUID) error {
	if err := d.keys.SetPrimary(ctx, tenantID, keyID); err != nil {
		return fmt.Errorf("tenancy.SetPrimary: %w", err)
	}
	return nil
}

// Teardown irreversibly destroys a tenant and drops its storage partition.
func (d *Directory) Teardown(ctx context.Context, tenantID, actorID uuid.UUID) error {
	tenant, hosts, err := d.provisioner.Teardown(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("tenancy.Teardown: %w", err)
	}

	d.invalidateHosts(ctx, hosts...)
	d.recordAudit(ctx, uuid.Nil, actorID, domain.AuditTenantTeardown, map[string]any{
		"tenant_id": tenant.ID.String(),
		"name":      tenant.Name,
		"partition": tenant.PartitionName,
	})

	d.log.Warn().
		Str("tenant", tenant.Name).
		Str("partition", tenant.PartitionName).
		Msg("tenant torn down")

	return nil
}

// RoutingKeyRename describes one host rewrite performed by ConvertSuffix.
type RoutingKeyRename struct {
	ID   uuid.UUID
	From string
	To   string
}

// ConvertSuffix bulk-rewrites stored routing keys from one base-domain suffix
// to another (environment migration helper). With dryRun it only reports what
// would change.
func (d *Directory) ConvertSuffix(ctx context.Context, from, to string, dryRun bool) ([]RoutingKeyRename, error) {
	from = "." + strings.TrimPrefix(NormalizeHost(from), ".")
	to = "." + strings.TrimPrefix(NormalizeHost(to), ".")
	if from == to {
		return nil, fmt.Errorf("tenancy.ConvertSuffix: suffixes are identical")
	}

	keys, err := d.keys.ListBySuffix(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("tenancy.ConvertSuffix: %w", err)
	}

	renames := make([]RoutingKeyRename, 0, len(keys))
	for _, k := range keys {
		next := strings.TrimSuffix(k.Host, from) + to
		renames = append(renames, RoutingKeyRename{ID: k.ID, From: k.Host, To: next})

		if dryRun {
			continue
		}
		if err := d.keys.UpdateHost(ctx, k.ID, next); err != nil {
			return renames, fmt.Errorf("tenancy.ConvertSuffix: %q -> %q: %w", k.Host, next, err)
		}
		d.invalidateHosts(ctx, k.Host, next)
	}

	return renames, nil
}

// expandRoutingKey turns a short label into "<label>.<base domain>" and
// returns the full host plus the label used for partition naming.
func (d *Directory) expandRoutingKey(key string) (host, label string, err error) {
	key = NormalizeHost(key)
	if key == "" {
		return "", "", fmt.Errorf("routing key required")
	}

	if !strings.Contains(key, ".") {
		if d.baseDomain == "" {
			return "", "", fmt.Errorf("short label %q given but no base domain configured", key)
		}
		if !labelPattern.MatchString(key) {
			return "", "", fmt.Errorf("invalid tenant label %q", key)
		}
		return key + "." + d.baseDomain, key, nil
	}

	label = strings.SplitN(key, ".", 2)[0]
	if !labelPattern.MatchString(label) {
		return "", "", fmt.Errorf("invalid tenant label %q", label)
	}
	return key, label, nil
}

func (d *Directory) invalidateHosts(ctx context.Context, hosts ...string) {
	if d.cache == nil || len(hosts) == 0 {
		return
	}
	if err := d.cache.Delete(ctx, hosts...); err != nil {
		d.log.Warn().Err(err).Strs("hosts", hosts).Msg("host cache invalidation failed")
	}
}

func (d *Directory) recordAudit(ctx context.Context, tenantID, actorID uuid.UUID, event string, details map[string]any) {
	if d.audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ActorID:   actorID,
		Event:     event,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := d.audit.Record(ctx, entry); err != nil {
		d.log.Error().Err(err).Str("event", event).Msg("audit record failed")
	}
}
