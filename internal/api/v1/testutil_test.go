package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/rolesync"
	"github.com/bookmehq/bookme/internal/server/middleware"
	"github.com/bookmehq/bookme/internal/tenancy"
)

// ---------------------------------------------------------------------------
// Context helpers — inject principal and scope for DoCtx
// ---------------------------------------------------------------------------

func platformCtx(p *domain.Principal) context.Context {
	ctx := tenancy.WithScope(context.Background(), tenancy.PlatformScope())
	return middleware.WithPrincipal(ctx, p)
}

func tenantCtx(tenant *domain.Tenant, p *domain.Principal) context.Context {
	ctx := tenancy.WithScope(context.Background(), tenancy.TenantScope(tenant))
	return middleware.WithPrincipal(ctx, p)
}

func platformOwner() *domain.Principal {
	return &domain.Principal{
		ID:                   uuid.MustParse("00000000-0000-0000-0000-0000000000aa"),
		Email:                "owner@bookme.dev",
		IsActive:             true,
		PlatformOwner:        true,
		PlatformOperator:     true,
		AdminSurfaceEligible: true,
	}
}

func tenantManager() *domain.Principal {
	return &domain.Principal{
		ID:       uuid.MustParse("00000000-0000-0000-0000-0000000000bb"),
		Email:    "manager@acme.test",
		IsActive: true,
	}
}

func fixedTenant() *domain.Tenant {
	return &domain.Tenant{
		ID:            uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Name:          "Acme Spa",
		PartitionName: "tenant_acme_spa",
		Status:        domain.TenantStatusActive,
	}
}

// ---------------------------------------------------------------------------
// Mock PermissionResolver
// ---------------------------------------------------------------------------

type mockResolver struct {
	canFunc func(ctx context.Context, p *domain.Principal, scope tenancy.Scope, cap domain.Capability) (bool, error)
}

func (m *mockResolver) Can(ctx context.Context, p *domain.Principal, scope tenancy.Scope, cap domain.Capability) (bool, error) {
	return m.canFunc(ctx, p, scope, cap)
}

func allowAll() *mockResolver {
	return &mockResolver{
		canFunc: func(_ context.Context, _ *domain.Principal, _ tenancy.Scope, _ domain.Capability) (bool, error) {
			return true, nil
		},
	}
}

func denyAll() *mockResolver {
	return &mockResolver{
		canFunc: func(_ context.Context, _ *domain.Principal, _ tenancy.Scope, _ domain.Capability) (bool, error) {
			return false, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tenants     domain.TenantRepository
	routingKeys domain.RoutingKeyRepository
	principals  domain.PrincipalRepository
	memberships domain.MembershipRepository
	roles       domain.RoleRepository
	audit       domain.AuditRepository
}

func (m *mockDataStore) Tenants() domain.TenantRepository         { return m.tenants }
func (m *mockDataStore) RoutingKeys() domain.RoutingKeyRepository { return m.routingKeys }
func (m *mockDataStore) Principals() domain.PrincipalRepository   { return m.principals }
func (m *mockDataStore) Memberships() domain.MembershipRepository { return m.memberships }
func (m *mockDataStore) Roles() domain.RoleRepository             { return m.roles }
func (m *mockDataStore) Audit() domain.AuditRepository            { return m.audit }

// ---------------------------------------------------------------------------
// Mock TenantRepository
// ---------------------------------------------------------------------------

type mockTenantRepo struct {
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	listFunc         func(ctx context.Context) ([]*domain.Tenant, error)
	updateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTenantRepo) List(ctx context.Context) ([]*domain.Tenant, error) {
	return m.listFunc(ctx)
}

func (m *mockTenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

// ---------------------------------------------------------------------------
// Mock RoutingKeyRepository
// ---------------------------------------------------------------------------

type mockRoutingKeyRepo struct {
	listByTenantFunc func(ctx context.Context, tenantID uuid.UUID) ([]*domain.RoutingKey, error)
}

func (m *mockRoutingKeyRepo) GetByHost(_ context.Context, _ string) (*domain.RoutingKey, error) {
	panic("not implemented")
}

func (m *mockRoutingKeyRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.RoutingKey, error) {
	return m.listByTenantFunc(ctx, tenantID)
}

func (m *mockRoutingKeyRepo) ListBySuffix(_ context.Context, _ string) ([]*domain.RoutingKey, error) {
	panic("not implemented")
}

func (m *mockRoutingKeyRepo) Create(_ context.Context, _ *domain.RoutingKey) error {
	panic("not implemented")
}

func (m *mockRoutingKeyRepo) UpdateHost(_ context.Context, _ uuid.UUID, _ string) error {
	panic("not implemented")
}

func (m *mockRoutingKeyRepo) SetPrimary(_ context.Context, _, _ uuid.UUID) error {
	panic("not implemented")
}

// ---------------------------------------------------------------------------
// Mock PrincipalRepository
// ---------------------------------------------------------------------------

type mockPrincipalRepo struct {
	createFunc  func(ctx context.Context, p *domain.Principal) error
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Principal, error)
	updateFunc  func(ctx context.Context, p *domain.Principal) error
	deleteFunc  func(ctx context.Context, id uuid.UUID) error
	listFunc    func(ctx context.Context, limit, offset int) ([]*domain.Principal, error)
}

func (m *mockPrincipalRepo) Create(ctx context.Context, p *domain.Principal) error {
	return m.createFunc(ctx, p)
}

func (m *mockPrincipalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Principal, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockPrincipalRepo) GetByEmail(_ context.Context, _ string) (*domain.Principal, error) {
	panic("not implemented")
}

func (m *mockPrincipalRepo) Update(ctx context.Context, p *domain.Principal) error {
	return m.updateFunc(ctx, p)
}

func (m *mockPrincipalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockPrincipalRepo) List(ctx context.Context, limit, offset int) ([]*domain.Principal, error) {
	return m.listFunc(ctx, limit, offset)
}

func (m *mockPrincipalRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID) error {
	panic("not implemented")
}

// ---------------------------------------------------------------------------
// Mock MembershipRepository
// ---------------------------------------------------------------------------

type mockMembershipRepo struct {
	listByTenantFunc func(ctx context.Context, tenantID uuid.UUID) ([]*domain.Membership, error)
	createFunc       func(ctx context.Context, m *domain.Membership) error
	updateRoleFunc   func(ctx context.Context, tenantID, id, roleID uuid.UUID) error
	deactivateFunc   func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockMembershipRepo) GetActive(_ context.Context, _, _ uuid.UUID) (*domain.Membership, error) {
	panic("not implemented")
}

func (m *mockMembershipRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Membership, error) {
	return m.listByTenantFunc(ctx, tenantID)
}

func (m *mockMembershipRepo) ListByPrincipal(_ context.Context, _ uuid.UUID) ([]*domain.Membership, error) {
	panic("not implemented")
}

func (m *mockMembershipRepo) Create(ctx context.Context, mem *domain.Membership) error {
	return m.createFunc(ctx, mem)
}

func (m *mockMembershipRepo) UpdateRole(ctx context.Context, tenantID, id, roleID uuid.UUID) error {
	return m.updateRoleFunc(ctx, tenantID, id, roleID)
}

func (m *mockMembershipRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deactivateFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock RoleRepository
// ---------------------------------------------------------------------------

type mockRoleRepo struct {
	getByIDFunc            func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Role, error)
	listByTenantFunc       func(ctx context.Context, tenantID uuid.UUID) ([]*domain.Role, error)
	createFunc             func(ctx context.Context, r *domain.Role) error
	updateCapabilitiesFunc func(ctx context.Context, tenantID, id uuid.UUID, caps domain.CapabilitySet) error
	deleteFunc             func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockRoleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Role, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockRoleRepo) GetByName(_ context.Context, _ uuid.UUID, _ string) (*domain.Role, error) {
	panic("not implemented")
}

func (m *mockRoleRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Role, error) {
	return m.listByTenantFunc(ctx, tenantID)
}

func (m *mockRoleRepo) ListSystem(_ context.Context, _ uuid.UUID) ([]*domain.Role, error) {
	panic("not implemented")
}

func (m *mockRoleRepo) Create(ctx context.Context, r *domain.Role) error {
	return m.createFunc(ctx, r)
}

func (m *mockRoleRepo) UpdateCapabilities(ctx context.Context, tenantID, id uuid.UUID, caps domain.CapabilitySet) error {
	return m.updateCapabilitiesFunc(ctx, tenantID, id, caps)
}

func (m *mockRoleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock AuditRepository — records entries for assertion
// ---------------------------------------------------------------------------

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (m *mockAuditRepo) Record(_ context.Context, e *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepo) ListByTenant(_ context.Context, _ uuid.UUID, _, _ int) ([]*domain.AuditEntry, error) {
	panic("not implemented")
}

func (m *mockAuditRepo) ListByEvent(_ context.Context, _ string, _, _ int) ([]*domain.AuditEntry, error) {
	panic("not implemented")
}

func (m *mockAuditRepo) recorded() []*domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries
}

// ---------------------------------------------------------------------------
// Mock TenantDirectory
// ---------------------------------------------------------------------------

type mockDirectory struct {
	registerFunc      func(ctx context.Context, req tenancy.RegisterTenant) (*domain.Tenant, error)
	addRoutingKeyFunc func(ctx context.Context, tenantID uuid.UUID, host string) (*domain.RoutingKey, error)
	setPrimaryFunc    func(ctx context.Context, tenantID, keyID uuid.UUID) error
	teardownFunc      func(ctx context.Context, tenantID, actorID uuid.UUID) error
}

func (m *mockDirectory) Register(ctx context.Context, req tenancy.RegisterTenant) (*domain.Tenant, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockDirectory) AddRoutingKey(ctx context.Context, tenantID uuid.UUID, host string) (*domain.RoutingKey, error) {
	return m.addRoutingKeyFunc(ctx, tenantID, host)
}

func (m *mockDirectory) SetPrimary(ctx context.Context, tenantID, keyID uuid.UUID) error {
	return m.setPrimaryFunc(ctx, tenantID, keyID)
}

func (m *mockDirectory) Teardown(ctx context.Context, tenantID, actorID uuid.UUID) error {
	return m.teardownFunc(ctx, tenantID, actorID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock RoleResyncer
// ---------------------------------------------------------------------------

type mockResyncer struct {
	resyncFunc func(ctx context.Context, defs []domain.RoleDefinition, dryRun bool) (*rolesync.Report, error)
}

func (m *mockResyncer) Resync(ctx context.Context, defs []domain.RoleDefinition, dryRun bool) (*rolesync.Report, error) {
	return m.resyncFunc(ctx, defs, dryRun)
}
