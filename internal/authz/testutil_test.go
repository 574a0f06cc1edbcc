package authz_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookmehq/bookme/internal/domain"
)

// mockMembershipRepo implements domain.MembershipRepository; only GetActive
// is exercised by the resolver and the tenant surface.
type mockMembershipRepo struct {
	getActiveFunc func(ctx context.Context, tenantID, principalID uuid.UUID) (*domain.Membership, error)
}

func (m *mockMembershipRepo) GetActive(ctx context.Context, tenantID, principalID uuid.UUID) (*domain.Membership, error) {
	return m.getActiveFunc(ctx, tenantID, principalID)
}

func (m *mockMembershipRepo) ListByTenant(_ context.Context, _ uuid.UUID) ([]*domain.Membership, error) {
	panic("not implemented")
}

func (m *mockMembershipRepo) ListByPrincipal(_ context.Context, _ uuid.UUID) ([]*domain.Membership, error) {
	panic("not implemented")
}

func (m *mockMembershipRepo) Create(_ context.Context, _ *domain.Membership) error {
	panic("not implemented")
}

func (m *mockMembershipRepo) UpdateRole(_ context.Context, _, _, _ uuid.UUID) error {
	panic("not implemented")
}

func (m *mockMembershipRepo) Deactivate(_ context.Context, _, _ uuid.UUID) error {
	panic("not implemented")
}

// mockRoleRepo implements domain.RoleRepository; only GetByID is exercised.
type mockRoleRepo struct {
	getByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Role, error)
}

func (m *mockRoleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Role, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockRoleRepo) GetByName(_ context.Context, _ uuid.UUID, _ string) (*domain.Role, error) {
	panic("not implemented")
}

func (m *mockRoleRepo) ListByTenant(_ context.Context, _ uuid.UUID) ([]*domain.Role, error) {
	panic("not implemented")
}

func (m *mockRoleRepo) ListSystem(_ context.Context, _ uuid.UUID) ([]*domain.Role, error) {
	panic("not implemented")
}

func (m *mockRoleRepo) Create(_ context.Context, _ *domain.Role) error {
	panic("not implemented")
}

func (m *mockRoleRepo) UpdateCapabilities(_ context.Context, _, _ uuid.UUID, _ domain.CapabilitySet) error {
	panic("not implemented")
}

func (m *mockRoleRepo) Delete(_ context.Context, _, _ uuid.UUID) error {
	panic("not implemented")
}
