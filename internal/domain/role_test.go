package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmehq/bookme/internal/domain"
)

func TestSystemRoleDefinitions(t *testing.T) {
	t.Parallel()

	defs := domain.SystemRoleDefinitions()

	require.Len(t, defs, 5)
	assert.Equal(t, domain.RoleViewer, defs[0].Name)
	assert.Equal(t, domain.RoleStaff, defs[1].Name)
	assert.Equal(t, domain.RoleManager, defs[2].Name)
	assert.Equal(t, domain.RoleOperator, defs[3].Name)
	assert.Equal(t, domain.RoleOwner, defs[4].Name)

	// Each role's capability set must be a subset of the next one up.
	for i := range len(defs) - 1 {
		assert.True(t, defs[i].Capabilities.SubsetOf(defs[i+1].Capabilities),
			"%s should be a subset of %s", defs[i].Name, defs[i+1].Name)
	}

	// No system role may carry a reserved capability.
	for _, def := range defs {
		for _, c := range def.Capabilities.Sorted() {
			assert.True(t, c.Registered(), "%s carries unregistered %q", def.Name, c)
			assert.False(t, c.Reserved(), "%s carries reserved %q", def.Name, c)
		}
	}

	// The built-in definitions must pass their own validation gate.
	assert.NoError(t, domain.ValidateChain(defs))
}

func TestValidateChain(t *testing.T) {
	t.Parallel()

	t.Run("broken_subset_order", func(t *testing.T) {
		t.Parallel()

		defs := []domain.RoleDefinition{
			{Name: "A", Capabilities: domain.NewCapabilitySet(domain.CapBookingView, domain.CapBookingEdit)},
			{Name: "B", Capabilities: domain.NewCapabilitySet(domain.CapBookingView)},
		}

		err := domain.ValidateChain(defs)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	})

	t.Run("unregistered_capability", func(t *testing.T) {
		t.Parallel()

		defs := []domain.RoleDefinition{
			{Name: "A", Capabilities: domain.NewCapabilitySet(domain.Capability("no.such.cap"))},
		}

		err := domain.ValidateChain(defs)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnknownCapability)
	})

	t.Run("single_role_is_valid", func(t *testing.T) {
		t.Parallel()

		defs := []domain.RoleDefinition{
			{Name: "Solo", Capabilities: domain.NewCapabilitySet(domain.CapBookingView)},
		}

		assert.NoError(t, domain.ValidateChain(defs))
	})
}

func TestValidateCustom(t *testing.T) {
	t.Parallel()

	role := &domain.Role{Name: "Receptionist"}

	t.Run("registered_subset_accepted", func(t *testing.T) {
		t.Parallel()

		caps := domain.NewCapabilitySet(
			domain.CapBookingView,
			domain.CapBookingCreate,
			domain.CapCustomerView,
		)

		assert.NoError(t, role.ValidateCustom(caps))
	})

	t.Run("reserved_capability_rejected", func(t *testing.T) {
		t.Parallel()

		caps := domain.NewCapabilitySet(
			domain.CapBookingView,
			domain.CapPlatformOwnerGrant,
		)

		err := role.ValidateCustom(caps)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrReservedCapability)
	})

	t.Run("unknown_capability_rejected", func(t *testing.T) {
		t.Parallel()

		caps := domain.NewCapabilitySet(domain.Capability("booking.telepathy"))

		err := role.ValidateCustom(caps)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnknownCapability)
	})
}
