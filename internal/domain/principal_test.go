package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookmehq/bookme/internal/domain"
)

func TestPrincipalNormalize(t *testing.T) {
	t.Parallel()

	t.Run("owner_implies_operator", func(t *testing.T) {
		t.Parallel()

		p := &domain.Principal{PlatformOwner: true}
		p.Normalize()

		assert.True(t, p.PlatformOperator)
	})

	t.Run("operator_alone_unchanged", func(t *testing.T) {
		t.Parallel()

		p := &domain.Principal{PlatformOperator: true}
		p.Normalize()

		assert.False(t, p.PlatformOwner)
		assert.True(t, p.PlatformOperator)
	})
}

func TestPrincipalPlatformEligible(t *testing.T) {
	t.Parallel()

	assert.False(t, (&domain.Principal{}).PlatformEligible())
	assert.True(t, (&domain.Principal{PlatformOwner: true}).PlatformEligible())
	assert.True(t, (&domain.Principal{PlatformOperator: true}).PlatformEligible())
	assert.True(t, (&domain.Principal{AdminSurfaceEligible: true}).PlatformEligible())
}

func TestPrincipalFullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    domain.Principal
		want string
	}{
		{"both_names", domain.Principal{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first_only", domain.Principal{FirstName: "Ada"}, "Ada"},
		{"fallback_email", domain.Principal{Email: "ada@example.com"}, "ada@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.p.FullName())
		})
	}
}
