package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Principal is an authenticated identity. The three platform flags are
// independent except for the owner => operator implication:
//
//   - PlatformOwner: unrestricted platform access, may grant flags.
//   - PlatformOperator: limited platform access, no privilege-grant rights.
//   - AdminSurfaceEligible: may attempt to reach an admin surface at all
//     (necessary but never sufficient).
type Principal struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // argon2id
	FirstName    string
	LastName     string
	IsActive     bool

	PlatformOwner        bool
	PlatformOperator     bool
	AdminSurfaceEligible bool

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// Normalize enforces the flag invariant platform_owner => platform_operator.
// Called on every write path; the resolver re-checks it on reads so a
// hand-edited row cannot widen or narrow access unexpectedly.
func (p *Principal) Normalize() {
	if p.PlatformOwner {
		p.PlatformOperator = true
	}
}

// PlatformEligible reports whether the principal holds any reserved platform
// flag. Operators may not edit or delete platform-eligible principals.
func (p *Principal) PlatformEligible() bool {
	return p.PlatformOwner || p.PlatformOperator || p.AdminSurfaceEligible
}

// FullName returns the display name, falling back to the email address.
func (p *Principal) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Email
	}
}

type PrincipalRepository interface {
	Create(ctx context.Context, p *Principal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	GetByEmail(ctx context.Context, email string) (*Principal, error)
	Update(ctx context.Context, p *Principal) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Principal, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}
