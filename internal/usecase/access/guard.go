package access

import (
	"fmt"

	"github.com/simaogato/fundme-backend/internal/domain"
)

// Guard restricts privileged operations to a single owner
// The owner is bound at construction and cannot be reassigned.
type Guard struct {
	owner domain.Address
}

// NewGuard creates a Guard for owner
func NewGuard(owner domain.Address) (*Guard, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: owner cannot be the zero address", domain.ErrInvalidAddress)
	}
	return &Guard{owner: owner}, nil
}

// Owner returns the owner address
func (g *Guard) Owner() domain.Address {
	return g.owner
}

// EnsureOwner fails with domain.ErrNotOwner unless caller is the owner
func (g *Guard) EnsureOwner(caller domain.Address) error {
	if caller != g.owner {
		return domain.ErrNotOwner
	}
	return nil
}
