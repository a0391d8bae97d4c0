package policy

import (
	"context"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
)

// Ownable is implemented by records owned by exactly one user.
type Ownable interface {
	GetOwnerID() uint
}

// OwnershipPolicy allows only the owner of a record. A miss is reported as
// not found so other users' records are never confirmed to exist.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

// Authorize allows list and create (nil resource) on the role gate alone.
func (p *OwnershipPolicy) Authorize(_ context.Context, principal auth.Principal, _ gate.Action, resource any) error {
	if resource == nil {
		return nil
	}
	ownable, ok := resource.(Ownable)
	if !ok || ownable.GetOwnerID() != principal.UserID {
		return gate.ErrNotFound
	}
	return nil
}
