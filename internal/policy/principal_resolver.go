package policy

import (
	"context"
	"errors"
	"time"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/store"
)

// UserLookup loads users by id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// PrincipalResolver resolves session user ids to stored users through a TTL cache.
type PrincipalResolver struct {
	cache *gate.CachedResolver[uint, *models.User]
}

// NewPrincipalResolver caches lookups for ttl. A missing user resolves to nil.
func NewPrincipalResolver(users UserLookup, ttl time.Duration) *PrincipalResolver {
	inner := gate.ResolverFunc[uint, *models.User](func(ctx context.Context, id uint) (*models.User, error) {
		u, err := users.GetUserByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return u, err
	})
	return &PrincipalResolver{cache: gate.NewCachedResolver[uint, *models.User](inner, ttl)}
}

// Verify implements auth.Verifier. The stored role replaces the token's.
func (r *PrincipalResolver) Verify(ctx context.Context, p auth.Principal) (auth.Principal, bool, error) {
	u, err := r.cache.Resolve(ctx, p.UserID)
	if err != nil {
		return auth.Principal{}, false, err
	}
	if u == nil {
		return auth.Principal{}, false, nil
	}
	return auth.Principal{UserID: u.ID, Role: u.Role}, true, nil
}
