package policy

import (
	"context"
	"net/http"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/httpx"
)

// Access holds the configured gate. It is the single authorization point:
// every service asks it before touching a record.
type Access struct {
	Gate *gate.Gate[auth.Principal]
}

// NewAccess wires the role profiles and the record policies.
func NewAccess(assignments AssignmentChecker) *Access {
	g := gate.New[auth.Principal](RoleProfiles())
	owner := NewOwnershipPolicy()
	g.Register(Journal, owner)
	g.Register(Mood, owner)
	g.Register(Resource, owner)
	linked := NewAssignmentPolicy(assignments)
	g.Register(PatientJournal, linked)
	g.Register(PatientMood, linked)
	g.Register(Alert, NewAlertPolicy())
	return &Access{Gate: g}
}

// Authorize returns nil when principal may perform action on resource.
// The decision has no side effects.
func (a *Access) Authorize(ctx context.Context, principal auth.Principal, action gate.Action, resourceType string, resource any) error {
	return a.Gate.Authorize(ctx, principal, action, resourceType, resource)
}

// Can is Authorize reduced to a bool.
func (a *Access) Can(ctx context.Context, principal auth.Principal, action gate.Action, resourceType string, resource any) bool {
	return a.Authorize(ctx, principal, action, resourceType, resource) == nil
}

// RequireRole returns middleware admitting only principals with role.
func (a *Access) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				auth.Unauthenticated(w, r)
				return
			}
			if p.Role != role {
				httpx.JSONError(w, http.StatusForbidden, gate.Reason(gate.ErrWrongRole), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission returns middleware checking only the role gate for
// resourceType:action.
func (a *Access) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				auth.Unauthenticated(w, r)
				return
			}
			if !a.Gate.CanProfile(r.Context(), p, action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, gate.Reason(gate.ErrWrongRole), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
