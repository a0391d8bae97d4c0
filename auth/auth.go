package auth

import (
	"context"
	"net/http"

	"github.com/psycare/psycare/httpx"
)

type ctxKey string

const principalCtxKey = ctxKey("principal")

// LoginPath is where unauthenticated HTML requests are sent.
const LoginPath = "/auth/login"

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID uint
	Role   string
}

// IsZero reports whether nobody is signed in.
func (p Principal) IsZero() bool { return p.UserID == 0 }

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext extracts the principal set by Middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok || p.IsZero() {
		return Principal{}, false
	}
	return p, true
}

// RequireAuth redirects to the login page (HTML) or returns 401 JSON when
// no principal is attached to the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			Unauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Unauthenticated writes the unauthenticated outcome for r.
func Unauthenticated(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
