package handlers

import (
	"net/http"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/ratelimit"
	"github.com/psycare/psycare/internal/services"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	accounts *services.AccountService
	sessions *auth.Sessions
	limiter  ratelimit.Limiter
}

func NewAuthHandler(accounts *services.AccountService, sessions *auth.Sessions, limiter ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, limiter: limiter}
}

// Index sends a signed-in principal to its dashboard and everyone else to login.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, DashboardPath(p.Role), http.StatusFound)
		return
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}

// Form answers GET on the login and register pages.
func (h *AuthHandler) Form(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.redirectSignedIn(w, r) {
			return
		}
		show(w, r, map[string]string{"page": page})
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.redirectSignedIn(w, r) {
		return
	}
	var in services.RegisterInput
	if err := decode(r, &in, func(f func(string) string) {
		in = services.RegisterInput{
			Email:           f("email"),
			DisplayName:     f("display_name"),
			Password:        f("password"),
			ConfirmPassword: f("confirm_password"),
			Role:            f("role"),
		}
	}); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.sessions.Create(w, auth.Principal{UserID: u.ID, Role: u.Role}); err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, u, DashboardPath(u.Role), "welcome")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.redirectSignedIn(w, r) {
		return
	}
	var in services.LoginInput
	if err := decode(r, &in, func(f func(string) string) {
		in = services.LoginInput{Email: f("email"), Password: f("password")}
	}); err != nil {
		writeError(w, r, err)
		return
	}
	key := ratelimit.LoginKey(models.NormalizeEmail(in.Email))
	blocked, err := h.limiter.Blocked(r.Context(), key)
	if err != nil {
		logrus.WithError(err).Warn("login throttle unavailable")
	}
	if blocked {
		writeError(w, r, services.NewRateLimitedError("too_many_attempts"))
		return
	}
	u, err := h.accounts.Authenticate(r.Context(), in)
	if err != nil {
		if services.IsKind(err, services.KindAuthentication) {
			if ferr := h.limiter.Fail(r.Context(), key); ferr != nil {
				logrus.WithError(ferr).Warn("login throttle unavailable")
			}
		}
		writeError(w, r, err)
		return
	}
	if err := h.limiter.Reset(r.Context(), key); err != nil {
		logrus.WithError(err).Warn("login throttle unavailable")
	}
	if err := h.sessions.Create(w, auth.Principal{UserID: u.ID, Role: u.Role}); err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, u, DashboardPath(u.Role), "")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	done(w, r, http.StatusOK, map[string]string{"status": "signed_out"}, auth.LoginPath, "signed_out")
}

func (h *AuthHandler) redirectSignedIn(w http.ResponseWriter, r *http.Request) bool {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return false
	}
	http.Redirect(w, r, DashboardPath(p.Role), http.StatusFound)
	return true
}
