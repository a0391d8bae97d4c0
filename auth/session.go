package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "session"
	// DefaultSecret is the development signing secret.
	DefaultSecret = "devsessionsecret"
)

// Verifier re-checks a session principal against the user store. It returns
// the current principal (the stored role wins over the token) and false when
// the user no longer exists.
type Verifier func(ctx context.Context, p Principal) (Principal, bool, error)

type claims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Sessions issues and reads HS256 session tokens stored in an HttpOnly cookie.
type Sessions struct {
	secret   []byte
	ttl      time.Duration
	secure   bool
	verifier Verifier
	now      func() time.Time
}

// NewSessions creates a session manager. An empty secret falls back to DefaultSecret.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if secret == "" {
		secret = DefaultSecret
	}
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SetVerifier configures the per-request user check. Nil disables it.
func (s *Sessions) SetVerifier(v Verifier) { s.verifier = v }

// SetSecureCookie marks the cookie Secure (production over TLS).
func (s *Sessions) SetSecureCookie(secure bool) { s.secure = secure }

// Create signs a token for p and sets the session cookie.
func (s *Sessions) Create(w http.ResponseWriter, p Principal) error {
	if p.IsZero() {
		return errors.New("auth: empty principal")
	}
	now := s.now()
	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: p.UserID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	value, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return nil
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Parse validates the session cookie and returns its principal.
func (s *Sessions) Parse(r *http.Request) (Principal, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return Principal{}, false
	}
	var cl claims
	_, err = jwt.ParseWithClaims(c.Value, &cl, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || cl.UserID == 0 {
		return Principal{}, false
	}
	return Principal{UserID: cl.UserID, Role: cl.Role}, true
}

// Middleware attaches the session principal to the request context.
// A session whose user fails verification is cleared and the request
// continues unauthenticated.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.Parse(r)
		if ok && s.verifier != nil {
			current, exists, err := s.verifier(r.Context(), p)
			switch {
			case err != nil:
				logrus.WithError(err).WithField("user_id", p.UserID).Error("session verification failed")
				ok = false
			case !exists:
				s.Clear(w)
				ok = false
			default:
				p = current
			}
		}
		if ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}
