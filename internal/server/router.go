// Package server wires services, handlers and middleware into the HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/handlers"
	"github.com/psycare/psycare/internal/middleware"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/policy"
	"github.com/psycare/psycare/internal/ratelimit"
	"github.com/psycare/psycare/internal/services"
	"github.com/psycare/psycare/internal/store"
)

const principalCacheTTL = time.Minute

// Deps are the collaborators the application is built from.
type Deps struct {
	Store    *store.Store
	Sessions *auth.Sessions
	Limiter  ratelimit.Limiter
	Options  services.Options
}

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	handler  http.Handler
	access   *policy.Access
	Services *services.Services
}

// NewApp creates a new application with all routes configured.
func NewApp(d Deps) *App {
	access := policy.NewAccess(d.Store)
	d.Sessions.SetVerifier(policy.NewPrincipalResolver(d.Store, principalCacheTTL).Verify)
	app := &App{
		mux:      http.NewServeMux(),
		access:   access,
		Services: services.New(d.Store, access, d.Options),
	}
	app.setupRoutes(d)
	app.handler = middleware.RequestLogger(middleware.Recoverer(d.Sessions.Middleware(middleware.Prefs(app.mux))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes(d Deps) {
	ah := handlers.NewAuthHandler(a.Services.Accounts, d.Sessions, d.Limiter)
	ph := handlers.NewPatientHandler(a.Services)
	th := handlers.NewTherapistHandler(a.Services)

	// Public routes
	a.mux.HandleFunc("GET /health", handlers.Health(d.Store))
	a.mux.HandleFunc("GET /{$}", ah.Index)
	a.mux.HandleFunc("GET /auth/login", ah.Form("login"))
	a.mux.HandleFunc("GET /auth/register", ah.Form("register"))
	a.mux.HandleFunc("POST /auth/login", ah.Login)
	a.mux.HandleFunc("POST /auth/register", ah.Register)
	a.mux.Handle("POST /auth/logout", auth.RequireAuth(http.HandlerFunc(ah.Logout)))

	// Patient routes
	patient := a.access.RequireRole(models.RolePatient)
	a.mux.Handle("GET /patient/dashboard", patient(http.HandlerFunc(ph.Dashboard)))
	a.mux.Handle("GET /patient/journal", patient(http.HandlerFunc(ph.Journal)))
	a.mux.Handle("POST /patient/journal/new", patient(http.HandlerFunc(ph.JournalCreate)))
	a.mux.Handle("GET /patient/journal/{id}/edit", patient(http.HandlerFunc(ph.JournalEdit)))
	a.mux.Handle("POST /patient/journal/{id}/edit", patient(http.HandlerFunc(ph.JournalUpdate)))
	a.mux.Handle("POST /patient/journal/{id}/delete", patient(http.HandlerFunc(ph.JournalDelete)))
	a.mux.Handle("GET /patient/mood", patient(http.HandlerFunc(ph.Mood)))
	a.mux.Handle("POST /patient/mood", patient(http.HandlerFunc(ph.MoodCreate)))
	a.mux.Handle("GET /patient/resources", patient(http.HandlerFunc(ph.Resources)))
	a.mux.Handle("GET /patient/crisis", patient(http.HandlerFunc(ph.Crisis)))
	a.mux.Handle("POST /patient/crisis", a.access.RequirePermission(policy.Alert, gate.ActionCreate)(http.HandlerFunc(ph.CrisisCreate)))

	// Therapist routes
	therapist := a.access.RequireRole(models.RoleTherapist)
	a.mux.Handle("GET /therapist/dashboard", therapist(http.HandlerFunc(th.Dashboard)))
	a.mux.Handle("GET /therapist/patients", therapist(http.HandlerFunc(th.Patients)))
	a.mux.Handle("POST /therapist/patients", therapist(http.HandlerFunc(th.LinkPatient)))
	a.mux.Handle("GET /therapist/patients/{id}/journal", therapist(http.HandlerFunc(th.PatientJournal)))
	a.mux.Handle("GET /therapist/patients/{id}/mood", therapist(http.HandlerFunc(th.PatientMood)))
	a.mux.Handle("POST /therapist/alerts/{id}/resolve", a.access.RequirePermission(policy.Alert, gate.ActionResolve)(http.HandlerFunc(th.ResolveAlert)))
	a.mux.Handle("GET /therapist/resources", therapist(http.HandlerFunc(th.Resources)))
	a.mux.Handle("POST /therapist/resources/new", therapist(http.HandlerFunc(th.ResourceCreate)))
	a.mux.Handle("GET /therapist/resources/{id}/edit", therapist(http.HandlerFunc(th.ResourceEdit)))
	a.mux.Handle("POST /therapist/resources/{id}/edit", therapist(http.HandlerFunc(th.ResourceUpdate)))
	a.mux.Handle("POST /therapist/resources/{id}/delete", therapist(http.HandlerFunc(th.ResourceDelete)))
}
