// Package services implements the use cases. Every operation takes the acting
// principal explicitly and asks the access policy before touching a record.
package services

import (
	"context"
	"time"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/policy"
	"github.com/psycare/psycare/internal/store"
)

// List limits for dashboards and pages.
const (
	PatientDashboardJournals   = 5
	PatientDashboardMoods      = 10
	TherapistDashboardJournals = 10
	TherapistDashboardMoods    = 10
	OpenAlertsLimit            = 10
	RaisedAlertsLimit          = 10
	PatientMoodPageLimit       = 30
	TherapistMoodPageLimit     = 100
)

// Options tunes the services.
type Options struct {
	AllowTherapistRegister bool
	Hasher                 PasswordHasher
	Now                    func() time.Time
}

// Services bundles every use case over one store and one access policy.
type Services struct {
	Accounts    *AccountService
	Assignments *AssignmentService
	Journals    *JournalService
	Moods       *MoodService
	Alerts      *AlertService
	Resources   *ResourceService
	Dashboards  *DashboardService
}

func New(s *store.Store, access *policy.Access, opts Options) *Services {
	if opts.Hasher == nil {
		opts.Hasher = auth.DefaultHasher
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := base{store: s, access: access}
	svc := &Services{
		Accounts:    &AccountService{base: b, hasher: opts.Hasher, allowTherapistRegister: opts.AllowTherapistRegister},
		Assignments: &AssignmentService{base: b},
		Journals:    &JournalService{base: b},
		Moods:       &MoodService{base: b},
		Alerts:      &AlertService{base: b, now: opts.Now},
		Resources:   &ResourceService{base: b},
	}
	svc.Dashboards = &DashboardService{svc: svc}
	return svc
}

type base struct {
	store  *store.Store
	access *policy.Access
}

func (b base) authorize(ctx context.Context, p auth.Principal, action gate.Action, resourceType string, resource any) error {
	return fromGate(b.access.Authorize(ctx, p, action, resourceType, resource))
}
