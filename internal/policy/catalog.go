// Package policy is the access control policy: role profiles, record
// policies and the HTTP guards built on them.
package policy

import (
	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/models"
)

// Resource types known to the gate.
const (
	Journal        = "journal"
	Mood           = "mood"
	Alert          = "alert"
	Resource       = "resource"
	Assignment     = "assignment"
	PatientJournal = "patient_journal"
	PatientMood    = "patient_mood"
	TherapistLink  = "therapist_link"
	LinkedResource = "linked_resource"
	RaisedAlert    = "raised_alert"
)

// Role profiles. Mood entries have no update or delete permission on purpose:
// they are append-only.
var (
	PatientProfile = gate.NewStaticProfile(models.RolePatient,
		gate.NewPermission(Journal, gate.Wildcard),
		gate.NewPermission(Mood, gate.ActionCreate),
		gate.NewPermission(Mood, gate.ActionList),
		gate.NewPermission(Alert, gate.ActionCreate),
		gate.NewPermission(RaisedAlert, gate.ActionList),
		gate.NewPermission(TherapistLink, gate.ActionView),
		gate.NewPermission(LinkedResource, gate.ActionList),
	)
	TherapistProfile = gate.NewStaticProfile(models.RoleTherapist,
		gate.NewPermission(Assignment, gate.ActionCreate),
		gate.NewPermission(Assignment, gate.ActionList),
		gate.NewPermission(PatientJournal, gate.ActionList),
		gate.NewPermission(PatientMood, gate.ActionList),
		gate.NewPermission(Alert, gate.ActionList),
		gate.NewPermission(Alert, gate.ActionResolve),
		gate.NewPermission(Resource, gate.Wildcard),
	)
)

// RoleProfiles resolves a principal's profile from its role.
func RoleProfiles() *gate.KeyedProfiles[auth.Principal] {
	return gate.NewKeyedProfiles(func(p auth.Principal) string { return p.Role },
		PatientProfile, TherapistProfile)
}
