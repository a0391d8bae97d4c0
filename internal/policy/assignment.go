package policy

import (
	"context"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
)

// AssignmentChecker answers whether a therapist is linked to a patient.
type AssignmentChecker interface {
	AssignmentExists(ctx context.Context, patientID, therapistID uint) (bool, error)
}

// PatientRef targets one patient's records from the therapist side.
type PatientRef struct {
	PatientID uint
}

// AssignmentPolicy lets a therapist read a patient's data only when assigned.
// Reaching an unassigned patient is an explicit probe and is forbidden.
type AssignmentPolicy struct {
	checker AssignmentChecker
}

func NewAssignmentPolicy(checker AssignmentChecker) *AssignmentPolicy {
	return &AssignmentPolicy{checker: checker}
}

// Authorize allows a nil resource: lists across all assigned patients are
// scoped by their query.
func (p *AssignmentPolicy) Authorize(ctx context.Context, principal auth.Principal, _ gate.Action, resource any) error {
	if resource == nil {
		return nil
	}
	ref, ok := resource.(PatientRef)
	if !ok {
		return gate.ErrForbidden
	}
	linked, err := p.checker.AssignmentExists(ctx, ref.PatientID, principal.UserID)
	if err != nil {
		return err
	}
	if !linked {
		return gate.ErrForbidden
	}
	return nil
}
