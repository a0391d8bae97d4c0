package services

import (
	"context"
	"errors"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/policy"
	"github.com/psycare/psycare/internal/store"
	"github.com/psycare/psycare/validation"
	"github.com/sirupsen/logrus"
)

// LinkOutcome tells a successful link request apart from a repeated one.
type LinkOutcome string

const (
	LinkCreated       LinkOutcome = "created"
	LinkAlreadyExists LinkOutcome = "already_linked"
)

type LinkInput struct {
	PatientEmail string `json:"patient_email" validate:"required,max=255,mailbox"`
}

type LinkResult struct {
	Outcome    LinkOutcome        `json:"outcome"`
	Assignment *models.Assignment `json:"assignment"`
	Patient    *models.User       `json:"patient"`
}

// TherapistLink is a patient's current therapist.
type TherapistLink struct {
	Assignment *models.Assignment `json:"assignment"`
	Therapist  *models.User       `json:"therapist"`
}

// AssignmentService is the patient-therapist registry.
type AssignmentService struct {
	base
}

// CreateLink links the patient with the given email to the acting therapist.
// Linking an already linked pair succeeds with LinkAlreadyExists.
func (s *AssignmentService) CreateLink(ctx context.Context, p auth.Principal, in LinkInput) (*LinkResult, error) {
	if err := s.authorize(ctx, p, gate.ActionCreate, policy.Assignment, nil); err != nil {
		return nil, err
	}
	in.PatientEmail = models.NormalizeEmail(in.PatientEmail)
	if v := validation.Struct(in); !v.Empty() {
		return nil, NewValidationError(v)
	}

	res := &LinkResult{}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		patient, err := tx.GetUserByEmail(ctx, in.PatientEmail)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !patient.IsPatient()) {
			return NewNotFoundError("patient_not_found")
		}
		if err != nil {
			return err
		}
		res.Patient = patient
		existing, err := tx.GetAssignment(ctx, patient.ID, p.UserID)
		if err == nil {
			res.Outcome, res.Assignment = LinkAlreadyExists, existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		a := &models.Assignment{PatientID: patient.ID, TherapistID: p.UserID}
		if err := tx.CreateAssignment(ctx, a); err != nil {
			return err
		}
		res.Outcome, res.Assignment = LinkCreated, a
		return nil
	})
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent request created the pair first.
		existing, gerr := s.store.GetAssignment(ctx, res.Patient.ID, p.UserID)
		if gerr != nil {
			return nil, gerr
		}
		res.Outcome, res.Assignment = LinkAlreadyExists, existing
		err = nil
	}
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"therapist_id": p.UserID,
		"patient_id":   res.Patient.ID,
		"outcome":      res.Outcome,
	}).Info("assignment requested")
	return res, nil
}

// ListPatients returns the acting therapist's patients by display name.
func (s *AssignmentService) ListPatients(ctx context.Context, p auth.Principal) ([]models.User, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.Assignment, nil); err != nil {
		return nil, err
	}
	return s.store.ListPatientsForTherapist(ctx, p.UserID)
}

// CurrentTherapist returns the acting patient's first therapist link, or nil.
func (s *AssignmentService) CurrentTherapist(ctx context.Context, p auth.Principal) (*TherapistLink, error) {
	if err := s.authorize(ctx, p, gate.ActionView, policy.TherapistLink, nil); err != nil {
		return nil, err
	}
	a, err := s.store.FirstAssignmentForPatient(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetUserByID(ctx, a.TherapistID)
	if err != nil {
		return nil, err
	}
	return &TherapistLink{Assignment: a, Therapist: t}, nil
}
