package services

import (
	"context"
	"strings"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/policy"
	"github.com/psycare/psycare/internal/store"
	"github.com/psycare/psycare/validation"
	"github.com/sirupsen/logrus"
)

// JournalInput carries the editable fields. A nil flag means "default" on
// create (shared, not flagged) and "unchanged" on update.
type JournalInput struct {
	Title               string `json:"title" validate:"required,min=2,max=200"`
	Body                string `json:"body" validate:"required,min=2"`
	SharedWithTherapist *bool  `json:"shared_with_therapist"`
	FlaggedRisk         *bool  `json:"flagged_risk"`
}

func (in *JournalInput) normalize() validation.Violations {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	return validation.Struct(in)
}

type JournalService struct {
	base
}

func (s *JournalService) Create(ctx context.Context, p auth.Principal, in JournalInput) (*models.JournalEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionCreate, policy.Journal, nil); err != nil {
		return nil, err
	}
	if v := in.normalize(); !v.Empty() {
		return nil, NewValidationError(v)
	}
	e := &models.JournalEntry{
		PatientID:           p.UserID,
		Title:               in.Title,
		Body:                in.Body,
		SharedWithTherapist: boolOr(in.SharedWithTherapist, true),
		FlaggedRisk:         boolOr(in.FlaggedRisk, false),
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		return tx.CreateJournal(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"patient_id": p.UserID, "journal_id": e.ID}).Info("journal entry created")
	return e, nil
}

// Get returns an entry owned by the acting patient.
func (s *JournalService) Get(ctx context.Context, p auth.Principal, id uint) (*models.JournalEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionView, policy.Journal, nil); err != nil {
		return nil, err
	}
	e, err := s.store.GetJournal(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authorize(ctx, p, gate.ActionView, policy.Journal, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update edits an owned entry. Ownership is checked before the input so
// other patients learn nothing about the record.
func (s *JournalService) Update(ctx context.Context, p auth.Principal, id uint, in JournalInput) (*models.JournalEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionUpdate, policy.Journal, nil); err != nil {
		return nil, err
	}
	var e *models.JournalEntry
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if e, err = tx.GetJournal(ctx, id); err != nil {
			return fromStore(err)
		}
		if err := s.authorize(ctx, p, gate.ActionUpdate, policy.Journal, e); err != nil {
			return err
		}
		if v := in.normalize(); !v.Empty() {
			return NewValidationError(v)
		}
		e.Title, e.Body = in.Title, in.Body
		e.SharedWithTherapist = boolOr(in.SharedWithTherapist, e.SharedWithTherapist)
		e.FlaggedRisk = boolOr(in.FlaggedRisk, e.FlaggedRisk)
		return tx.SaveJournal(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"patient_id": p.UserID, "journal_id": e.ID}).Info("journal entry updated")
	return e, nil
}

func (s *JournalService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	if err := s.authorize(ctx, p, gate.ActionDelete, policy.Journal, nil); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		e, err := tx.GetJournal(ctx, id)
		if err != nil {
			return fromStore(err)
		}
		if err := s.authorize(ctx, p, gate.ActionDelete, policy.Journal, e); err != nil {
			return err
		}
		return fromStore(tx.DeleteJournal(ctx, id, p.UserID))
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"patient_id": p.UserID, "journal_id": id}).Info("journal entry deleted")
	return nil
}

// ListOwn returns the acting patient's entries, newest first.
func (s *JournalService) ListOwn(ctx context.Context, p auth.Principal, limit int) ([]models.JournalEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.Journal, nil); err != nil {
		return nil, err
	}
	return s.store.ListJournalsForPatient(ctx, p.UserID, limit)
}

// ListSharedForPatient returns one assigned patient's shared entries.
// Unshared entries are never returned.
func (s *JournalService) ListSharedForPatient(ctx context.Context, p auth.Principal, patientID uint, limit int) ([]models.JournalEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.PatientJournal, policy.PatientRef{PatientID: patientID}); err != nil {
		return nil, err
	}
	return s.store.ListSharedJournalsForPatient(ctx, patientID, limit)
}

// ListSharedForAssignedPatients returns shared entries across every assigned patient.
func (s *JournalService) ListSharedForAssignedPatients(ctx context.Context, p auth.Principal, limit int) ([]models.JournalEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.PatientJournal, nil); err != nil {
		return nil, err
	}
	return s.store.ListSharedJournalsForTherapist(ctx, p.UserID, limit)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
