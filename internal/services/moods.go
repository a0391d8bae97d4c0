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

type MoodInput struct {
	Rating int    `json:"rating" validate:"gte=1,lte=10"`
	Note   string `json:"note" validate:"max=500"`
}

// MoodService records append-only check-ins. There is no update or delete.
type MoodService struct {
	base
}

func (s *MoodService) Create(ctx context.Context, p auth.Principal, in MoodInput) (*models.MoodEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionCreate, policy.Mood, nil); err != nil {
		return nil, err
	}
	in.Note = strings.TrimSpace(in.Note)
	if v := validation.Struct(in); !v.Empty() {
		return nil, NewValidationError(v)
	}
	m := &models.MoodEntry{PatientID: p.UserID, Rating: in.Rating, Note: in.Note}
	if err := s.store.Transaction(ctx, func(tx *store.Store) error {
		return tx.CreateMood(ctx, m)
	}); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"patient_id": p.UserID, "mood_id": m.ID}).Info("mood entry created")
	return m, nil
}

func (s *MoodService) ListOwn(ctx context.Context, p auth.Principal, limit int) ([]models.MoodEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.Mood, nil); err != nil {
		return nil, err
	}
	return s.store.ListMoodsForPatient(ctx, p.UserID, limit)
}

// ListForAssignedPatient requires an assignment to patientID.
func (s *MoodService) ListForAssignedPatient(ctx context.Context, p auth.Principal, patientID uint, limit int) ([]models.MoodEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.PatientMood, policy.PatientRef{PatientID: patientID}); err != nil {
		return nil, err
	}
	return s.store.ListMoodsForPatient(ctx, patientID, limit)
}

func (s *MoodService) ListForAssignedPatients(ctx context.Context, p auth.Principal, limit int) ([]models.MoodEntry, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.PatientMood, nil); err != nil {
		return nil, err
	}
	return s.store.ListMoodsForTherapist(ctx, p.UserID, limit)
}
