package store

import (
	"context"

	"github.com/psycare/psycare/internal/models"
)

// CreateAssignment returns ErrDuplicate when the pair already exists.
func (s *Store) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	return translate("create assignment", s.q(ctx).Create(a).Error)
}

func (s *Store) GetAssignment(ctx context.Context, patientID, therapistID uint) (*models.Assignment, error) {
	var a models.Assignment
	err := s.q(ctx).Where("patient_id = ? AND therapist_id = ?", patientID, therapistID).First(&a).Error
	if err != nil {
		return nil, translate("get assignment", err)
	}
	return &a, nil
}

func (s *Store) AssignmentExists(ctx context.Context, patientID, therapistID uint) (bool, error) {
	var n int64
	err := s.q(ctx).Model(&models.Assignment{}).
		Where("patient_id = ? AND therapist_id = ?", patientID, therapistID).
		Count(&n).Error
	if err != nil {
		return false, translate("count assignment", err)
	}
	return n > 0, nil
}

// FirstAssignmentForPatient returns the patient's earliest link, or ErrNotFound.
func (s *Store) FirstAssignmentForPatient(ctx context.Context, patientID uint) (*models.Assignment, error) {
	var a models.Assignment
	err := s.q(ctx).Where("patient_id = ?", patientID).Order("created_at asc, id asc").First(&a).Error
	if err != nil {
		return nil, translate("first assignment", err)
	}
	return &a, nil
}

// ListPatientsForTherapist returns the assigned patients ordered by display name.
func (s *Store) ListPatientsForTherapist(ctx context.Context, therapistID uint) ([]models.User, error) {
	var users []models.User
	err := s.q(ctx).Select("users.*").
		Joins("JOIN assignments ON assignments.patient_id = users.id").
		Where("assignments.therapist_id = ?", therapistID).
		Order("users.display_name asc, users.id asc").
		Find(&users).Error
	if err != nil {
		return nil, translate("list patients", err)
	}
	return users, nil
}
