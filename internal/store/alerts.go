package store

import (
	"context"
	"time"

	"github.com/psycare/psycare/internal/models"
)

func (s *Store) CreateAlert(ctx context.Context, a *models.Alert) error {
	return translate("create alert", s.q(ctx).Create(a).Error)
}

func (s *Store) GetAlert(ctx context.Context, id uint) (*models.Alert, error) {
	var a models.Alert
	if err := s.q(ctx).First(&a, id).Error; err != nil {
		return nil, translate("get alert", err)
	}
	return &a, nil
}

// ListOpenAlertsForTherapist returns unresolved alerts routed to therapistID, newest first.
func (s *Store) ListOpenAlertsForTherapist(ctx context.Context, therapistID uint, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	q := s.q(ctx).Where("therapist_id = ? AND resolved = ?", therapistID, false).Order("created_at desc, id desc")
	if err := limited(q, limit).Find(&alerts).Error; err != nil {
		return nil, translate("list open alerts", err)
	}
	return alerts, nil
}

func (s *Store) ListAlertsForPatient(ctx context.Context, patientID uint, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	q := s.q(ctx).Where("patient_id = ?", patientID).Order("created_at desc, id desc")
	if err := limited(q, limit).Find(&alerts).Error; err != nil {
		return nil, translate("list patient alerts", err)
	}
	return alerts, nil
}

// MarkAlertResolved flips an open alert owned by therapistID to resolved.
// It reports false when no open alert matched.
func (s *Store) MarkAlertResolved(ctx context.Context, id, therapistID uint, at time.Time) (bool, error) {
	res := s.q(ctx).Model(&models.Alert{}).
		Where("id = ? AND therapist_id = ? AND resolved = ?", id, therapistID, false).
		Updates(map[string]any{"resolved": true, "resolved_at": at})
	if res.Error != nil {
		return false, translate("resolve alert", res.Error)
	}
	return res.RowsAffected > 0, nil
}
