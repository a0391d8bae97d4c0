package store

import (
	"context"

	"github.com/psycare/psycare/internal/models"
)

const newestMoodFirst = "mood_entries.created_at desc, mood_entries.id desc"

// CreateMood is the only write path for mood entries.
func (s *Store) CreateMood(ctx context.Context, m *models.MoodEntry) error {
	return translate("create mood", s.q(ctx).Create(m).Error)
}

func (s *Store) ListMoodsForPatient(ctx context.Context, patientID uint, limit int) ([]models.MoodEntry, error) {
	var moods []models.MoodEntry
	q := s.q(ctx).Where("patient_id = ?", patientID).Order(newestMoodFirst)
	if err := limited(q, limit).Find(&moods).Error; err != nil {
		return nil, translate("list moods", err)
	}
	return moods, nil
}

func (s *Store) ListMoodsForTherapist(ctx context.Context, therapistID uint, limit int) ([]models.MoodEntry, error) {
	var moods []models.MoodEntry
	q := s.q(ctx).Select("mood_entries.*").
		Joins("JOIN assignments ON assignments.patient_id = mood_entries.patient_id AND assignments.therapist_id = ?", therapistID).
		Order(newestMoodFirst)
	if err := limited(q, limit).Find(&moods).Error; err != nil {
		return nil, translate("list assigned moods", err)
	}
	return moods, nil
}
