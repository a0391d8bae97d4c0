package store

import (
	"context"

	"github.com/psycare/psycare/internal/models"
)

const newestJournalFirst = "journal_entries.created_at desc, journal_entries.id desc"

func (s *Store) CreateJournal(ctx context.Context, e *models.JournalEntry) error {
	return translate("create journal", s.q(ctx).Create(e).Error)
}

func (s *Store) GetJournal(ctx context.Context, id uint) (*models.JournalEntry, error) {
	var e models.JournalEntry
	if err := s.q(ctx).First(&e, id).Error; err != nil {
		return nil, translate("get journal", err)
	}
	return &e, nil
}

// SaveJournal writes every column of e and refreshes updated_at.
func (s *Store) SaveJournal(ctx context.Context, e *models.JournalEntry) error {
	return translate("save journal", s.q(ctx).Save(e).Error)
}

// DeleteJournal deletes the entry only if patientID owns it.
func (s *Store) DeleteJournal(ctx context.Context, id, patientID uint) error {
	res := s.q(ctx).Where("id = ? AND patient_id = ?", id, patientID).Delete(&models.JournalEntry{})
	if res.Error != nil {
		return translate("delete journal", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListJournalsForPatient(ctx context.Context, patientID uint, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	q := s.q(ctx).Where("patient_id = ?", patientID).Order(newestJournalFirst)
	if err := limited(q, limit).Find(&entries).Error; err != nil {
		return nil, translate("list journals", err)
	}
	return entries, nil
}

// ListSharedJournalsForPatient returns only entries the patient shared.
func (s *Store) ListSharedJournalsForPatient(ctx context.Context, patientID uint, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	q := s.q(ctx).Where("patient_id = ? AND shared_with_therapist = ?", patientID, true).Order(newestJournalFirst)
	if err := limited(q, limit).Find(&entries).Error; err != nil {
		return nil, translate("list shared journals", err)
	}
	return entries, nil
}

// ListSharedJournalsForTherapist returns shared entries of every patient
// assigned to therapistID.
func (s *Store) ListSharedJournalsForTherapist(ctx context.Context, therapistID uint, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	q := s.q(ctx).Select("journal_entries.*").
		Joins("JOIN assignments ON assignments.patient_id = journal_entries.patient_id AND assignments.therapist_id = ?", therapistID).
		Where("journal_entries.shared_with_therapist = ?", true).
		Order(newestJournalFirst)
	if err := limited(q, limit).Find(&entries).Error; err != nil {
		return nil, translate("list assigned journals", err)
	}
	return entries, nil
}
