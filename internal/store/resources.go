package store

import (
	"context"

	"github.com/psycare/psycare/internal/models"
)

func (s *Store) CreateResource(ctx context.Context, r *models.Resource) error {
	return translate("create resource", s.q(ctx).Create(r).Error)
}

func (s *Store) GetResource(ctx context.Context, id uint) (*models.Resource, error) {
	var r models.Resource
	if err := s.q(ctx).First(&r, id).Error; err != nil {
		return nil, translate("get resource", err)
	}
	return &r, nil
}

func (s *Store) SaveResource(ctx context.Context, r *models.Resource) error {
	return translate("save resource", s.q(ctx).Save(r).Error)
}

// DeleteResource deletes the resource only if therapistID owns it.
func (s *Store) DeleteResource(ctx context.Context, id, therapistID uint) error {
	res := s.q(ctx).Where("id = ? AND therapist_id = ?", id, therapistID).Delete(&models.Resource{})
	if res.Error != nil {
		return translate("delete resource", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListResourcesForTherapist(ctx context.Context, therapistID uint, limit int) ([]models.Resource, error) {
	var resources []models.Resource
	q := s.q(ctx).Where("therapist_id = ?", therapistID).Order("created_at desc, id desc")
	if err := limited(q, limit).Find(&resources).Error; err != nil {
		return nil, translate("list resources", err)
	}
	return resources, nil
}
