package store

import (
	"context"

	"github.com/psycare/psycare/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate("create user", s.q(ctx).Create(u).Error)
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.q(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

// GetUserByEmail expects an already normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.q(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("get user by email", err)
	}
	return &u, nil
}
