package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/store"
	"github.com/psycare/psycare/validation"
	"github.com/sirupsen/logrus"
)

// PasswordHasher is the one-way password capability.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type RegisterInput struct {
	Email           string `json:"email" validate:"required,max=255,mailbox"`
	DisplayName     string `json:"display_name" validate:"required,min=2,max=120"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// AccountService is the identity and credential store.
type AccountService struct {
	base
	hasher                 PasswordHasher
	allowTherapistRegister bool

	dummyOnce sync.Once
	dummyHash string
}

// Register creates a patient, or a therapist when therapist registration is
// enabled and requested.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = models.NormalizeEmail(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	v := validation.Struct(in)
	if in.Role != "" && !models.ValidRole(in.Role) {
		v.Add("role", "invalid_choice")
	}
	if !v.Empty() {
		return nil, NewValidationError(v)
	}
	role := models.RolePatient
	if in.Role == models.RoleTherapist {
		if !s.allowTherapistRegister {
			return nil, NewValidationError(validation.Violations{"role": "invalid_choice"})
		}
		role = models.RoleTherapist
	}
	return s.create(ctx, in, role)
}

// CreateTherapist provisions a therapist account from the command line.
func (s *AccountService) CreateTherapist(ctx context.Context, email, displayName, password string) (*models.User, error) {
	in := RegisterInput{
		Email:           models.NormalizeEmail(email),
		DisplayName:     strings.TrimSpace(displayName),
		Password:        password,
		ConfirmPassword: password,
		Role:            models.RoleTherapist,
	}
	if v := validation.Struct(in); !v.Empty() {
		return nil, NewValidationError(v)
	}
	return s.create(ctx, in, models.RoleTherapist)
}

func (s *AccountService) create(ctx context.Context, in RegisterInput, role string) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: in.Email, DisplayName: in.DisplayName, PasswordHash: hash, Role: role}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetUserByEmail(ctx, in.Email); err == nil {
			return NewConflictError("duplicate_email")
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.CreateUser(ctx, u)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, NewConflictError("duplicate_email")
	}
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return u, nil
}

// Authenticate checks credentials. An unknown email and a wrong password
// yield the same error.
func (s *AccountService) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = models.NormalizeEmail(in.Email)
	if v := validation.Struct(in); !v.Empty() {
		return nil, NewValidationError(v)
	}
	u, err := s.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.hasher.Verify(s.dummy(), in.Password)
		return nil, NewAuthenticationError("invalid_credentials")
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		return nil, NewAuthenticationError("invalid_credentials")
	}
	return u, nil
}

// dummy is a hash compared against when the email is unknown, so both
// failure paths cost one hash verification.
func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("psycare-placeholder-password")
	})
	return s.dummyHash
}
