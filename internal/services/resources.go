package services

import (
	"context"
	"errors"
	"strings"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/policy"
	"github.com/psycare/psycare/internal/store"
	"github.com/psycare/psycare/validation"
	"github.com/sirupsen/logrus"
)

type ResourceInput struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	URL         string `json:"url" validate:"required,max=500,weburl"`
	Description string `json:"description" validate:"max=500"`
}

func (in *ResourceInput) normalize() validation.Violations {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Description = strings.TrimSpace(in.Description)
	return validation.Struct(in)
}

// ResourceService is the therapist resource library.
type ResourceService struct {
	base
}

func (s *ResourceService) Create(ctx context.Context, p auth.Principal, in ResourceInput) (*models.Resource, error) {
	if err := s.authorize(ctx, p, gate.ActionCreate, policy.Resource, nil); err != nil {
		return nil, err
	}
	if v := in.normalize(); !v.Empty() {
		return nil, NewValidationError(v)
	}
	r := &models.Resource{TherapistID: p.UserID, Title: in.Title, URL: in.URL, Description: in.Description}
	if err := s.store.Transaction(ctx, func(tx *store.Store) error {
		return tx.CreateResource(ctx, r)
	}); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"therapist_id": p.UserID, "resource_id": r.ID}).Info("resource created")
	return r, nil
}

func (s *ResourceService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Resource, error) {
	if err := s.authorize(ctx, p, gate.ActionView, policy.Resource, nil); err != nil {
		return nil, err
	}
	r, err := s.store.GetResource(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.authorize(ctx, p, gate.ActionView, policy.Resource, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ResourceService) Update(ctx context.Context, p auth.Principal, id uint, in ResourceInput) (*models.Resource, error) {
	if err := s.authorize(ctx, p, gate.ActionUpdate, policy.Resource, nil); err != nil {
		return nil, err
	}
	var r *models.Resource
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if r, err = tx.GetResource(ctx, id); err != nil {
			return fromStore(err)
		}
		if err := s.authorize(ctx, p, gate.ActionUpdate, policy.Resource, r); err != nil {
			return err
		}
		if v := in.normalize(); !v.Empty() {
			return NewValidationError(v)
		}
		r.Title, r.URL, r.Description = in.Title, in.URL, in.Description
		return tx.SaveResource(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"therapist_id": p.UserID, "resource_id": r.ID}).Info("resource updated")
	return r, nil
}

func (s *ResourceService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	if err := s.authorize(ctx, p, gate.ActionDelete, policy.Resource, nil); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		r, err := tx.GetResource(ctx, id)
		if err != nil {
			return fromStore(err)
		}
		if err := s.authorize(ctx, p, gate.ActionDelete, policy.Resource, r); err != nil {
			return err
		}
		return fromStore(tx.DeleteResource(ctx, id, p.UserID))
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"therapist_id": p.UserID, "resource_id": id}).Info("resource deleted")
	return nil
}

// ListOwn returns the acting therapist's resources, newest first.
func (s *ResourceService) ListOwn(ctx context.Context, p auth.Principal) ([]models.Resource, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.Resource, nil); err != nil {
		return nil, err
	}
	return s.store.ListResourcesForTherapist(ctx, p.UserID, 0)
}

// ListForLinkedPatient returns the resources of the acting patient's first
// therapist. Unlinked patients get an empty list.
func (s *ResourceService) ListForLinkedPatient(ctx context.Context, p auth.Principal) ([]models.Resource, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.LinkedResource, nil); err != nil {
		return nil, err
	}
	link, err := s.store.FirstAssignmentForPatient(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return []models.Resource{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.ListResourcesForTherapist(ctx, link.TherapistID, 0)
}
