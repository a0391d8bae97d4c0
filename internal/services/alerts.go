package services

import (
	"context"
	"errors"
	"time"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/policy"
	"github.com/psycare/psycare/internal/store"
	"github.com/sirupsen/logrus"
)

// AlertService runs the crisis workflow: open alerts move to resolved once,
// by the therapist they were routed to.
type AlertService struct {
	base
	now func() time.Time
}

// Raise records a panic alert for the acting patient, routed to the
// patient's first therapist at this moment. With no therapist the alert is
// still recorded, unrouted.
func (s *AlertService) Raise(ctx context.Context, p auth.Principal) (*models.Alert, error) {
	if err := s.authorize(ctx, p, gate.ActionCreate, policy.Alert, nil); err != nil {
		return nil, err
	}
	a := &models.Alert{PatientID: p.UserID, Kind: models.AlertKindPanic, Message: models.PanicMessage}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		link, err := tx.FirstAssignmentForPatient(ctx, p.UserID)
		switch {
		case err == nil:
			tid := link.TherapistID
			a.TherapistID = &tid
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return tx.CreateAlert(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"patient_id": p.UserID,
		"alert_id":   a.ID,
		"routed":     a.TherapistID != nil,
	}).Warn("crisis alert raised")
	return a, nil
}

// Resolve marks an alert resolved. A missing alert and an alert routed to
// someone else are both not found. Resolving twice is a no-op.
func (s *AlertService) Resolve(ctx context.Context, p auth.Principal, id uint) (*models.Alert, error) {
	if err := s.authorize(ctx, p, gate.ActionResolve, policy.Alert, nil); err != nil {
		return nil, err
	}
	var a *models.Alert
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if a, err = tx.GetAlert(ctx, id); err != nil {
			return fromStore(err)
		}
		if err := s.authorize(ctx, p, gate.ActionResolve, policy.Alert, a); err != nil {
			return err
		}
		if a.Resolved {
			return nil
		}
		at := s.now()
		ok, err := tx.MarkAlertResolved(ctx, a.ID, p.UserID, at)
		if err != nil {
			return err
		}
		if ok {
			a.Resolved, a.ResolvedAt = true, &at
			return nil
		}
		// Resolved by another request since it was read.
		if a, err = tx.GetAlert(ctx, id); err != nil {
			return fromStore(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"therapist_id": p.UserID, "alert_id": a.ID}).Info("alert resolved")
	return a, nil
}

// ListRaised returns the acting patient's own alerts, newest first.
func (s *AlertService) ListRaised(ctx context.Context, p auth.Principal, limit int) ([]models.Alert, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.RaisedAlert, nil); err != nil {
		return nil, err
	}
	return s.store.ListAlertsForPatient(ctx, p.UserID, limit)
}

// ListOpen returns the acting therapist's open alerts, newest first.
func (s *AlertService) ListOpen(ctx context.Context, p auth.Principal, limit int) ([]models.Alert, error) {
	if err := s.authorize(ctx, p, gate.ActionList, policy.Alert, nil); err != nil {
		return nil, err
	}
	return s.store.ListOpenAlertsForTherapist(ctx, p.UserID, limit)
}
