package services

import (
	"context"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/internal/models"
)

type PatientDashboard struct {
	Journals  []models.JournalEntry `json:"journals"`
	Moods     []models.MoodEntry    `json:"moods"`
	Therapist *TherapistLink        `json:"therapist"`
}

type TherapistDashboard struct {
	Patients []models.User         `json:"patients"`
	Journals []models.JournalEntry `json:"journals"`
	Moods    []models.MoodEntry    `json:"moods"`
	Alerts   []models.Alert        `json:"alerts"`
}

// DashboardService composes the per-role landing pages.
type DashboardService struct {
	svc *Services
}

func (s *DashboardService) Patient(ctx context.Context, p auth.Principal) (*PatientDashboard, error) {
	journals, err := s.svc.Journals.ListOwn(ctx, p, PatientDashboardJournals)
	if err != nil {
		return nil, err
	}
	moods, err := s.svc.Moods.ListOwn(ctx, p, PatientDashboardMoods)
	if err != nil {
		return nil, err
	}
	link, err := s.svc.Assignments.CurrentTherapist(ctx, p)
	if err != nil {
		return nil, err
	}
	return &PatientDashboard{Journals: journals, Moods: moods, Therapist: link}, nil
}

func (s *DashboardService) Therapist(ctx context.Context, p auth.Principal) (*TherapistDashboard, error) {
	patients, err := s.svc.Assignments.ListPatients(ctx, p)
	if err != nil {
		return nil, err
	}
	journals, err := s.svc.Journals.ListSharedForAssignedPatients(ctx, p, TherapistDashboardJournals)
	if err != nil {
		return nil, err
	}
	moods, err := s.svc.Moods.ListForAssignedPatients(ctx, p, TherapistDashboardMoods)
	if err != nil {
		return nil, err
	}
	alerts, err := s.svc.Alerts.ListOpen(ctx, p, OpenAlertsLimit)
	if err != nil {
		return nil, err
	}
	return &TherapistDashboard{Patients: patients, Journals: journals, Moods: moods, Alerts: alerts}, nil
}
