package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/psycare/psycare/internal/services"
)

type PatientHandler struct {
	svc *services.Services
}

func NewPatientHandler(svc *services.Services) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func (h *PatientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboards.Patient(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, d)
}

func (h *PatientHandler) Journal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Journals.ListOwn(r.Context(), principal(r), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"entries": entries})
}

func (h *PatientHandler) JournalEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.svc.Journals.Get(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"entry": entry})
}

func (h *PatientHandler) JournalCreate(w http.ResponseWriter, r *http.Request) {
	in, err := h.journalInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.svc.Journals.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, entry, "/patient/journal", "journal_saved")
}

func (h *PatientHandler) JournalUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := h.journalInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.svc.Journals.Update(r.Context(), principal(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, entry, "/patient/journal", "journal_saved")
}

func (h *PatientHandler) JournalDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Journals.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, "/patient/journal", "journal_deleted")
}

func (h *PatientHandler) journalInput(r *http.Request) (services.JournalInput, error) {
	var in services.JournalInput
	err := decode(r, &in, func(f func(string) string) {
		in = services.JournalInput{
			Title:               f("title"),
			Body:                f("body"),
			SharedWithTherapist: formBool(r, "shared_with_therapist"),
			FlaggedRisk:         formBool(r, "flagged_risk"),
		}
	})
	return in, err
}

func (h *PatientHandler) Mood(w http.ResponseWriter, r *http.Request) {
	moods, err := h.svc.Moods.ListOwn(r.Context(), principal(r), services.PatientMoodPageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"moods": moods})
}

func (h *PatientHandler) MoodCreate(w http.ResponseWriter, r *http.Request) {
	var in services.MoodInput
	if err := decode(r, &in, func(f func(string) string) {
		// An unparsable rating stays 0 and fails the range check.
		rating, _ := strconv.Atoi(strings.TrimSpace(f("rating")))
		in = services.MoodInput{Rating: rating, Note: f("note")}
	}); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.Moods.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, m, "/patient/dashboard", "mood_saved")
}

func (h *PatientHandler) Resources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.svc.Resources.ListForLinkedPatient(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"resources": resources})
}

func (h *PatientHandler) Crisis(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.Assignments.CurrentTherapist(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	alerts, err := h.svc.Alerts.ListRaised(r.Context(), principal(r), services.RaisedAlertsLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"linked": link != nil, "therapist": link, "alerts": alerts})
}

func (h *PatientHandler) CrisisCreate(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Alerts.Raise(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	flash := "alert_recorded"
	if a.TherapistID != nil {
		flash = "alert_sent"
	}
	done(w, r, http.StatusCreated, a, "/patient/dashboard", flash)
}
