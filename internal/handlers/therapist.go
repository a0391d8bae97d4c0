package handlers

import (
	"net/http"

	"github.com/psycare/psycare/internal/services"
)

type TherapistHandler struct {
	svc *services.Services
}

func NewTherapistHandler(svc *services.Services) *TherapistHandler {
	return &TherapistHandler{svc: svc}
}

func (h *TherapistHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboards.Therapist(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, d)
}

func (h *TherapistHandler) Patients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.Assignments.ListPatients(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"patients": patients})
}

// LinkPatient links a patient by email. A repeated link is a success with
// an informational message, not an error.
func (h *TherapistHandler) LinkPatient(w http.ResponseWriter, r *http.Request) {
	var in services.LinkInput
	if err := decode(r, &in, func(f func(string) string) {
		in = services.LinkInput{PatientEmail: f("patient_email")}
	}); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.Assignments.CreateLink(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, flash := http.StatusCreated, "patient_linked"
	if res.Outcome == services.LinkAlreadyExists {
		status, flash = http.StatusOK, "already_linked"
	}
	done(w, r, status, res, "/therapist/patients", flash)
}

func (h *TherapistHandler) PatientJournal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.svc.Journals.ListSharedForPatient(r.Context(), principal(r), id, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"patient_id": id, "entries": entries})
}

func (h *TherapistHandler) PatientMood(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	moods, err := h.svc.Moods.ListForAssignedPatient(r.Context(), principal(r), id, services.TherapistMoodPageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"patient_id": id, "moods": moods})
}

func (h *TherapistHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.Alerts.Resolve(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, a, "/therapist/dashboard", "alert_resolved")
}

func (h *TherapistHandler) Resources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.svc.Resources.ListOwn(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"resources": resources})
}

func (h *TherapistHandler) ResourceEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.Resources.Get(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	show(w, r, map[string]any{"resource": res})
}

func (h *TherapistHandler) ResourceCreate(w http.ResponseWriter, r *http.Request) {
	in, err := resourceInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.Resources.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, res, "/therapist/resources", "resource_saved")
}

func (h *TherapistHandler) ResourceUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := resourceInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.Resources.Update(r.Context(), principal(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, res, "/therapist/resources", "resource_saved")
}

func (h *TherapistHandler) ResourceDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Resources.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, map[string]any{"deleted": id}, "/therapist/resources", "resource_deleted")
}

func resourceInput(r *http.Request) (services.ResourceInput, error) {
	var in services.ResourceInput
	err := decode(r, &in, func(f func(string) string) {
		in = services.ResourceInput{Title: f("title"), URL: f("url"), Description: f("description")}
	})
	return in, err
}
