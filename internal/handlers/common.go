// Package handlers implements the HTTP surface. Handlers decode input, call
// one service operation with the request principal and write the outcome:
// JSON for API clients, a redirect with a flash message for form posts.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/httpx"
	"github.com/psycare/psycare/i18n"
	"github.com/psycare/psycare/internal/middleware"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/services"
	"github.com/psycare/psycare/validation"
)

// DashboardPath is the landing page for role.
func DashboardPath(role string) string {
	switch role {
	case models.RolePatient:
		return "/patient/dashboard"
	case models.RoleTherapist:
		return "/therapist/dashboard"
	}
	return auth.LoginPath
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// decode fills dst from a JSON body, or calls fromForm for form posts.
func decode(r *http.Request, dst any, fromForm func(form func(string) string)) error {
	if isJSONBody(r) {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
			return services.NewValidationError(validation.Violations{"_": "invalid_json"})
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return services.NewValidationError(validation.Violations{"_": "invalid_form"})
	}
	fromForm(func(k string) string { return r.PostForm.Get(k) })
	return nil
}

// formBool reads a checkbox: present and not explicitly false means true.
func formBool(r *http.Request, name string) *bool {
	v := strings.ToLower(strings.TrimSpace(r.PostForm.Get(name)))
	b := v != "" && v != "0" && v != "false" && v != "off"
	return &b
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// pathID parses the {id} wildcard. A malformed id is a missing record.
func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, services.NewNotFoundError("not_found")
	}
	return uint(id), nil
}

// writeError adds translated field messages to validation failures.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *services.Error
	if errors.As(err, &se) && se.Kind == services.KindValidation && len(se.Fields) > 0 {
		httpx.JSON(w, se.HTTPStatus(), httpx.ErrorResponse{
			Error:    se.Code(),
			Details:  se.Fields,
			Messages: i18n.TranslateAll(middleware.LangFrom(r), se.Fields),
		})
		return
	}
	httpx.WriteError(w, r, err)
}

// show writes a page payload. Rendering is left to the client; a pending
// flash message travels in the X-Flash header, query-escaped.
func show(w http.ResponseWriter, r *http.Request, payload any) {
	if msg := middleware.PopFlash(w, r); msg != "" {
		w.Header().Set("X-Flash", url.QueryEscape(msg))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// done writes a successful state change: status and payload for JSON
// clients, otherwise a 302 to redirect with a flash message.
func done(w http.ResponseWriter, r *http.Request, status int, payload any, redirect, flash string) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, payload)
		return
	}
	if flash != "" {
		middleware.Flash(w, r, flash)
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}
