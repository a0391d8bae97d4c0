package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error    string            `json:"error"`
	Details  any               `json:"details,omitempty"`
	Messages map[string]string `json:"messages,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// WantsJSON reports whether the client prefers a JSON response.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return true
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") && accept == ""
}

// StatusError is implemented by errors that know their HTTP status,
// machine code and field details.
type StatusError interface {
	error
	HTTPStatus() int
	Code() string
	Details() any
}

// WriteError writes err as a JSON error body. Errors without a status are
// internal: logged, reported and hidden from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var se StatusError
	if errors.As(err, &se) && se.HTTPStatus() < http.StatusInternalServerError {
		JSONError(w, se.HTTPStatus(), se.Code(), se.Details())
		return
	}
	InternalError(w, r, err)
}

// InternalError logs err, reports it to Sentry and writes a generic 500.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": w.Header().Get("X-Request-ID"),
	}).WithError(err).Error("internal error")
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
