package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"up", nil, http.StatusOK, `{"status":"ok"}`},
		{"db down", errors.New("connection refused"), http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Health(pingFunc(func(context.Context) error { return tt.err }))
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, "/patient/dashboard", DashboardPath("patient"))
	assert.Equal(t, "/therapist/dashboard", DashboardPath("therapist"))
	assert.Equal(t, "/auth/login", DashboardPath(""))
}

func TestFormBool(t *testing.T) {
	for value, want := range map[string]bool{"on": true, "1": true, "true": true, "": false, "off": false, "false": false, "0": false} {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.PostForm = map[string][]string{"shared": {value}}
		assert.Equal(t, want, *formBool(r, "shared"), "value %q", value)
	}
}
