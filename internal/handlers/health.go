package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/psycare/psycare/httpx"
	"github.com/sirupsen/logrus"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is the liveness probe. It answers 503 when the database is unreachable.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("health check: database unreachable")
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
