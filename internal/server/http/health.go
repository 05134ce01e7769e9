package http

import (
	"net/http"
	"time"

	"github.com/quollsoft/passgate/internal/server/store"
	"github.com/quollsoft/passgate/pkg/httpx"
)

// LivezHandler returns 200 whenever the process is up.
func LivezHandler(startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"uptime": time.Since(startTime).String(),
		})
	}
}

// ReadyzHandler additionally checks the database connection.
func ReadyzHandler(startTime time.Time, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		database := "ok"

		if err := st.Ping(r.Context()); err != nil {
			database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, map[string]any{
			"status": status,
			"uptime": time.Since(startTime).String(),
			"checks": map[string]string{"database": database},
		})
	}
}
