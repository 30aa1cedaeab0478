package handlers

import (
	"database/sql"
	"net/http"
)

// Healthz reports process liveness and database reachability.
func Healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, dbStatus := "ok", "ok"
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status, dbStatus = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{"status": status, "db": dbStatus})
	}
}
