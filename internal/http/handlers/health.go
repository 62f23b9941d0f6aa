package handlers

import (
	"net/http"

	"helium-admin/internal/sqlinline"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QPing).Scan(&one); err != nil {
		a.Logger.Error().Err(err).Msg("health check database ping")
		a.error(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
