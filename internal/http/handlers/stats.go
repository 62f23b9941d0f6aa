package handlers

import (
	"net/http"

	"helium-admin/internal/sqlinline"
)

// DashboardStats backs the invite-codes overview cards.
func (a *App) DashboardStats(w http.ResponseWriter, r *http.Request) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QDashboardStats)
	var totalCodes, activeCodes, usedCodes, emailsSent int64
	if err := row.Scan(&totalCodes, &activeCodes, &usedCodes, &emailsSent); err != nil {
		a.Logger.Error().Err(err).Msg("load dashboard stats")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch dashboard stats")
		return
	}

	usageRate := 0.0
	if totalCodes > 0 {
		usageRate = float64(usedCodes) / float64(totalCodes)
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_codes":  totalCodes,
		"active_codes": activeCodes,
		"usage_rate":   usageRate,
		"emails_sent":  emailsSent,
	})
}
