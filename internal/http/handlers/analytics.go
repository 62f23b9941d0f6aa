package handlers

import (
	"errors"
	"net/http"
	"strings"

	"helium-admin/internal/analytics"
)

// AnalyticsData proxies the GA4 daily report so the dashboard never
// holds Google credentials. Dates accept GA relative forms.
func (a *App) AnalyticsData(w http.ResponseWriter, r *http.Request) {
	if a.Analytics == nil {
		a.error(w, http.StatusInternalServerError, "internal", "Google Analytics is not configured")
		return
	}

	startDate := strings.TrimSpace(r.URL.Query().Get("start_date"))
	if startDate == "" {
		startDate = "7daysAgo"
	}
	endDate := strings.TrimSpace(r.URL.Query().Get("end_date"))
	if endDate == "" {
		endDate = "today"
	}

	rows, err := a.Analytics.Report(r.Context(), startDate, endDate)
	if err != nil {
		var upstream *analytics.UpstreamError
		if errors.As(err, &upstream) {
			a.Logger.Error().Int("status", upstream.Status).Str("body", upstream.Body).Msg("analytics upstream error")
			a.error(w, http.StatusBadGateway, "bad_gateway", "Google Analytics request failed")
			return
		}
		a.Logger.Error().Err(err).Msg("fetch analytics data")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch analytics data")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"success": true, "data": rows})
}
