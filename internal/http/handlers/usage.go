package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"helium-admin/internal/domain"
	"helium-admin/internal/sqlinline"
)

type aggregatedUsageRequest struct {
	Page           int    `json:"page" validate:"omitempty,min=1"`
	Limit          int    `json:"limit" validate:"omitempty,min=1,max=200"`
	SearchQuery    string `json:"search_query"`
	ActivityFilter string `json:"activity_filter" validate:"omitempty,oneof=all high medium low inactive"`
	UserTypeFilter string `json:"user_type_filter" validate:"omitempty,oneof=all internal external"`
}

func (req *aggregatedUsageRequest) applyDefaults() {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	if req.ActivityFilter == "" {
		req.ActivityFilter = "all"
	}
	if req.UserTypeFilter == "" {
		req.UserTypeFilter = "all"
	}
	req.SearchQuery = strings.TrimSpace(req.SearchQuery)
}

// usagePage is one page of aggregate rows plus the window totals every
// row carries.
type usagePage struct {
	rows             []domain.UsageAggregate
	totalCount       int64
	grandTotalTokens int64
	grandTotalCost   float64
}

func collectUsageRows(rows pgx.Rows) (usagePage, error) {
	var page usagePage
	for rows.Next() {
		var u domain.UsageAggregate
		if err := rows.Scan(&u.UserID, &u.UserName, &u.UserEmail,
			&u.TotalPromptTokens, &u.TotalCompletionTokens, &u.TotalTokens, &u.TotalEstimatedCost,
			&u.UsageCount, &u.EarliestActivity, &u.LatestActivity, &u.HasCompletedPayment,
			&u.DaysSinceLastActivity, &u.ActivityScore,
			&page.totalCount, &page.grandTotalTokens, &page.grandTotalCost); err != nil {
			return page, fmt.Errorf("scan usage row: %w", err)
		}
		u.ActivityLevel = domain.ActivityLevelForScore(u.ActivityScore)
		u.UserType = domain.UserTypeForEmail(u.UserEmail)
		page.rows = append(page.rows, u)
	}
	return page, rows.Err()
}

func usageRowJSON(u domain.UsageAggregate) map[string]any {
	return map[string]any{
		"user_id":                  u.UserID,
		"user_name":                u.UserName,
		"user_email":               u.UserEmail,
		"total_prompt_tokens":      u.TotalPromptTokens,
		"total_completion_tokens":  u.TotalCompletionTokens,
		"total_tokens":             u.TotalTokens,
		"total_estimated_cost":     u.TotalEstimatedCost,
		"usage_count":              u.UsageCount,
		"earliest_activity":        u.EarliestActivity,
		"latest_activity":          u.LatestActivity,
		"has_completed_payment":    u.HasCompletedPayment,
		"activity_level":           u.ActivityLevel,
		"days_since_last_activity": int(u.DaysSinceLastActivity),
		"activity_score":           u.ActivityScore,
		"user_type":                u.UserType,
	}
}

func (a *App) UsageAggregated(w http.ResponseWriter, r *http.Request) {
	var req aggregatedUsageRequest
	if !a.bind(w, r, &req) {
		return
	}
	req.applyDefaults()

	rows, err := a.SQL.Query(r.Context(), sqlinline.QAggregatedUsage,
		req.SearchQuery, req.ActivityFilter, req.UserTypeFilter, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch usage logs")
		return
	}
	defer rows.Close()

	page, err := collectUsageRows(rows)
	if err != nil {
		a.Logger.Error().Err(err).Msg("read aggregated usage")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch usage logs")
		return
	}

	data := make([]map[string]any, 0, len(page.rows))
	for _, u := range page.rows {
		data = append(data, usageRowJSON(u))
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":            true,
		"data":               data,
		"total_count":        page.totalCount,
		"grand_total_tokens": page.grandTotalTokens,
		"grand_total_cost":   page.grandTotalCost,
		"page":               req.Page,
		"limit":              req.Limit,
	})
}
