package handlers

import (
	"fmt"
	"net/http"

	"helium-admin/internal/domain"
	"helium-admin/internal/sqlinline"
)

func (a *App) WaitlistList(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListWaitlist)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch waitlist users")
		return
	}
	defer rows.Close()

	var entries []domain.WaitlistUser
	for rows.Next() {
		var u domain.WaitlistUser
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Company, &u.PhoneNumber,
			&u.CountryCode, &u.Reference, &u.ReferralSource, &u.ReferralSourceOther,
			&u.UserAgent, &u.IPAddress, &u.JoinedAt, &u.NotifiedAt, &u.IsNotified, &u.IsArchived); err != nil {
			a.Logger.Error().Err(err).Msg("scan waitlist row")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch waitlist users")
			return
		}
		entries = append(entries, u)
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch waitlist users")
		return
	}

	items := []map[string]any{}
	for i := range entries {
		a.backfillCountry(r, &entries[i])
		u := entries[i]
		items = append(items, map[string]any{
			"id":                    u.ID,
			"full_name":             u.FullName,
			"email":                 u.Email,
			"company":               u.Company,
			"phone_number":          u.PhoneNumber,
			"country_code":          u.CountryCode,
			"reference":             u.Reference,
			"referral_source":       u.ReferralSource,
			"referral_source_other": u.ReferralSourceOther,
			"user_agent":            u.UserAgent,
			"ip_address":            u.IPAddress,
			"joined_at":             u.JoinedAt,
			"notified_at":           u.NotifiedAt,
			"is_notified":           u.IsNotified,
			"is_archived":           u.IsArchived,
		})
	}
	a.json(w, http.StatusOK, items)
}

// backfillCountry fills a missing country code from the signup IP and
// persists it. Lookup or update failures leave the row as it was.
func (a *App) backfillCountry(r *http.Request, u *domain.WaitlistUser) {
	if a.Geo == nil || u.CountryCode != "" || u.IPAddress == nil || *u.IPAddress == "" {
		return
	}
	code, err := a.Geo.CountryCode(*u.IPAddress)
	if err != nil {
		a.Logger.Warn().Err(err).Str("waitlist_id", u.ID).Msg("geoip lookup")
		return
	}
	if code == "" {
		return
	}
	u.CountryCode = code
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QSetWaitlistCountry, u.ID, code); err != nil {
		a.Logger.Warn().Err(err).Str("waitlist_id", u.ID).Msg("persist waitlist country")
	}
}

type archiveWaitlistRequest struct {
	UserIDs []string `json:"user_ids" validate:"omitempty,dive,uuid"`
}

// WaitlistArchive archives the given entries, or every notified entry
// when no ids are sent.
func (a *App) WaitlistArchive(w http.ResponseWriter, r *http.Request) {
	var req archiveWaitlistRequest
	if !a.bind(w, r, &req) {
		return
	}

	var archived int64
	if len(req.UserIDs) > 0 {
		tag, err := a.SQL.Exec(r.Context(), sqlinline.QArchiveWaitlistByIDs, req.UserIDs)
		if err != nil {
			a.Logger.Error().Err(err).Msg("archive waitlist users")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to archive waitlist users")
			return
		}
		archived = tag.RowsAffected()
	} else {
		tag, err := a.SQL.Exec(r.Context(), sqlinline.QArchiveNotifiedWaitlist)
		if err != nil {
			a.Logger.Error().Err(err).Msg("archive notified waitlist users")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to archive waitlist users")
			return
		}
		archived = tag.RowsAffected()
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Successfully archived %d waitlist users", archived),
		"data":    map[string]any{"archived_count": archived},
	})
}
