package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	qrcode "github.com/skip2/go-qrcode"

	"helium-admin/internal/domain"
	"helium-admin/internal/mail"
	"helium-admin/internal/sqlinline"
)

const (
	inviteCodeAttempts = 5
	qrImageSize        = 256
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInviteCode(row rowScanner) (domain.InviteCode, error) {
	var c domain.InviteCode
	err := row.Scan(&c.ID, &c.Code, &c.IsUsed, &c.UsedBy, &c.UsedAt, &c.CreatedAt,
		&c.ExpiresAt, &c.MaxUses, &c.CurrentUses, &c.EmailSentTo, &c.ReminderSentAt, &c.IsArchived)
	if c.EmailSentTo == nil {
		c.EmailSentTo = []string{}
	}
	return c, noRowsAsNotFound(err)
}

func inviteCodeJSON(c domain.InviteCode) map[string]any {
	return map[string]any{
		"id":               c.ID,
		"code":             c.Code,
		"is_used":          c.IsUsed,
		"used_by":          c.UsedBy,
		"used_at":          c.UsedAt,
		"created_at":       c.CreatedAt,
		"expires_at":       c.ExpiresAt,
		"max_uses":         c.MaxUses,
		"current_uses":     c.CurrentUses,
		"email_sent_to":    c.EmailSentTo,
		"reminder_sent_at": c.ReminderSentAt,
		"is_archived":      c.IsArchived,
	}
}

func (a *App) InviteCodesList(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListInviteCodes)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch invite codes")
		return
	}
	defer rows.Close()

	codes := []map[string]any{}
	for rows.Next() {
		c, err := scanInviteCode(rows)
		if err != nil {
			a.Logger.Error().Err(err).Msg("scan invite code row")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch invite codes")
			return
		}
		codes = append(codes, inviteCodeJSON(c))
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch invite codes")
		return
	}
	a.json(w, http.StatusOK, codes)
}

type generateInviteCodeRequest struct {
	MaxUses       int `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresInDays int `json:"expires_in_days" validate:"omitempty,min=1,max=365"`
}

func (a *App) InviteCodeGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateInviteCodeRequest
	if !a.bind(w, r, &req) {
		return
	}
	if req.MaxUses == 0 {
		req.MaxUses = 1
	}
	if req.ExpiresInDays == 0 {
		req.ExpiresInDays = 30
	}
	expiresAt := time.Now().UTC().AddDate(0, 0, req.ExpiresInDays)

	// Codes are short, so collisions happen. Retry on the unique
	// constraint instead of checking first.
	var code, codeID string
	var err error
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err = domain.NewInviteCode()
		if err != nil {
			break
		}
		err = a.SQL.QueryRow(r.Context(), sqlinline.QInsertInviteCode, code, req.MaxUses, expiresAt).Scan(&codeID)
		if err == nil {
			break
		}
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
			break
		}
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("generate invite code")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to generate invite code")
		return
	}
	a.Logger.Info().Str("code_id", codeID).Int("max_uses", req.MaxUses).Msg("invite code generated")
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Invite code generated successfully",
		"data":    map[string]any{"code": code},
	})
}

func (a *App) InviteCodeDelete(w http.ResponseWriter, r *http.Request) {
	codeID := chi.URLParam(r, "code_id")
	if _, err := uuid.Parse(codeID); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid code id")
		return
	}
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QDeleteInviteCode, codeID)
	if err != nil {
		a.Logger.Error().Err(err).Str("code_id", codeID).Msg("delete invite code")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to delete invite code")
		return
	}
	if tag.RowsAffected() == 0 {
		a.error(w, http.StatusNotFound, "not_found", "Invite code not found")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "message": "Invite code deleted successfully"})
}

type bulkDeleteInviteCodesRequest struct {
	CodeIDs []string `json:"code_ids" validate:"required,min=1,dive,uuid"`
}

func (a *App) InviteCodesBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteInviteCodesRequest
	if !a.bind(w, r, &req) {
		return
	}
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QDeleteInviteCodes, req.CodeIDs)
	if err != nil {
		a.Logger.Error().Err(err).Msg("bulk delete invite codes")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to bulk delete invite codes")
		return
	}
	deleted := tag.RowsAffected()
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Successfully deleted %d invite codes", deleted),
		"data":    map[string]any{"deleted_count": deleted},
	})
}

type archiveInviteCodeRequest struct {
	CodeID string `json:"code_id" validate:"required,uuid"`
}

func (a *App) InviteCodeArchive(w http.ResponseWriter, r *http.Request) {
	a.setInviteCodeArchived(w, r, true)
}

func (a *App) InviteCodeUnarchive(w http.ResponseWriter, r *http.Request) {
	a.setInviteCodeArchived(w, r, false)
}

func (a *App) setInviteCodeArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	verb := "archive"
	if !archived {
		verb = "unarchive"
	}
	var req archiveInviteCodeRequest
	if !a.bind(w, r, &req) {
		return
	}
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QSetInviteCodeArchived, req.CodeID, archived)
	if err != nil {
		a.Logger.Error().Err(err).Str("code_id", req.CodeID).Msgf("%s invite code", verb)
		a.error(w, http.StatusInternalServerError, "internal", fmt.Sprintf("Failed to %s invite code", verb))
		return
	}
	if tag.RowsAffected() == 0 {
		a.error(w, http.StatusNotFound, "not_found", "Invite code not found")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Invite code %sd successfully", verb),
	})
}

func (a *App) InviteCodesBulkArchiveUsed(w http.ResponseWriter, r *http.Request) {
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QArchiveUsedInviteCodes)
	if err != nil {
		a.Logger.Error().Err(err).Msg("bulk archive used invite codes")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to bulk archive used codes")
		return
	}
	archived := tag.RowsAffected()
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Successfully archived %d used invite codes", archived),
		"data":    map[string]any{"archived_count": archived},
	})
}

type sendReminderRequest struct {
	CodeID         string `json:"code_id" validate:"required,uuid"`
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	RecipientName  string `json:"recipient_name"`
}

func (a *App) InviteCodeSendReminder(w http.ResponseWriter, r *http.Request) {
	var req sendReminderRequest
	if !a.bind(w, r, &req) {
		return
	}
	if !a.verifyMailer(w, r) {
		return
	}

	c, err := scanInviteCode(a.SQL.QueryRow(r.Context(), sqlinline.QSelectInviteCode, req.CodeID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Invite code not found")
			return
		}
		a.Logger.Error().Err(err).Str("code_id", req.CodeID).Msg("load invite code")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to send reminder email")
		return
	}

	signupURL := fmt.Sprintf("%s?code=%s", a.SignupBaseURL, c.Code)
	content := mail.ReminderContent(c.Code, req.RecipientName, signupURL)
	report := a.Mailer.SendIndividual(r.Context(), req.RecipientEmail, content)
	if report.SuccessCount != 1 {
		a.Logger.Error().Strs("errors", report.Errors).Str("code_id", req.CodeID).Msg("send reminder email")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to send reminder email")
		return
	}

	// The email is already out; a failed stamp only loses bookkeeping.
	var stamped string
	row := a.SQL.QueryRow(r.Context(), sqlinline.QStampInviteReminder, req.CodeID, req.RecipientEmail)
	if err := row.Scan(&stamped); err != nil {
		a.Logger.Warn().Err(err).Str("code_id", req.CodeID).Msg("stamp invite reminder")
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Reminder email sent to %s", req.RecipientEmail),
		"data":    map[string]any{"code": c.Code},
	})
}

func (a *App) InviteCodeQR(w http.ResponseWriter, r *http.Request) {
	codeID := chi.URLParam(r, "code_id")
	if _, err := uuid.Parse(codeID); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid code id")
		return
	}
	c, err := scanInviteCode(a.SQL.QueryRow(r.Context(), sqlinline.QSelectInviteCode, codeID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Invite code not found")
			return
		}
		a.Logger.Error().Err(err).Str("code_id", codeID).Msg("load invite code")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to render QR code")
		return
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s?code=%s", a.SignupBaseURL, c.Code), qrcode.Medium, qrImageSize)
	if err != nil {
		a.Logger.Error().Err(err).Str("code_id", codeID).Msg("encode QR")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
