package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"helium-admin/internal/domain"
	"helium-admin/internal/mail"
	"helium-admin/internal/sqlinline"
)

const pgForeignKeyViolation = "23503"

func creditBalanceJSON(b domain.CreditBalance) map[string]any {
	return map[string]any{
		"user_id":                b.UserID,
		"balance_dollars":        b.BalanceDollars,
		"balance_credits":        b.BalanceCredits(),
		"total_purchased":        b.TotalPurchased,
		"total_used":             b.TotalUsed,
		"last_updated":           b.LastUpdated,
		"initial_assignment_at":  b.InitialAssignmentAt,
		"last_assignment_at":     b.LastAssignmentAt,
		"last_assignment_amount": b.LastAssignmentAmount,
		"last_assignment_notes":  b.LastAssignmentNotes,
	}
}

func scanCreditBalance(row rowScanner) (domain.CreditBalance, error) {
	var b domain.CreditBalance
	err := row.Scan(&b.UserID, &b.BalanceDollars, &b.TotalPurchased, &b.TotalUsed,
		&b.LastUpdated, &b.InitialAssignmentAt, &b.LastAssignmentAt, &b.LastAssignmentAmount, &b.LastAssignmentNotes)
	return b, err
}

func (a *App) CreditBalancesList(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListCreditBalances, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch credit balances")
		return
	}
	defer rows.Close()

	balances := []map[string]any{}
	for rows.Next() {
		b, err := scanCreditBalance(rows)
		if err != nil {
			a.Logger.Error().Err(err).Msg("scan credit balance row")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch credit balances")
			return
		}
		balances = append(balances, creditBalanceJSON(b))
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch credit balances")
		return
	}
	a.json(w, http.StatusOK, balances)
}

type assignCreditsRequest struct {
	UserID    string  `json:"user_id" validate:"required,uuid"`
	Credits   float64 `json:"credits" validate:"required,gt=0"`
	Notes     string  `json:"notes"`
	SendEmail *bool   `json:"send_email"`
}

func (a *App) CreditsAssign(w http.ResponseWriter, r *http.Request) {
	var req assignCreditsRequest
	if !a.bind(w, r, &req) {
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertCreditBalance, req.UserID, req.Credits, req.Notes)
	b, err := scanCreditBalance(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			a.error(w, http.StatusBadRequest, "bad_request", "User not found")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("assign credits")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to assign credits")
		return
	}

	// The notification rides the normal delivery machinery so the
	// attempt is recorded and the credits flag gets stamped. A send
	// failure never unwinds the balance change.
	if (req.SendEmail == nil || *req.SendEmail) && a.Mailer != nil {
		resolved, err := a.Mailer.ResolveRecipients(r.Context(), []string{req.UserID})
		if err != nil {
			a.Logger.Warn().Err(err).Str("user_id", req.UserID).Msg("resolve credits email recipient")
		} else if report := a.Mailer.Deliver(r.Context(), resolved, mail.CreditsContent()); report.ErrorCount > 0 {
			a.Logger.Warn().Strs("errors", report.Errors).Str("user_id", req.UserID).Msg("send credits email")
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Successfully assigned %v credits to user", req.Credits),
		"data": map[string]any{
			"userId":         b.UserID,
			"balanceDollars": b.BalanceDollars,
			"balanceCredits": b.BalanceCredits(),
			"totalPurchased": b.TotalPurchased,
			"totalUsed":      b.TotalUsed,
		},
	})
}

func (a *App) CreditPurchasesList(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListCreditPurchases, userID, status, perPage, (page-1)*perPage)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch credit purchases")
		return
	}
	defer rows.Close()

	purchases := []map[string]any{}
	var total int64
	for rows.Next() {
		var p domain.CreditPurchase
		var purchaseStatus string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Email, &p.AmountDollars, &p.Credits,
			&purchaseStatus, &p.StripePaymentIntent, &p.CreatedAt, &total); err != nil {
			a.Logger.Error().Err(err).Msg("scan credit purchase row")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch credit purchases")
			return
		}
		p.Status = domain.PurchaseStatus(purchaseStatus)
		purchases = append(purchases, map[string]any{
			"id":                    p.ID,
			"user_id":               p.UserID,
			"email":                 p.Email,
			"amount_dollars":        p.AmountDollars,
			"credits":               p.Credits,
			"status":                p.Status,
			"stripe_payment_intent": p.StripePaymentIntent,
			"created_at":            p.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch credit purchases")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     purchases,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
