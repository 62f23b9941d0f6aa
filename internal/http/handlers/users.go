package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"helium-admin/internal/domain"
	"helium-admin/internal/sqlinline"
)

const pgUniqueViolation = "23505"

func (a *App) UsersList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListUserProfiles, search, perPage, (page-1)*perPage)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch users")
		return
	}
	defer rows.Close()

	users := []map[string]any{}
	var total int64
	for rows.Next() {
		var userID, email, fullName, preferredName, workDescription, planType, accountType, referralSource string
		var createdAt, updatedAt time.Time
		var lastSignInAt *time.Time
		if err := rows.Scan(&userID, &email, &fullName, &preferredName, &workDescription,
			&planType, &accountType, &referralSource, &createdAt, &updatedAt, &lastSignInAt, &total); err != nil {
			a.Logger.Error().Err(err).Msg("scan user profile row")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch users")
			return
		}
		if email == "" {
			email = "Email not available"
		}
		users = append(users, map[string]any{
			"id":               userID,
			"email":            email,
			"full_name":        fullName,
			"preferred_name":   preferredName,
			"work_description": workDescription,
			"plan_type":        planType,
			"account_type":     accountType,
			"referral_source":  referralSource,
			"created_at":       createdAt,
			"updated_at":       updatedAt,
			"last_sign_in_at":  lastSignInAt,
		})
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch users")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     users,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (a *App) UserGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if _, err := uuid.Parse(userID); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserProfile, userID)
	var id, email, fullName, preferredName, workDescription string
	var planType, accountType, referralSource string
	var metadata json.RawMessage
	var createdAt, updatedAt time.Time
	if err := row.Scan(&id, &email, &fullName, &preferredName, &workDescription,
		&planType, &accountType, &referralSource, &metadata, &createdAt, &updatedAt); err != nil {
		err = noRowsAsNotFound(err)
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("load user profile")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch user")
		return
	}
	if email == "" {
		email = "Email not available"
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":               id,
		"email":            email,
		"full_name":        fullName,
		"preferred_name":   preferredName,
		"work_description": workDescription,
		"plan_type":        planType,
		"account_type":     accountType,
		"referral_source":  referralSource,
		"metadata":         metadata,
		"created_at":       createdAt,
		"updated_at":       updatedAt,
	})
}

type createUserRequest struct {
	Email           string         `json:"email" validate:"required,email"`
	Password        string         `json:"password" validate:"required,min=8"`
	FullName        string         `json:"full_name" validate:"required"`
	PreferredName   string         `json:"preferred_name"`
	WorkDescription string         `json:"work_description"`
	Metadata        map[string]any `json:"metadata"`
}

func (a *App) UsersCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !a.bind(w, r, &req) {
		return
	}
	p := createUserParams{
		email:           req.Email,
		password:        req.Password,
		fullName:        req.FullName,
		preferredName:   req.PreferredName,
		workDescription: req.WorkDescription,
		planType:        string(domain.PlanSeed),
		accountType:     string(domain.AccountIndividual),
		metadata:        req.Metadata,
	}
	userID, createdAt, ok := a.createUser(r.Context(), w, p)
	if !ok {
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":               userID,
		"email":            req.Email,
		"full_name":        p.fullName,
		"preferred_name":   p.preferredName,
		"work_description": p.workDescription,
		"plan_type":        p.planType,
		"account_type":     p.accountType,
		"created_at":       createdAt,
	})
}

// createUserLegacyRequest is the dashboard's camelCase payload, the
// only create flow that picks plan and account type explicitly.
type createUserLegacyRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	FullName        string `json:"fullName" validate:"required"`
	WorkDescription string `json:"workDescription"`
	PlanType        string `json:"planType" validate:"required,oneof=seed edge quantum"`
	AccountType     string `json:"accountType" validate:"required,oneof=individual business"`
	PreferredName   string `json:"preferredName"`
	ReferralSource  string `json:"referralSource"`
}

func (a *App) CreateUserLegacy(w http.ResponseWriter, r *http.Request) {
	var req createUserLegacyRequest
	if !a.bind(w, r, &req) {
		return
	}
	p := createUserParams{
		email:           req.Email,
		password:        req.Password,
		fullName:        req.FullName,
		preferredName:   req.PreferredName,
		workDescription: req.WorkDescription,
		planType:        req.PlanType,
		accountType:     req.AccountType,
		referralSource:  req.ReferralSource,
	}
	userID, _, ok := a.createUser(r.Context(), w, p)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User created successfully",
		"data":    map[string]any{"userId": userID, "email": req.Email},
	})
}

type createUserParams struct {
	email           string
	password        string
	fullName        string
	preferredName   string
	workDescription string
	planType        string
	accountType     string
	referralSource  string
	metadata        map[string]any
}

// createUser writes the auth record, then the profile row. A failed
// profile insert deletes the fresh auth record so the two tables never
// drift. A false return means the error response is already written.
func (a *App) createUser(ctx context.Context, w http.ResponseWriter, p createUserParams) (string, time.Time, bool) {
	if p.preferredName == "" {
		p.preferredName = preferredNameFrom(p.fullName)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to create user")
		return "", time.Time{}, false
	}

	var userID string
	if err := a.SQL.QueryRow(ctx, sqlinline.QInsertAuthUser, p.email, string(hash)).Scan(&userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			a.error(w, http.StatusBadRequest, "bad_request", "A user with this email already exists")
			return "", time.Time{}, false
		}
		a.Logger.Error().Err(err).Msg("insert auth user")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to create user")
		return "", time.Time{}, false
	}

	metaJSON := json.RawMessage(`{}`)
	if p.metadata != nil {
		b, err := json.Marshal(p.metadata)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid metadata")
			return "", time.Time{}, false
		}
		metaJSON = b
	}

	var createdAt time.Time
	row := a.SQL.QueryRow(ctx, sqlinline.QInsertUserProfile,
		userID, p.fullName, p.preferredName, p.workDescription, p.planType, p.accountType, p.referralSource, metaJSON)
	if err := row.Scan(&createdAt); err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("insert user profile, rolling back auth user")
		if _, rbErr := a.SQL.Exec(ctx, sqlinline.QDeleteAuthUser, userID); rbErr != nil {
			a.Logger.Error().Err(rbErr).Str("user_id", userID).Msg("rollback auth user")
		}
		a.error(w, http.StatusInternalServerError, "internal", "Failed to create user")
		return "", time.Time{}, false
	}
	return userID, createdAt, true
}

// preferredNameFrom derives the short name users get greeted by: the
// first word of the full name, title-cased.
func preferredNameFrom(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(fields[0]))
}

func (a *App) UserDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if _, err := uuid.Parse(userID); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}
	if err := a.deleteUser(r.Context(), userID); err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("delete user")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to delete user")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "message": "User deleted successfully"})
}

type bulkDeleteUsersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,uuid"`
}

func (a *App) UsersBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteUsersRequest
	if !a.bind(w, r, &req) {
		return
	}
	deleted := 0
	var errs []string
	for _, id := range req.UserIDs {
		if err := a.deleteUser(r.Context(), id); err != nil {
			a.Logger.Error().Err(err).Str("user_id", id).Msg("bulk delete user")
			errs = append(errs, fmt.Sprintf("%s: delete failed", id))
			continue
		}
		deleted++
	}
	data := map[string]any{"deleted_count": deleted}
	if len(errs) > 0 {
		data["errors"] = errs
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Successfully deleted %d users", deleted),
		"data":    data,
	})
}

// bulkDeleteProfilesLegacyRequest accepts either key; two generations
// of the dashboard named it differently.
type bulkDeleteProfilesLegacyRequest struct {
	UserIDs    []string `json:"userIds"`
	ProfileIDs []string `json:"profileIds"`
}

func (a *App) BulkDeleteUserProfilesLegacy(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteProfilesLegacyRequest
	if !a.bind(w, r, &req) {
		return
	}
	ids := req.UserIDs
	if len(ids) == 0 {
		ids = req.ProfileIDs
	}
	if len(ids) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "userIds is required")
		return
	}

	type outcome struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}
	results := make([]outcome, 0, len(ids))
	deleted := 0
	for _, id := range ids {
		if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
			results = append(results, outcome{ID: id, Error: "invalid user id"})
			continue
		}
		if err := a.deleteUser(r.Context(), id); err != nil {
			a.Logger.Error().Err(err).Str("user_id", id).Msg("bulk delete user profile")
			results = append(results, outcome{ID: id, Error: "delete failed"})
			continue
		}
		deleted++
		results = append(results, outcome{ID: id, Deleted: true})
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Deleted %d of %d user profiles", deleted, len(ids)),
		"details": map[string]any{"deletedCount": deleted, "results": results},
	})
}

// deleteUser removes the profile first, then the auth record. Deleting
// a user whose auth row is already gone is not an error.
func (a *App) deleteUser(ctx context.Context, userID string) error {
	if _, err := a.SQL.Exec(ctx, sqlinline.QDeleteUserProfile, userID); err != nil {
		return fmt.Errorf("delete user profile: %w", err)
	}
	if _, err := a.SQL.Exec(ctx, sqlinline.QDeleteAuthUser, userID); err != nil {
		return fmt.Errorf("delete auth user: %w", err)
	}
	return nil
}

type fetchEmailsRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,uuid"`
}

func (a *App) UsersFetchEmails(w http.ResponseWriter, r *http.Request) {
	var req fetchEmailsRequest
	if !a.bind(w, r, &req) {
		return
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectUserEmailsWithNames, req.UserIDs)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch user emails")
		return
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var id, email, fullName string
		if err := rows.Scan(&id, &email, &fullName); err != nil {
			a.Logger.Error().Err(err).Msg("scan user email row")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch user emails")
			return
		}
		items = append(items, map[string]any{"id": id, "email": email, "full_name": fullName})
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch user emails")
		return
	}
	a.json(w, http.StatusOK, items)
}
