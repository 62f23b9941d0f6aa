package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"helium-admin/internal/analytics"
	"helium-admin/internal/domain"
	"helium-admin/internal/infra"
	"helium-admin/internal/infra/geoip"
	"helium-admin/internal/mail"
)

// App carries the dependencies shared by every handler. Mailer,
// Analytics and Geo stay nil when their configuration is absent; the
// endpoints that need them answer with a configuration error instead
// of failing at boot.
type App struct {
	SQL           infra.SQLExecutor
	Logger        infra.Logger
	Validate      *validator.Validate
	Mailer        *mail.Service
	Analytics     *analytics.Client
	Geo           geoip.CountryResolver
	AssetDir      string
	SignupBaseURL string
}

// NewValidator builds the shared request validator. Violations are
// reported under the json field name, not the Go field name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{"success": false, "error": errCode, "message": message})
}

// bind decodes the JSON body into v and validates it. A false return
// means the 400 response has already been written.
func (a *App) bind(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	if a.Validate != nil {
		if err := a.Validate.Struct(v); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", validationMessage(err))
			return false
		}
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid payload"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "validation failed on: " + strings.Join(fields, ", ")
}

// noRowsAsNotFound translates pgx's no-rows sentinel into the domain
// error handlers branch on for 404 responses.
func noRowsAsNotFound(err error) error {
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	return err
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
