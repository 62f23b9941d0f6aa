package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// AdminAuth guards staff routes with the shared admin password carried
// as a bearer token. Comparison is constant time, and missing and
// wrong credentials are indistinguishable to the caller.
func AdminAuth(adminPassword string, l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				l.Warn().Str("path", r.URL.Path).Msg("authentication attempt without credentials")
				unauthorized(w)
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(adminPassword)) != 1 {
				l.Warn().Str("path", r.URL.Path).Msg("authentication attempt with invalid password")
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid authentication credentials"})
}
