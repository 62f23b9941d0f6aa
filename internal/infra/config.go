package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	MigrationsDir    string
	AdminPassword    string
	AllowedOrigins   []string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SenderEmail      string
	SMTPFromName     string
	EmailAssetDir    string
	SignupBaseURL    string
	GAKeyJSON        string
	GAKeyFile        string
	GAPropertyID     string
	GeoIPDBPath      string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitRPS     float64
	RateLimitBurst   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// SMTP and analytics settings are optional at boot; the endpoints that
// need them reject requests until they are configured.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "migrations"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		AllowedOrigins:   splitCSV(os.Getenv("ALLOWED_ORIGINS")),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		SenderEmail:      os.Getenv("SENDER_EMAIL"),
		SMTPFromName:     getEnv("SMTP_FROM", "Helium"),
		EmailAssetDir:    getEnv("EMAIL_ASSET_DIR", "static/images"),
		SignupBaseURL:    getEnv("SIGNUP_BASE_URL", "https://helium.he2.ai/signup"),
		GAKeyJSON:        os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"),
		GAKeyFile:        os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE"),
		GAPropertyID:     os.Getenv("GA_PROPERTY_ID"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 40),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}

	return cfg, nil
}

// SMTPConfigured reports whether the email transport can be built.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SenderEmail != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
