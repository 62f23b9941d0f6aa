package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"helium-admin/internal/infra"
)

const (
	defaultBaseURL  = "https://analyticsdata.googleapis.com/v1beta"
	defaultTokenURI = "https://oauth2.googleapis.com/token"
	readonlyScope   = "https://www.googleapis.com/auth/analytics.readonly"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// tokenExpiryMargin forces a refresh slightly before Google's
	// stated expiry so a token never dies mid-request.
	tokenExpiryMargin = time.Minute
)

// ServiceAccountKey is the subset of a Google service-account JSON key
// needed for the JWT bearer flow.
type ServiceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadKey reads the service-account key from inline JSON or a file
// path, preferring the inline form.
func LoadKey(inlineJSON, filePath string) (*ServiceAccountKey, error) {
	raw := []byte(inlineJSON)
	if len(bytes.TrimSpace(raw)) == 0 {
		if filePath == "" {
			return nil, fmt.Errorf("google service account key is not configured")
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read service account key file: %w", err)
		}
		raw = data
	}

	var key ServiceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account key missing client_email or private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = defaultTokenURI
	}
	return &key, nil
}

// UpstreamError carries the status of a failed Google API call so the
// HTTP layer can relay it as a gateway error.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("google api status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("google api status %d", e.Status)
}

// Options controls how the analytics client is configured.
type Options struct {
	Key        *ServiceAccountKey
	PropertyID string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client proxies the GA4 Data API using short-lived service-account
// tokens. Tokens are cached until shortly before expiry.
type Client struct {
	key        *ServiceAccountKey
	propertyID string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(opts Options) (*Client, error) {
	if opts.Key == nil {
		return nil, fmt.Errorf("analytics: service account key is required")
	}
	if opts.PropertyID == "" {
		return nil, fmt.Errorf("analytics: property id is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		key:        opts.Key,
		propertyID: opts.PropertyID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// DailyMetrics is one reported day.
type DailyMetrics struct {
	Date            string `json:"date"`
	ActiveUsers     int64  `json:"activeUsers"`
	ScreenPageViews int64  `json:"screenPageViews"`
	Sessions        int64  `json:"sessions"`
}

type runReportRequest struct {
	DateRanges []gaDateRange `json:"dateRanges"`
	Dimensions []gaName      `json:"dimensions"`
	Metrics    []gaName      `json:"metrics"`
	OrderBys   []gaOrderBy   `json:"orderBys,omitempty"`
}

type gaDateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type gaName struct {
	Name string `json:"name"`
}

type gaOrderBy struct {
	Dimension gaDimensionOrder `json:"dimension"`
}

type gaDimensionOrder struct {
	DimensionName string `json:"dimensionName"`
}

type runReportResponse struct {
	Rows []gaRow `json:"rows"`
}

type gaRow struct {
	DimensionValues []gaValue `json:"dimensionValues"`
	MetricValues    []gaValue `json:"metricValues"`
}

type gaValue struct {
	Value string `json:"value"`
}

// Report runs the GA4 daily report for the date range. The dates
// accept GA's relative forms like "7daysAgo" and "today".
func (c *Client) Report(ctx context.Context, startDate, endDate string) ([]DailyMetrics, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	payload := runReportRequest{
		DateRanges: []gaDateRange{{StartDate: startDate, EndDate: endDate}},
		Dimensions: []gaName{{Name: "date"}},
		Metrics:    []gaName{{Name: "activeUsers"}, {Name: "screenPageViews"}, {Name: "sessions"}},
		OrderBys:   []gaOrderBy{{Dimension: gaDimensionOrder{DimensionName: "date"}}},
	}

	var out runReportResponse
	endpoint := fmt.Sprintf("%s/properties/%s:runReport", c.baseURL, c.propertyID)
	if err := c.invoke(ctx, endpoint, token, payload, &out); err != nil {
		return nil, err
	}

	metrics := make([]DailyMetrics, 0, len(out.Rows))
	for _, row := range out.Rows {
		m := DailyMetrics{}
		if len(row.DimensionValues) > 0 {
			m.Date = row.DimensionValues[0].Value
		}
		if len(row.MetricValues) > 0 {
			m.ActiveUsers = parseMetric(row.MetricValues[0].Value)
		}
		if len(row.MetricValues) > 1 {
			m.ScreenPageViews = parseMetric(row.MetricValues[1].Value)
		}
		if len(row.MetricValues) > 2 {
			m.Sessions = parseMetric(row.MetricValues[2].Value)
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

func (c *Client) invoke(ctx context.Context, endpoint, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal report request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke analytics api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode analytics response: %w", err)
	}
	return nil
}

// token returns a cached access token, minting a fresh one through the
// JWT bearer exchange when the cache is empty or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.accessToken, nil
	}

	assertion, err := c.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.key.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange service account token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return "", &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	c.logger.Debug().Time("expiry", c.tokenExpiry).Msg("minted analytics access token")
	return c.accessToken, nil
}

// signAssertion builds the RS256 JWT Google exchanges for an access
// token.
func (c *Client) signAssertion() (string, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.key.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse service account private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.key.ClientEmail,
		"scope": readonlyScope,
		"aud":   c.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("sign service account assertion: %w", err)
	}
	return assertion, nil
}

func parseMetric(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
