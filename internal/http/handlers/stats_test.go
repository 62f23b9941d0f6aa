package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"helium-admin/internal/sqlinline"
)

type statsTestSQL struct {
	scanErr error
}

func (s *statsTestSQL) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *statsTestSQL) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	if query != sqlinline.QDashboardStats {
		return NewSimpleRow(func(...any) error { return fmt.Errorf("unexpected query: %s", query) })
	}
	if s.scanErr != nil {
		err := s.scanErr
		return NewSimpleRow(func(...any) error { return err })
	}
	return NewSimpleRow(func(dest ...any) error {
		return scanInto(dest, int64(10), int64(4), int64(5), int64(7))
	})
}

func (s *statsTestSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected query")
}

func TestDashboardStats_ComputesUsageRate(t *testing.T) {
	app := newTestApp(&statsTestSQL{})

	req := httptest.NewRequest("GET", "/api/v1/invite-codes/stats", nil)
	rr := httptest.NewRecorder()

	app.DashboardStats(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	var payload struct {
		TotalCodes  int64   `json:"total_codes"`
		ActiveCodes int64   `json:"active_codes"`
		UsageRate   float64 `json:"usage_rate"`
		EmailsSent  int64   `json:"emails_sent"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.TotalCodes != 10 || payload.ActiveCodes != 4 {
		t.Fatalf("unexpected counts: %+v", payload)
	}
	if payload.UsageRate != 0.5 {
		t.Fatalf("unexpected usage rate: %v", payload.UsageRate)
	}
	if payload.EmailsSent != 7 {
		t.Fatalf("unexpected emails sent: %d", payload.EmailsSent)
	}
}

func TestDashboardStats_QueryFailure(t *testing.T) {
	app := newTestApp(&statsTestSQL{scanErr: fmt.Errorf("connection reset")})

	req := httptest.NewRequest("GET", "/api/v1/invite-codes/stats", nil)
	rr := httptest.NewRecorder()

	app.DashboardStats(rr, req)

	if rr.Code != 500 {
		t.Fatalf("unexpected status code: got %d, want 500", rr.Code)
	}
}
