package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"helium-admin/internal/domain"
	"helium-admin/internal/sqlinline"
)

type fakeGeo struct {
	codes   map[string]string
	lookups []string
}

func (g *fakeGeo) CountryCode(ip string) (string, error) {
	g.lookups = append(g.lookups, ip)
	code, ok := g.codes[ip]
	if !ok {
		return "", fmt.Errorf("address %s not found", ip)
	}
	return code, nil
}

type waitlistTestSQL struct {
	entries      []domain.WaitlistUser
	countryUpds  [][]any
	archiveTag   pgconn.CommandTag
	archiveQuery string
	archiveArgs  []any
}

func (s *waitlistTestSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	switch query {
	case sqlinline.QSetWaitlistCountry:
		s.countryUpds = append(s.countryUpds, args)
		return pgconn.NewCommandTag("UPDATE 1"), nil
	case sqlinline.QArchiveWaitlistByIDs, sqlinline.QArchiveNotifiedWaitlist:
		s.archiveQuery = query
		s.archiveArgs = args
		return s.archiveTag, nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", query)
}

func (s *waitlistTestSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	return NewSimpleRow(nil)
}

func (s *waitlistTestSQL) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	if query != sqlinline.QListWaitlist {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	return &waitlistIterator{entries: s.entries}, nil
}

type waitlistIterator struct {
	TestRowsBase
	entries []domain.WaitlistUser
	idx     int
}

func (it *waitlistIterator) Next() bool {
	if it.idx >= len(it.entries) {
		return false
	}
	it.idx++
	return true
}

func (it *waitlistIterator) Scan(dest ...any) error {
	u := it.entries[it.idx-1]
	return scanInto(dest, u.ID, u.FullName, u.Email, u.Company, u.PhoneNumber,
		u.CountryCode, u.Reference, u.ReferralSource, u.ReferralSourceOther,
		u.UserAgent, u.IPAddress, u.JoinedAt, u.NotifiedAt, u.IsNotified, u.IsArchived)
}

func (it *waitlistIterator) Err() error { return nil }

func (it *waitlistIterator) Close() {}

func TestWaitlistList_BackfillsCountryFromIP(t *testing.T) {
	ip := "203.0.113.9"
	sqlExec := &waitlistTestSQL{entries: []domain.WaitlistUser{
		{
			ID:        "0bb5c760-3b44-4f2e-92f5-6a5cbb1e2f01",
			FullName:  "Grace Hopper",
			Email:     "grace@example.com",
			IPAddress: &ip,
			JoinedAt:  time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			ID:          "92e0a6a1-5b7e-4a0e-8cf1-3f6a2d9b8c44",
			FullName:    "Alan Turing",
			Email:       "alan@example.com",
			CountryCode: "GB",
			IPAddress:   &ip,
			JoinedAt:    time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC),
		},
	}}
	geo := &fakeGeo{codes: map[string]string{ip: "US"}}
	app := newTestApp(sqlExec)
	app.Geo = geo

	req := httptest.NewRequest("GET", "/api/v1/waitlist", nil)
	rr := httptest.NewRecorder()

	app.WaitlistList(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(payload))
	}
	if payload[0]["country_code"] != "US" {
		t.Fatalf("expected backfilled country, got %#v", payload[0]["country_code"])
	}
	if payload[1]["country_code"] != "GB" {
		t.Fatalf("existing country overwritten: %#v", payload[1]["country_code"])
	}
	// Only the entry missing a country should be looked up and persisted.
	if len(geo.lookups) != 1 {
		t.Fatalf("expected 1 geo lookup, got %d", len(geo.lookups))
	}
	if len(sqlExec.countryUpds) != 1 {
		t.Fatalf("expected 1 country update, got %d", len(sqlExec.countryUpds))
	}
	upd := sqlExec.countryUpds[0]
	if upd[0] != "0bb5c760-3b44-4f2e-92f5-6a5cbb1e2f01" || upd[1] != "US" {
		t.Fatalf("unexpected update args: %#v", upd)
	}
}

func TestWaitlistList_LookupFailureLeavesRow(t *testing.T) {
	ip := "198.51.100.7"
	sqlExec := &waitlistTestSQL{entries: []domain.WaitlistUser{{
		ID:        "0bb5c760-3b44-4f2e-92f5-6a5cbb1e2f01",
		FullName:  "Grace Hopper",
		Email:     "grace@example.com",
		IPAddress: &ip,
		JoinedAt:  time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC),
	}}}
	app := newTestApp(sqlExec)
	app.Geo = &fakeGeo{}

	req := httptest.NewRequest("GET", "/api/v1/waitlist", nil)
	rr := httptest.NewRecorder()

	app.WaitlistList(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload[0]["country_code"] != "" {
		t.Fatalf("expected empty country after failed lookup, got %#v", payload[0]["country_code"])
	}
	if len(sqlExec.countryUpds) != 0 {
		t.Fatalf("expected no update after failed lookup, got %d", len(sqlExec.countryUpds))
	}
}

func TestWaitlistArchive_ByIDs(t *testing.T) {
	sqlExec := &waitlistTestSQL{archiveTag: pgconn.NewCommandTag("UPDATE 2")}
	app := newTestApp(sqlExec)

	body := `{"user_ids":["0bb5c760-3b44-4f2e-92f5-6a5cbb1e2f01","92e0a6a1-5b7e-4a0e-8cf1-3f6a2d9b8c44"]}`
	req := httptest.NewRequest("POST", "/api/v1/waitlist/archive", strings.NewReader(body))
	rr := httptest.NewRecorder()

	app.WaitlistArchive(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	if sqlExec.archiveQuery != sqlinline.QArchiveWaitlistByIDs {
		t.Fatalf("unexpected archive query: %s", sqlExec.archiveQuery)
	}
	ids, ok := sqlExec.archiveArgs[0].([]string)
	if !ok || len(ids) != 2 {
		t.Fatalf("unexpected archive args: %#v", sqlExec.archiveArgs)
	}
	var payload struct {
		Message string `json:"message"`
		Data    struct {
			ArchivedCount int `json:"archived_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.ArchivedCount != 2 {
		t.Fatalf("expected 2 archived, got %d", payload.Data.ArchivedCount)
	}
	if payload.Message != "Successfully archived 2 waitlist users" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
}

func TestWaitlistArchive_DefaultsToNotified(t *testing.T) {
	sqlExec := &waitlistTestSQL{archiveTag: pgconn.NewCommandTag("UPDATE 3")}
	app := newTestApp(sqlExec)

	req := httptest.NewRequest("POST", "/api/v1/waitlist/archive", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	app.WaitlistArchive(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	if sqlExec.archiveQuery != sqlinline.QArchiveNotifiedWaitlist {
		t.Fatalf("unexpected archive query: %s", sqlExec.archiveQuery)
	}
	var payload struct {
		Data struct {
			ArchivedCount int `json:"archived_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.ArchivedCount != 3 {
		t.Fatalf("expected 3 archived, got %d", payload.Data.ArchivedCount)
	}
}
