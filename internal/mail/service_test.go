package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"helium-admin/internal/domain"
	"helium-admin/internal/sqlinline"
)

const (
	userA = "5a474fb0-6a31-4b6f-9a62-6b6e3b1f3a01"
	userB = "0b43a2dc-9c11-4b0e-8cb8-2f51f26f9f02"
	userC = "9d3ce291-40b7-4a05-b6e0-7a42f7cf5c03"
	userX = "1f2e3d4c-5b6a-4798-8899-aabbccddee04"
)

func newTestService(t *testing.T, db *mailTestSQL, tr *fakeTransport) *Service {
	t.Helper()
	return NewService(db, tr, zerolog.Nop(), t.TempDir())
}

func TestResolveRecipients_DeduplicatesSelection(t *testing.T) {
	db := &mailTestSQL{
		profiles: [][2]string{{userA, "Ada"}, {userB, "Brin"}},
		emails:   [][2]string{{userA, "ada@example.com"}, {userB, "brin@example.com"}},
	}
	svc := newTestService(t, db, &fakeTransport{})

	res, err := svc.ResolveRecipients(context.Background(), []string{userA, userA, userB, " " + userA + " "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids, ok := db.profileArgs[0].([]string)
	if !ok {
		t.Fatalf("expected id slice arg, got %T", db.profileArgs[0])
	}
	if len(ids) != 2 {
		t.Fatalf("duplicates should collapse to one occurrence, got %v", ids)
	}
	if len(res.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(res.Recipients))
	}
}

func TestResolveRecipients_ReportsUnknownIDs(t *testing.T) {
	db := &mailTestSQL{
		profiles: [][2]string{{userA, "Ada"}},
		emails:   [][2]string{{userA, "ada@example.com"}},
	}
	svc := newTestService(t, db, &fakeTransport{})

	res, err := svc.ResolveRecipients(context.Background(), []string{userA, userX})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.NotFound) != 1 || res.NotFound[0] != userX {
		t.Fatalf("unexpected not-found bucket: %#v", res.NotFound)
	}
	if len(res.Recipients) != 1 || res.Recipients[0].Email != "ada@example.com" {
		t.Fatalf("unexpected recipients: %#v", res.Recipients)
	}
}

func TestResolveRecipients_ProfilesWithoutEmailAreExcluded(t *testing.T) {
	db := &mailTestSQL{
		profiles: [][2]string{{userA, "Ada"}, {userB, "Brin"}},
		emails:   [][2]string{{userA, "ada@example.com"}},
	}
	svc := newTestService(t, db, &fakeTransport{})

	res, err := svc.ResolveRecipients(context.Background(), []string{userA, userB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.NoEmail) != 1 || res.NoEmail[0] != userB {
		t.Fatalf("unexpected no-email bucket: %#v", res.NoEmail)
	}
	if len(res.Recipients) != 1 {
		t.Fatalf("expected 1 recipient, got %d", len(res.Recipients))
	}
}

func TestResolveRecipients_RejectsMalformedIDs(t *testing.T) {
	db := &mailTestSQL{
		profiles: [][2]string{{userA, "Ada"}},
		emails:   [][2]string{{userA, "ada@example.com"}},
	}
	svc := newTestService(t, db, &fakeTransport{})

	res, err := svc.ResolveRecipients(context.Background(), []string{"", "not-a-uuid", userA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Invalid) != 2 {
		t.Fatalf("expected 2 invalid entries, got %#v", res.Invalid)
	}

	if _, err := svc.ResolveRecipients(context.Background(), []string{"nope"}); !errors.Is(err, domain.ErrNoRecipients) {
		t.Fatalf("all-invalid selection should fail, got %v", err)
	}
}

func TestResolveRecipients_BroadcastWalksAuthPages(t *testing.T) {
	db := &mailTestSQL{
		profiles: [][2]string{{userA, "Ada"}, {userB, "Brin"}},
		emails:   [][2]string{{userA, "ada@example.com"}, {userB, "brin@example.com"}},
	}
	svc := newTestService(t, db, &fakeTransport{})

	res, err := svc.ResolveRecipients(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(res.Recipients))
	}
	if db.emailPageCalls != 1 {
		t.Fatalf("expected a single page fetch, got %d", db.emailPageCalls)
	}
}

func TestResolveRecipients_NoProfilesIsAnError(t *testing.T) {
	svc := newTestService(t, &mailTestSQL{}, &fakeTransport{})

	_, err := svc.ResolveRecipients(context.Background(), nil)
	if !errors.Is(err, domain.ErrNoRecipients) {
		t.Fatalf("expected no-recipients error, got %v", err)
	}
}

func TestDeliver_ContinuesAfterTransportFailure(t *testing.T) {
	db := &mailTestSQL{}
	tr := &fakeTransport{failFor: map[string]error{"brin@example.com": errors.New("mailbox unavailable")}}
	svc := newTestService(t, db, tr)

	resolved := ResolveResult{Recipients: []Recipient{
		{UserID: userA, FullName: "Ada", Email: "ada@example.com"},
		{UserID: userB, FullName: "Brin", Email: "brin@example.com"},
		{UserID: userC, FullName: "Cory", Email: "cory@example.com"},
	}}
	report := svc.Deliver(context.Background(), resolved, Content{Subject: "Update", Text: "body", HTML: "<p>body</p>"})

	if report.Total != 3 || report.SuccessCount != 2 || report.ErrorCount != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "brin@example.com") {
		t.Fatalf("unexpected errors: %#v", report.Errors)
	}
	if len(db.attempted) != 3 {
		t.Fatalf("every recipient should be recorded as attempted, got %d", len(db.attempted))
	}
	if len(db.confirmed) != 2 || len(db.failed) != 1 {
		t.Fatalf("unexpected delivery marks: confirmed=%d failed=%d", len(db.confirmed), len(db.failed))
	}
}

func TestDeliver_CountsProfilesWithoutEmailAsErrors(t *testing.T) {
	db := &mailTestSQL{}
	tr := &fakeTransport{}
	svc := newTestService(t, db, tr)

	resolved := ResolveResult{
		Recipients: []Recipient{{UserID: userA, FullName: "Ada", Email: "ada@example.com"}},
		NoEmail:    []string{userB},
	}
	report := svc.Deliver(context.Background(), resolved, Content{Subject: "Update", HTML: "<p>x</p>"})

	if report.Total != 2 || report.SuccessCount != 1 || report.ErrorCount != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	want := fmt.Sprintf("User %s: No email found", userB)
	if len(report.Errors) != 1 || report.Errors[0] != want {
		t.Fatalf("unexpected errors: %#v", report.Errors)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("transport should only see recipients with an email, got %d", len(tr.sent))
	}
}

func TestDeliver_CreditsFlagUpsertOnResend(t *testing.T) {
	db := &mailTestSQL{}
	tr := &fakeTransport{}
	svc := newTestService(t, db, tr)

	resolved := ResolveResult{Recipients: []Recipient{{UserID: userA, FullName: "Ada", Email: "ada@example.com"}}}
	content := CreditsContent()

	svc.Deliver(context.Background(), resolved, content)
	svc.Deliver(context.Background(), resolved, content)

	if len(db.flagged) != 2 {
		t.Fatalf("resend should refresh the flag, got %d upserts", len(db.flagged))
	}
	if db.flagged[0] != userA {
		t.Fatalf("unexpected flagged user: %q", db.flagged[0])
	}
}

func TestDeliver_CustomContentReachesTransportVerbatim(t *testing.T) {
	db := &mailTestSQL{}
	tr := &fakeTransport{}
	svc := newTestService(t, db, tr)

	content := Content{Subject: "Exact subject", Text: "Exact text", HTML: "<p>Exact html</p>"}
	resolved := ResolveResult{Recipients: []Recipient{{UserID: userA, FullName: "Ada", Email: "ada@example.com"}}}

	svc.Deliver(context.Background(), resolved, content)

	if len(tr.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(tr.sent))
	}
	if tr.sent[0].Content != content {
		t.Fatalf("content was altered in flight: %+v", tr.sent[0].Content)
	}
	if len(tr.sent[0].Attachments) != 0 {
		t.Fatalf("no attachments expected without cid references")
	}
}

func TestSendIndividual_NoUserFlag(t *testing.T) {
	db := &mailTestSQL{}
	tr := &fakeTransport{}
	svc := newTestService(t, db, tr)

	report := svc.SendIndividual(context.Background(), "someone@example.com", CreditsContent())

	if report.SuccessCount != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(db.flagged) != 0 {
		t.Fatalf("individual sends must not stamp user flags, got %#v", db.flagged)
	}
	if db.attemptedUserIDs[0] != "" {
		t.Fatalf("delivery row should have no user id, got %q", db.attemptedUserIDs[0])
	}
}

type fakeTransport struct {
	sent      []Message
	failFor   map[string]error
	verifyErr error
}

func (f *fakeTransport) Verify(context.Context) error { return f.verifyErr }

func (f *fakeTransport) Send(_ context.Context, msg Message) error {
	if err, ok := f.failFor[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type mailTestSQL struct {
	profiles [][2]string
	emails   [][2]string

	profileArgs      []any
	emailPageCalls   int
	attempted        []string
	attemptedUserIDs []string
	confirmed        []string
	failed           []string
	flagged          []string
	nextID           int
}

func (m *mailTestSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	switch query {
	case sqlinline.QMarkDeliveryConfirmed:
		m.confirmed = append(m.confirmed, args[0].(string))
	case sqlinline.QMarkDeliveryFailed:
		m.failed = append(m.failed, args[0].(string))
	case sqlinline.QUpsertUserFlag:
		m.flagged = append(m.flagged, args[0].(string))
	default:
		return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", query)
	}
	return pgconn.CommandTag{}, nil
}

func (m *mailTestSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if query != sqlinline.QInsertEmailDelivery {
		return simpleRow{err: fmt.Errorf("unexpected query row: %s", query)}
	}
	m.nextID++
	m.attemptedUserIDs = append(m.attemptedUserIDs, args[0].(string))
	m.attempted = append(m.attempted, args[1].(string))
	return simpleRow{value: fmt.Sprintf("delivery-%d", m.nextID)}
}

func (m *mailTestSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	switch query {
	case sqlinline.QSelectProfilesByIDs:
		m.profileArgs = args
		return &idNameRows{rows: m.profiles}, nil
	case sqlinline.QSelectAllProfiles:
		return &idNameRows{rows: m.profiles}, nil
	case sqlinline.QSelectAuthEmailsByIDs:
		return &idNameRows{rows: m.emails}, nil
	case sqlinline.QListAuthEmailsPage:
		m.emailPageCalls++
		return &idNameRows{rows: m.emails}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", query)
}

type simpleRow struct {
	value string
	err   error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if v, ok := dest[0].(*string); ok {
		*v = r.value
	}
	return nil
}

type idNameRows struct {
	testRowsBase
	rows [][2]string
	idx  int
}

func (r *idNameRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *idNameRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	row := r.rows[r.idx-1]
	if len(dest) != 2 {
		return fmt.Errorf("unexpected scan args: %d", len(dest))
	}
	if v, ok := dest[0].(*string); ok {
		*v = row[0]
	}
	if v, ok := dest[1].(*string); ok {
		*v = row[1]
	}
	return nil
}

func (r *idNameRows) Err() error { return nil }

func (r *idNameRows) Close() {}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }
