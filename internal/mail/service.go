package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"helium-admin/internal/domain"
	"helium-admin/internal/infra"
	"helium-admin/internal/sqlinline"
)

// emailPageSize bounds each page when walking the whole auth table for
// a broadcast send.
const emailPageSize = 1000

// Service resolves recipients against the database and drives the
// delivery loop, recording every attempt before it reaches the wire.
type Service struct {
	sql       infra.SQLExecutor
	transport Transport
	logger    infra.Logger
	assetDir  string
}

func NewService(sqlExec infra.SQLExecutor, transport Transport, logger infra.Logger, assetDir string) *Service {
	return &Service{sql: sqlExec, transport: transport, logger: logger, assetDir: assetDir}
}

// Verify checks the transport connection without sending anything.
func (s *Service) Verify(ctx context.Context) error {
	return s.transport.Verify(ctx)
}

// ResolveRecipients turns an optional user id selection into concrete
// recipients. An empty selection means every profile. IDs that are
// malformed, unknown, or whose account has no email end up in the
// result's diagnostic buckets instead of aborting the send.
func (s *Service) ResolveRecipients(ctx context.Context, selectedUserIDs []string) (ResolveResult, error) {
	res := ResolveResult{}

	cleaned := make([]string, 0, len(selectedUserIDs))
	seen := make(map[string]bool, len(selectedUserIDs))
	for _, raw := range selectedUserIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			res.Invalid = append(res.Invalid, raw)
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			res.Invalid = append(res.Invalid, id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		cleaned = append(cleaned, id)
	}

	selecting := len(selectedUserIDs) > 0
	if selecting && len(cleaned) == 0 {
		return res, fmt.Errorf("%w: no valid user ids in selection", domain.ErrNoRecipients)
	}

	profiles, err := s.fetchProfiles(ctx, selecting, cleaned)
	if err != nil {
		return res, err
	}
	if len(profiles) == 0 {
		return res, fmt.Errorf("%w: no users found to send emails to", domain.ErrNoRecipients)
	}

	if selecting {
		found := make(map[string]bool, len(profiles))
		for _, p := range profiles {
			found[p.id] = true
		}
		for _, id := range cleaned {
			if !found[id] {
				res.NotFound = append(res.NotFound, id)
			}
		}
	}

	emailByID, err := s.fetchEmails(ctx, selecting, profiles)
	if err != nil {
		return res, err
	}

	for _, p := range profiles {
		email := emailByID[p.id]
		if email == "" {
			res.NoEmail = append(res.NoEmail, p.id)
			continue
		}
		res.Recipients = append(res.Recipients, Recipient{UserID: p.id, FullName: p.name, Email: email})
	}
	return res, nil
}

type profileRow struct {
	id   string
	name string
}

func (s *Service) fetchProfiles(ctx context.Context, selecting bool, ids []string) ([]profileRow, error) {
	var rows pgx.Rows
	var err error
	if selecting {
		rows, err = s.sql.Query(ctx, sqlinline.QSelectProfilesByIDs, ids)
	} else {
		rows, err = s.sql.Query(ctx, sqlinline.QSelectAllProfiles)
	}
	if err != nil {
		return nil, fmt.Errorf("query user profiles: %w", err)
	}
	defer rows.Close()

	var profiles []profileRow
	for rows.Next() {
		var p profileRow
		if err := rows.Scan(&p.id, &p.name); err != nil {
			return nil, fmt.Errorf("scan user profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read user profiles: %w", err)
	}
	return profiles, nil
}

// fetchEmails maps user ids to auth emails. A targeted send queries by
// id set; a broadcast walks the auth table page by page instead of
// shipping every id back as a filter.
func (s *Service) fetchEmails(ctx context.Context, selecting bool, profiles []profileRow) (map[string]string, error) {
	emailByID := make(map[string]string, len(profiles))

	if selecting {
		ids := make([]string, 0, len(profiles))
		for _, p := range profiles {
			ids = append(ids, p.id)
		}
		rows, err := s.sql.Query(ctx, sqlinline.QSelectAuthEmailsByIDs, ids)
		if err != nil {
			return nil, fmt.Errorf("query auth emails: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id, email string
			if err := rows.Scan(&id, &email); err != nil {
				return nil, fmt.Errorf("scan auth email: %w", err)
			}
			emailByID[id] = email
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read auth emails: %w", err)
		}
		return emailByID, nil
	}

	for offset := 0; ; offset += emailPageSize {
		n, err := s.fetchEmailPage(ctx, offset, emailByID)
		if err != nil {
			return nil, err
		}
		if n < emailPageSize {
			return emailByID, nil
		}
	}
}

func (s *Service) fetchEmailPage(ctx context.Context, offset int, emailByID map[string]string) (int, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListAuthEmailsPage, emailPageSize, offset)
	if err != nil {
		return 0, fmt.Errorf("query auth emails page: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return 0, fmt.Errorf("scan auth email: %w", err)
		}
		emailByID[id] = email
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read auth emails page: %w", err)
	}
	return n, nil
}

// Deliver sends content to every resolved recipient sequentially. Each
// delivery is recorded as attempted before the transport runs, then
// marked confirmed or failed. One failure never aborts the loop.
func (s *Service) Deliver(ctx context.Context, resolved ResolveResult, content Content) Report {
	attachments := ResolveAttachments(content.HTML, s.assetDir, s.logger)
	report := Report{Total: len(resolved.Recipients) + len(resolved.NoEmail)}

	for _, id := range resolved.NoEmail {
		report.ErrorCount++
		report.Errors = append(report.Errors, fmt.Sprintf("User %s: No email found", id))
	}

	creditsEmail := isCreditsContent(content)

	for _, r := range resolved.Recipients {
		deliveryID, err := s.recordAttempt(ctx, r.UserID, r.Email, content.Subject)
		if err != nil {
			s.logger.Error().Err(err).Str("email", r.Email).Msg("record email delivery")
			report.ErrorCount++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", r.Email, err))
			continue
		}

		msg := Message{To: r.Email, ToName: r.FullName, Content: content, Attachments: attachments}
		if err := s.transport.Send(ctx, msg); err != nil {
			s.logger.Error().Err(err).Str("email", r.Email).Msg("send email")
			s.markFailed(ctx, deliveryID, err)
			report.ErrorCount++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", r.Email, err))
			continue
		}

		s.markConfirmed(ctx, deliveryID)
		report.SuccessCount++

		if creditsEmail && r.UserID != "" {
			s.flagCreditsSent(ctx, r.UserID)
		}
	}
	return report
}

// SendIndividual delivers one email to an address that may not belong
// to any account. No user flag is written.
func (s *Service) SendIndividual(ctx context.Context, toEmail string, content Content) Report {
	resolved := ResolveResult{Recipients: []Recipient{{Email: toEmail}}}
	return s.Deliver(ctx, resolved, content)
}

func (s *Service) recordAttempt(ctx context.Context, userID, email, subject string) (string, error) {
	var id string
	row := s.sql.QueryRow(ctx, sqlinline.QInsertEmailDelivery, userID, email, subject)
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("insert email delivery: %w", err)
	}
	return id, nil
}

func (s *Service) markConfirmed(ctx context.Context, deliveryID string) {
	if _, err := s.sql.Exec(ctx, sqlinline.QMarkDeliveryConfirmed, deliveryID); err != nil {
		s.logger.Error().Err(err).Str("delivery_id", deliveryID).Msg("mark delivery confirmed")
	}
}

func (s *Service) markFailed(ctx context.Context, deliveryID string, sendErr error) {
	if _, err := s.sql.Exec(ctx, sqlinline.QMarkDeliveryFailed, deliveryID, sendErr.Error()); err != nil {
		s.logger.Error().Err(err).Str("delivery_id", deliveryID).Msg("mark delivery failed")
	}
}

// flagCreditsSent stamps the credits notification flag. A resend
// refreshes set_at. Failures are logged, never fatal to the send.
func (s *Service) flagCreditsSent(ctx context.Context, userID string) {
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertUserFlag, userID, domain.FlagCreditsEmailSent); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("record credits email flag")
	}
}

// isCreditsContent detects the credits notification by its hero image
// cid or a credit mention in the subject or text.
func isCreditsContent(c Content) bool {
	if strings.Contains(c.HTML, "cid:credits-body") {
		return true
	}
	lower := strings.ToLower(c.Subject + " " + c.Text)
	return strings.Contains(lower, "credit")
}
