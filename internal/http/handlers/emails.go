package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"helium-admin/internal/domain"
	"helium-admin/internal/mail"
)

// sendBulkEmailRequest is the legacy dashboard payload. All fields are
// optional: missing content falls back to the downtime template.
type sendBulkEmailRequest struct {
	Subject         string   `json:"subject"`
	TextContent     string   `json:"textContent"`
	HTMLContent     string   `json:"htmlContent"`
	SelectedUserIDs []string `json:"selectedUserIds"`
}

func (a *App) SendBulkEmail(w http.ResponseWriter, r *http.Request) {
	var req sendBulkEmailRequest
	if !a.bind(w, r, &req) {
		return
	}
	content := bulkContent(req.Subject, req.TextContent, req.HTMLContent)
	report, ok := a.runBulk(w, r, req.SelectedUserIDs, content)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": processedMessage(report),
		"details": reportDetails(report),
	})
}

type sendIndividualEmailRequest struct {
	Subject         string `json:"subject" validate:"required"`
	TextContent     string `json:"textContent" validate:"required"`
	HTMLContent     string `json:"htmlContent" validate:"required"`
	IndividualEmail string `json:"individualEmail" validate:"required,email"`
}

func (a *App) SendIndividualEmail(w http.ResponseWriter, r *http.Request) {
	var req sendIndividualEmailRequest
	if !a.bind(w, r, &req) {
		return
	}
	if !a.verifyMailer(w, r) {
		return
	}
	content := mail.Content{Subject: req.Subject, Text: req.TextContent, HTML: req.HTMLContent}
	report := a.Mailer.SendIndividual(r.Context(), req.IndividualEmail, content)
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": processedMessage(report),
		"details": reportDetails(report),
	})
}

// emailContentPayload mirrors the versioned surface's custom content
// object. When present, all three fields are required and pass to the
// transport verbatim.
type emailContentPayload struct {
	Subject     string `json:"subject" validate:"required"`
	TextContent string `json:"text_content" validate:"required"`
	HTMLContent string `json:"html_content" validate:"required"`
}

type emailsBulkRequest struct {
	CustomEmail     *emailContentPayload `json:"custom_email"`
	SelectedUserIDs []string             `json:"selected_user_ids"`
}

func (a *App) EmailsBulk(w http.ResponseWriter, r *http.Request) {
	var req emailsBulkRequest
	if !a.bind(w, r, &req) {
		return
	}
	content := mail.DowntimeContent("")
	if req.CustomEmail != nil {
		content = mail.Content{
			Subject: req.CustomEmail.Subject,
			Text:    req.CustomEmail.TextContent,
			HTML:    req.CustomEmail.HTMLContent,
		}
	}
	report, ok := a.runBulk(w, r, req.SelectedUserIDs, content)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": processedMessage(report),
		"data":    reportData(report),
	})
}

type emailsIndividualRequest struct {
	IndividualEmail string `json:"individual_email" validate:"required,email"`
	Subject         string `json:"subject" validate:"required"`
	TextContent     string `json:"text_content" validate:"required"`
	HTMLContent     string `json:"html_content" validate:"required"`
}

func (a *App) EmailsIndividual(w http.ResponseWriter, r *http.Request) {
	var req emailsIndividualRequest
	if !a.bind(w, r, &req) {
		return
	}
	if !a.verifyMailer(w, r) {
		return
	}
	content := mail.Content{Subject: req.Subject, Text: req.TextContent, HTML: req.HTMLContent}
	report := a.Mailer.SendIndividual(r.Context(), req.IndividualEmail, content)
	if report.SuccessCount != 1 {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to send email")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Email sent successfully to %s", req.IndividualEmail),
	})
}

func (a *App) EmailImages(w http.ResponseWriter, r *http.Request) {
	names := []struct{ key, file string }{
		{"logo", "email-logo.png"},
		{"downtimeBody", "downtime-body.png"},
		{"uptimeBody", "uptime-body.png"},
		{"creditsBody", "1Kcredits.png"},
	}
	images := make(map[string]string, len(names))
	for _, n := range names {
		uri, err := mail.ImageDataURI(a.AssetDir, n.file)
		if err != nil {
			a.Logger.Error().Err(err).Str("image", n.file).Msg("load email image")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to get email images")
			return
		}
		images[n.key] = uri
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "images": images})
}

// runBulk drives verify, resolve and deliver for both bulk surfaces.
// A false return means an error response has already been written.
func (a *App) runBulk(w http.ResponseWriter, r *http.Request, selected []string, content mail.Content) (mail.Report, bool) {
	if !a.verifyMailer(w, r) {
		return mail.Report{}, false
	}
	resolved, err := a.Mailer.ResolveRecipients(r.Context(), selected)
	if err != nil {
		if errors.Is(err, domain.ErrNoRecipients) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return mail.Report{}, false
		}
		a.Logger.Error().Err(err).Msg("resolve bulk email recipients")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to fetch users for bulk email")
		return mail.Report{}, false
	}
	return a.Mailer.Deliver(r.Context(), resolved, content), true
}

func (a *App) verifyMailer(w http.ResponseWriter, r *http.Request) bool {
	if a.Mailer == nil {
		a.error(w, http.StatusInternalServerError, "internal", "SMTP is not configured")
		return false
	}
	if err := a.Mailer.Verify(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("verify smtp transport")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to connect to email server")
		return false
	}
	return true
}

// bulkContent keeps a fully custom payload verbatim; anything less
// flows through the downtime shell, with supplied fields overriding
// the generated ones.
func bulkContent(subject, text, html string) mail.Content {
	if subject != "" && text != "" && html != "" {
		return mail.Content{Subject: subject, Text: text, HTML: html}
	}
	content := mail.DowntimeContent(text)
	if subject != "" {
		content.Subject = subject
	}
	if html != "" {
		content.HTML = html
	}
	return content
}

func processedMessage(rep mail.Report) string {
	return fmt.Sprintf("Emails processed: %d sent successfully, %d failed", rep.SuccessCount, rep.ErrorCount)
}

// reportDetails is the legacy camelCase envelope; errors is omitted
// when empty.
func reportDetails(rep mail.Report) map[string]any {
	details := map[string]any{
		"total":        rep.Total,
		"successCount": rep.SuccessCount,
		"errorCount":   rep.ErrorCount,
	}
	if len(rep.Errors) > 0 {
		details["errors"] = rep.Errors
	}
	return details
}

// reportData is the versioned snake_case envelope; errors is always
// present, empty or not.
func reportData(rep mail.Report) map[string]any {
	errs := rep.Errors
	if errs == nil {
		errs = []string{}
	}
	return map[string]any{
		"total":         rep.Total,
		"success_count": rep.SuccessCount,
		"error_count":   rep.ErrorCount,
		"errors":        errs,
	}
}
