package mail

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"helium-admin/internal/domain"
	"helium-admin/internal/infra"
)

const smtpDialTimeout = 10 * time.Second

// SMTPConfig holds the connection and sender identity for the SMTP
// transport. Port 465 means implicit TLS; 587 requires STARTTLS; any
// other port negotiates STARTTLS when the server offers it.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	FromName    string
}

func (c SMTPConfig) validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.Port <= 0 || c.Port > 65535 {
		missing = append(missing, "port")
	}
	if c.SenderEmail == "" {
		missing = append(missing, "sender email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrSMTPConfig, strings.Join(missing, ", "))
	}
	return nil
}

// SMTPTransport delivers messages over a per-send SMTP connection.
type SMTPTransport struct {
	cfg    SMTPConfig
	logger infra.Logger
}

func NewSMTPTransport(cfg SMTPConfig, logger infra.Logger) (*SMTPTransport, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &SMTPTransport{cfg: cfg, logger: logger}, nil
}

// Verify opens a connection, completes the handshake (and AUTH when
// credentials are configured), then quits. It sends nothing.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	return client.Quit()
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("%w: message has no recipient", domain.ErrInvalidInput)
	}
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Mail(t.cfg.SenderEmail); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to %s: %w", msg.To, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMIME(t.cfg, msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}
	return nil
}

// connect dials the server, negotiates TLS per the configured port and
// authenticates when credentials are present.
func (t *SMTPTransport) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	dialer := net.Dialer{Timeout: smtpDialTimeout}

	var client *smtp.Client
	if t.cfg.Port == 465 {
		conn, err := tls.DialWithDialer(&dialer, "tcp", addr, &tls.Config{ServerName: t.cfg.Host})
		if err != nil {
			return nil, fmt.Errorf("smtp tls dial %s: %w", addr, err)
		}
		c, err := smtp.NewClient(conn, t.cfg.Host)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("smtp handshake %s: %w", addr, err)
		}
		client = c
	} else {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
		}
		c, err := smtp.NewClient(conn, t.cfg.Host)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("smtp handshake %s: %w", addr, err)
		}
		client = c
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host}); err != nil {
				client.Close()
				return nil, fmt.Errorf("smtp starttls: %w", err)
			}
		} else if t.cfg.Port == 587 {
			client.Close()
			return nil, fmt.Errorf("%w: server does not offer STARTTLS on port 587", domain.ErrSMTPConfig)
		}
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}
	return client, nil
}

// buildMIME renders the message as multipart/alternative, wrapped in
// multipart/related when inline images are attached.
func buildMIME(cfg SMTPConfig, msg Message) []byte {
	var b strings.Builder

	altBoundary := randomBoundary("alt")
	relBoundary := randomBoundary("rel")

	b.WriteString(fmt.Sprintf("From: %q <%s>\r\n", cfg.FromName, cfg.SenderEmail))
	if msg.ToName != "" {
		b.WriteString(fmt.Sprintf("To: %q <%s>\r\n", msg.ToName, msg.To))
	} else {
		b.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Content.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) > 0 {
		b.WriteString("Content-Type: multipart/related; boundary=" + relBoundary + "\r\n\r\n")
		b.WriteString("--" + relBoundary + "\r\n")
	}

	b.WriteString("Content-Type: multipart/alternative; boundary=" + altBoundary + "\r\n\r\n")
	if msg.Content.Text != "" {
		b.WriteString("--" + altBoundary + "\r\n")
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		b.WriteString(encodeQuotedPrintable(msg.Content.Text))
		b.WriteString("\r\n")
	}
	if msg.Content.HTML != "" {
		b.WriteString("--" + altBoundary + "\r\n")
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		b.WriteString(encodeQuotedPrintable(msg.Content.HTML))
		b.WriteString("\r\n")
	}
	b.WriteString("--" + altBoundary + "--\r\n")

	if len(msg.Attachments) > 0 {
		for _, att := range msg.Attachments {
			b.WriteString("--" + relBoundary + "\r\n")
			b.WriteString("Content-Type: image/png; name=" + quoteFilename(att.Filename) + "\r\n")
			b.WriteString("Content-Transfer-Encoding: base64\r\n")
			b.WriteString("Content-ID: <" + att.ContentID + ">\r\n")
			b.WriteString("Content-Disposition: inline; filename=" + quoteFilename(att.Filename) + "\r\n\r\n")
			b.WriteString(encodeBase64Wrapped(att.Data))
			b.WriteString("\r\n")
		}
		b.WriteString("--" + relBoundary + "--\r\n")
	}
	return []byte(b.String())
}

func encodeQuotedPrintable(s string) string {
	var out strings.Builder
	w := quotedprintable.NewWriter(&out)
	w.Write([]byte(s))
	w.Close()
	return out.String()
}

// encodeBase64Wrapped folds base64 output at 76 columns per RFC 2045.
func encodeBase64Wrapped(data []byte) string {
	enc := base64.StdEncoding.EncodeToString(data)
	var out strings.Builder
	for len(enc) > 76 {
		out.WriteString(enc[:76])
		out.WriteString("\r\n")
		enc = enc[76:]
	}
	out.WriteString(enc)
	return out.String()
}

func quoteFilename(name string) string {
	return strconv.Quote(name)
}

// randomBoundary returns a unique MIME boundary token.
func randomBoundary(prefix string) string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return prefix + "-" + hex.EncodeToString(buf)
}
