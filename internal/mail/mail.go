package mail

import "context"

// Content is the subject/text/HTML triple fed to the transport. When
// staff supply all three fields they pass through verbatim; otherwise a
// named template fills them in.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

// Attachment is an inline MIME image referenced from the HTML body by
// Content-ID.
type Attachment struct {
	Filename  string
	ContentID string
	Data      []byte
}

// Message is one outbound email. Sender identity comes from the
// transport configuration, not the message.
type Message struct {
	To          string
	ToName      string
	Content     Content
	Attachments []Attachment
}

// Recipient is a resolved (userId, fullName, email) tuple ready for the
// delivery loop.
type Recipient struct {
	UserID   string
	FullName string
	Email    string
}

// ResolveResult carries the final recipient list plus the diagnostic
// buckets for everything that fell out along the way.
type ResolveResult struct {
	Recipients []Recipient
	Invalid    []string
	NotFound   []string
	NoEmail    []string
}

// Report aggregates per-recipient outcomes of one delivery loop.
type Report struct {
	Total        int
	SuccessCount int
	ErrorCount   int
	Errors       []string
}

// Transport sends email. It is constructed once at boot and injected;
// nothing in this package holds package-level client state.
type Transport interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg Message) error
}
