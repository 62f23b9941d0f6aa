package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewInviteCode draws a fresh code: the NA prefix plus five random
// characters from the alphabet.
func NewInviteCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i := range b {
		b[i] = inviteCodeAlphabet[int(b[i])%len(inviteCodeAlphabet)]
	}
	return "NA" + string(b), nil
}

// InviteCode is a signup gate token. A code stays redeemable until it
// is archived, expires, or current_uses reaches max_uses.
type InviteCode struct {
	ID             string
	Code           string
	IsUsed         bool
	UsedBy         *string
	UsedAt         *time.Time
	CreatedAt      time.Time
	ExpiresAt      *time.Time
	MaxUses        int
	CurrentUses    int
	EmailSentTo    []string
	ReminderSentAt *time.Time
	IsArchived     bool
}

// Active reports whether the code can still be redeemed.
func (c InviteCode) Active(now time.Time) bool {
	if c.IsArchived {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	return c.CurrentUses < c.MaxUses
}
