package domain

import "time"

// WaitlistUser is a pre-launch signup entry. Country code may be
// absent when the signup form could not resolve it; the API backfills
// it from the IP address when a GeoIP database is configured.
type WaitlistUser struct {
	ID                  string
	FullName            string
	Email               string
	Company             *string
	PhoneNumber         string
	CountryCode         string
	Reference           *string
	ReferralSource      *string
	ReferralSourceOther *string
	UserAgent           *string
	IPAddress           *string
	JoinedAt            time.Time
	NotifiedAt          *time.Time
	IsNotified          bool
	IsArchived          bool
}
