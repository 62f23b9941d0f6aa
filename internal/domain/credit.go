package domain

import "time"

// CreditsPerDollar is the conversion rate between the billing currency
// and the internal credit unit.
const CreditsPerDollar = 100

// CreditBalance tracks a user's dollar-denominated balance. Credit
// figures shown to staff are derived, never stored.
type CreditBalance struct {
	UserID               string
	BalanceDollars       float64
	TotalPurchased       float64
	TotalUsed            float64
	LastUpdated          time.Time
	InitialAssignmentAt  *time.Time
	LastAssignmentAt     *time.Time
	LastAssignmentAmount *float64
	LastAssignmentNotes  *string
}

// BalanceCredits converts the stored dollar balance to credits.
func (b CreditBalance) BalanceCredits() int64 {
	return int64(b.BalanceDollars * CreditsPerDollar)
}

// PurchaseStatus enumerates Stripe payment states mirrored locally.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

// CreditPurchase is a read-only Stripe transaction row for dashboard
// tables.
type CreditPurchase struct {
	ID                  string
	UserID              string
	Email               string
	AmountDollars       float64
	Credits             int64
	Status              PurchaseStatus
	StripePaymentIntent string
	CreatedAt           time.Time
}
