package domain

import "time"

// ActivityLevel buckets users by how recently and how often they use
// the product.
type ActivityLevel string

const (
	ActivityHigh     ActivityLevel = "high"
	ActivityMedium   ActivityLevel = "medium"
	ActivityLow      ActivityLevel = "low"
	ActivityInactive ActivityLevel = "inactive"
)

// UserType separates staff accounts from customers in usage views.
type UserType string

const (
	UserTypeInternal UserType = "internal"
	UserTypeExternal UserType = "external"
)

// InternalEmailDomain marks accounts owned by staff.
const InternalEmailDomain = "@he2.ai"

// ActivityScore weighs usage volume against recency. The same formula
// is inlined in sqlinline.QAggregatedUsage for server-side filtering;
// the two must stay in step.
func ActivityScore(usageCount int64, daysSinceLast float64) float64 {
	if daysSinceLast < 0 {
		daysSinceLast = 0
	}
	return float64(usageCount) / (1 + daysSinceLast/7)
}

// ActivityLevelForScore maps a score onto the display buckets.
func ActivityLevelForScore(score float64) ActivityLevel {
	switch {
	case score >= 10:
		return ActivityHigh
	case score >= 3:
		return ActivityMedium
	case score > 0.5:
		return ActivityLow
	default:
		return ActivityInactive
	}
}

// UserTypeForEmail classifies an account by its auth email.
func UserTypeForEmail(email string) UserType {
	if len(email) >= len(InternalEmailDomain) &&
		email[len(email)-len(InternalEmailDomain):] == InternalEmailDomain {
		return UserTypeInternal
	}
	return UserTypeExternal
}

// UsageAggregate is one per-user row of the aggregated usage view.
type UsageAggregate struct {
	UserID                string
	UserName              string
	UserEmail             string
	TotalPromptTokens     int64
	TotalCompletionTokens int64
	TotalTokens           int64
	TotalEstimatedCost    float64
	UsageCount            int64
	EarliestActivity      time.Time
	LatestActivity        time.Time
	HasCompletedPayment   bool
	DaysSinceLastActivity float64
	ActivityScore         float64
	ActivityLevel         ActivityLevel
	UserType              UserType
}
