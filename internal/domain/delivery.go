package domain

// FlagCreditsEmailSent is written to user_flags after a credits email
// is confirmed. Resending overwrites set_at.
const FlagCreditsEmailSent = "credits_email_sent"
