package domain

import "time"

// Token is a single-use credential issued to an email address. The three
// kinds (email verification, password reset, two-factor code) share this
// shape and live in separate tables.
type Token struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Token     string    `json:"token" db:"token"`
	Expires   time.Time `json:"expires" db:"expires"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token is past its expiry. Stores return
// expired rows as-is; flows decide how to surface them.
func (t Token) IsExpired() bool {
	return time.Now().After(t.Expires)
}

// TwoFactorConfirmation marks that a user passed their two-factor challenge
// for the current login attempt. It is consumed by sign-in finalization and
// exists only between challenge validation and session creation.
type TwoFactorConfirmation struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
}
