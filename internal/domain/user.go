package domain

import "time"

// Roles assigned at registration. The admin role is derived from the
// configured admin email, everything else gets RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user in the system
type User struct {
	ID                 string     `json:"id" db:"id"`
	FirstName          string     `json:"first_name" db:"first_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	Name               string     `json:"name" db:"name"`
	Email              string     `json:"email" db:"email"`
	EmailVerified      *time.Time `json:"email_verified" db:"email_verified"`
	Image              *string    `json:"image" db:"image"`
	PasswordHash       *string    `json:"-" db:"password_hash"`
	Role               string     `json:"role" db:"role"`
	Bio                *string    `json:"bio" db:"bio"`
	IsTwoFactorEnabled bool       `json:"is_two_factor_enabled" db:"is_two_factor_enabled"`
}

// Sanitized returns a copy of the user safe to hand back to clients.
// The password hash never leaves the service layer.
func (u User) Sanitized() *User {
	u.PasswordHash = nil
	return &u
}

// Account links a user to an identity provider. Credentials accounts use
// provider "credentials" with the user id as provider account id.
type Account struct {
	UserID            string `json:"user_id" db:"user_id"`
	Type              string `json:"type" db:"type"`
	Provider          string `json:"provider" db:"provider"`
	ProviderAccountID string `json:"provider_account_id" db:"provider_account_id"`
}

// Session represents a database-backed login session. The token doubles as
// the value of the session cookie.
type Session struct {
	Token   string    `json:"session_token" db:"session_token"`
	UserID  string    `json:"user_id" db:"user_id"`
	Expires time.Time `json:"expires" db:"expires"`
}

// IsExpired reports whether the session is past its expiry.
func (s Session) IsExpired() bool {
	return time.Now().After(s.Expires)
}
