package repository

import (
	"github.com/dcizov/t3-starter-template/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User                  UserRepository
	Account               AccountRepository
	Session               SessionRepository
	VerificationToken     TokenRepository
	PasswordResetToken    TokenRepository
	TwoFactorToken        TokenRepository
	TwoFactorConfirmation ConfirmationRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:                  NewUserRepository(db),
		Account:               NewAccountRepository(db),
		Session:               NewSessionRepository(db),
		VerificationToken:     NewTokenRepository(db, "verification_tokens"),
		PasswordResetToken:    NewTokenRepository(db, "password_reset_tokens"),
		TwoFactorToken:        NewTokenRepository(db, "two_factor_tokens"),
		TwoFactorConfirmation: NewConfirmationRepository(db),
	}
}
