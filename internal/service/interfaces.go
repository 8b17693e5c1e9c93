package service

import (
	"context"
	"net/http"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/dto"
)

// RegisterResult is returned by a successful registration. Email delivery
// failure does not roll back user creation, so the flag travels separately.
type RegisterResult struct {
	User                  *domain.User
	VerificationEmailSent bool
}

// LoginResult is returned by Login. When TwoFactor is set the client must
// re-submit with a code and no session exists yet.
type LoginResult struct {
	TwoFactor bool
	User      *domain.User
	Session   *domain.Session
}

// ResetResult is returned by RequestPasswordReset. The flow succeeds even
// when the email could not be delivered.
type ResetResult struct {
	PasswordResetEmailSent bool
}

// AuthService defines the top-level authentication flows
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) (*ResetResult, error)
	SetNewPassword(ctx context.Context, token, password string) error
	OAuthSignIn(ctx context.Context, profile *dto.OAuthCallbackRequest) (*LoginResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TwoFactorOutcome is the state reached by the two-factor orchestration for
// one login attempt.
type TwoFactorOutcome int

const (
	// TwoFactorNotRequired means the user has no 2FA; login proceeds.
	TwoFactorNotRequired TwoFactorOutcome = iota
	// TwoFactorChallengeIssued means a code was generated and mailed;
	// no session may be created yet.
	TwoFactorChallengeIssued
	// TwoFactorChallengePassed means the submitted code matched and a
	// confirmation row now exists for the user.
	TwoFactorChallengePassed
)

// TwoFactorService orchestrates the two-factor challenge state machine
type TwoFactorService interface {
	Handle(ctx context.Context, user *domain.User, code string) (TwoFactorOutcome, error)
	Consume(ctx context.Context, userID string) (bool, error)
}

// SessionService manages session rows and the cookies mirroring them
type SessionService interface {
	Create(ctx context.Context, userID string) (*domain.Session, error)
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) (bool, error)
	Cookie(session *domain.Session) *http.Cookie
	ExpiredCookie() *http.Cookie
}

// SettingsService updates account settings
type SettingsService interface {
	UpdateSettings(ctx context.Context, userID string, req *dto.UpdateSettingsRequest) (*domain.User, error)
}
