package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/dcizov/t3-starter-template/internal/mail"
	"github.com/dcizov/t3-starter-template/internal/repository"
	"github.com/dcizov/t3-starter-template/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	providerCredentials = "credentials"
	accountTypeEmail    = "email"
	accountTypeOAuth    = "oauth"
)

// authService implements AuthService
type authService struct {
	users         repository.UserRepository
	accounts      repository.AccountRepository
	verifyTokens  repository.TokenRepository
	resetTokens   repository.TokenRepository
	twoFactor     TwoFactorService
	sessions      SessionService
	mailer        mail.Mailer
	logger        *zap.Logger
	bcryptCost    int
	adminEmail    string
	baseURL       string
	verifyExpiry  time.Duration
	resetExpiry   time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	verifyTokens repository.TokenRepository,
	resetTokens repository.TokenRepository,
	twoFactor TwoFactorService,
	sessions SessionService,
	mailer mail.Mailer,
	logger *zap.Logger,
	bcryptCost int,
	adminEmail string,
	baseURL string,
	verifyExpiry time.Duration,
	resetExpiry time.Duration,
) AuthService {
	return &authService{
		users:        users,
		accounts:     accounts,
		verifyTokens: verifyTokens,
		resetTokens:  resetTokens,
		twoFactor:    twoFactor,
		sessions:     sessions,
		mailer:       mailer,
		logger:       logger,
		bcryptCost:   bcryptCost,
		adminEmail:   adminEmail,
		baseURL:      baseURL,
		verifyExpiry: verifyExpiry,
		resetExpiry:  resetExpiry,
	}
}

// Register creates a credentials account with an unverified email and sends
// the verification email. Mail failure does not roll back user creation.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*RegisterResult, error) {
	email := utils.SanitizeEmail(req.Email)

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, NewFlowError(KindConflict)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: &passwordHash,
		Role:         s.roleFor(email),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, WrapFlowError(KindConflict, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	account := &domain.Account{
		UserID:            user.ID,
		Type:              accountTypeEmail,
		Provider:          providerCredentials,
		ProviderAccountID: user.ID,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to link credentials account: %w", err)
	}

	emailSent := s.sendVerificationToken(ctx, email)

	return &RegisterResult{
		User:                  user.Sanitized(),
		VerificationEmailSent: emailSent,
	}, nil
}

// Login authenticates credentials, runs the two-factor orchestration and,
// when everything clears, finalizes the sign-in with a session.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	email := utils.SanitizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFlowError(KindUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// The verification gate runs before the password comparison, matching
	// the canonical ordering of the flow.
	if user.EmailVerified == nil {
		return nil, NewFlowError(KindEmailNotVerified)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, NewFlowError(KindInvalidCredentials)
	}

	outcome, err := s.twoFactor.Handle(ctx, user, req.Code)
	if err != nil {
		return nil, err
	}
	if outcome == TwoFactorChallengeIssued {
		return &LoginResult{TwoFactor: true}, nil
	}

	return s.finalizeSignIn(ctx, user, providerCredentials)
}

// finalizeSignIn is the sign-in callback: it enforces the email-verification
// gate for credentials sign-ins, consumes the two-factor confirmation when
// required, and creates the session.
func (s *authService) finalizeSignIn(ctx context.Context, user *domain.User, provider string) (*LoginResult, error) {
	if provider == providerCredentials {
		if user.EmailVerified == nil {
			return nil, NewFlowError(KindEmailNotVerified)
		}

		if user.IsTwoFactorEnabled {
			confirmed, err := s.twoFactor.Consume(ctx, user.ID)
			if err != nil {
				return nil, err
			}
			if !confirmed {
				return nil, NewFlowError(KindInvalidCredentials)
			}
		}
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &LoginResult{User: user.Sanitized(), Session: session}, nil
}

// VerifyEmail consumes a verification token and stamps the user verified
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	existing, err := s.verifyTokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewFlowError(KindInvalidToken)
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if existing.IsExpired() {
		// The stale row goes away so a retry reads as invalid, not expired.
		if _, err := s.verifyTokens.Delete(ctx, existing.ID); err != nil {
			s.logger.Warn("failed to delete expired verification token", zap.Error(err))
		}
		return NewFlowError(KindExpiredToken)
	}

	if _, err := s.users.GetByEmail(ctx, existing.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewFlowError(KindEmailNotExist)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	updated, err := s.users.MarkEmailVerified(ctx, existing.Email, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	if !updated {
		return NewFlowError(KindUpdateFailed)
	}

	if _, err := s.verifyTokens.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}

	return nil
}

// RequestPasswordReset rotates a reset token for the email and mails the
// reset link. Succeeds even when mail delivery fails; the flag reports it.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (*ResetResult, error) {
	email = utils.SanitizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFlowError(KindEmailNotFound)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	token := &domain.Token{
		Email:   email,
		Token:   uuid.New().String(),
		Expires: time.Now().Add(s.resetExpiry),
	}
	if err := s.resetTokens.Rotate(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to generate password reset token: %w", err)
	}

	emailSent := true
	if err := mail.SendPasswordResetEmail(ctx, s.mailer, s.baseURL, token.Email, token.Token); err != nil {
		s.logger.Warn("failed to send password reset email",
			zap.String("email", token.Email),
			zap.Error(err),
		)
		emailSent = false
	}

	return &ResetResult{PasswordResetEmailSent: emailSent}, nil
}

// SetNewPassword consumes a reset token and stores the new password hash
func (s *authService) SetNewPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return NewFlowError(KindMissingToken)
	}

	existing, err := s.resetTokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewFlowError(KindInvalidToken)
		}
		return fmt.Errorf("failed to look up password reset token: %w", err)
	}

	if existing.IsExpired() {
		return NewFlowError(KindExpiredToken)
	}

	user, err := s.users.GetByEmail(ctx, existing.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewFlowError(KindEmailNotExist)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &passwordHash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if _, err := s.resetTokens.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete password reset token: %w", err)
	}

	return nil
}

// OAuthSignIn consumes a normalized provider profile: finds or creates the
// user, links the provider account, and creates a session. Providers are
// trusted to have verified the email, so first link stamps email_verified.
func (s *authService) OAuthSignIn(ctx context.Context, profile *dto.OAuthCallbackRequest) (*LoginResult, error) {
	email := utils.SanitizeEmail(profile.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}

		now := time.Now()
		user = &domain.User{
			FirstName:     profile.FirstName,
			LastName:      profile.LastName,
			Email:         email,
			EmailVerified: &now,
			Role:          s.roleFor(email),
		}
		if profile.Image != "" {
			user.Image = &profile.Image
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else if user.EmailVerified == nil {
		now := time.Now()
		user.EmailVerified = &now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to mark email verified: %w", err)
		}
	}

	if _, err := s.accounts.GetByProvider(ctx, profile.Provider, profile.ProviderAccountID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up account: %w", err)
		}

		account := &domain.Account{
			UserID:            user.ID,
			Type:              accountTypeOAuth,
			Provider:          profile.Provider,
			ProviderAccountID: profile.ProviderAccountID,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to link provider account: %w", err)
		}
	}

	return s.finalizeSignIn(ctx, user, profile.Provider)
}

// GetUser returns the sanitized user for an id
func (s *authService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFlowError(KindUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user.Sanitized(), nil
}

func (s *authService) roleFor(email string) string {
	if s.adminEmail != "" && email == utils.SanitizeEmail(s.adminEmail) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// sendVerificationToken rotates a verification token and mails the link.
// Returns whether the email went out.
func (s *authService) sendVerificationToken(ctx context.Context, email string) bool {
	token := &domain.Token{
		Email:   email,
		Token:   uuid.New().String(),
		Expires: time.Now().Add(s.verifyExpiry),
	}

	if err := s.verifyTokens.Rotate(ctx, token); err != nil {
		s.logger.Error("failed to generate verification token",
			zap.String("email", email),
			zap.Error(err),
		)
		return false
	}

	if err := mail.SendVerificationEmail(ctx, s.mailer, s.baseURL, token.Email, token.Token); err != nil {
		s.logger.Warn("failed to send verification email",
			zap.String("email", email),
			zap.Error(err),
		)
		return false
	}

	return true
}
