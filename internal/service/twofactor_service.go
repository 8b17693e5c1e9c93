package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/mail"
	"github.com/dcizov/t3-starter-template/internal/repository"
)

// twoFactorService implements TwoFactorService
type twoFactorService struct {
	tokens        repository.TokenRepository
	confirmations repository.ConfirmationRepository
	mailer        mail.Mailer
	tokenExpiry   time.Duration
}

// NewTwoFactorService creates a new two-factor service
func NewTwoFactorService(
	tokens repository.TokenRepository,
	confirmations repository.ConfirmationRepository,
	mailer mail.Mailer,
	tokenExpiry time.Duration,
) TwoFactorService {
	return &twoFactorService{
		tokens:        tokens,
		confirmations: confirmations,
		mailer:        mailer,
		tokenExpiry:   tokenExpiry,
	}
}

// Handle runs the two-factor state machine for one login attempt.
//
// Without a code it rotates the user's 2FA token, mails the fresh code and
// reports TwoFactorChallengeIssued: the caller must not create a session.
// With a code it validates against the stored token (not found, mismatch,
// expired, in that order), deletes the token on match and replaces the
// user's confirmation row, reporting TwoFactorChallengePassed.
func (s *twoFactorService) Handle(ctx context.Context, user *domain.User, code string) (TwoFactorOutcome, error) {
	if !user.IsTwoFactorEnabled || user.Email == "" {
		return TwoFactorNotRequired, nil
	}

	if code != "" {
		return s.validate(ctx, user, code)
	}

	token := &domain.Token{
		Email:   user.Email,
		Expires: time.Now().Add(s.tokenExpiry),
	}

	value, err := generateTwoFactorCode()
	if err != nil {
		return 0, fmt.Errorf("failed to generate 2FA code: %w", err)
	}
	token.Token = value

	if err := s.tokens.Rotate(ctx, token); err != nil {
		return 0, fmt.Errorf("failed to generate 2FA token: %w", err)
	}

	if err := mail.SendTwoFactorEmail(ctx, s.mailer, token.Email, token.Token); err != nil {
		return 0, fmt.Errorf("failed to send 2FA email: %w", err)
	}

	return TwoFactorChallengeIssued, nil
}

func (s *twoFactorService) validate(ctx context.Context, user *domain.User, code string) (TwoFactorOutcome, error) {
	token, err := s.tokens.GetByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, NewFlowError(KindTokenNotFound)
		}
		return 0, fmt.Errorf("failed to look up 2FA token: %w", err)
	}

	if token.Token != code {
		return 0, NewFlowError(KindInvalidToken)
	}

	if token.IsExpired() {
		return 0, NewFlowError(KindTokenExpired)
	}

	// Single use: the token goes away before the confirmation appears.
	if _, err := s.tokens.Delete(ctx, token.ID); err != nil {
		return 0, fmt.Errorf("failed to delete 2FA token: %w", err)
	}

	if _, err := s.confirmations.Replace(ctx, user.ID); err != nil {
		return 0, fmt.Errorf("failed to record 2FA confirmation: %w", err)
	}

	return TwoFactorChallengePassed, nil
}

// Consume checks for a confirmation row for the user and deletes it.
// Returns whether one existed. The confirmation lives only between challenge
// validation and session creation.
func (s *twoFactorService) Consume(ctx context.Context, userID string) (bool, error) {
	confirmation, err := s.confirmations.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up 2FA confirmation: %w", err)
	}

	if _, err := s.confirmations.Delete(ctx, confirmation.ID); err != nil {
		return false, fmt.Errorf("failed to consume 2FA confirmation: %w", err)
	}

	return true, nil
}

// generateTwoFactorCode returns a random six-digit code in [100000, 1000000)
func generateTwoFactorCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100_000), nil
}
