package repository

import (
	"context"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	MarkEmailVerified(ctx context.Context, email string, verifiedAt time.Time) (bool, error)
}

// AccountRepository defines methods for identity-provider account links
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error)
}

// SessionRepository defines methods for session rows
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context) error
}

// TokenRepository defines methods for one kind of email-keyed token.
// Rotate replaces any existing token for the email atomically so at most one
// row per subject survives.
type TokenRepository interface {
	Rotate(ctx context.Context, token *domain.Token) error
	GetByToken(ctx context.Context, value string) (*domain.Token, error)
	GetByEmail(ctx context.Context, email string) (*domain.Token, error)
	GetByID(ctx context.Context, id string) (*domain.Token, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ConfirmationRepository defines methods for two-factor confirmations
type ConfirmationRepository interface {
	Replace(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error)
	GetByUserID(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error)
	Delete(ctx context.Context, id string) (bool, error)
}
