package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/pkg/database"
	"github.com/lib/pq"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *database.Postgres
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.Postgres) AccountRepository {
	return &accountRepository{db: db}
}

// Create links a provider account to a user
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, type, provider, provider_account_id)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		account.UserID,
		account.Type,
		account.Provider,
		account.ProviderAccountID,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("account for provider %s already linked: %w", account.Provider, ErrDuplicateAccount)
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByProvider retrieves an account by provider and provider account ID
func (r *accountRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	query := `
		SELECT user_id, type, provider, provider_account_id
		FROM accounts
		WHERE provider = $1 AND provider_account_id = $2
	`

	account := &domain.Account{}
	err := r.db.DB.QueryRowContext(ctx, query, provider, providerAccountID).Scan(
		&account.UserID,
		&account.Type,
		&account.Provider,
		&account.ProviderAccountID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// GetByUserID retrieves all provider accounts linked to a user
func (r *accountRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Account, error) {
	query := `
		SELECT user_id, type, provider, provider_account_id
		FROM accounts
		WHERE user_id = $1
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts by user id: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account := &domain.Account{}
		if err := rows.Scan(
			&account.UserID,
			&account.Type,
			&account.Provider,
			&account.ProviderAccountID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
