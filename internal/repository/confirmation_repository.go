package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/pkg/database"
	"github.com/google/uuid"
)

// confirmationRepository implements ConfirmationRepository interface
type confirmationRepository struct {
	db *database.Postgres
}

// NewConfirmationRepository creates a new two-factor confirmation repository
func NewConfirmationRepository(db *database.Postgres) ConfirmationRepository {
	return &confirmationRepository{db: db}
}

// Replace deletes any existing confirmation for the user and inserts a fresh
// one, in a single transaction. The unique constraint on user_id backs the
// one-confirmation-per-user invariant.
func (r *confirmationRepository) Replace(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error) {
	confirmation := &domain.TwoFactorConfirmation{
		ID:     uuid.New().String(),
		UserID: userID,
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM two_factor_confirmations WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to delete existing confirmation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO two_factor_confirmations (id, user_id) VALUES ($1, $2)`,
		confirmation.ID, confirmation.UserID,
	); err != nil {
		return nil, fmt.Errorf("failed to insert confirmation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation replacement: %w", err)
	}

	return confirmation, nil
}

// GetByUserID retrieves a confirmation by user ID
func (r *confirmationRepository) GetByUserID(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error) {
	query := `SELECT id, user_id FROM two_factor_confirmations WHERE user_id = $1`

	confirmation := &domain.TwoFactorConfirmation{}
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&confirmation.ID,
		&confirmation.UserID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("confirmation not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get confirmation: %w", err)
	}

	return confirmation, nil
}

// Delete removes a confirmation by ID. Returns whether a row was removed.
func (r *confirmationRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM two_factor_confirmations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete confirmation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
