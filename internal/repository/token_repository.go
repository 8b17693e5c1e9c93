package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/pkg/database"
	"github.com/google/uuid"
)

// tokenRepository implements TokenRepository for one of the three token
// tables. The tables share a shape, so a single implementation is
// parameterized by table name.
type tokenRepository struct {
	db    *database.Postgres
	table string
}

// NewTokenRepository creates a token repository over the given table
func NewTokenRepository(db *database.Postgres, table string) TokenRepository {
	return &tokenRepository{db: db, table: table}
}

// Rotate deletes any existing token for the email and inserts the new one.
// Both statements run in one transaction so concurrent rotations for the
// same subject cannot leave two live rows behind.
func (r *tokenRepository) Rotate(ctx context.Context, token *domain.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE email = $1`, r.table)
	if _, err := tx.ExecContext(ctx, deleteQuery, token.Email); err != nil {
		return fmt.Errorf("failed to delete existing token: %w", err)
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (id, email, token, expires, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.table)
	if _, err := tx.ExecContext(ctx, insertQuery,
		token.ID,
		token.Email,
		token.Token,
		token.Expires,
		token.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token rotation: %w", err)
	}

	return nil
}

// GetByToken retrieves a token by its value
func (r *tokenRepository) GetByToken(ctx context.Context, value string) (*domain.Token, error) {
	query := fmt.Sprintf(`
		SELECT id, email, token, expires, created_at
		FROM %s
		WHERE token = $1
	`, r.table)

	return r.scanToken(r.db.DB.QueryRowContext(ctx, query, value))
}

// GetByEmail retrieves a token by its subject email
func (r *tokenRepository) GetByEmail(ctx context.Context, email string) (*domain.Token, error) {
	query := fmt.Sprintf(`
		SELECT id, email, token, expires, created_at
		FROM %s
		WHERE email = $1
	`, r.table)

	return r.scanToken(r.db.DB.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a token by its ID
func (r *tokenRepository) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	query := fmt.Sprintf(`
		SELECT id, email, token, expires, created_at
		FROM %s
		WHERE id = $1
	`, r.table)

	return r.scanToken(r.db.DB.QueryRowContext(ctx, query, id))
}

// Delete removes a token by ID. Idempotent; returns whether a row was removed.
func (r *tokenRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *tokenRepository) scanToken(row *sql.Row) (*domain.Token, error) {
	token := &domain.Token{}

	err := row.Scan(
		&token.ID,
		&token.Email,
		&token.Token,
		&token.Expires,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}
