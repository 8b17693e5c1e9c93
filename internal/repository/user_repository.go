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
	"github.com/lib/pq"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, first_name, last_name, name, email, email_verified, image, password_hash, role, bio, is_two_factor_enabled`

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, name, email, email_verified, image, password_hash, role, bio, is_two_factor_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Name == "" {
		user.Name = fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Name,
		user.Email,
		user.EmailVerified,
		user.Image,
		user.PasswordHash,
		user.Role,
		user.Bio,
		user.IsTwoFactorEnabled,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// Update updates an existing user. All mutable columns are written in one
// statement so partial settings updates land atomically.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, name = $4, email = $5, email_verified = $6,
		    image = $7, password_hash = $8, role = $9, bio = $10, is_two_factor_enabled = $11
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Name,
		user.Email,
		user.EmailVerified,
		user.Image,
		user.PasswordHash,
		user.Role,
		user.Bio,
		user.IsTwoFactorEnabled,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", user.ID, ErrNotFound)
	}

	return nil
}

// MarkEmailVerified stamps the verification time on the user owning the
// email. Returns false when no row matched.
func (r *userRepository) MarkEmailVerified(ctx context.Context, email string, verifiedAt time.Time) (bool, error) {
	query := `UPDATE users SET email_verified = $2 WHERE email = $1`

	result, err := r.db.DB.ExecContext(ctx, query, email, verifiedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark email verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var (
		emailVerified sql.NullTime
		image         sql.NullString
		passwordHash  sql.NullString
		bio           sql.NullString
	)

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Name,
		&user.Email,
		&emailVerified,
		&image,
		&passwordHash,
		&user.Role,
		&bio,
		&user.IsTwoFactorEnabled,
	)
	if err != nil {
		return nil, err
	}

	if emailVerified.Valid {
		user.EmailVerified = &emailVerified.Time
	}
	if image.Valid {
		user.Image = &image.String
	}
	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if bio.Valid {
		user.Bio = &bio.String
	}

	return user, nil
}
