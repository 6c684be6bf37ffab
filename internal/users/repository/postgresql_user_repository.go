// Package repository implements data persistence for user accounts and
// sessions. Repositories support both PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	usersDomain "github.com/familyvault/vault/internal/users/domain"
)

// PostgreSQLUserRepository implements User persistence for PostgreSQL databases.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new user into the PostgreSQL database.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *usersDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (id, email, name, password_hash, kdf_iterations, public_key,
			  encrypted_private_key, recovery_encrypted_private_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.KDFIterations,
		user.PublicKey,
		user.EncryptedPrivateKey,
		user.RecoveryEncryptedPrivateKey,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get retrieves a user by ID.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*usersDomain.User, error) {
	return p.getByField(ctx, "id", userID)
}

// GetByEmail retrieves a user by email.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*usersDomain.User, error) {
	return p.getByField(ctx, "email", email)
}

func (p *PostgreSQLUserRepository) getByField(
	ctx context.Context,
	field string,
	value any,
) (*usersDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, email, name, password_hash, kdf_iterations, COALESCE(public_key, ''),
			  COALESCE(encrypted_private_key, ''), COALESCE(recovery_encrypted_private_key, ''),
			  created_at, updated_at
			  FROM users
			  WHERE ` + field + ` = $1`

	var user usersDomain.User
	err := querier.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.KDFIterations,
		&user.PublicKey,
		&user.EncryptedPrivateKey,
		&user.RecoveryEncryptedPrivateKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, usersDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	return &user, nil
}

// GetIDByEmail resolves a user ID from an email address.
func (p *PostgreSQLUserRepository) GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id FROM users WHERE email = $1`

	var userID uuid.UUID
	err := querier.QueryRowContext(ctx, query, email).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, usersDomain.ErrUserNotFound
		}
		return uuid.Nil, apperrors.Wrap(err, "failed to get user id by email")
	}

	return userID, nil
}

// UpdateCredentials updates the password hash and client key material in one
// statement so key material never goes out of sync with the credential that
// protects it.
func (p *PostgreSQLUserRepository) UpdateCredentials(ctx context.Context, user *usersDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users
			  SET password_hash = $1, kdf_iterations = $2, public_key = NULLIF($3, ''),
			      encrypted_private_key = $4, recovery_encrypted_private_key = $5, updated_at = $6
			  WHERE id = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.PasswordHash,
		user.KDFIterations,
		user.PublicKey,
		user.EncryptedPrivateKey,
		user.RecoveryEncryptedPrivateKey,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user credentials")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update user credentials")
	}
	if affected == 0 {
		return usersDomain.ErrUserNotFound
	}

	return nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository instance.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}
