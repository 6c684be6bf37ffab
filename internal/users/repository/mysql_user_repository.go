package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	usersDomain "github.com/familyvault/vault/internal/users/domain"
)

// MySQLUserRepository implements User persistence for MySQL databases.
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new user into the MySQL database.
func (m *MySQLUserRepository) Create(ctx context.Context, user *usersDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO users (id, email, name, password_hash, kdf_iterations, public_key,
			  encrypted_private_key, recovery_encrypted_private_key, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)`

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
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*usersDomain.User, error) {
	return m.getByField(ctx, "id", userID)
}

// GetByEmail retrieves a user by email.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*usersDomain.User, error) {
	return m.getByField(ctx, "email", email)
}

func (m *MySQLUserRepository) getByField(
	ctx context.Context,
	field string,
	value any,
) (*usersDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, email, name, password_hash, kdf_iterations, COALESCE(public_key, ''),
			  COALESCE(encrypted_private_key, ''), COALESCE(recovery_encrypted_private_key, ''),
			  created_at, updated_at
			  FROM users
			  WHERE ` + field + ` = ?`

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
func (m *MySQLUserRepository) GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id FROM users WHERE email = ?`

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

// UpdateCredentials updates the password hash and client key material in one statement.
func (m *MySQLUserRepository) UpdateCredentials(ctx context.Context, user *usersDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE users
			  SET password_hash = ?, kdf_iterations = ?, public_key = NULLIF(?, ''),
			      encrypted_private_key = ?, recovery_encrypted_private_key = ?, updated_at = ?
			  WHERE id = ?`

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

// NewMySQLUserRepository creates a new MySQL User repository instance.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
