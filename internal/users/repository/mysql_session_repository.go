package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	usersDomain "github.com/familyvault/vault/internal/users/domain"
)

// MySQLSessionRepository implements Session persistence for MySQL databases.
type MySQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new session into the MySQL database.
func (m *MySQLSessionRepository) Create(ctx context.Context, session *usersDomain.Session) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO sessions (id, user_id, token, expires_at, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// GetByToken retrieves a session by its token.
func (m *MySQLSessionRepository) GetByToken(ctx context.Context, token string) (*usersDomain.Session, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, token, expires_at, created_at
			  FROM sessions
			  WHERE token = ?`

	var session usersDomain.Session
	err := querier.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, usersDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session by token")
	}

	return &session, nil
}

// DeleteByToken removes a session by its token.
func (m *MySQLSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM sessions WHERE token = ?`

	_, err := querier.ExecContext(ctx, query, token)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteByUser removes all sessions for a user.
func (m *MySQLSessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM sessions WHERE user_id = ?`

	_, err := querier.ExecContext(ctx, query, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user sessions")
	}
	return nil
}

// DeleteExpired removes sessions past their expiry.
func (m *MySQLSessionRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM sessions WHERE expires_at < ?`

	_, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return nil
}

// NewMySQLSessionRepository creates a new MySQL Session repository instance.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}
