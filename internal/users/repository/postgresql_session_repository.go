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

// PostgreSQLSessionRepository implements Session persistence for PostgreSQL databases.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new session into the PostgreSQL database.
func (p *PostgreSQLSessionRepository) Create(ctx context.Context, session *usersDomain.Session) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO sessions (id, user_id, token, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

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
func (p *PostgreSQLSessionRepository) GetByToken(ctx context.Context, token string) (*usersDomain.Session, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token, expires_at, created_at
			  FROM sessions
			  WHERE token = $1`

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
func (p *PostgreSQLSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sessions WHERE token = $1`

	_, err := querier.ExecContext(ctx, query, token)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteByUser removes all sessions for a user. Used on password change to
// revoke every existing login.
func (p *PostgreSQLSessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sessions WHERE user_id = $1`

	_, err := querier.ExecContext(ctx, query, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user sessions")
	}
	return nil
}

// DeleteExpired removes sessions past their expiry.
func (p *PostgreSQLSessionRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sessions WHERE expires_at < $1`

	_, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return nil
}

// NewPostgreSQLSessionRepository creates a new PostgreSQL Session repository instance.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}
