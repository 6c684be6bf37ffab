package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// PostgreSQLMemberKeyRepository implements MemberKey persistence for PostgreSQL databases.
type PostgreSQLMemberKeyRepository struct {
	db *sql.DB
}

// Upsert inserts a member key wrap or replaces the existing one for the same
// (org, user) pair. Re-running the key exchange ceremony is idempotent; the
// last wrap wins.
func (p *PostgreSQLMemberKeyRepository) Upsert(ctx context.Context, memberKey *orgsDomain.MemberKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO org_member_keys (id, org_id, user_id, encrypted_org_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (org_id, user_id)
			  DO UPDATE SET encrypted_org_key = EXCLUDED.encrypted_org_key, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		memberKey.ID,
		memberKey.OrgID,
		memberKey.UserID,
		memberKey.EncryptedOrgKey,
		memberKey.CreatedAt,
		memberKey.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert member key")
	}
	return nil
}

// Get retrieves the wrapped key for a member of an organization.
func (p *PostgreSQLMemberKeyRepository) Get(
	ctx context.Context,
	orgID, userID uuid.UUID,
) (*orgsDomain.MemberKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, org_id, user_id, encrypted_org_key, created_at, updated_at
			  FROM org_member_keys
			  WHERE org_id = $1 AND user_id = $2`

	var memberKey orgsDomain.MemberKey
	err := querier.QueryRowContext(ctx, query, orgID, userID).Scan(
		&memberKey.ID,
		&memberKey.OrgID,
		&memberKey.UserID,
		&memberKey.EncryptedOrgKey,
		&memberKey.CreatedAt,
		&memberKey.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, orgsDomain.ErrMemberKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get member key")
	}

	return &memberKey, nil
}

// ListPendingMembers retrieves members who published a public key but have no
// wrapped key for the organization yet. Pure existence check; the wraps
// themselves are never decrypted.
func (p *PostgreSQLMemberKeyRepository) ListPendingMembers(
	ctx context.Context,
	orgID uuid.UUID,
) ([]*orgsDomain.PendingMember, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT u.id, u.email, u.name, u.public_key
			  FROM org_memberships m
			  JOIN users u ON u.id = m.user_id
			  LEFT JOIN org_member_keys k ON k.org_id = m.org_id AND k.user_id = m.user_id
			  WHERE m.org_id = $1
			    AND u.public_key IS NOT NULL
			    AND u.public_key <> ''
			    AND k.id IS NULL
			  ORDER BY m.created_at`

	rows, err := querier.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending members")
	}
	defer rows.Close()

	var pending []*orgsDomain.PendingMember
	for rows.Next() {
		var member orgsDomain.PendingMember
		if err := rows.Scan(&member.UserID, &member.Email, &member.Name, &member.PublicKey); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pending member")
		}
		pending = append(pending, &member)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending members")
	}

	return pending, nil
}

// NewPostgreSQLMemberKeyRepository creates a new PostgreSQL MemberKey repository instance.
func NewPostgreSQLMemberKeyRepository(db *sql.DB) *PostgreSQLMemberKeyRepository {
	return &PostgreSQLMemberKeyRepository{db: db}
}
