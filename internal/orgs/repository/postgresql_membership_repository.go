package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// PostgreSQLMembershipRepository implements Membership persistence for PostgreSQL databases.
type PostgreSQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new membership into the PostgreSQL database.
func (p *PostgreSQLMembershipRepository) Create(ctx context.Context, membership *orgsDomain.Membership) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO org_memberships (id, org_id, user_id, role, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.OrgID,
		membership.UserID,
		membership.Role,
		membership.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// Get retrieves the membership of a user in an organization.
func (p *PostgreSQLMembershipRepository) Get(
	ctx context.Context,
	orgID, userID uuid.UUID,
) (*orgsDomain.Membership, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, org_id, user_id, role, created_at
			  FROM org_memberships
			  WHERE org_id = $1 AND user_id = $2`

	var membership orgsDomain.Membership
	err := querier.QueryRowContext(ctx, query, orgID, userID).Scan(
		&membership.ID,
		&membership.OrgID,
		&membership.UserID,
		&membership.Role,
		&membership.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, orgsDomain.ErrMembershipNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get membership")
	}

	return &membership, nil
}

// ListMembers retrieves all members of an organization with user profile data.
func (p *PostgreSQLMembershipRepository) ListMembers(
	ctx context.Context,
	orgID uuid.UUID,
) ([]*orgsDomain.Member, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT m.user_id, u.email, u.name, m.role, m.created_at
			  FROM org_memberships m
			  JOIN users u ON u.id = m.user_id
			  WHERE m.org_id = $1
			  ORDER BY m.created_at`

	rows, err := querier.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list members")
	}
	defer rows.Close()

	var members []*orgsDomain.Member
	for rows.Next() {
		var member orgsDomain.Member
		if err := rows.Scan(&member.UserID, &member.Email, &member.Name, &member.Role, &member.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan member")
		}
		members = append(members, &member)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list members")
	}

	return members, nil
}

// UpdateRole changes the role of a member in an organization.
func (p *PostgreSQLMembershipRepository) UpdateRole(
	ctx context.Context,
	orgID, userID uuid.UUID,
	role orgsDomain.Role,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE org_memberships
			  SET role = $1
			  WHERE org_id = $2 AND user_id = $3`

	result, err := querier.ExecContext(ctx, query, role, orgID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update member role")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update member role")
	}
	if affected == 0 {
		return orgsDomain.ErrMembershipNotFound
	}

	return nil
}

// Delete removes a user's membership from an organization.
func (p *PostgreSQLMembershipRepository) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM org_memberships
			  WHERE org_id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, orgID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete membership")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete membership")
	}
	if affected == 0 {
		return orgsDomain.ErrMembershipNotFound
	}

	return nil
}

// CountByRole returns how many members hold the given role in an organization.
func (p *PostgreSQLMembershipRepository) CountByRole(
	ctx context.Context,
	orgID uuid.UUID,
	role orgsDomain.Role,
) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*)
			  FROM org_memberships
			  WHERE org_id = $1 AND role = $2`

	var count int
	if err := querier.QueryRowContext(ctx, query, orgID, role).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count members by role")
	}

	return count, nil
}

// NewPostgreSQLMembershipRepository creates a new PostgreSQL Membership repository instance.
func NewPostgreSQLMembershipRepository(db *sql.DB) *PostgreSQLMembershipRepository {
	return &PostgreSQLMembershipRepository{db: db}
}
