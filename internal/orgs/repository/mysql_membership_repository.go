package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// MySQLMembershipRepository implements Membership persistence for MySQL databases.
type MySQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new membership into the MySQL database.
func (m *MySQLMembershipRepository) Create(ctx context.Context, membership *orgsDomain.Membership) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO org_memberships (id, org_id, user_id, role, created_at)
			  VALUES (?, ?, ?, ?, ?)`

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
func (m *MySQLMembershipRepository) Get(
	ctx context.Context,
	orgID, userID uuid.UUID,
) (*orgsDomain.Membership, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, org_id, user_id, role, created_at
			  FROM org_memberships
			  WHERE org_id = ? AND user_id = ?`

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
func (m *MySQLMembershipRepository) ListMembers(
	ctx context.Context,
	orgID uuid.UUID,
) ([]*orgsDomain.Member, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT om.user_id, u.email, u.name, om.role, om.created_at
			  FROM org_memberships om
			  JOIN users u ON u.id = om.user_id
			  WHERE om.org_id = ?
			  ORDER BY om.created_at`

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
func (m *MySQLMembershipRepository) UpdateRole(
	ctx context.Context,
	orgID, userID uuid.UUID,
	role orgsDomain.Role,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE org_memberships
			  SET role = ?
			  WHERE org_id = ? AND user_id = ?`

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
func (m *MySQLMembershipRepository) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM org_memberships
			  WHERE org_id = ? AND user_id = ?`

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
func (m *MySQLMembershipRepository) CountByRole(
	ctx context.Context,
	orgID uuid.UUID,
	role orgsDomain.Role,
) (int, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*)
			  FROM org_memberships
			  WHERE org_id = ? AND role = ?`

	var count int
	if err := querier.QueryRowContext(ctx, query, orgID, role).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count members by role")
	}

	return count, nil
}

// NewMySQLMembershipRepository creates a new MySQL Membership repository instance.
func NewMySQLMembershipRepository(db *sql.DB) *MySQLMembershipRepository {
	return &MySQLMembershipRepository{db: db}
}
