package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// MySQLOrgRepository implements Organization persistence for MySQL databases.
type MySQLOrgRepository struct {
	db *sql.DB
}

// Create inserts a new organization into the MySQL database.
func (m *MySQLOrgRepository) Create(ctx context.Context, org *orgsDomain.Organization) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO organizations (id, name, encryption_key_enc, created_by, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		org.ID,
		org.Name,
		org.EncryptionKeyEnc,
		org.CreatedBy,
		org.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create organization")
	}
	return nil
}

// Get retrieves an organization by its ID.
func (m *MySQLOrgRepository) Get(ctx context.Context, orgID uuid.UUID) (*orgsDomain.Organization, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, encryption_key_enc, created_by, created_at
			  FROM organizations
			  WHERE id = ?`

	var org orgsDomain.Organization
	err := querier.QueryRowContext(ctx, query, orgID).Scan(
		&org.ID,
		&org.Name,
		&org.EncryptionKeyEnc,
		&org.CreatedBy,
		&org.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, orgsDomain.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get organization")
	}

	return &org, nil
}

// ListByUser retrieves the organizations a user belongs to, ordered by creation time.
func (m *MySQLOrgRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*orgsDomain.Organization, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT o.id, o.name, o.encryption_key_enc, o.created_by, o.created_at
			  FROM organizations o
			  JOIN org_memberships om ON om.org_id = o.id
			  WHERE om.user_id = ?
			  ORDER BY o.created_at`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list organizations")
	}
	defer rows.Close()

	var orgs []*orgsDomain.Organization
	for rows.Next() {
		var org orgsDomain.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.EncryptionKeyEnc, &org.CreatedBy, &org.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan organization")
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list organizations")
	}

	return orgs, nil
}

// NewMySQLOrgRepository creates a new MySQL Organization repository instance.
func NewMySQLOrgRepository(db *sql.DB) *MySQLOrgRepository {
	return &MySQLOrgRepository{db: db}
}
