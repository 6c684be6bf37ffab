// Package repository implements data persistence for organizations,
// memberships and member key wraps. Repositories support both PostgreSQL
// and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// PostgreSQLOrgRepository implements Organization persistence for PostgreSQL databases.
type PostgreSQLOrgRepository struct {
	db *sql.DB
}

// Create inserts a new organization into the PostgreSQL database.
func (p *PostgreSQLOrgRepository) Create(ctx context.Context, org *orgsDomain.Organization) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO organizations (id, name, encryption_key_enc, created_by, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

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
func (p *PostgreSQLOrgRepository) Get(ctx context.Context, orgID uuid.UUID) (*orgsDomain.Organization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, encryption_key_enc, created_by, created_at
			  FROM organizations
			  WHERE id = $1`

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
func (p *PostgreSQLOrgRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*orgsDomain.Organization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT o.id, o.name, o.encryption_key_enc, o.created_by, o.created_at
			  FROM organizations o
			  JOIN org_memberships m ON m.org_id = o.id
			  WHERE m.user_id = $1
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

// NewPostgreSQLOrgRepository creates a new PostgreSQL Organization repository instance.
func NewPostgreSQLOrgRepository(db *sql.DB) *PostgreSQLOrgRepository {
	return &PostgreSQLOrgRepository{db: db}
}
