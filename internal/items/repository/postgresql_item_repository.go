// Package repository implements data persistence for vault items and their
// field values. Repositories support both PostgreSQL and MySQL. Field values
// are stored exactly as handed over; encryption happens in the use case layer.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	itemsDomain "github.com/familyvault/vault/internal/items/domain"
)

// PostgreSQLItemRepository implements Item persistence for PostgreSQL databases.
type PostgreSQLItemRepository struct {
	db *sql.DB
}

// Create inserts a new item and its field values.
func (p *PostgreSQLItemRepository) Create(ctx context.Context, item *itemsDomain.Item) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO items (id, org_id, category, subcategory, title, encryption_version,
			  created_by, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		item.ID,
		item.OrgID,
		item.Category,
		item.Subcategory,
		item.Title,
		item.EncryptionVersion,
		item.CreatedBy,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create item")
	}

	return p.insertFields(ctx, item.ID, item.Fields)
}

// Get retrieves an item with its field values, scoped to an organization.
func (p *PostgreSQLItemRepository) Get(ctx context.Context, orgID, itemID uuid.UUID) (*itemsDomain.Item, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, org_id, category, subcategory, title, encryption_version,
			  created_by, created_at, updated_at
			  FROM items
			  WHERE id = $1 AND org_id = $2`

	var item itemsDomain.Item
	err := querier.QueryRowContext(ctx, query, itemID, orgID).Scan(
		&item.ID,
		&item.OrgID,
		&item.Category,
		&item.Subcategory,
		&item.Title,
		&item.EncryptionVersion,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, itemsDomain.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get item")
	}

	fields, err := p.GetFields(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.Fields = fields

	return &item, nil
}

// List retrieves an organization's items without field values, newest first.
// An empty category matches all categories.
func (p *PostgreSQLItemRepository) List(
	ctx context.Context,
	orgID uuid.UUID,
	category string,
) ([]*itemsDomain.Item, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, org_id, category, subcategory, title, encryption_version,
			  created_by, created_at, updated_at
			  FROM items
			  WHERE org_id = $1 AND ($2 = '' OR category = $2)
			  ORDER BY updated_at DESC`

	rows, err := querier.QueryContext(ctx, query, orgID, category)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list items")
	}
	defer rows.Close()

	return scanItems(rows)
}

// Update updates an item's title and encryption version and replaces its
// field values.
func (p *PostgreSQLItemRepository) Update(ctx context.Context, item *itemsDomain.Item) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE items
			  SET title = $1, encryption_version = $2, updated_at = $3
			  WHERE id = $4 AND org_id = $5`

	result, err := querier.ExecContext(
		ctx, query, item.Title, item.EncryptionVersion, item.UpdatedAt, item.ID, item.OrgID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update item")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update item")
	}
	if affected == 0 {
		return itemsDomain.ErrItemNotFound
	}

	deleteQuery := `DELETE FROM item_field_values WHERE item_id = $1`
	if _, err := querier.ExecContext(ctx, deleteQuery, item.ID); err != nil {
		return apperrors.Wrap(err, "failed to replace item fields")
	}

	return p.insertFields(ctx, item.ID, item.Fields)
}

// Delete removes an item and its field values.
func (p *PostgreSQLItemRepository) Delete(ctx context.Context, orgID, itemID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM items WHERE id = $1 AND org_id = $2`

	result, err := querier.ExecContext(ctx, query, itemID, orgID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete item")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete item")
	}
	if affected == 0 {
		return itemsDomain.ErrItemNotFound
	}

	return nil
}

// ListAll retrieves every item's identity row across all organizations.
// Used by the field encryption migration runner.
func (p *PostgreSQLItemRepository) ListAll(ctx context.Context) ([]*itemsDomain.Item, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, org_id, category, subcategory, title, encryption_version,
			  created_by, created_at, updated_at
			  FROM items
			  ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list all items")
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetFields retrieves the field values of an item.
func (p *PostgreSQLItemRepository) GetFields(ctx context.Context, itemID uuid.UUID) ([]*itemsDomain.FieldValue, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, item_id, field_key, field_value, updated_at
			  FROM item_field_values
			  WHERE item_id = $1
			  ORDER BY field_key`

	rows, err := querier.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get item fields")
	}
	defer rows.Close()

	var fields []*itemsDomain.FieldValue
	for rows.Next() {
		var field itemsDomain.FieldValue
		if err := rows.Scan(&field.ID, &field.ItemID, &field.FieldKey, &field.Value, &field.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item field")
		}
		fields = append(fields, &field)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to get item fields")
	}

	return fields, nil
}

// UpdateFieldValue rewrites a single stored field value in place.
// Used by the field encryption migration runner.
func (p *PostgreSQLItemRepository) UpdateFieldValue(ctx context.Context, fieldID uuid.UUID, value string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE item_field_values SET field_value = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, value, fieldID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update field value")
	}
	return nil
}

func (p *PostgreSQLItemRepository) insertFields(
	ctx context.Context,
	itemID uuid.UUID,
	fields []*itemsDomain.FieldValue,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO item_field_values (id, item_id, field_key, field_value, updated_at)
			  VALUES ($1, $2, $3, $4, $5)`

	for _, field := range fields {
		_, err := querier.ExecContext(ctx, query, field.ID, itemID, field.FieldKey, field.Value, field.UpdatedAt)
		if err != nil {
			return apperrors.Wrap(err, "failed to insert item field")
		}
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]*itemsDomain.Item, error) {
	var items []*itemsDomain.Item
	for rows.Next() {
		var item itemsDomain.Item
		err := rows.Scan(
			&item.ID,
			&item.OrgID,
			&item.Category,
			&item.Subcategory,
			&item.Title,
			&item.EncryptionVersion,
			&item.CreatedBy,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item")
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to scan items")
	}
	return items, nil
}

// NewPostgreSQLItemRepository creates a new PostgreSQL Item repository instance.
func NewPostgreSQLItemRepository(db *sql.DB) *PostgreSQLItemRepository {
	return &PostgreSQLItemRepository{db: db}
}
