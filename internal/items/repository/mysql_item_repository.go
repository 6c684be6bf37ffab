package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	itemsDomain "github.com/familyvault/vault/internal/items/domain"
)

// MySQLItemRepository implements Item persistence for MySQL databases.
type MySQLItemRepository struct {
	db *sql.DB
}

// Create inserts a new item and its field values.
func (m *MySQLItemRepository) Create(ctx context.Context, item *itemsDomain.Item) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO items (id, org_id, category, subcategory, title, encryption_version,
			  created_by, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

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

	return m.insertFields(ctx, item.ID, item.Fields)
}

// Get retrieves an item with its field values, scoped to an organization.
func (m *MySQLItemRepository) Get(ctx context.Context, orgID, itemID uuid.UUID) (*itemsDomain.Item, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, org_id, category, subcategory, title, encryption_version,
			  created_by, created_at, updated_at
			  FROM items
			  WHERE id = ? AND org_id = ?`

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

	fields, err := m.GetFields(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.Fields = fields

	return &item, nil
}

// List retrieves an organization's items without field values, newest first.
// An empty category matches all categories.
func (m *MySQLItemRepository) List(
	ctx context.Context,
	orgID uuid.UUID,
	category string,
) ([]*itemsDomain.Item, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, org_id, category, subcategory, title, encryption_version,
			  created_by, created_at, updated_at
			  FROM items
			  WHERE org_id = ? AND (? = '' OR category = ?)
			  ORDER BY updated_at DESC`

	rows, err := querier.QueryContext(ctx, query, orgID, category, category)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list items")
	}
	defer rows.Close()

	return scanItems(rows)
}

// Update updates an item's title and encryption version and replaces its
// field values.
func (m *MySQLItemRepository) Update(ctx context.Context, item *itemsDomain.Item) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE items
			  SET title = ?, encryption_version = ?, updated_at = ?
			  WHERE id = ? AND org_id = ?`

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

	deleteQuery := `DELETE FROM item_field_values WHERE item_id = ?`
	if _, err := querier.ExecContext(ctx, deleteQuery, item.ID); err != nil {
		return apperrors.Wrap(err, "failed to replace item fields")
	}

	return m.insertFields(ctx, item.ID, item.Fields)
}

// Delete removes an item and its field values.
func (m *MySQLItemRepository) Delete(ctx context.Context, orgID, itemID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM items WHERE id = ? AND org_id = ?`

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
func (m *MySQLItemRepository) ListAll(ctx context.Context) ([]*itemsDomain.Item, error) {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLItemRepository) GetFields(ctx context.Context, itemID uuid.UUID) ([]*itemsDomain.FieldValue, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, item_id, field_key, field_value, updated_at
			  FROM item_field_values
			  WHERE item_id = ?
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
func (m *MySQLItemRepository) UpdateFieldValue(ctx context.Context, fieldID uuid.UUID, value string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE item_field_values SET field_value = ? WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, value, fieldID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update field value")
	}
	return nil
}

func (m *MySQLItemRepository) insertFields(
	ctx context.Context,
	itemID uuid.UUID,
	fields []*itemsDomain.FieldValue,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO item_field_values (id, item_id, field_key, field_value, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	for _, field := range fields {
		_, err := querier.ExecContext(ctx, query, field.ID, itemID, field.FieldKey, field.Value, field.UpdatedAt)
		if err != nil {
			return apperrors.Wrap(err, "failed to insert item field")
		}
	}
	return nil
}

// NewMySQLItemRepository creates a new MySQL Item repository instance.
func NewMySQLItemRepository(db *sql.DB) *MySQLItemRepository {
	return &MySQLItemRepository{db: db}
}
