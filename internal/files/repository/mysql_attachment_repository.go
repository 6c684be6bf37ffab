package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	filesDomain "github.com/familyvault/vault/internal/files/domain"
)

// MySQLAttachmentRepository implements Attachment persistence for MySQL databases.
type MySQLAttachmentRepository struct {
	db *sql.DB
}

// Create inserts a new attachment metadata row.
func (m *MySQLAttachmentRepository) Create(ctx context.Context, attachment *filesDomain.Attachment) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO file_attachments (id, item_id, uploaded_by, file_name, storage_key,
			  file_size, mime_type, purpose, encryption_iv, encryption_tag, encryption_version, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		attachment.ID,
		attachment.ItemID,
		attachment.UploadedBy,
		attachment.FileName,
		attachment.StorageKey,
		attachment.FileSize,
		attachment.MimeType,
		attachment.Purpose,
		attachment.EncryptionIV,
		attachment.EncryptionTag,
		attachment.EncryptionVersion,
		attachment.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create attachment")
	}

	return nil
}

// Get retrieves an attachment scoped to an organization via its item.
func (m *MySQLAttachmentRepository) Get(
	ctx context.Context,
	orgID, attachmentID uuid.UUID,
) (*filesDomain.Attachment, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT a.id, a.item_id, a.uploaded_by, a.file_name, a.storage_key,
			  a.file_size, a.mime_type, a.purpose, a.encryption_iv, a.encryption_tag,
			  a.encryption_version, a.created_at
			  FROM file_attachments a
			  JOIN items i ON i.id = a.item_id
			  WHERE a.id = ? AND i.org_id = ?`

	attachment, err := scanAttachment(querier.QueryRowContext(ctx, query, attachmentID, orgID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, filesDomain.ErrAttachmentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get attachment")
	}

	return attachment, nil
}

// ListByItem retrieves an item's attachments, newest first.
func (m *MySQLAttachmentRepository) ListByItem(
	ctx context.Context,
	itemID uuid.UUID,
) ([]*filesDomain.Attachment, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, item_id, uploaded_by, file_name, storage_key,
			  file_size, mime_type, purpose, encryption_iv, encryption_tag,
			  encryption_version, created_at
			  FROM file_attachments
			  WHERE item_id = ?
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list attachments")
	}
	defer rows.Close()

	var attachments []*filesDomain.Attachment
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan attachment")
		}
		attachments = append(attachments, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list attachments")
	}

	return attachments, nil
}

// Delete removes an attachment metadata row.
func (m *MySQLAttachmentRepository) Delete(ctx context.Context, attachmentID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM file_attachments WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, attachmentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete attachment")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete attachment")
	}
	if affected == 0 {
		return filesDomain.ErrAttachmentNotFound
	}

	return nil
}

// NewMySQLAttachmentRepository creates a new MySQL Attachment repository instance.
func NewMySQLAttachmentRepository(db *sql.DB) *MySQLAttachmentRepository {
	return &MySQLAttachmentRepository{db: db}
}
