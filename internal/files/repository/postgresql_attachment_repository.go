// Package repository implements data persistence for file attachment
// metadata. Attachment bytes live in the blob store; only the storage key,
// nonce and tag are kept here. Repositories support both PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/database"
	apperrors "github.com/familyvault/vault/internal/errors"
	filesDomain "github.com/familyvault/vault/internal/files/domain"
)

// PostgreSQLAttachmentRepository implements Attachment persistence for
// PostgreSQL databases.
type PostgreSQLAttachmentRepository struct {
	db *sql.DB
}

// Create inserts a new attachment metadata row.
func (p *PostgreSQLAttachmentRepository) Create(ctx context.Context, attachment *filesDomain.Attachment) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO file_attachments (id, item_id, uploaded_by, file_name, storage_key,
			  file_size, mime_type, purpose, encryption_iv, encryption_tag, encryption_version, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

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
func (p *PostgreSQLAttachmentRepository) Get(
	ctx context.Context,
	orgID, attachmentID uuid.UUID,
) (*filesDomain.Attachment, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT a.id, a.item_id, a.uploaded_by, a.file_name, a.storage_key,
			  a.file_size, a.mime_type, a.purpose, a.encryption_iv, a.encryption_tag,
			  a.encryption_version, a.created_at
			  FROM file_attachments a
			  JOIN items i ON i.id = a.item_id
			  WHERE a.id = $1 AND i.org_id = $2`

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
func (p *PostgreSQLAttachmentRepository) ListByItem(
	ctx context.Context,
	itemID uuid.UUID,
) ([]*filesDomain.Attachment, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, item_id, uploaded_by, file_name, storage_key,
			  file_size, mime_type, purpose, encryption_iv, encryption_tag,
			  encryption_version, created_at
			  FROM file_attachments
			  WHERE item_id = $1
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
func (p *PostgreSQLAttachmentRepository) Delete(ctx context.Context, attachmentID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM file_attachments WHERE id = $1`

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttachment(row rowScanner) (*filesDomain.Attachment, error) {
	var attachment filesDomain.Attachment
	err := row.Scan(
		&attachment.ID,
		&attachment.ItemID,
		&attachment.UploadedBy,
		&attachment.FileName,
		&attachment.StorageKey,
		&attachment.FileSize,
		&attachment.MimeType,
		&attachment.Purpose,
		&attachment.EncryptionIV,
		&attachment.EncryptionTag,
		&attachment.EncryptionVersion,
		&attachment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// NewPostgreSQLAttachmentRepository creates a new PostgreSQL Attachment repository instance.
func NewPostgreSQLAttachmentRepository(db *sql.DB) *PostgreSQLAttachmentRepository {
	return &PostgreSQLAttachmentRepository{db: db}
}
