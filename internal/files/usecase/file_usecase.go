package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	cryptoService "github.com/familyvault/vault/internal/crypto/service"
	filesDomain "github.com/familyvault/vault/internal/files/domain"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// fileUseCase implements the FileUseCase interface.
type fileUseCase struct {
	attachmentRepo AttachmentRepository
	blobStore      BlobStore
	itemLookup     ItemLookup
	orgKeyProvider OrgKeyProvider
	membership     MembershipChecker
	fileCodec      *cryptoService.FileCodec
	maxFileSize    int64
	logger         *slog.Logger
}

// Upload encrypts (v1) or passes through (v2) the file bytes, writes them to
// the blob store and records the attachment metadata.
func (f *fileUseCase) Upload(ctx context.Context, input UploadInput) (*filesDomain.Attachment, error) {
	if err := f.requireRole(ctx, input.OrgID, input.CallerID, orgsDomain.RoleMember); err != nil {
		return nil, err
	}

	if _, err := f.itemLookup.Get(ctx, input.OrgID, input.ItemID); err != nil {
		return nil, err
	}

	if int64(len(input.Data)) > f.maxFileSize {
		return nil, filesDomain.ErrFileTooLarge
	}

	version := input.EncryptionVersion
	if version == 0 {
		version = cryptoDomain.VersionServerSide
	}
	if !version.Valid() {
		return nil, filesDomain.ErrInvalidEncryptionVersion
	}

	mimeType := input.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	// Client-encrypted uploads arrive as octet streams; the allow-list only
	// applies when the server can see the real content type.
	if version == cryptoDomain.VersionServerSide {
		if _, ok := filesDomain.AllowedMIMETypes[mimeType]; !ok {
			return nil, filesDomain.ErrMimeTypeNotAllowed
		}
	}

	storageKey := buildStorageKey(input.OrgID, input.ItemID, input.Purpose, input.FileName)

	var ivB64, tagB64 string
	blobData := input.Data
	if version == cryptoDomain.VersionServerSide {
		orgKey, err := f.orgKeyProvider.GetOrgEncryptionKey(ctx, input.OrgID)
		if err != nil {
			return nil, err
		}
		defer cryptoDomain.Zero(orgKey)

		ciphertext, nonce, tag, err := f.fileCodec.EncryptFile(input.Data, orgKey)
		if err != nil {
			return nil, err
		}

		blobData = append(ciphertext, tag...)
		ivB64 = base64.StdEncoding.EncodeToString(nonce)
		tagB64 = base64.StdEncoding.EncodeToString(tag)
	}

	if err := f.blobStore.Upload(ctx, storageKey, blobData); err != nil {
		return nil, err
	}

	attachment := &filesDomain.Attachment{
		ID:                uuid.Must(uuid.NewV7()),
		ItemID:            input.ItemID,
		UploadedBy:        input.CallerID,
		FileName:          input.FileName,
		StorageKey:        storageKey,
		FileSize:          int64(len(input.Data)),
		MimeType:          mimeType,
		Purpose:           input.Purpose,
		EncryptionIV:      ivB64,
		EncryptionTag:     tagB64,
		EncryptionVersion: version,
		CreatedAt:         time.Now().UTC(),
	}

	if err := f.attachmentRepo.Create(ctx, attachment); err != nil {
		// The blob is orphaned if this fails; remove it so storage does not leak.
		if deleteErr := f.blobStore.Delete(ctx, storageKey); deleteErr != nil {
			f.logger.Warn("failed to clean up blob after metadata insert failure",
				slog.String("storage_key", storageKey),
				slog.Any("error", deleteErr),
			)
		}
		return nil, err
	}

	return attachment, nil
}

// Download fetches the stored bytes and decrypts them for server-side
// records. Client-side records are returned still encrypted; the caller
// surfaces the encryption version so the client knows to decrypt.
func (f *fileUseCase) Download(
	ctx context.Context,
	orgID, callerID, attachmentID uuid.UUID,
) (*DownloadResult, error) {
	if err := f.requireRole(ctx, orgID, callerID, orgsDomain.RoleViewer); err != nil {
		return nil, err
	}

	attachment, err := f.attachmentRepo.Get(ctx, orgID, attachmentID)
	if err != nil {
		return nil, err
	}

	stored, err := f.blobStore.Download(ctx, attachment.StorageKey)
	if err != nil {
		return nil, err
	}

	result := &DownloadResult{
		FileName:          attachment.FileName,
		MimeType:          attachment.MimeType,
		EncryptionVersion: attachment.EncryptionVersion,
	}

	if attachment.EncryptionVersion == cryptoDomain.VersionClientSide {
		result.Data = stored
		return result, nil
	}

	orgKey, err := f.orgKeyProvider.GetOrgEncryptionKey(ctx, orgID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(orgKey)

	nonce, err := base64.StdEncoding.DecodeString(attachment.EncryptionIV)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	if len(stored) < cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	// The blob holds ciphertext‖tag; the trailing tag is authoritative.
	ciphertext := stored[:len(stored)-cryptoDomain.TagSize]
	tag := stored[len(stored)-cryptoDomain.TagSize:]

	plaintext, err := f.fileCodec.DecryptFile(ciphertext, nonce, tag, orgKey)
	if err != nil {
		return nil, err
	}

	result.Data = plaintext
	return result, nil
}

// ListByItem retrieves an item's attachment metadata.
func (f *fileUseCase) ListByItem(
	ctx context.Context,
	orgID, callerID, itemID uuid.UUID,
) ([]*filesDomain.Attachment, error) {
	if err := f.requireRole(ctx, orgID, callerID, orgsDomain.RoleViewer); err != nil {
		return nil, err
	}

	if _, err := f.itemLookup.Get(ctx, orgID, itemID); err != nil {
		return nil, err
	}

	return f.attachmentRepo.ListByItem(ctx, itemID)
}

// Delete removes an attachment and its stored bytes. A missing blob is
// tolerated; the metadata row is what makes the file exist.
func (f *fileUseCase) Delete(ctx context.Context, orgID, callerID, attachmentID uuid.UUID) error {
	if err := f.requireRole(ctx, orgID, callerID, orgsDomain.RoleMember); err != nil {
		return err
	}

	attachment, err := f.attachmentRepo.Get(ctx, orgID, attachmentID)
	if err != nil {
		return err
	}

	if err := f.blobStore.Delete(ctx, attachment.StorageKey); err != nil {
		f.logger.Warn("failed to delete blob, removing metadata anyway",
			slog.String("storage_key", attachment.StorageKey),
			slog.Any("error", err),
		)
	}

	return f.attachmentRepo.Delete(ctx, attachmentID)
}

// requireRole verifies the caller holds at least the given role in the organization.
func (f *fileUseCase) requireRole(
	ctx context.Context,
	orgID, callerID uuid.UUID,
	role orgsDomain.Role,
) error {
	membership, err := f.membership.Get(ctx, orgID, callerID)
	if err != nil {
		return err
	}
	if !membership.Role.AtLeast(role) {
		return orgsDomain.ErrInsufficientRole
	}
	return nil
}

// buildStorageKey produces the bucket key {orgID}/{itemID}/{purpose}_{uuid8}.{ext}.enc.
func buildStorageKey(orgID, itemID uuid.UUID, purpose, fileName string) string {
	ext := "bin"
	if idx := strings.LastIndex(fileName, "."); idx >= 0 && idx < len(fileName)-1 {
		ext = fileName[idx+1:]
	}
	if purpose == "" {
		purpose = "file"
	}
	return fmt.Sprintf("%s/%s/%s_%s.%s.enc", orgID, itemID, purpose, uuid.NewString()[:8], ext)
}

// NewFileUseCase creates a new file use case instance with the provided
// dependencies. A non-positive maxFileSize falls back to the built-in cap.
func NewFileUseCase(
	attachmentRepo AttachmentRepository,
	blobStore BlobStore,
	itemLookup ItemLookup,
	orgKeyProvider OrgKeyProvider,
	membership MembershipChecker,
	fileCodec *cryptoService.FileCodec,
	maxFileSize int64,
	logger *slog.Logger,
) FileUseCase {
	if maxFileSize <= 0 {
		maxFileSize = filesDomain.MaxFileSize
	}
	return &fileUseCase{
		attachmentRepo: attachmentRepo,
		blobStore:      blobStore,
		itemLookup:     itemLookup,
		orgKeyProvider: orgKeyProvider,
		membership:     membership,
		fileCodec:      fileCodec,
		maxFileSize:    maxFileSize,
		logger:         logger,
	}
}
