// Package usecase implements business logic for file attachments: the
// encrypt-on-upload / decrypt-on-download façade with v1/v2 dispatch over the
// blob store.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	filesDomain "github.com/familyvault/vault/internal/files/domain"
	itemsDomain "github.com/familyvault/vault/internal/items/domain"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// AttachmentRepository defines the interface for Attachment persistence operations.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *filesDomain.Attachment) error
	Get(ctx context.Context, orgID, attachmentID uuid.UUID) (*filesDomain.Attachment, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*filesDomain.Attachment, error)
	Delete(ctx context.Context, attachmentID uuid.UUID) error
}

// BlobStore holds attachment bytes under string keys.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ItemLookup verifies that an item exists in an organization.
// Implemented by the items repository.
type ItemLookup interface {
	Get(ctx context.Context, orgID, itemID uuid.UUID) (*itemsDomain.Item, error)
}

// OrgKeyProvider unwraps organization content keys for server-side
// encryption. Implemented by the orgs use case.
type OrgKeyProvider interface {
	GetOrgEncryptionKey(ctx context.Context, orgID uuid.UUID) ([]byte, error)
}

// MembershipChecker verifies organization membership for authorization.
// Implemented by the orgs membership repository.
type MembershipChecker interface {
	Get(ctx context.Context, orgID, userID uuid.UUID) (*orgsDomain.Membership, error)
}

// UploadInput carries the parameters for uploading an attachment.
type UploadInput struct {
	OrgID    uuid.UUID
	CallerID uuid.UUID
	ItemID   uuid.UUID
	FileName string
	MimeType string
	Purpose  string
	// EncryptionVersion selects server-side (1) or client-side (2)
	// protection; zero defaults to server-side.
	EncryptionVersion cryptoDomain.EncryptionVersion
	Data              []byte
}

// DownloadResult carries decrypted (v1) or still-encrypted (v2) file bytes
// plus the metadata the HTTP layer needs to build the response.
type DownloadResult struct {
	Data              []byte
	FileName          string
	MimeType          string
	EncryptionVersion cryptoDomain.EncryptionVersion
}

// FileUseCase defines the interface for attachment business logic. File
// bodies are always treated as sensitive: server-side uploads are encrypted
// before they reach the blob store and decryption failures on download are
// fatal, with no plaintext fallback.
type FileUseCase interface {
	Upload(ctx context.Context, input UploadInput) (*filesDomain.Attachment, error)
	Download(ctx context.Context, orgID, callerID, attachmentID uuid.UUID) (*DownloadResult, error)
	ListByItem(ctx context.Context, orgID, callerID, itemID uuid.UUID) ([]*filesDomain.Attachment, error)
	Delete(ctx context.Context, orgID, callerID, attachmentID uuid.UUID) error
}
