// Package domain defines the core types for encrypted file attachments.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

// MaxFileSize is the upload size cap in bytes (25 MB).
const MaxFileSize = 25 * 1024 * 1024

// AllowedMIMETypes lists the content types accepted for server-side
// encrypted uploads. Client-encrypted uploads arrive as opaque octet streams
// and bypass the check; the real content type is only known to the client.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/gif":       {},
	"application/pdf": {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// Attachment represents an encrypted file attached to a vault item.
//
// The blob store holds ciphertext‖tag for server-side records and the
// client's opaque bytes for client-side ones. Nonce and tag live here,
// base64-encoded; they are empty for client-side records.
type Attachment struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	UploadedBy uuid.UUID
	FileName   string
	StorageKey string
	FileSize   int64
	MimeType   string
	Purpose    string
	// EncryptionIV is the base64-encoded GCM nonce (empty for client-side).
	EncryptionIV string
	// EncryptionTag is the base64-encoded GCM tag (empty for client-side).
	EncryptionTag     string
	EncryptionVersion cryptoDomain.EncryptionVersion
	CreatedAt         time.Time
}
