// Package domain defines the core domain models for vault items. An item is
// a categorized record (a passport, an insurance policy, a business filing)
// whose sensitive field values are encrypted at rest with the organization
// content key.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

// Item represents a categorized vault record.
type Item struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	Category    string
	Subcategory string
	Title       string
	// EncryptionVersion tags how this record's sensitive data is protected:
	// server-side (1) or client-side (2). Records never change version.
	EncryptionVersion cryptoDomain.EncryptionVersion
	CreatedBy         uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
	// Fields holds the item's field values; populated on reads.
	Fields []*FieldValue
}

// FieldValue is a single named value on an item. Sensitive fields are stored
// encrypted; the Value here is whatever the caller should see at the current
// layer (plaintext in use cases after decryption, ciphertext in repositories).
type FieldValue struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	FieldKey  string
	Value     string
	UpdatedAt time.Time
}
