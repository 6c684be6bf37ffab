// Package usecase implements business logic for vault items: the
// encrypt-on-write / decrypt-on-read façade over the category registry, and
// the one-shot runner that encrypts legacy plaintext field values.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	itemsDomain "github.com/familyvault/vault/internal/items/domain"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// ItemRepository defines the interface for Item persistence operations.
type ItemRepository interface {
	Create(ctx context.Context, item *itemsDomain.Item) error
	Get(ctx context.Context, orgID, itemID uuid.UUID) (*itemsDomain.Item, error)
	List(ctx context.Context, orgID uuid.UUID, category string) ([]*itemsDomain.Item, error)
	Update(ctx context.Context, item *itemsDomain.Item) error
	Delete(ctx context.Context, orgID, itemID uuid.UUID) error
	ListAll(ctx context.Context) ([]*itemsDomain.Item, error)
	GetFields(ctx context.Context, itemID uuid.UUID) ([]*itemsDomain.FieldValue, error)
	UpdateFieldValue(ctx context.Context, fieldID uuid.UUID, value string) error
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

// CreateItemInput carries the parameters for creating an item.
type CreateItemInput struct {
	OrgID       uuid.UUID
	CallerID    uuid.UUID
	Category    string
	Subcategory string
	Title       string
	// EncryptionVersion selects server-side (1) or client-side (2)
	// protection; zero defaults to server-side.
	EncryptionVersion cryptoDomain.EncryptionVersion
	// Fields maps field keys to plaintext values (version 1) or
	// client-encrypted blobs (version 2).
	Fields map[string]string
}

// UpdateItemInput carries the parameters for updating an item.
type UpdateItemInput struct {
	OrgID    uuid.UUID
	CallerID uuid.UUID
	ItemID   uuid.UUID
	Title    string
	// EncryptionVersion optionally upgrades the record to client-side
	// protection; zero keeps the current version. Downgrades are rejected.
	EncryptionVersion cryptoDomain.EncryptionVersion
	Fields            map[string]string
}

// ItemUseCase defines the interface for item business logic. Sensitive field
// values are encrypted before they reach the repository and decrypted (with
// legacy plaintext fallback) on the way out.
type ItemUseCase interface {
	Create(ctx context.Context, input CreateItemInput) (*itemsDomain.Item, error)
	Get(ctx context.Context, orgID, callerID, itemID uuid.UUID) (*itemsDomain.Item, error)
	List(ctx context.Context, orgID, callerID uuid.UUID, category string) ([]*itemsDomain.Item, error)
	Update(ctx context.Context, input UpdateItemInput) (*itemsDomain.Item, error)
	Delete(ctx context.Context, orgID, callerID, itemID uuid.UUID) error
}
