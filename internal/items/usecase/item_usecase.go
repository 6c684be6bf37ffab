package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	cryptoService "github.com/familyvault/vault/internal/crypto/service"
	"github.com/familyvault/vault/internal/database"
	itemsDomain "github.com/familyvault/vault/internal/items/domain"
	itemsService "github.com/familyvault/vault/internal/items/service"
	orgsDomain "github.com/familyvault/vault/internal/orgs/domain"
)

// itemUseCase implements the ItemUseCase interface.
type itemUseCase struct {
	txManager      database.TxManager
	itemRepo       ItemRepository
	registry       *itemsService.Registry
	orgKeyProvider OrgKeyProvider
	membership     MembershipChecker
	fieldCodec     *cryptoService.FieldCodec
}

// Create validates the record type against the registry, encrypts sensitive
// field values and persists the item.
func (i *itemUseCase) Create(ctx context.Context, input CreateItemInput) (*itemsDomain.Item, error) {
	if err := i.requireRole(ctx, input.OrgID, input.CallerID, orgsDomain.RoleMember); err != nil {
		return nil, err
	}

	version := input.EncryptionVersion
	if version == 0 {
		version = cryptoDomain.VersionServerSide
	}
	if !version.Valid() {
		return nil, itemsDomain.ErrInvalidEncryptionVersion
	}

	fieldKeys := make([]string, 0, len(input.Fields))
	for key := range input.Fields {
		fieldKeys = append(fieldKeys, key)
	}
	if err := i.registry.ValidateFields(input.Category, input.Subcategory, fieldKeys); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &itemsDomain.Item{
		ID:                uuid.Must(uuid.NewV7()),
		OrgID:             input.OrgID,
		Category:          input.Category,
		Subcategory:       input.Subcategory,
		Title:             input.Title,
		EncryptionVersion: version,
		CreatedBy:         input.CallerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	fields, err := i.encryptFields(ctx, item, input.Fields, now)
	if err != nil {
		return nil, err
	}
	item.Fields = fields

	err = i.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return i.itemRepo.Create(txCtx, item)
	})
	if err != nil {
		return nil, err
	}

	return i.decryptItem(ctx, item)
}

// Get retrieves an item and decrypts its sensitive field values.
func (i *itemUseCase) Get(ctx context.Context, orgID, callerID, itemID uuid.UUID) (*itemsDomain.Item, error) {
	if err := i.requireRole(ctx, orgID, callerID, orgsDomain.RoleViewer); err != nil {
		return nil, err
	}

	item, err := i.itemRepo.Get(ctx, orgID, itemID)
	if err != nil {
		return nil, err
	}

	return i.decryptItem(ctx, item)
}

// List retrieves an organization's items without field values.
func (i *itemUseCase) List(
	ctx context.Context,
	orgID, callerID uuid.UUID,
	category string,
) ([]*itemsDomain.Item, error) {
	if err := i.requireRole(ctx, orgID, callerID, orgsDomain.RoleViewer); err != nil {
		return nil, err
	}

	return i.itemRepo.List(ctx, orgID, category)
}

// Update replaces an item's title and field values, re-encrypting sensitive
// values. A server-side record can be explicitly upgraded to client-side
// encryption together with client-encrypted replacement fields; downgrades
// are rejected, they would expose client blobs as plaintext.
func (i *itemUseCase) Update(ctx context.Context, input UpdateItemInput) (*itemsDomain.Item, error) {
	if err := i.requireRole(ctx, input.OrgID, input.CallerID, orgsDomain.RoleMember); err != nil {
		return nil, err
	}

	item, err := i.itemRepo.Get(ctx, input.OrgID, input.ItemID)
	if err != nil {
		return nil, err
	}

	if input.EncryptionVersion != 0 {
		if !input.EncryptionVersion.Valid() {
			return nil, itemsDomain.ErrInvalidEncryptionVersion
		}
		if input.EncryptionVersion < item.EncryptionVersion {
			return nil, itemsDomain.ErrInvalidEncryptionVersion
		}
		item.EncryptionVersion = input.EncryptionVersion
	}

	fieldKeys := make([]string, 0, len(input.Fields))
	for key := range input.Fields {
		fieldKeys = append(fieldKeys, key)
	}
	if err := i.registry.ValidateFields(item.Category, item.Subcategory, fieldKeys); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item.Title = input.Title
	item.UpdatedAt = now

	fields, err := i.encryptFields(ctx, item, input.Fields, now)
	if err != nil {
		return nil, err
	}
	item.Fields = fields

	err = i.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return i.itemRepo.Update(txCtx, item)
	})
	if err != nil {
		return nil, err
	}

	return i.decryptItem(ctx, item)
}

// Delete removes an item.
func (i *itemUseCase) Delete(ctx context.Context, orgID, callerID, itemID uuid.UUID) error {
	if err := i.requireRole(ctx, orgID, callerID, orgsDomain.RoleMember); err != nil {
		return err
	}

	return i.itemRepo.Delete(ctx, orgID, itemID)
}

// encryptFields builds the stored field values for an item. Sensitive values
// on server-side records are encrypted with the org key; client-side records
// arrive pre-encrypted and pass through verbatim.
func (i *itemUseCase) encryptFields(
	ctx context.Context,
	item *itemsDomain.Item,
	values map[string]string,
	now time.Time,
) ([]*itemsDomain.FieldValue, error) {
	sensitive := i.registry.SensitiveFields(item.Category, item.Subcategory)

	var orgKey []byte
	if item.EncryptionVersion == cryptoDomain.VersionServerSide && len(sensitive) > 0 {
		var err error
		orgKey, err = i.orgKeyProvider.GetOrgEncryptionKey(ctx, item.OrgID)
		if err != nil {
			return nil, err
		}
		defer cryptoDomain.Zero(orgKey)
	}

	fields := make([]*itemsDomain.FieldValue, 0, len(values))
	for key, value := range values {
		stored := value
		if _, isSensitive := sensitive[key]; isSensitive && orgKey != nil {
			encrypted, err := i.fieldCodec.EncryptField(value, orgKey)
			if err != nil {
				return nil, err
			}
			stored = encrypted
		}
		fields = append(fields, &itemsDomain.FieldValue{
			ID:        uuid.Must(uuid.NewV7()),
			ItemID:    item.ID,
			FieldKey:  key,
			Value:     stored,
			UpdatedAt: now,
		})
	}

	return fields, nil
}

// decryptItem decrypts sensitive field values on a server-side record using
// the legacy fallback, so rows written before encryption went live still
// read correctly. Client-side records pass through untouched.
func (i *itemUseCase) decryptItem(ctx context.Context, item *itemsDomain.Item) (*itemsDomain.Item, error) {
	if item.EncryptionVersion != cryptoDomain.VersionServerSide {
		return item, nil
	}

	sensitive := i.registry.SensitiveFields(item.Category, item.Subcategory)
	if len(sensitive) == 0 {
		return item, nil
	}

	orgKey, err := i.orgKeyProvider.GetOrgEncryptionKey(ctx, item.OrgID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(orgKey)

	for _, field := range item.Fields {
		if _, isSensitive := sensitive[field.FieldKey]; isSensitive {
			field.Value = i.fieldCodec.DecryptFieldWithLegacyFallback(field.Value, orgKey)
		}
	}

	return item, nil
}

// requireRole verifies the caller holds at least the given role in the organization.
func (i *itemUseCase) requireRole(
	ctx context.Context,
	orgID, callerID uuid.UUID,
	role orgsDomain.Role,
) error {
	membership, err := i.membership.Get(ctx, orgID, callerID)
	if err != nil {
		return err
	}
	if !membership.Role.AtLeast(role) {
		return orgsDomain.ErrInsufficientRole
	}
	return nil
}

// NewItemUseCase creates a new item use case instance with the provided dependencies.
func NewItemUseCase(
	txManager database.TxManager,
	itemRepo ItemRepository,
	registry *itemsService.Registry,
	orgKeyProvider OrgKeyProvider,
	membership MembershipChecker,
	fieldCodec *cryptoService.FieldCodec,
) ItemUseCase {
	return &itemUseCase{
		txManager:      txManager,
		itemRepo:       itemRepo,
		registry:       registry,
		orgKeyProvider: orgKeyProvider,
		membership:     membership,
		fieldCodec:     fieldCodec,
	}
}
