package usecase

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	cryptoService "github.com/familyvault/vault/internal/crypto/service"
	itemsService "github.com/familyvault/vault/internal/items/service"
)

// FieldMigrationResult reports what the encryption runner did.
type FieldMigrationResult struct {
	ItemsProcessed  int
	FieldsEncrypted int
	FieldsSkipped   int
}

// FieldMigrationUseCase encrypts sensitive field values that were stored as
// plain text before server-side encryption went live.
type FieldMigrationUseCase interface {
	EncryptFields(ctx context.Context) (*FieldMigrationResult, error)
}

type fieldMigrationUseCase struct {
	itemRepo       ItemRepository
	registry       *itemsService.Registry
	orgKeyProvider OrgKeyProvider
	fieldCodec     *cryptoService.FieldCodec
	logger         *slog.Logger
}

// EncryptFields walks every item and encrypts sensitive plaintext field
// values in place. The run is best-effort: items whose organization key
// cannot be unwrapped are skipped with a warning so one broken org does not
// block the rest. Running it twice is safe; already-encrypted values are
// detected and left alone.
func (f *fieldMigrationUseCase) EncryptFields(ctx context.Context) (*FieldMigrationResult, error) {
	items, err := f.itemRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &FieldMigrationResult{}
	orgKeys := make(map[uuid.UUID][]byte)
	defer func() {
		for _, key := range orgKeys {
			cryptoDomain.Zero(key)
		}
	}()

	for _, item := range items {
		if item.EncryptionVersion != cryptoDomain.VersionServerSide {
			continue
		}

		sensitive := f.registry.SensitiveFields(item.Category, item.Subcategory)
		if len(sensitive) == 0 {
			continue
		}

		orgKey, ok := orgKeys[item.OrgID]
		if !ok {
			orgKey, err = f.orgKeyProvider.GetOrgEncryptionKey(ctx, item.OrgID)
			if err != nil {
				f.logger.Warn("skipping item, organization key unavailable",
					slog.String("item_id", item.ID.String()),
					slog.String("org_id", item.OrgID.String()),
					slog.Any("error", err),
				)
				continue
			}
			orgKeys[item.OrgID] = orgKey
		}

		fields, err := f.itemRepo.GetFields(ctx, item.ID)
		if err != nil {
			f.logger.Warn("skipping item, failed to load fields",
				slog.String("item_id", item.ID.String()),
				slog.Any("error", err),
			)
			continue
		}

		result.ItemsProcessed++

		for _, field := range fields {
			if _, isSensitive := sensitive[field.FieldKey]; !isSensitive {
				continue
			}
			if field.Value == "" || looksEncrypted(field.Value) {
				result.FieldsSkipped++
				continue
			}

			encrypted, err := f.fieldCodec.EncryptField(field.Value, orgKey)
			if err != nil {
				f.logger.Warn("failed to encrypt field value",
					slog.String("item_id", item.ID.String()),
					slog.String("field_key", field.FieldKey),
					slog.Any("error", err),
				)
				continue
			}
			if err := f.itemRepo.UpdateFieldValue(ctx, field.ID, encrypted); err != nil {
				f.logger.Warn("failed to store encrypted field value",
					slog.String("item_id", item.ID.String()),
					slog.String("field_key", field.FieldKey),
					slog.Any("error", err),
				)
				continue
			}
			result.FieldsEncrypted++
		}
	}

	return result, nil
}

// looksEncrypted reports whether a stored value is already in the encrypted
// wire form. Ciphertext is base64 of nonce(12)+tag(16)+data, so anything that
// decodes as base64 and is longer than 40 characters is treated as encrypted.
// Short plaintext that happens to be valid base64 survives the check.
func looksEncrypted(value string) bool {
	if len(value) <= 40 {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(value)
	return err == nil
}

// NewFieldMigrationUseCase creates a new field migration use case instance.
func NewFieldMigrationUseCase(
	itemRepo ItemRepository,
	registry *itemsService.Registry,
	orgKeyProvider OrgKeyProvider,
	fieldCodec *cryptoService.FieldCodec,
	logger *slog.Logger,
) FieldMigrationUseCase {
	return &fieldMigrationUseCase{
		itemRepo:       itemRepo,
		registry:       registry,
		orgKeyProvider: orgKeyProvider,
		fieldCodec:     fieldCodec,
		logger:         logger,
	}
}
