package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	itemsDomain "github.com/familyvault/vault/internal/items/domain"
)

func newMigrationEnv() (*itemTestEnv, FieldMigrationUseCase) {
	env := newItemTestEnv()
	runner := NewFieldMigrationUseCase(env.itemRepo, env.registry, env.orgKeys, env.fieldCodec, slog.Default())
	return env, runner
}

// seedLegacyItem plants an item with raw field values, bypassing the
// encrypt-on-write path.
func seedLegacyItem(
	env *itemTestEnv,
	orgID uuid.UUID,
	category, subcategory string,
	version cryptoDomain.EncryptionVersion,
	values map[string]string,
) uuid.UUID {
	itemID := uuid.Must(uuid.NewV7())
	env.itemRepo.items[itemID] = &itemsDomain.Item{
		ID:                itemID,
		OrgID:             orgID,
		Category:          category,
		Subcategory:       subcategory,
		Title:             "legacy",
		EncryptionVersion: version,
	}
	var fields []*itemsDomain.FieldValue
	for key, value := range values {
		fields = append(fields, &itemsDomain.FieldValue{
			ID:       uuid.Must(uuid.NewV7()),
			ItemID:   itemID,
			FieldKey: key,
			Value:    value,
		})
	}
	env.itemRepo.fields[itemID] = fields
	return itemID
}

func TestFieldMigrationUseCase_EncryptFields(t *testing.T) {
	ctx := context.Background()

	t.Run("encrypts plaintext sensitive values", func(t *testing.T) {
		env, runner := newMigrationEnv()
		orgID := env.orgKeys.addOrg(t)
		itemID := seedLegacyItem(env, orgID, "ids", "passport", cryptoDomain.VersionServerSide,
			map[string]string{
				"passport_number": "X1234567",
				"country":         "US",
			})

		result, err := runner.EncryptFields(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ItemsProcessed)
		assert.Equal(t, 1, result.FieldsEncrypted)
		assert.Equal(t, 0, result.FieldsSkipped)

		stored := env.itemRepo.storedField(t, itemID, "passport_number")
		assert.NotEqual(t, "X1234567", stored)

		plaintext, err := env.fieldCodec.DecryptField(stored, env.orgKeys.keys[orgID])
		require.NoError(t, err)
		assert.Equal(t, "X1234567", plaintext)

		// Non-sensitive fields are untouched.
		assert.Equal(t, "US", env.itemRepo.storedField(t, itemID, "country"))
	})

	t.Run("second run encrypts nothing", func(t *testing.T) {
		env, runner := newMigrationEnv()
		orgID := env.orgKeys.addOrg(t)
		seedLegacyItem(env, orgID, "business", "llc", cryptoDomain.VersionServerSide,
			map[string]string{"ein": "12-3456789"})

		first, err := runner.EncryptFields(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.FieldsEncrypted)

		second, err := runner.EncryptFields(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, second.FieldsEncrypted)
		assert.Equal(t, 1, second.FieldsSkipped)
	})

	t.Run("skips client-side records", func(t *testing.T) {
		env, runner := newMigrationEnv()
		orgID := env.orgKeys.addOrg(t)
		itemID := seedLegacyItem(env, orgID, "ids", "passport", cryptoDomain.VersionClientSide,
			map[string]string{"passport_number": "opaque client blob"})

		result, err := runner.EncryptFields(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ItemsProcessed)
		assert.Equal(t, "opaque client blob", env.itemRepo.storedField(t, itemID, "passport_number"))
	})

	t.Run("skips categories without sensitive fields", func(t *testing.T) {
		env, runner := newMigrationEnv()
		orgID := env.orgKeys.addOrg(t)
		itemID := seedLegacyItem(env, orgID, "business", "tax_document", cryptoDomain.VersionServerSide,
			map[string]string{"tax_year": "2023"})

		result, err := runner.EncryptFields(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ItemsProcessed)
		assert.Equal(t, "2023", env.itemRepo.storedField(t, itemID, "tax_year"))
	})

	t.Run("missing org key skips the item, not the run", func(t *testing.T) {
		env, runner := newMigrationEnv()
		orgID := env.orgKeys.addOrg(t)
		orphanOrg := uuid.Must(uuid.NewV7())

		seedLegacyItem(env, orphanOrg, "ids", "passport", cryptoDomain.VersionServerSide,
			map[string]string{"passport_number": "ORPHAN01"})
		goodItem := seedLegacyItem(env, orgID, "ids", "passport", cryptoDomain.VersionServerSide,
			map[string]string{"passport_number": "GOOD0001"})

		result, err := runner.EncryptFields(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ItemsProcessed)
		assert.Equal(t, 1, result.FieldsEncrypted)

		stored := env.itemRepo.storedField(t, goodItem, "passport_number")
		plaintext, err := env.fieldCodec.DecryptField(stored, env.orgKeys.keys[orgID])
		require.NoError(t, err)
		assert.Equal(t, "GOOD0001", plaintext)
	})

	t.Run("org key is unwrapped once per run", func(t *testing.T) {
		env, runner := newMigrationEnv()
		orgID := env.orgKeys.addOrg(t)
		seedLegacyItem(env, orgID, "ids", "passport", cryptoDomain.VersionServerSide,
			map[string]string{"passport_number": "A"})
		seedLegacyItem(env, orgID, "ids", "visa", cryptoDomain.VersionServerSide,
			map[string]string{"visa_number": "B"})
		seedLegacyItem(env, orgID, "business", "llc", cryptoDomain.VersionServerSide,
			map[string]string{"ein": "C"})

		env.orgKeys.calls = 0
		_, err := runner.EncryptFields(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, env.orgKeys.calls)
	})
}

func TestLooksEncrypted(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"plain ssn", "123-45-6789", false},
		{"short base64", "aGVsbG8=", false},
		{"long non-base64", "this value is long enough but has spaces so it is not base64!", false},
		{"encrypted wire form", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksEncrypted(tt.value))
		})
	}
}
