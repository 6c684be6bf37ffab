package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

func TestDeriveMasterKey(t *testing.T) {
	t.Run("deterministic for a fixed secret", func(t *testing.T) {
		a := DeriveMasterKey("test-secret")
		b := DeriveMasterKey("test-secret")

		assert.Len(t, a.Key, cryptoDomain.KeySize)
		assert.Equal(t, a.Key, b.Key)
	})

	t.Run("different secrets derive different keys", func(t *testing.T) {
		a := DeriveMasterKey("secret-a")
		b := DeriveMasterKey("secret-b")
		assert.NotEqual(t, a.Key, b.Key)
	})

	t.Run("derivation never fails, even for an empty secret", func(t *testing.T) {
		key := DeriveMasterKey("")
		assert.Len(t, key.Key, cryptoDomain.KeySize)
	})

	t.Run("derived key is usable for AES-256", func(t *testing.T) {
		key := DeriveMasterKey("test-secret")
		cipher, err := NewAESGCM(key.Key)
		require.NoError(t, err)
		assert.NotNil(t, cipher)
	})
}

func TestMasterKey_Close(t *testing.T) {
	key := DeriveMasterKey("test-secret")
	key.Close()
	assert.Nil(t, key.Key)
}
