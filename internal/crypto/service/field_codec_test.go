package service

import (
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

func newTestFieldCodec() *FieldCodec {
	return NewFieldCodec(slog.Default())
}

func TestFieldCodec_EncryptDecryptRoundTrip(t *testing.T) {
	codec := newTestFieldCodec()
	orgKey := testKey(t)

	values := []string{
		"123-45-6789",
		"A1234567",
		"short",
		"a much longer field value that spans more than one AES block easily",
		"unicode: héllo ✓",
	}

	for _, value := range values {
		encrypted, err := codec.EncryptField(value, orgKey)
		require.NoError(t, err)
		assert.NotEqual(t, value, encrypted)

		decrypted, err := codec.DecryptField(encrypted, orgKey)
		require.NoError(t, err)
		assert.Equal(t, value, decrypted)
	}
}

func TestFieldCodec_EncryptField_EmptyPassthrough(t *testing.T) {
	codec := newTestFieldCodec()

	encrypted, err := codec.EncryptField("", testKey(t))
	require.NoError(t, err)
	assert.Equal(t, "", encrypted)
}

func TestFieldCodec_WireFormat(t *testing.T) {
	// base64(nonce ‖ tag ‖ ciphertext): a compatibility contract with data
	// already at rest, not an implementation detail.
	codec := newTestFieldCodec()
	orgKey := testKey(t)

	encrypted, err := codec.EncryptField("value", orgKey)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)
	assert.Len(t, raw, cryptoDomain.NonceSize+cryptoDomain.TagSize+len("value"))
}

func TestFieldCodec_EncryptField_Nondeterministic(t *testing.T) {
	codec := newTestFieldCodec()
	orgKey := testKey(t)

	a, err := codec.EncryptField("same value", orgKey)
	require.NoError(t, err)
	b, err := codec.EncryptField("same value", orgKey)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFieldCodec_DecryptField_Strict(t *testing.T) {
	codec := newTestFieldCodec()
	orgKey := testKey(t)

	encrypted, err := codec.EncryptField("value", orgKey)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := codec.DecryptField(encrypted, testKey(t))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := codec.DecryptField("plaintext legacy value", orgKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("too short", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString(make([]byte, 10))
		_, err := codec.DecryptField(short, orgKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("tampered", func(t *testing.T) {
		raw, err := base64.StdEncoding.DecodeString(encrypted)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0x01

		_, err = codec.DecryptField(base64.StdEncoding.EncodeToString(raw), orgKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})
}

func TestFieldCodec_DecryptFieldWithLegacyFallback(t *testing.T) {
	codec := newTestFieldCodec()
	orgKey := testKey(t)

	t.Run("valid ciphertext decrypts", func(t *testing.T) {
		encrypted, err := codec.EncryptField("123-45-6789", orgKey)
		require.NoError(t, err)

		assert.Equal(t, "123-45-6789", codec.DecryptFieldWithLegacyFallback(encrypted, orgKey))
	})

	t.Run("legacy plaintext returned unchanged", func(t *testing.T) {
		for _, legacy := range []string{
			"plain text value",
			"123-45-6789",
			"not-base64!!!",
			"",
		} {
			assert.Equal(t, legacy, codec.DecryptFieldWithLegacyFallback(legacy, orgKey))
		}
	})

	t.Run("wrong key returns input unchanged", func(t *testing.T) {
		encrypted, err := codec.EncryptField("value", orgKey)
		require.NoError(t, err)

		assert.Equal(t, encrypted, codec.DecryptFieldWithLegacyFallback(encrypted, testKey(t)))
	})
}
