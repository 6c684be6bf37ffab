package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

func TestFileCodec_RoundTrip(t *testing.T) {
	codec := NewFileCodec()
	orgKey := testKey(t)

	for _, size := range []int{0, 1, 1024, 5 * 1024 * 1024} {
		data := make([]byte, size)
		_, err := rand.Read(data)
		require.NoError(t, err)

		ciphertext, nonce, tag, err := codec.EncryptFile(data, orgKey)
		require.NoError(t, err)
		assert.Len(t, ciphertext, size, "tag must be detached from ciphertext")
		assert.Len(t, nonce, cryptoDomain.NonceSize)
		assert.Len(t, tag, cryptoDomain.TagSize)

		decrypted, err := codec.DecryptFile(ciphertext, nonce, tag, orgKey)
		require.NoError(t, err)
		assert.Equal(t, data, decrypted)
	}
}

func TestFileCodec_DecryptFile_Failures(t *testing.T) {
	codec := NewFileCodec()
	orgKey := testKey(t)

	data := []byte("scanned passport page")
	ciphertext, nonce, tag, err := codec.EncryptFile(data, orgKey)
	require.NoError(t, err)

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := make([]byte, len(ciphertext))
		copy(tampered, ciphertext)
		tampered[0] ^= 0x01

		_, err := codec.DecryptFile(tampered, nonce, tag, orgKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("tampered tag", func(t *testing.T) {
		badTag := make([]byte, len(tag))
		copy(badTag, tag)
		badTag[0] ^= 0x01

		_, err := codec.DecryptFile(ciphertext, nonce, badTag, orgKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("truncated tag", func(t *testing.T) {
		_, err := codec.DecryptFile(ciphertext, nonce, tag[:8], orgKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := codec.DecryptFile(ciphertext, nonce, tag, testKey(t))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := codec.DecryptFile(ciphertext, nonce, tag, make([]byte, 16))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}
