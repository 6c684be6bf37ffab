package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewAESGCM(t *testing.T) {
	t.Run("valid 32-byte key", func(t *testing.T) {
		cipher, err := NewAESGCM(testKey(t))
		require.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key sizes", func(t *testing.T) {
		for _, size := range []int{0, 16, 24, 31, 33, 64} {
			_, err := NewAESGCM(make([]byte, size))
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize, "size %d", size)
		}
	})
}

func TestAESGCMCipher_RoundTrip(t *testing.T) {
	key := testKey(t)
	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	payloads := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("123-45-6789"),
		[]byte("some longer payload with unicode: héllo wörld ✓"),
		make([]byte, 1024*1024),
	}

	for _, plaintext := range payloads {
		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)
		assert.Len(t, nonce, cryptoDomain.NonceSize)
		assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestAESGCMCipher_NonceUniqueness(t *testing.T) {
	// Nonce reuse under one key is the catastrophic GCM failure mode; draw
	// many nonces and verify they are pairwise distinct.
	cipher, err := NewAESGCM(testKey(t))
	require.NoError(t, err)

	const n = 10000
	seen := make(map[string]struct{}, n)
	plaintext := []byte("payload")

	for i := 0; i < n; i++ {
		_, nonce, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		_, dup := seen[string(nonce)]
		require.False(t, dup, "nonce repeated after %d encryptions", i)
		seen[string(nonce)] = struct{}{}
	}
}

func TestAESGCMCipher_Decrypt_TamperDetection(t *testing.T) {
	cipher, err := NewAESGCM(testKey(t))
	require.NoError(t, err)

	ciphertext, nonce, err := cipher.Encrypt([]byte("sensitive document"), nil)
	require.NoError(t, err)

	t.Run("flipping any single bit fails authentication", func(t *testing.T) {
		for i := range ciphertext {
			tampered := make([]byte, len(ciphertext))
			copy(tampered, ciphertext)
			tampered[i] ^= 0x01

			plaintext, err := cipher.Decrypt(tampered, nonce, nil)
			assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed, "byte %d", i)
			assert.Nil(t, plaintext)
		}
	})

	t.Run("wrong nonce fails", func(t *testing.T) {
		wrongNonce := make([]byte, cryptoDomain.NonceSize)
		_, err := cipher.Decrypt(ciphertext, wrongNonce, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("truncated nonce fails", func(t *testing.T) {
		_, err := cipher.Decrypt(ciphertext, nonce[:8], nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		otherCipher, err := NewAESGCM(testKey(t))
		require.NoError(t, err)

		_, err = otherCipher.Decrypt(ciphertext, nonce, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})
}

func TestAESGCMCipher_AAD(t *testing.T) {
	cipher, err := NewAESGCM(testKey(t))
	require.NoError(t, err)

	aad := []byte("record-123")
	ciphertext, nonce, err := cipher.Encrypt([]byte("value"), aad)
	require.NoError(t, err)

	t.Run("matching AAD decrypts", func(t *testing.T) {
		plaintext, err := cipher.Decrypt(ciphertext, nonce, aad)
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), plaintext)
	})

	t.Run("mismatched AAD fails", func(t *testing.T) {
		_, err := cipher.Decrypt(ciphertext, nonce, []byte("record-456"))
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})
}
