package service

import (
	"encoding/base64"
	"log/slog"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

// FieldCodec encrypts and decrypts individual field values (text).
//
// Wire format: base64(nonce(12) ‖ tag(16) ‖ ciphertext). Note the tag sits
// between the nonce and the ciphertext — the opposite of Go's usual
// Seal-appends-tag layout — because that is the format already stored in
// every encrypted field value.
type FieldCodec struct {
	logger *slog.Logger
}

// NewFieldCodec creates a FieldCodec. The logger is used only by the legacy
// fallback path to flag decryption failures; pass nil to silence it.
func NewFieldCodec(logger *slog.Logger) *FieldCodec {
	return &FieldCodec{logger: logger}
}

// EncryptField encrypts a field value with the organization key and returns
// the base64 wire form. Empty values pass through unchanged.
func (c *FieldCodec) EncryptField(value string, orgKey []byte) (string, error) {
	if value == "" {
		return value, nil
	}

	cipher, err := NewAESGCM(orgKey)
	if err != nil {
		return "", err
	}

	ciphertextWithTag, nonce, err := cipher.Encrypt([]byte(value), nil)
	if err != nil {
		return "", err
	}

	// Rearrange Seal's ct‖tag into the stored nonce‖tag‖ct layout.
	tagStart := len(ciphertextWithTag) - cryptoDomain.TagSize
	ciphertext := ciphertextWithTag[:tagStart]
	tag := ciphertextWithTag[tagStart:]

	combined := make([]byte, 0, cryptoDomain.NonceSize+cryptoDomain.TagSize+len(ciphertext))
	combined = append(combined, nonce...)
	combined = append(combined, tag...)
	combined = append(combined, ciphertext...)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// DecryptField decrypts a field value. This is the strict variant: any
// failure (bad base64, short input, tag mismatch) returns
// ErrAuthenticationFailed. New code paths should prefer this.
func (c *FieldCodec) DecryptField(value string, orgKey []byte) (string, error) {
	if value == "" {
		return value, nil
	}

	combined, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", cryptoDomain.ErrAuthenticationFailed
	}
	if len(combined) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return "", cryptoDomain.ErrAuthenticationFailed
	}

	nonce := combined[:cryptoDomain.NonceSize]
	tag := combined[cryptoDomain.NonceSize : cryptoDomain.NonceSize+cryptoDomain.TagSize]
	ciphertext := combined[cryptoDomain.NonceSize+cryptoDomain.TagSize:]

	cipher, err := NewAESGCM(orgKey)
	if err != nil {
		return "", err
	}

	plaintext, err := cipher.Decrypt(append(ciphertext, tag...), nonce, nil)
	if err != nil {
		return "", cryptoDomain.ErrAuthenticationFailed
	}

	return string(plaintext), nil
}

// DecryptFieldWithLegacyFallback decrypts a field value, returning the input
// unchanged when decryption fails.
//
// Field values written before encryption was introduced are stored as plain
// text; the read path cannot tell them apart from ciphertext without trying
// to decrypt. The fallback keeps those values readable, at the cost that a
// corrupted ciphertext — or one decrypted with the wrong organization's key —
// is indistinguishable from legitimate legacy plaintext. A warning is logged
// so tampering at least shows up in logs, which the stored data format alone
// cannot surface.
func (c *FieldCodec) DecryptFieldWithLegacyFallback(value string, orgKey []byte) string {
	if value == "" {
		return value
	}

	plaintext, err := c.DecryptField(value, orgKey)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("field decrypt failed, returning stored value as-is",
				slog.Int("value_len", len(value)),
				slog.Any("error", err),
			)
		}
		return value
	}

	return plaintext
}
