package service

import (
	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
)

// FileCodec encrypts and decrypts file bodies (binary).
//
// Unlike field values, files keep the nonce and tag detached from the
// ciphertext: the metadata row stores them base64-encoded while the blob
// store holds ciphertext‖tag. Large payloads stream without base64 inflation
// this way. File decryption fails loudly on authentication failure — there
// is no legacy-plaintext fallback for files.
type FileCodec struct{}

// NewFileCodec creates a FileCodec.
func NewFileCodec() *FileCodec {
	return &FileCodec{}
}

// EncryptFile encrypts file data with the organization key.
//
// Returns the ciphertext without the tag, the nonce, and the 16-byte tag
// separately. Callers persist the blob as ciphertext‖tag and the nonce/tag
// in record metadata.
func (c *FileCodec) EncryptFile(data, orgKey []byte) (ciphertext, nonce, tag []byte, err error) {
	cipher, err := NewAESGCM(orgKey)
	if err != nil {
		return nil, nil, nil, err
	}

	ciphertextWithTag, nonce, err := cipher.Encrypt(data, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	tagStart := len(ciphertextWithTag) - cryptoDomain.TagSize
	return ciphertextWithTag[:tagStart], nonce, ciphertextWithTag[tagStart:], nil
}

// DecryptFile decrypts file data, verifying the detached tag.
// Returns ErrAuthenticationFailed if any bit of ciphertext or tag was altered.
func (c *FileCodec) DecryptFile(ciphertext, nonce, tag, orgKey []byte) ([]byte, error) {
	if len(tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	cipher, err := NewAESGCM(orgKey)
	if err != nil {
		return nil, err
	}

	combined := make([]byte, 0, len(ciphertext)+len(tag))
	combined = append(combined, ciphertext...)
	combined = append(combined, tag...)

	return cipher.Decrypt(combined, nonce, nil)
}
