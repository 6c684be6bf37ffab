package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	"github.com/familyvault/vault/internal/config"
)

// KMSService resolves the long-term master secret, optionally through a
// cloud KMS keeper.
//
// When ENCRYPTED_MASTER_SECRET and KMS_KEY_URI are configured, the secret is
// stored encrypted and decrypted once at startup; the derived master key
// itself is always computed locally via HKDF. Supported key URIs:
// awskms://, gcpkms://, hashivault://, base64key:// (local/dev).
type KMSService interface {
	// ResolveMasterSecret returns the plaintext master secret per configuration.
	ResolveMasterSecret(ctx context.Context, cfg *config.Config) (string, error)
}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// ResolveMasterSecret decrypts the configured encrypted master secret through
// the KMS keeper, or falls back to the plaintext MASTER_SECRET value.
func (k *kmsService) ResolveMasterSecret(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.EncryptedMasterSecret == "" {
		return cfg.MasterSecret, nil
	}

	if cfg.KMSKeyURI == "" {
		return "", fmt.Errorf("ENCRYPTED_MASTER_SECRET is set but KMS_KEY_URI is empty")
	}

	keeper, err := secrets.OpenKeeper(ctx, cfg.KMSKeyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer keeper.Close()

	ciphertext, err := base64.StdEncoding.DecodeString(cfg.EncryptedMasterSecret)
	if err != nil {
		return "", fmt.Errorf("invalid ENCRYPTED_MASTER_SECRET base64: %w", err)
	}

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt master secret: %w", err)
	}

	return string(plaintext), nil
}
