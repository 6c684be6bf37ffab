package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	cryptoService "github.com/familyvault/vault/internal/crypto/service"
)

// MasterKey returns the derived master encryption key.
// The long-term secret is resolved through the KMS service on first access
// and the key is derived locally via HKDF.
func (c *Container) MasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	c.masterKeyInit.Do(func() {
		if c.config.HasDefaultMasterSecret() {
			c.Logger().Warn("running with the default master secret, set MASTER_SECRET before storing real data")
		}

		kms := cryptoService.NewKMSService()
		secret, err := kms.ResolveMasterSecret(ctx, c.config)
		if err != nil {
			c.initErrors["masterKey"] = fmt.Errorf("failed to resolve master secret: %w", err)
			return
		}

		c.masterKey = cryptoService.DeriveMasterKey(secret)
	})
	if storedErr, exists := c.initErrors["masterKey"]; exists {
		return nil, storedErr
	}
	return c.masterKey, nil
}

// OrgKeyService returns the organization key wrap/unwrap service.
func (c *Container) OrgKeyService(ctx context.Context) (*cryptoService.OrgKeyService, error) {
	c.orgKeyServiceInit.Do(func() {
		masterKey, err := c.MasterKey(ctx)
		if err != nil {
			c.initErrors["orgKeyService"] = fmt.Errorf("failed to get master key for org key service: %w", err)
			return
		}
		c.orgKeyService = cryptoService.NewOrgKeyService(masterKey)
	})
	if storedErr, exists := c.initErrors["orgKeyService"]; exists {
		return nil, storedErr
	}
	return c.orgKeyService, nil
}

// FieldCodec returns the field-level encryption codec.
func (c *Container) FieldCodec() *cryptoService.FieldCodec {
	c.fieldCodecInit.Do(func() {
		c.fieldCodec = cryptoService.NewFieldCodec(c.Logger())
	})
	return c.fieldCodec
}

// FileCodec returns the file-level encryption codec.
func (c *Container) FileCodec() *cryptoService.FileCodec {
	c.fileCodecInit.Do(func() {
		c.fileCodec = cryptoService.NewFileCodec()
	})
	return c.fileCodec
}
