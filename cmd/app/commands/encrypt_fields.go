package commands

import (
	"context"
	"fmt"
	"log/slog"

	itemsUsecase "github.com/familyvault/vault/internal/items/usecase"
)

// RunEncryptFields encrypts plaintext sensitive field values left over from
// before server-side encryption was enabled. Safe to re-run: values already
// in encrypted form are skipped, and per-field failures are logged without
// aborting the run.
//
// Requirements: Database must be migrated and MASTER_SECRET must be set.
func RunEncryptFields(
	ctx context.Context,
	migrationUseCase itemsUsecase.FieldMigrationUseCase,
	logger *slog.Logger,
) error {
	logger.Info("encrypting legacy plaintext fields")

	result, err := migrationUseCase.EncryptFields(ctx)
	if err != nil {
		return fmt.Errorf("failed to encrypt fields: %w", err)
	}

	logger.Info("field encryption completed",
		slog.Int("items_processed", result.ItemsProcessed),
		slog.Int("fields_encrypted", result.FieldsEncrypted),
		slog.Int("fields_skipped", result.FieldsSkipped),
	)

	return nil
}
