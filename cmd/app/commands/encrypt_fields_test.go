package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	itemsUsecase "github.com/familyvault/vault/internal/items/usecase"
)

type fakeFieldMigrationUseCase struct {
	result itemsUsecase.FieldMigrationResult
	err    error
	calls  int
}

func (f *fakeFieldMigrationUseCase) EncryptFields(ctx context.Context) (*itemsUsecase.FieldMigrationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &f.result, nil
}

func TestRunEncryptFields(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("success", func(t *testing.T) {
		fake := &fakeFieldMigrationUseCase{
			result: itemsUsecase.FieldMigrationResult{
				ItemsProcessed:  3,
				FieldsEncrypted: 5,
				FieldsSkipped:   2,
			},
		}

		err := RunEncryptFields(ctx, fake, logger)
		require.NoError(t, err)
		require.Equal(t, 1, fake.calls)
	})

	t.Run("migration-error", func(t *testing.T) {
		fake := &fakeFieldMigrationUseCase{err: errors.New("boom")}

		err := RunEncryptFields(ctx, fake, logger)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to encrypt fields")
	})
}
