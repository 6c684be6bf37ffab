package commands

import (
	"context"
	"fmt"
	"log/slog"

	orgsUsecase "github.com/familyvault/vault/internal/orgs/usecase"
)

// RunCreateOrg creates a new organization owned by an existing user.
// A fresh content key is generated and wrapped under the server master key;
// the owner completes the member key ceremony from a client later.
//
// Requirements: Database must be migrated, MASTER_SECRET must be set and the
// owner account must already exist.
func RunCreateOrg(
	ctx context.Context,
	orgUseCase orgsUsecase.OrgUseCase,
	userDirectory orgsUsecase.UserDirectory,
	logger *slog.Logger,
	ownerEmail string,
	name string,
) error {
	if ownerEmail == "" {
		return fmt.Errorf("owner email is required")
	}
	if name == "" {
		return fmt.Errorf("organization name is required")
	}

	logger.Info("creating organization",
		slog.String("name", name),
		slog.String("owner_email", ownerEmail),
	)

	ownerID, err := userDirectory.GetIDByEmail(ctx, ownerEmail)
	if err != nil {
		return fmt.Errorf("failed to resolve owner: %w", err)
	}

	org, err := orgUseCase.Create(ctx, name, ownerID, "")
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	logger.Info("organization created successfully",
		slog.String("org_id", org.ID.String()),
		slog.String("name", org.Name),
	)

	return nil
}
