package app

import (
	"context"
	"fmt"

	itemsHTTP "github.com/familyvault/vault/internal/items/http"
	itemsRepository "github.com/familyvault/vault/internal/items/repository"
	itemsService "github.com/familyvault/vault/internal/items/service"
	itemsUsecase "github.com/familyvault/vault/internal/items/usecase"
)

// ItemRepository returns the item repository instance.
func (c *Container) ItemRepository() (itemsUsecase.ItemRepository, error) {
	c.itemRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["itemRepo"] = fmt.Errorf("failed to get database for item repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.itemRepo = itemsRepository.NewMySQLItemRepository(db)
		case "postgres":
			c.itemRepo = itemsRepository.NewPostgreSQLItemRepository(db)
		default:
			c.initErrors["itemRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["itemRepo"]; exists {
		return nil, storedErr
	}
	return c.itemRepo, nil
}

// CategoryRegistry returns the document category registry.
func (c *Container) CategoryRegistry() *itemsService.Registry {
	c.categoryRegistryInit.Do(func() {
		c.categoryRegistry = itemsService.NewRegistry()
	})
	return c.categoryRegistry
}

// ItemUseCase returns the item use case instance wrapped with metrics.
func (c *Container) ItemUseCase(ctx context.Context) (itemsUsecase.ItemUseCase, error) {
	c.itemUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["itemUseCase"] = fmt.Errorf("failed to get tx manager for item use case: %w", err)
			return
		}

		itemRepo, err := c.ItemRepository()
		if err != nil {
			c.initErrors["itemUseCase"] = fmt.Errorf("failed to get item repository for item use case: %w", err)
			return
		}

		orgUseCase, err := c.OrgUseCase(ctx)
		if err != nil {
			c.initErrors["itemUseCase"] = fmt.Errorf("failed to get org use case for item use case: %w", err)
			return
		}

		membershipRepo, err := c.MembershipRepository()
		if err != nil {
			c.initErrors["itemUseCase"] = fmt.Errorf("failed to get membership repository for item use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["itemUseCase"] = fmt.Errorf("failed to get business metrics for item use case: %w", err)
			return
		}

		useCase := itemsUsecase.NewItemUseCase(
			txManager,
			itemRepo,
			c.CategoryRegistry(),
			orgUseCase,
			membershipRepo,
			c.FieldCodec(),
		)
		c.itemUseCase = itemsUsecase.NewItemUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["itemUseCase"]; exists {
		return nil, storedErr
	}
	return c.itemUseCase, nil
}

// FieldMigrationUseCase returns the field encryption migration use case.
func (c *Container) FieldMigrationUseCase(ctx context.Context) (itemsUsecase.FieldMigrationUseCase, error) {
	c.fieldMigrationUseCaseInit.Do(func() {
		itemRepo, err := c.ItemRepository()
		if err != nil {
			c.initErrors["fieldMigrationUseCase"] = fmt.Errorf("failed to get item repository for field migration use case: %w", err)
			return
		}

		orgUseCase, err := c.OrgUseCase(ctx)
		if err != nil {
			c.initErrors["fieldMigrationUseCase"] = fmt.Errorf("failed to get org use case for field migration use case: %w", err)
			return
		}

		c.fieldMigrationUseCase = itemsUsecase.NewFieldMigrationUseCase(
			itemRepo,
			c.CategoryRegistry(),
			orgUseCase,
			c.FieldCodec(),
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["fieldMigrationUseCase"]; exists {
		return nil, storedErr
	}
	return c.fieldMigrationUseCase, nil
}

// ItemHandler returns the item HTTP handler instance.
func (c *Container) ItemHandler(ctx context.Context) (*itemsHTTP.ItemHandler, error) {
	c.itemHandlerInit.Do(func() {
		itemUseCase, err := c.ItemUseCase(ctx)
		if err != nil {
			c.initErrors["itemHandler"] = fmt.Errorf("failed to get item use case for item handler: %w", err)
			return
		}
		c.itemHandler = itemsHTTP.NewItemHandler(itemUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["itemHandler"]; exists {
		return nil, storedErr
	}
	return c.itemHandler, nil
}
