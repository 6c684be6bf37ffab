package app

import (
	"context"
	"fmt"

	filesHTTP "github.com/familyvault/vault/internal/files/http"
	filesRepository "github.com/familyvault/vault/internal/files/repository"
	filesStorage "github.com/familyvault/vault/internal/files/storage"
	filesUsecase "github.com/familyvault/vault/internal/files/usecase"
)

// AttachmentRepository returns the file attachment repository instance.
func (c *Container) AttachmentRepository() (filesUsecase.AttachmentRepository, error) {
	c.attachmentRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["attachmentRepo"] = fmt.Errorf("failed to get database for attachment repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.attachmentRepo = filesRepository.NewMySQLAttachmentRepository(db)
		case "postgres":
			c.attachmentRepo = filesRepository.NewPostgreSQLAttachmentRepository(db)
		default:
			c.initErrors["attachmentRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["attachmentRepo"]; exists {
		return nil, storedErr
	}
	return c.attachmentRepo, nil
}

// BlobStorage returns the encrypted file blob storage instance.
func (c *Container) BlobStorage(ctx context.Context) (*filesStorage.BlobStorage, error) {
	c.blobStorageInit.Do(func() {
		storage, err := filesStorage.NewBlobStorage(ctx, c.config.BlobBucketURL)
		if err != nil {
			c.initErrors["blobStorage"] = fmt.Errorf("failed to open blob storage: %w", err)
			return
		}
		c.blobStorage = storage
	})
	if storedErr, exists := c.initErrors["blobStorage"]; exists {
		return nil, storedErr
	}
	return c.blobStorage, nil
}

// FileUseCase returns the file use case instance wrapped with metrics.
func (c *Container) FileUseCase(ctx context.Context) (filesUsecase.FileUseCase, error) {
	c.fileUseCaseInit.Do(func() {
		attachmentRepo, err := c.AttachmentRepository()
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get attachment repository for file use case: %w", err)
			return
		}

		blobStorage, err := c.BlobStorage(ctx)
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get blob storage for file use case: %w", err)
			return
		}

		itemRepo, err := c.ItemRepository()
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get item repository for file use case: %w", err)
			return
		}

		orgUseCase, err := c.OrgUseCase(ctx)
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get org use case for file use case: %w", err)
			return
		}

		membershipRepo, err := c.MembershipRepository()
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get membership repository for file use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get business metrics for file use case: %w", err)
			return
		}

		useCase := filesUsecase.NewFileUseCase(
			attachmentRepo,
			blobStorage,
			itemRepo,
			orgUseCase,
			membershipRepo,
			c.FileCodec(),
			c.config.MaxFileSize,
			c.Logger(),
		)
		c.fileUseCase = filesUsecase.NewFileUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["fileUseCase"]; exists {
		return nil, storedErr
	}
	return c.fileUseCase, nil
}

// FileHandler returns the file HTTP handler instance.
func (c *Container) FileHandler(ctx context.Context) (*filesHTTP.FileHandler, error) {
	c.fileHandlerInit.Do(func() {
		fileUseCase, err := c.FileUseCase(ctx)
		if err != nil {
			c.initErrors["fileHandler"] = fmt.Errorf("failed to get file use case for file handler: %w", err)
			return
		}
		c.fileHandler = filesHTTP.NewFileHandler(fileUseCase, c.config.MaxFileSize, c.Logger())
	})
	if storedErr, exists := c.initErrors["fileHandler"]; exists {
		return nil, storedErr
	}
	return c.fileHandler, nil
}
