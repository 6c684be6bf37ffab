package app

import (
	"context"
	"fmt"

	orgsHTTP "github.com/familyvault/vault/internal/orgs/http"
	orgsRepository "github.com/familyvault/vault/internal/orgs/repository"
	orgsUsecase "github.com/familyvault/vault/internal/orgs/usecase"
)

// OrgRepository returns the organization repository instance.
func (c *Container) OrgRepository() (orgsUsecase.OrgRepository, error) {
	c.orgRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["orgRepo"] = fmt.Errorf("failed to get database for org repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.orgRepo = orgsRepository.NewMySQLOrgRepository(db)
		case "postgres":
			c.orgRepo = orgsRepository.NewPostgreSQLOrgRepository(db)
		default:
			c.initErrors["orgRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["orgRepo"]; exists {
		return nil, storedErr
	}
	return c.orgRepo, nil
}

// MembershipRepository returns the membership repository instance.
func (c *Container) MembershipRepository() (orgsUsecase.MembershipRepository, error) {
	c.membershipRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["membershipRepo"] = fmt.Errorf("failed to get database for membership repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.membershipRepo = orgsRepository.NewMySQLMembershipRepository(db)
		case "postgres":
			c.membershipRepo = orgsRepository.NewPostgreSQLMembershipRepository(db)
		default:
			c.initErrors["membershipRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["membershipRepo"]; exists {
		return nil, storedErr
	}
	return c.membershipRepo, nil
}

// MemberKeyRepository returns the member key repository instance.
func (c *Container) MemberKeyRepository() (orgsUsecase.MemberKeyRepository, error) {
	c.memberKeyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["memberKeyRepo"] = fmt.Errorf("failed to get database for member key repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.memberKeyRepo = orgsRepository.NewMySQLMemberKeyRepository(db)
		case "postgres":
			c.memberKeyRepo = orgsRepository.NewPostgreSQLMemberKeyRepository(db)
		default:
			c.initErrors["memberKeyRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["memberKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.memberKeyRepo, nil
}

// OrgUseCase returns the organization use case instance wrapped with metrics.
func (c *Container) OrgUseCase(ctx context.Context) (orgsUsecase.OrgUseCase, error) {
	c.orgUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get tx manager for org use case: %w", err)
			return
		}

		orgRepo, err := c.OrgRepository()
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get org repository for org use case: %w", err)
			return
		}

		membershipRepo, err := c.MembershipRepository()
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get membership repository for org use case: %w", err)
			return
		}

		memberKeyRepo, err := c.MemberKeyRepository()
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get member key repository for org use case: %w", err)
			return
		}

		// The user repository doubles as the directory for invite lookups.
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get user repository for org use case: %w", err)
			return
		}

		orgKeyService, err := c.OrgKeyService(ctx)
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get org key service for org use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get business metrics for org use case: %w", err)
			return
		}

		useCase := orgsUsecase.NewOrgUseCase(
			txManager,
			orgRepo,
			membershipRepo,
			memberKeyRepo,
			userRepo,
			orgKeyService,
		)
		c.orgUseCase = orgsUsecase.NewOrgUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["orgUseCase"]; exists {
		return nil, storedErr
	}
	return c.orgUseCase, nil
}

// OrgHandler returns the organization HTTP handler instance.
func (c *Container) OrgHandler(ctx context.Context) (*orgsHTTP.OrgHandler, error) {
	c.orgHandlerInit.Do(func() {
		orgUseCase, err := c.OrgUseCase(ctx)
		if err != nil {
			c.initErrors["orgHandler"] = fmt.Errorf("failed to get org use case for org handler: %w", err)
			return
		}
		c.orgHandler = orgsHTTP.NewOrgHandler(orgUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["orgHandler"]; exists {
		return nil, storedErr
	}
	return c.orgHandler, nil
}
