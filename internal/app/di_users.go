package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	usersHTTP "github.com/familyvault/vault/internal/users/http"
	usersRepository "github.com/familyvault/vault/internal/users/repository"
	usersService "github.com/familyvault/vault/internal/users/service"
	usersUsecase "github.com/familyvault/vault/internal/users/usecase"
)

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (usersUsecase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.userRepo = usersRepository.NewMySQLUserRepository(db)
		case "postgres":
			c.userRepo = usersRepository.NewPostgreSQLUserRepository(db)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// SessionRepository returns the session repository instance.
func (c *Container) SessionRepository() (usersUsecase.SessionRepository, error) {
	c.sessionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["sessionRepo"] = fmt.Errorf("failed to get database for session repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.sessionRepo = usersRepository.NewMySQLSessionRepository(db)
		case "postgres":
			c.sessionRepo = usersRepository.NewPostgreSQLSessionRepository(db)
		default:
			c.initErrors["sessionRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["sessionRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionRepo, nil
}

// CredentialService returns the password hashing and token service.
func (c *Container) CredentialService() usersService.CredentialService {
	c.credentialServiceInit.Do(func() {
		c.credentialService = usersService.NewCredentialService()
	})
	return c.credentialService
}

// UserUseCase returns the user use case instance. The context is used once,
// through the orgs use case, to resolve the master secret at startup.
func (c *Container) UserUseCase(ctx context.Context) (usersUsecase.UserUseCase, error) {
	c.userUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get tx manager for user use case: %w", err)
			return
		}

		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get user repository for user use case: %w", err)
			return
		}

		sessionRepo, err := c.SessionRepository()
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get session repository for user use case: %w", err)
			return
		}

		// The orgs use case doubles as the login-time org key source.
		orgUseCase, err := c.OrgUseCase(ctx)
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get org use case for user use case: %w", err)
			return
		}

		c.userUseCase = usersUsecase.NewUserUseCase(
			txManager,
			userRepo,
			sessionRepo,
			c.CredentialService(),
			orgUseCase,
			c.config.SessionExpiry,
		)
	})
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// UserHandler returns the user HTTP handler instance.
func (c *Container) UserHandler(ctx context.Context) (*usersHTTP.UserHandler, error) {
	c.userHandlerInit.Do(func() {
		userUseCase, err := c.UserUseCase(ctx)
		if err != nil {
			c.initErrors["userHandler"] = fmt.Errorf("failed to get user use case for user handler: %w", err)
			return
		}
		c.userHandler = usersHTTP.NewUserHandler(userUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["userHandler"]; exists {
		return nil, storedErr
	}
	return c.userHandler, nil
}

// SessionMiddleware returns the session authentication middleware.
func (c *Container) SessionMiddleware(ctx context.Context) (gin.HandlerFunc, error) {
	userUseCase, err := c.UserUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for session middleware: %w", err)
	}
	return usersHTTP.SessionMiddleware(userUseCase, c.Logger()), nil
}
