// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/familyvault/vault/internal/config"
	cryptoDomain "github.com/familyvault/vault/internal/crypto/domain"
	cryptoService "github.com/familyvault/vault/internal/crypto/service"
	"github.com/familyvault/vault/internal/database"
	filesHTTP "github.com/familyvault/vault/internal/files/http"
	filesStorage "github.com/familyvault/vault/internal/files/storage"
	filesUsecase "github.com/familyvault/vault/internal/files/usecase"
	"github.com/familyvault/vault/internal/http"
	itemsHTTP "github.com/familyvault/vault/internal/items/http"
	itemsService "github.com/familyvault/vault/internal/items/service"
	itemsUsecase "github.com/familyvault/vault/internal/items/usecase"
	"github.com/familyvault/vault/internal/metrics"
	orgsHTTP "github.com/familyvault/vault/internal/orgs/http"
	orgsUsecase "github.com/familyvault/vault/internal/orgs/usecase"
	usersHTTP "github.com/familyvault/vault/internal/users/http"
	usersService "github.com/familyvault/vault/internal/users/service"
	usersUsecase "github.com/familyvault/vault/internal/users/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	blobStorage     *filesStorage.BlobStorage

	// Managers
	txManager database.TxManager

	// Crypto services
	masterKey     *cryptoDomain.MasterKey
	orgKeyService *cryptoService.OrgKeyService
	fieldCodec    *cryptoService.FieldCodec
	fileCodec     *cryptoService.FileCodec

	// Repositories
	userRepo       usersUsecase.UserRepository
	sessionRepo    usersUsecase.SessionRepository
	orgRepo        orgsUsecase.OrgRepository
	membershipRepo orgsUsecase.MembershipRepository
	memberKeyRepo  orgsUsecase.MemberKeyRepository
	itemRepo       itemsUsecase.ItemRepository
	attachmentRepo filesUsecase.AttachmentRepository

	// Services
	credentialService usersService.CredentialService
	categoryRegistry  *itemsService.Registry

	// Use Cases
	userUseCase           usersUsecase.UserUseCase
	orgUseCase            orgsUsecase.OrgUseCase
	itemUseCase           itemsUsecase.ItemUseCase
	fieldMigrationUseCase itemsUsecase.FieldMigrationUseCase
	fileUseCase           filesUsecase.FileUseCase

	// HTTP layer
	userHandler   *usersHTTP.UserHandler
	orgHandler    *orgsHTTP.OrgHandler
	itemHandler   *itemsHTTP.ItemHandler
	fileHandler   *filesHTTP.FileHandler
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                        sync.Mutex
	loggerInit                sync.Once
	dbInit                    sync.Once
	metricsProviderInit       sync.Once
	businessMetricsInit       sync.Once
	blobStorageInit           sync.Once
	txManagerInit             sync.Once
	masterKeyInit             sync.Once
	orgKeyServiceInit         sync.Once
	fieldCodecInit            sync.Once
	fileCodecInit             sync.Once
	userRepoInit              sync.Once
	sessionRepoInit           sync.Once
	orgRepoInit               sync.Once
	membershipRepoInit        sync.Once
	memberKeyRepoInit         sync.Once
	itemRepoInit              sync.Once
	attachmentRepoInit        sync.Once
	credentialServiceInit     sync.Once
	categoryRegistryInit      sync.Once
	userUseCaseInit           sync.Once
	orgUseCaseInit            sync.Once
	itemUseCaseInit           sync.Once
	fieldMigrationUseCaseInit sync.Once
	fileUseCaseInit           sync.Once
	userHandlerInit           sync.Once
	orgHandlerInit            sync.Once
	itemHandlerInit           sync.Once
	fileHandlerInit           sync.Once
	httpServerInit            sync.Once
	metricsServerInit         sync.Once
	initErrors                map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry/Prometheus metrics provider.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// Falls back to a no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = bm
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API HTTP server instance with all handlers wired.
// The context is used once, to resolve the master secret at startup.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server instance.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.blobStorage != nil {
		if err := c.blobStorage.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("blob storage close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.masterKey != nil {
		c.masterKey.Close()
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initHTTPServer creates the API server with all its route handlers.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	userHandler, err := c.UserHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}

	orgHandler, err := c.OrgHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get org handler for http server: %w", err)
	}

	itemHandler, err := c.ItemHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get item handler for http server: %w", err)
	}

	fileHandler, err := c.FileHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get file handler for http server: %w", err)
	}

	sessionMiddleware, err := c.SessionMiddleware(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get session middleware for http server: %w", err)
	}

	return http.NewServer(
		c.config,
		db,
		c.Logger(),
		userHandler,
		orgHandler,
		itemHandler,
		fileHandler,
		sessionMiddleware,
	), nil
}
