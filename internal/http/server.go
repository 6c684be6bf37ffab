// Package http provides the API server: router setup, middleware and
// health endpoints.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/familyvault/vault/internal/config"
	filesHTTP "github.com/familyvault/vault/internal/files/http"
	itemsHTTP "github.com/familyvault/vault/internal/items/http"
	orgsHTTP "github.com/familyvault/vault/internal/orgs/http"
	usersHTTP "github.com/familyvault/vault/internal/users/http"
)

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	cfg    *config.Config
	db     *sql.DB

	userHandler       *usersHTTP.UserHandler
	orgHandler        *orgsHTTP.OrgHandler
	itemHandler       *itemsHTTP.ItemHandler
	fileHandler       *filesHTTP.FileHandler
	sessionMiddleware gin.HandlerFunc
}

// NewServer creates a new API server with all route handlers.
func NewServer(
	cfg *config.Config,
	db *sql.DB,
	logger *slog.Logger,
	userHandler *usersHTTP.UserHandler,
	orgHandler *orgsHTTP.OrgHandler,
	itemHandler *itemsHTTP.ItemHandler,
	fileHandler *filesHTTP.FileHandler,
	sessionMiddleware gin.HandlerFunc,
) *Server {
	return &Server{
		logger:            logger,
		cfg:               cfg,
		db:                db,
		userHandler:       userHandler,
		orgHandler:        orgHandler,
		itemHandler:       itemHandler,
		fileHandler:       fileHandler,
		sessionMiddleware: sessionMiddleware,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with middleware and all API routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(s.cfg.CORSEnabled, s.cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Public endpoints: account creation and the login ceremony.
	auth := v1.Group("/auth")
	auth.POST("/register", s.userHandler.RegisterHandler)
	auth.POST("/prelogin", s.userHandler.PreloginHandler)
	auth.POST("/login", s.userHandler.LoginHandler)

	// Everything else requires a session.
	authed := v1.Group("")
	authed.Use(s.sessionMiddleware)
	if s.cfg.RateLimitEnabled {
		authed.Use(RateLimitMiddleware(s.cfg.RateLimitRequestsPerSec, s.cfg.RateLimitBurst, s.logger))
	}

	authed.POST("/auth/logout", s.userHandler.LogoutHandler)
	authed.GET("/auth/me", s.userHandler.MeHandler)
	authed.POST("/auth/change-password", s.userHandler.ChangePasswordHandler)
	authed.GET("/users/:id/public-key", s.userHandler.GetPublicKeyHandler)

	orgs := authed.Group("/orgs")
	orgs.POST("", s.orgHandler.CreateHandler)
	orgs.GET("", s.orgHandler.ListHandler)
	orgs.GET("/:id", s.orgHandler.GetHandler)
	orgs.POST("/:id/members", s.orgHandler.InviteMemberHandler)
	orgs.PATCH("/:id/members/:user_id", s.orgHandler.UpdateMemberRoleHandler)
	orgs.DELETE("/:id/members/:user_id", s.orgHandler.RemoveMemberHandler)
	orgs.POST("/:id/keys", s.orgHandler.StoreMemberKeyHandler)
	orgs.GET("/:id/my-key", s.orgHandler.GetMyKeyHandler)
	orgs.GET("/:id/pending-keys", s.orgHandler.ListPendingKeysHandler)

	orgs.POST("/:id/items", s.itemHandler.CreateHandler)
	orgs.GET("/:id/items", s.itemHandler.ListHandler)
	orgs.GET("/:id/items/:item_id", s.itemHandler.GetHandler)
	orgs.PUT("/:id/items/:item_id", s.itemHandler.UpdateHandler)
	orgs.DELETE("/:id/items/:item_id", s.itemHandler.DeleteHandler)
	orgs.GET("/:id/items/:item_id/files", s.fileHandler.ListHandler)

	orgs.POST("/:id/files", s.fileHandler.UploadHandler)
	orgs.GET("/:id/files/:file_id", s.fileHandler.DownloadHandler)
	orgs.DELETE("/:id/files/:file_id", s.fileHandler.DeleteHandler)

	return router
}

// Start starts the API server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.SetupRouter()
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can do useful work.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
