package app

import (
	"context"
	"fmt"

	"github.com/upb/postboard/config"
	"github.com/upb/postboard/handlers"
	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/middleware"
	"github.com/upb/postboard/repositories"
	"github.com/upb/postboard/repositories/postgres"
	"github.com/upb/postboard/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	Posts     repositories.PostRepository
	TxManager repositories.TransactionManager

	// Auth
	Permissions    *auth.PermissionTable
	Tokens         *auth.TokenManager
	AuthMiddleware *middleware.AuthMiddleware

	// Services
	AuthService *services.AuthService
	PostService *services.PostService
	UserService *services.UserService

	// Handlers
	AuthHandler   *handlers.AuthHandler
	PostHandler   *handlers.PostHandler
	AdminHandler  *handlers.AdminHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	// Initialize PostgreSQL
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := factory.InitSchema(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromFactory(cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesFromFactory wires everything above an already connected repository factory
func NewDependenciesFromFactory(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.initServices()
	deps.initHandlers()

	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Posts = repos.Posts
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initAuth builds the permission table and token manager
func (d *Dependencies) initAuth(cfg *config.Config) error {
	if cfg.Auth.PolicyFile != "" {
		table, err := auth.LoadPermissionTable(cfg.Auth.PolicyFile)
		if err != nil {
			return err
		}
		d.Permissions = table
		d.Logger.Info("permission table loaded",
			zap.String("file", cfg.Auth.PolicyFile),
			zap.Int("roles", len(table.Roles())))
	} else {
		d.Permissions = auth.DefaultPermissionTable()
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}
	d.Tokens = tokens

	return nil
}

// initServices creates the services and the authorization middleware
func (d *Dependencies) initServices() {
	hasher := auth.NewPasswordHasher(d.Config.Auth.BcryptCost)

	d.AuthService = services.NewAuthService(d.Users, hasher, d.Tokens, d.Logger)
	d.PostService = services.NewPostService(d.Posts, d.Logger)
	d.UserService = services.NewUserService(d.Users, d.TxManager, d.Permissions, d.Logger)

	var opts []middleware.Option
	if d.Config.Auth.ResolveRole {
		opts = append(opts, middleware.WithRoleResolver(d.UserService))
		d.Logger.Info("per-request role resolution enabled")
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.Permissions, d.Logger, opts...)
}

// initHandlers creates the HTTP handlers
func (d *Dependencies) initHandlers() {
	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, d.Logger)
	d.PostHandler = handlers.NewPostHandler(d.PostService, d.Logger)
	d.AdminHandler = handlers.NewAdminHandler(d.UserService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
