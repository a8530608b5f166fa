package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentpress/control-plane/auth"
	"github.com/agentpress/control-plane/config"
	"github.com/agentpress/control-plane/middleware"
	"github.com/agentpress/control-plane/repositories"
	"github.com/agentpress/control-plane/repositories/postgres"
	"github.com/agentpress/control-plane/services/audit"
	"github.com/agentpress/control-plane/services/decision"
	"github.com/agentpress/control-plane/services/quota"
	"github.com/agentpress/control-plane/services/ratelimit"
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
	RoleTemplates repositories.RoleTemplateRepository
	Agents        repositories.AgentRepository
	Sites         repositories.SiteRepository
	AuditLogs     repositories.AuditRepository
	TxManager     repositories.TransactionManager

	// Services
	QuotaTracker *quota.Tracker
	RateLimiter  *ratelimit.Limiter
	AuditService *audit.AuditService
	Engine       *decision.Engine

	// Auth
	TokenService   *auth.TokenService
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize the decision engine and its supporting services
	if err := deps.initEngine(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize decision engine: %w", err)
	}

	// Initialize auth (JWT)
	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	// Test the connection
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Initialize audit schema when using separate audit DB
	if err := factory.InitAuditSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.RoleTemplates = repos.RoleTemplates
	d.Agents = repos.Agents
	d.Sites = repos.Sites
	d.AuditLogs = repos.AuditLogs
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initEngine wires the quota tracker, rate limiter, audit pipeline, and
// decision engine together.
func (d *Dependencies) initEngine(cfg *config.Config) error {
	d.QuotaTracker = quota.NewTracker(d.Logger)
	d.RateLimiter = ratelimit.NewLimiter(cfg.Engine.LockoutDuration, d.Logger)

	d.AuditService = audit.NewAuditService(d.AuditLogs, d.Logger, audit.Config{
		BufferSize:  cfg.Engine.AuditBufferSize,
		WorkerCount: cfg.Engine.AuditWorkerCount,
	})
	if err := d.AuditService.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}

	d.Engine = decision.NewEngine(
		d.RoleTemplates,
		d.Agents,
		d.Sites,
		d.QuotaTracker,
		d.RateLimiter,
		d.Logger,
		decision.WithAuditService(d.AuditService),
	)

	d.Logger.Info("decision engine initialized",
		zap.Duration("lockout", cfg.Engine.LockoutDuration))
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		d.Logger.Warn("JWT secret not configured, protected routes will reject all tokens")
		d.AuthMiddleware = middleware.NewAuthMiddleware(&rejectAllValidator{}, d.Logger)
		return nil
	}

	tokens, err := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	d.TokenService = tokens
	d.AuthMiddleware = middleware.NewAuthMiddleware(tokens, d.Logger)
	d.Logger.Info("token validation initialized", zap.String("issuer", cfg.Auth.Issuer))
	return nil
}

// rejectAllValidator rejects all tokens (used when JWT auth is not configured)
type rejectAllValidator struct{}

func (*rejectAllValidator) ValidateToken(context.Context, string) (*middleware.Claims, error) {
	return nil, fmt.Errorf("authentication not configured")
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Drain the audit pipeline before closing the database it writes to
	if d.AuditService != nil {
		if err := d.AuditService.Stop(d.Config.Server.ShutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		} else {
			d.Logger.Info("audit service stopped")
		}
	}

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

// NewLogger builds a zap logger from the observability configuration.
func NewLogger(cfg config.ObservabilityConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "text" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
