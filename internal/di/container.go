// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/config"
	"feedbackapp/internal/database"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	"feedbackapp/internal/services"
	contextutils "feedbackapp/internal/utils"
)

// Service names registered in the container
const (
	ServiceUser          = "user"
	ServiceProduct       = "product"
	ServiceFeedbackStore = "feedback_store"
	ServiceSubmission    = "submission"
	ServiceQuery         = "query"
	ServiceStatus        = "status"
	ServiceTokens        = "tokens"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetUserService() (serviceinterfaces.UserServiceInterface, error)
	GetProductService() (serviceinterfaces.ProductServiceInterface, error)
	GetFeedbackStore() (serviceinterfaces.FeedbackStore, error)
	GetSubmissionService() (serviceinterfaces.SubmissionServiceInterface, error)
	GetQueryService() (serviceinterfaces.QueryServiceInterface, error)
	GetStatusService() (serviceinterfaces.StatusServiceInterface, error)
	GetTokenService() (*auth.TokenService, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	EnsureManagerUser(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	metrics       *observability.FeedbackMetrics
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		metrics:  observability.DefaultFeedbackMetrics(),
		services: make(map[string]interface{}),
	}
}

// Initialize opens and migrates the database, then wires every service onto it
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}

	if err := sc.initializeWithDB(ctx, db); err != nil {
		_ = sc.cleanup(ctx)
		return err
	}
	return nil
}

// InitializeWithDB wires every service onto an already opened database. The container
// takes ownership of db and closes it on Shutdown.
func (sc *ServiceContainer) InitializeWithDB(ctx context.Context, db *sql.DB) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if err := sc.initializeWithDB(ctx, db); err != nil {
		_ = sc.cleanup(ctx)
		return err
	}
	return nil
}

func (sc *ServiceContainer) initializeWithDB(ctx context.Context, db *sql.DB) error {
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	if err := sc.initializeServices(ctx); err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize services")
	}
	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetUserService returns the user service
func (sc *ServiceContainer) GetUserService() (serviceinterfaces.UserServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.UserServiceInterface](sc, ServiceUser)
}

// GetProductService returns the product catalog service
func (sc *ServiceContainer) GetProductService() (serviceinterfaces.ProductServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.ProductServiceInterface](sc, ServiceProduct)
}

// GetFeedbackStore returns the feedback store
func (sc *ServiceContainer) GetFeedbackStore() (serviceinterfaces.FeedbackStore, error) {
	return GetServiceAs[serviceinterfaces.FeedbackStore](sc, ServiceFeedbackStore)
}

// GetSubmissionService returns the submission service
func (sc *ServiceContainer) GetSubmissionService() (serviceinterfaces.SubmissionServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.SubmissionServiceInterface](sc, ServiceSubmission)
}

// GetQueryService returns the feedback query service
func (sc *ServiceContainer) GetQueryService() (serviceinterfaces.QueryServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.QueryServiceInterface](sc, ServiceQuery)
}

// GetStatusService returns the status transition service
func (sc *ServiceContainer) GetStatusService() (serviceinterfaces.StatusServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.StatusServiceInterface](sc, ServiceStatus)
}

// GetTokenService returns the bearer token service
func (sc *ServiceContainer) GetTokenService() (*auth.TokenService, error) {
	return GetServiceAs[*auth.TokenService](sc, ServiceTokens)
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup runs shutdown functions in reverse order of registration
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err)
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(ctx context.Context) error {
	// Stores that only depend on the database
	userService := services.NewUserService(sc.db, sc.logger)
	sc.services[ServiceUser] = userService

	productService := services.NewProductService(sc.db, sc.logger)
	sc.services[ServiceProduct] = productService

	feedbackStore := services.NewFeedbackService(sc.db, sc.logger)
	sc.services[ServiceFeedbackStore] = feedbackStore

	// Feedback operations depend on the stores
	sc.services[ServiceSubmission] = services.NewSubmissionService(feedbackStore, productService, userService, sc.metrics, sc.logger)
	sc.services[ServiceQuery] = services.NewQueryService(feedbackStore, userService, sc.logger)
	sc.services[ServiceStatus] = services.NewStatusService(feedbackStore, sc.metrics, sc.logger)

	tokens, err := auth.NewTokenService(sc.cfg.Auth)
	if err != nil {
		return err
	}
	sc.services[ServiceTokens] = tokens

	sc.logger.Info(ctx, "Services initialized", map[string]interface{}{"count": len(sc.services)})
	return nil
}

// EnsureManagerUser creates the configured bootstrap manager. It is a no-op when no
// manager email is configured.
func (sc *ServiceContainer) EnsureManagerUser(ctx context.Context) error {
	if sc.cfg.Server.ManagerEmail == "" {
		sc.logger.Info(ctx, "No bootstrap manager configured")
		return nil
	}

	userService, err := sc.GetUserService()
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to get user service")
	}

	return userService.EnsureManagerUser(ctx, sc.cfg.Server.ManagerName, sc.cfg.Server.ManagerEmail, sc.cfg.Server.ManagerPassword)
}
