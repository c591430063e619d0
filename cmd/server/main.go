// Package main provides the entry point for the feedback service HTTP server.
// It sets up the HTTP server, database connections, middleware, and API routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedbackapp/internal/config"
	"feedbackapp/internal/di"
	"feedbackapp/internal/handlers"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
	"feedbackapp/internal/version"

	"github.com/gin-gonic/gin"
)

// Application encapsulates the main application logic and can be tested
type Application struct {
	container di.ServiceContainerInterface
	router    *gin.Engine
	server    *http.Server
}

// NewApplication creates a new application instance
func NewApplication(container di.ServiceContainerInterface) (*Application, error) {
	userService, err := container.GetUserService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get user service")
	}

	productService, err := container.GetProductService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get product service")
	}

	submissionService, err := container.GetSubmissionService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get submission service")
	}

	queryService, err := container.GetQueryService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get query service")
	}

	statusService, err := container.GetStatusService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get status service")
	}

	tokens, err := container.GetTokenService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get token service")
	}

	router := handlers.NewRouter(
		container.GetConfig(),
		userService,
		productService,
		submissionService,
		queryService,
		statusService,
		tokens,
		container.GetLogger(),
	)

	return &Application{
		container: container,
		router:    router,
	}, nil
}

// Run serves HTTP on port until ctx is cancelled, then drains in-flight requests
func (a *Application) Run(ctx context.Context, port string) error {
	a.server = &http.Server{
		Addr:         ":" + port,
		Handler:      a.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return contextutils.WrapError(err, "server failed")
	}
}

// Shutdown releases the container's resources
func (a *Application) Shutdown(ctx context.Context) error {
	return a.container.Shutdown(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup observability (tracing/metrics/logging)
	tp, mp, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, config.ServiceName, cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if tp != nil {
			if shutdowner, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
				if err := shutdowner.Shutdown(shutdownCtx); err != nil {
					logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
				}
			}
		}
		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
		_ = logger.Sync()
	}()

	logger.Info(ctx, "Starting feedback service", map[string]interface{}{
		"port":     cfg.Server.Port,
		"logLevel": cfg.Server.LogLevel,
		"version":  version.Version,
		"commit":   version.Commit,
	})

	container := di.NewServiceContainer(cfg, logger)
	if err := container.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize services", err)
		os.Exit(1)
	}

	if err := container.EnsureManagerUser(ctx); err != nil {
		logger.Error(ctx, "Failed to ensure manager user exists", err, map[string]interface{}{"manager_email": cfg.Server.ManagerEmail})
		os.Exit(1)
	}

	app, err := NewApplication(container)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err)
		os.Exit(1)
	}

	if err := app.Run(ctx, cfg.Server.Port); err != nil {
		logger.Error(ctx, "Application failed", err)
	} else {
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during application shutdown", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Shutdown completed successfully")
}
