package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/config"
	"feedbackapp/internal/middleware"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"
	"feedbackapp/internal/version"
)

// TokenService issues bearer tokens at login and verifies them on every protected request.
type TokenService interface {
	middleware.TokenVerifier
	TokenIssuer
}

// NewRouter creates a new router factory with all the necessary middleware and routes
func NewRouter(
	cfg *config.Config,
	userService serviceinterfaces.UserServiceInterface,
	catalog serviceinterfaces.ProductCatalog,
	submissionService serviceinterfaces.SubmissionServiceInterface,
	queryService serviceinterfaces.QueryServiceInterface,
	statusService serviceinterfaces.StatusServiceInterface,
	tokens TokenService,
	logger *observability.Logger,
) *gin.Engine {
	// Setup Gin mode
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}
	if cfg.IsTest {
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(accessLogMiddleware(logger))

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": config.ServiceName})
	})

	// OpenTelemetry middleware for HTTP tracing and context propagation with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling(config.ServiceName)...)

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = len(cfg.Server.CORSOrigins) > 0
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Session middleware; the cookie is the fallback credential after login
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   config.SessionSecure,
	}
	if cfg.Server.Debug || cfg.IsTest {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
		sessionOpts.Secure = true
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	schemaLoader, err := middleware.DefaultSchemaLoader()
	if err != nil {
		// The schemas are embedded; failing to compile them is a build defect.
		panic("NewRouter: " + err.Error())
	}

	authHandler := NewAuthHandler(userService, tokens, logger)
	customerHandler := NewCustomerHandler(catalog, userService, submissionService, queryService, logger)
	managerHandler := NewManagerHandler(queryService, statusService, logger)

	// Bodies are validated after the caller is authorized
	validate := middleware.RequestValidationMiddleware(logger, schemaLoader)
	anyUser := middleware.RequireRoles(auth.AnyAuthenticated, tokens)
	customerOnly := middleware.RequireRoles(auth.CustomerOnly, tokens)

	api := router.Group("/api")
	{
		api.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, version.Info(config.ServiceName))
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", validate, authHandler.Register)
			authGroup.POST("/login", validate, authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}

		customer := api.Group("/customer")
		{
			customer.GET("/products", anyUser, customerHandler.ListProducts)
			customer.GET("/profile", anyUser, customerHandler.GetProfile)
			customer.POST("/feedback", customerOnly, validate, customerHandler.SubmitFeedback)
			customer.GET("/feedback", customerOnly, customerHandler.ListOwnFeedback)
		}

		manager := api.Group("/manager")
		manager.Use(middleware.RequireRoles(auth.ManagerOnly, tokens))
		manager.Use(validate)
		{
			manager.GET("/feedback", managerHandler.ListFeedback)
			manager.GET("/feedback/stats", managerHandler.GetStats)
			manager.PATCH("/feedback/:id/status", managerHandler.UpdateStatus)
		}
	}

	if cfg.Server.Debug {
		routeListing := NewRouteListingHandler(config.ServiceName)
		api.GET("/routes", routeListing.GetRouteListingJSON)
		routeListing.CollectRoutes(router)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			middleware.StandardizeAppError(c, contextutils.NewNotFoundError("Route not found"))
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

// accessLogMiddleware logs each request at a level chosen by its status code.
func accessLogMiddleware(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}
		if statusCode >= 400 {
			fields["http.response_size"] = c.Writer.Size()
			if statusCode >= 500 {
				fields["http.error_type"] = "server_error"
			} else {
				fields["http.error_type"] = "client_error"
			}
		}

		switch {
		case statusCode >= 500:
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	}
}
