package handlers

import (
	"context"
	"net/http"
	"time"

	"feedbackapp/internal/middleware"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(ctx context.Context, user *models.User) (string, time.Time, error)
}

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	userService serviceinterfaces.UserServiceInterface
	tokens      TokenIssuer
	logger      *observability.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(userService serviceinterfaces.UserServiceInterface, tokens TokenIssuer, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		logger:      logger,
	}
}

// Register creates a customer or manager account
func (h *AuthHandler) Register(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "register")
	var err error
	defer observability.FinishSpan(span, &err)

	var req models.RegisterRequest
	if err = bindJSON(c, &req); err != nil {
		HandleAppError(c, err)
		return
	}
	req.Email = contextutils.NormalizeEmail(req.Email)
	if err = contextutils.ValidateStruct(&req); err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(observability.AttributeRole(string(req.Role)))

	user, err := h.userService.CreateUser(ctx, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeUserID(user.ID))
	c.JSON(http.StatusCreated, models.MessageResponse{Message: "User registered successfully"})
}

// Login verifies credentials, issues a bearer token and opens a cookie session
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "login")
	var err error
	defer observability.FinishSpan(span, &err)

	var req models.LoginRequest
	if err = bindJSON(c, &req); err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(attribute.Bool("auth.password_provided", req.Password != ""))
	if req.Email == "" || req.Password == "" {
		err = contextutils.ErrInvalidCredentials
		HandleAppError(c, err)
		return
	}

	user, err := h.userService.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Warn(ctx, "Authentication failed", map[string]interface{}{"error": err.Error()})
		HandleAppError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(ctx, user)
	if err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to issue token"))
		return
	}

	if err = establishSession(c, user); err != nil {
		h.logger.Error(ctx, "Failed to save session", err, map[string]interface{}{"user_id": user.ID})
		HandleAppError(c, contextutils.WrapError(err, "failed to create session"))
		return
	}

	span.SetAttributes(
		observability.AttributeUserID(user.ID),
		observability.AttributeRole(string(user.Role)),
		attribute.String("auth.token_expires_at", expiresAt.Format(time.RFC3339)),
	)
	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: user.Summary()})
}

// Logout clears the cookie session. Bearer tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "logout")
	var err error
	defer observability.FinishSpan(span, &err)

	if p := middleware.PrincipalFromSession(c); p.Authenticated() {
		span.SetAttributes(observability.AttributeUserID(p.UserID))
	}

	if err = clearSession(c); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to clear session"))
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}
