// Package middleware provides authentication, request validation and error recovery
// middleware for the Gin web framework.
package middleware

import (
	"context"
	"strings"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for storing the principal
const (
	// UserIDKey is the key used to store the user ID in the session
	UserIDKey = "user_id"
	// UserRoleKey is the key used to store the user role in the session
	UserRoleKey = "user_role"
)

// principalContextKey holds the resolved auth.Principal on the gin context.
const principalContextKey = "principal"

// TokenVerifier resolves a bearer token to a principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Principal, error)
}

// RequireRoles returns a middleware that resolves the caller and enforces policy.
// A bearer token takes precedence; the cookie session set at login is the fallback.
// A bearer token that fails verification is rejected even if a session exists.
func RequireRoles(policy auth.Policy, tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := observability.TraceAuthFunction(c.Request.Context(), "require_roles")
		defer span.End()

		principal, err := resolvePrincipal(ctx, c, tokens)
		if err == nil {
			err = policy.Check(principal)
		}
		if err != nil {
			span.SetAttributes(observability.AttributeRole(string(principal.Role)))
			HandleAppError(c, err)
			c.Abort()
			return
		}

		span.SetAttributes(
			observability.AttributeUserID(principal.UserID),
			observability.AttributeRole(string(principal.Role)),
		)
		SetPrincipal(c, principal)
		c.Next()
	}
}

func resolvePrincipal(ctx context.Context, c *gin.Context, tokens TokenVerifier) (auth.Principal, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := bearerToken(header)
		if !ok || tokens == nil {
			return auth.Anonymous, contextutils.NewAppError(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn,
				"Authentication required", "malformed authorization header")
		}
		return tokens.Verify(ctx, token)
	}
	return PrincipalFromSession(c), nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// PrincipalFromSession returns the principal saved in the cookie session at login,
// or auth.Anonymous when the session is empty or incomplete.
func PrincipalFromSession(c *gin.Context) auth.Principal {
	session := sessions.Default(c)

	var userID int
	switch v := session.Get(UserIDKey).(type) {
	case int:
		userID = v
	case float64:
		// JSON-encoded session values come back as float64
		userID = int(v)
	default:
		return auth.Anonymous
	}

	role, ok := session.Get(UserRoleKey).(string)
	if !ok {
		return auth.Anonymous
	}
	p := auth.Principal{UserID: userID, Role: models.Role(role)}
	if !p.Authenticated() {
		return auth.Anonymous
	}
	return p
}

// SetPrincipal stores p on the gin context and publishes its id and role for span annotation.
func SetPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(principalContextKey, p)
	c.Set(observability.PrincipalUserIDKey, p.UserID)
	c.Set(observability.PrincipalRoleKey, string(p.Role))
}

// PrincipalFrom returns the principal stored by RequireRoles, or auth.Anonymous.
func PrincipalFrom(c *gin.Context) auth.Principal {
	if v, ok := c.Get(principalContextKey); ok {
		if p, ok := v.(auth.Principal); ok {
			return p
		}
	}
	return auth.Anonymous
}
