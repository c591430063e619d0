package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims are the claims carried by a bearer token. Subject holds the user id.
type AccessTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a token service from the auth configuration.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInternalError, contextutils.SeverityFatal,
			"JWT secret is not configured", "set auth.jwt_secret or AUTH_JWT_SECRET")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = config.ServiceName
	}
	return &TokenService{secret: []byte(cfg.JWTSecret), ttl: ttl, issuer: issuer, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for user and returns it with its expiry.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (result0 string, result1 time.Time, err error) {
	_, span := observability.TraceAuthFunction(ctx, "issue_token",
		observability.AttributeUserID(user.ID),
		observability.AttributeRole(string(user.Role)),
	)
	defer observability.FinishSpan(span, &err)

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := AccessTokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, contextutils.WrapError(err, "failed to sign access token")
	}
	return signed, expiresAt, nil
}

// Verify parses a bearer token and returns the principal it was issued for.
// Expired tokens yield SESSION_EXPIRED, anything else unparseable yields UNAUTHORIZED.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (result0 Principal, err error) {
	_, span := observability.TraceAuthFunction(ctx, "verify_token")
	defer observability.FinishSpan(span, &err)

	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Anonymous, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeSessionExpired, contextutils.SeverityInfo,
				"Token expired", "", err)
		}
		return Anonymous, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn,
			"Invalid token", "", err)
	}

	claims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid {
		return Anonymous, contextutils.NewAppError(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn, "Invalid token", "")
	}

	userID, convErr := strconv.Atoi(claims.Subject)
	principal := Principal{UserID: userID, Role: models.Role(claims.Role)}
	if convErr != nil || !principal.Authenticated() {
		return Anonymous, contextutils.NewAppError(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn,
			"Invalid token", "token subject or role is malformed")
	}
	return principal, nil
}
