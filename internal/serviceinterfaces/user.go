package serviceinterfaces

import (
	"context"

	"feedbackapp/internal/models"
)

// IdentityResolver maps an authenticated principal's user id to its user record.
type IdentityResolver interface {
	GetUserByID(ctx context.Context, userID int) (*models.User, error)
}

// UserServiceInterface manages accounts and password authentication.
type UserServiceInterface interface {
	IdentityResolver
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error)
	// AuthenticateUser returns INVALID_CREDENTIALS for an unknown email or a wrong password alike.
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// EnsureManagerUser creates the bootstrap manager account if no user has its email.
	EnsureManagerUser(ctx context.Context, name, email, password string) error
}
