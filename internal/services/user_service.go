package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"feedbackapp/internal/database"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// UserService provides methods for user management.
type UserService struct {
	db     *sql.DB
	logger *observability.Logger
}

const userSelectFields = `id, name, email, password_hash, role, created_at, updated_at`

// NewUserService creates a new UserService instance.
func NewUserService(db *sql.DB, logger *observability.Logger) *UserService {
	if db == nil {
		panic("NewUserService: db is nil")
	}
	if logger == nil {
		panic("NewUserService: logger is nil")
	}
	return &UserService{db: db, logger: logger}
}

// scanUser scans a users row selected with userSelectFields.
func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return user, nil
}

// getUserByQuery returns a RECORD_NOT_FOUND error when the query yields no row.
func (s *UserService) getUserByQuery(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contextutils.NewNotFoundError("User not found")
		}
		return nil, contextutils.NewStorageError("failed to get user", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID
func (s *UserService) GetUserByID(ctx context.Context, userID int) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_id", observability.AttributeUserID(userID))
	defer observability.FinishSpan(span, &err)

	return s.getUserByQuery(ctx, `SELECT `+userSelectFields+` FROM users WHERE id = $1`, userID)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "get_user_by_email")
	defer observability.FinishSpan(span, &err)

	return s.getUserByQuery(ctx, `SELECT `+userSelectFields+` FROM users WHERE email = $1`, contextutils.NormalizeEmail(email))
}

// CreateUser creates an account with a bcrypt password hash. A duplicate email yields RECORD_ALREADY_EXISTS.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string, role models.Role) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "create_user", observability.AttributeRole(string(role)))
	defer observability.FinishSpan(span, &err)

	name = strings.TrimSpace(name)
	email = contextutils.NormalizeEmail(email)
	if name == "" {
		return nil, contextutils.NewValidationError("Name is required", "name")
	}
	if !contextutils.IsValidEmail(email) {
		return nil, contextutils.NewValidationError("Invalid email", "email")
	}
	if password == "" {
		return nil, contextutils.NewValidationError("Password is required", "password")
	}
	if !role.IsValid() {
		return nil, contextutils.NewValidationError("Invalid role", string(role))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to hash password")
	}

	now := time.Now().UTC()
	query := `INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + userSelectFields
	user, err := scanUser(s.db.QueryRowContext(ctx, query, name, email, string(hashedPassword), string(role), now, now))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, contextutils.NewAppError(contextutils.ErrorCodeRecordExists, contextutils.SeverityInfo, "User already exists", "")
		}
		return nil, contextutils.NewStorageError("failed to create user", err)
	}

	s.logger.Info(ctx, "Created user", map[string]interface{}{"user_id": user.ID, "role": string(user.Role)})
	return user, nil
}

// AuthenticateUser verifies email and password. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (result0 *models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "authenticate_user")
	defer observability.FinishSpan(span, &err)

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return nil, contextutils.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.PasswordHash.Valid {
		return nil, contextutils.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)) != nil {
		return nil, contextutils.ErrInvalidCredentials
	}
	return user, nil
}

// ListUsers returns all accounts ordered by id.
func (s *UserService) ListUsers(ctx context.Context) (result0 []models.User, err error) {
	ctx, span := observability.TraceUserFunction(ctx, "list_users")
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userSelectFields+` FROM users ORDER BY id`)
	if err != nil {
		return nil, contextutils.NewStorageError("failed to list users", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, contextutils.NewStorageError("failed to scan user", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.NewStorageError("failed to list users", err)
	}
	return users, nil
}

// EnsureManagerUser creates the bootstrap manager if no account has email. An existing
// account gets its password and manager role refreshed when they differ.
func (s *UserService) EnsureManagerUser(ctx context.Context, name, email, password string) (err error) {
	ctx, span := observability.TraceUserFunction(ctx, "ensure_manager_user", attribute.String("manager.email", email))
	defer observability.FinishSpan(span, &err)

	if email == "" {
		return contextutils.ErrorWithContextf("manager email cannot be empty")
	}
	if password == "" {
		return contextutils.ErrorWithContextf("manager password cannot be empty")
	}

	existing, err := s.GetUserByEmail(ctx, email)
	if err != nil && !contextutils.IsError(err, contextutils.ErrRecordNotFound) {
		return contextutils.WrapError(err, "failed to check if manager user exists")
	}

	if existing == nil {
		if _, err = s.CreateUser(ctx, name, email, password, models.RoleManager); err != nil {
			return contextutils.WrapError(err, "failed to create manager user")
		}
		s.logger.Info(ctx, "Created manager user", map[string]interface{}{"email": contextutils.NormalizeEmail(email)})
		return nil
	}

	passwordMatches := existing.PasswordHash.Valid &&
		bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash.String), []byte(password)) == nil
	if passwordMatches && existing.Role == models.RoleManager {
		s.logger.Info(ctx, "Manager user already exists", map[string]interface{}{"user_id": existing.ID})
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return contextutils.WrapError(err, "failed to hash manager password")
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET password_hash = $1, role = $2, updated_at = $3 WHERE id = $4`,
		string(hashedPassword), string(models.RoleManager), time.Now().UTC(), existing.ID)
	if err != nil {
		return contextutils.NewStorageError("failed to update manager user", err)
	}
	s.logger.Info(ctx, "Updated manager user", map[string]interface{}{"user_id": existing.ID})
	return nil
}
