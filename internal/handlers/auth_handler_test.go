package handlers

import (
	"net/http"
	"testing"

	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates account with normalized email", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("CreateUser", mock.Anything, "Alice", "alice@example.com", "secret1", models.RoleCustomer).
			Return(testCustomer, nil).Once()

		w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Alice", "email": "  Alice@Example.com ", "password": "secret1", "role": "customer",
		}, "")

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "User registered successfully", decodeBody(t, w)["message"])
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("CreateUser", mock.Anything, "Alice", "alice@example.com", "secret1", models.RoleCustomer).
			Return(nil, contextutils.NewAppError(contextutils.ErrorCodeRecordExists, contextutils.SeverityInfo, "User already exists", "")).Once()

		w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "secret1", "role": "customer",
		}, "")

		require.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "RECORD_ALREADY_EXISTS", body["code"])
		assert.Equal(t, "User already exists", body["message"])
	})

	t.Run("unknown role rejected by schema", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "secret1", "role": "admin",
		}, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", decodeBody(t, w)["code"])
		env.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed email rejected", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Alice", "email": "not-an-email", "password": "secret1", "role": "customer",
		}, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid email", decodeBody(t, w)["message"])
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns token and user summary", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("AuthenticateUser", mock.Anything, "alice@example.com", "secret1").Return(testCustomer, nil).Once()

		w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "alice@example.com", "password": "secret1",
		}, "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, map[string]interface{}{
			"name": "Alice", "email": "alice@example.com", "role": "customer",
		}, body["user"])

		token, ok := body["token"].(string)
		require.True(t, ok)
		principal, err := env.tokens.Verify(t.Context(), token)
		require.NoError(t, err)
		assert.Equal(t, 1, principal.UserID)
		assert.Equal(t, models.RoleCustomer, principal.Role)

		assert.NotEmpty(t, w.Result().Cookies(), "login opens a cookie session")
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("AuthenticateUser", mock.Anything, "alice@example.com", "nope").
			Return(nil, contextutils.ErrInvalidCredentials).Once()

		w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "alice@example.com", "password": "nope",
		}, "")

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeBody(t, w)["code"])
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("missing password rejected before authentication", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com"}, "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		env.users.AssertNotCalled(t, "AuthenticateUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_SessionFallbackAndLogout(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("AuthenticateUser", mock.Anything, "alice@example.com", "secret1").Return(testCustomer, nil).Once()
	env.catalog.On("ListProducts", mock.Anything).Return([]models.Product{}, nil).Once()

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// No bearer token: the session cookie alone authenticates
	w = env.do(t, http.MethodGet, "/api/customer/products", nil, "", cookies...)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/logout", nil, "", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, w)["message"])
	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)

	w = env.do(t, http.MethodGet, "/api/customer/products", nil, "", cleared...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
