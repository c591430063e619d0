package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	testCustomer = &models.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: models.RoleCustomer}
	testManager  = &models.User{ID: 2, Name: "Morgan", Email: "morgan@example.com", Role: models.RoleManager}
)

type testEnv struct {
	router     *gin.Engine
	tokens     *auth.TokenService
	users      *mockUserService
	catalog    *mockProductCatalog
	submission *mockSubmissionService
	query      *mockQueryService
	status     *mockStatusService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{SessionSecret: "test-session-secret"},
		Auth:   config.AuthConfig{JWTSecret: "test-jwt-secret", TokenTTL: time.Hour},
		IsTest: true,
	}
	tokens, err := auth.NewTokenService(cfg.Auth)
	require.NoError(t, err)

	env := &testEnv{
		tokens:     tokens,
		users:      &mockUserService{},
		catalog:    &mockProductCatalog{},
		submission: &mockSubmissionService{},
		query:      &mockQueryService{},
		status:     &mockStatusService{},
	}
	env.router = NewRouter(cfg, env.users, env.catalog, env.submission, env.query, env.status, tokens, observability.NewNopLogger())

	t.Cleanup(func() {
		env.users.AssertExpectations(t)
		env.catalog.AssertExpectations(t)
		env.submission.AssertExpectations(t)
		env.query.AssertExpectations(t)
		env.status.AssertExpectations(t)
	})
	return env
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := e.tokens.Issue(t.Context(), user)
	require.NoError(t, err)
	return token
}

// do sends body as JSON unless it is a string, which is sent verbatim.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func sampleFeedback(id, name, message string, status models.FeedbackStatus, submittedAt time.Time) models.Feedback {
	return models.Feedback{
		ID:           id,
		CustomerName: name,
		Email:        "alice@example.com",
		ProductID:    sql.NullString{String: "7d8f3c1e-8a3b-4c55-9f1e-2b6a4d1c0e01", Valid: true},
		ProductName:  sql.NullString{String: "Mobile App", Valid: true},
		Rating:       4,
		FeedbackType: models.FeedbackTypeGeneral,
		Message:      message,
		Status:       status,
		SubmittedAt:  submittedAt,
		UpdatedAt:    submittedAt,
	}
}
