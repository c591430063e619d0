package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "signed.jwt.token"

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAppError(w http.ResponseWriter, status int, err *contextutils.AppError) {
	writeJSON(w, status, err.ToJSON())
}

func requireBearer(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeAppError(w, http.StatusUnauthorized, contextutils.ErrUnauthorized)
		return false
	}
	return true
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session, err := LoadSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	c := New(config.ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, session, observability.NewNopLogger())
	return c, session
}

func TestLogin_StoresTokenInSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret1" {
			writeAppError(w, http.StatusUnauthorized, contextutils.ErrInvalidCredentials)
			return
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{
			Token: testToken,
			User:  models.UserSummary{Name: "Alice", Email: req.Email, Role: models.RoleCustomer},
		})
	})
	c, session := newTestClient(t, mux)

	user, err := c.Login(t.Context(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, testToken, session.Token)

	reloaded, err := LoadSession(session.Path())
	require.NoError(t, err)
	assert.Equal(t, testToken, reloaded.Token)
	assert.Equal(t, models.RoleCustomer, reloaded.User.Role)
	assert.Equal(t, c.BaseURL(), reloaded.BaseURL)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeAppError(w, http.StatusUnauthorized, contextutils.ErrInvalidCredentials)
	})
	c, session := newTestClient(t, mux)

	_, err := c.Login(t.Context(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidCredentials))
	assert.False(t, session.Authenticated())
}

func TestProducts_DegradesToEmptyList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/customer/products", func(w http.ResponseWriter, r *http.Request) {
		writeAppError(w, http.StatusInternalServerError, contextutils.NewStorageError("Failed to list products", nil))
	})
	c, _ := newTestClient(t, mux)

	products := c.Products(t.Context())
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProducts_Unreachable(t *testing.T) {
	session, err := LoadSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	c := New(config.ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, session, observability.NewNopLogger())

	assert.Empty(t, c.Products(t.Context()))
}

func TestProducts_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/customer/products", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, []models.ProductSummary{{ID: "p1", Name: "Mobile App"}})
	})
	c, session := newTestClient(t, mux)
	session.Token = testToken

	products := c.Products(t.Context())
	require.Len(t, products, 1)
	assert.Equal(t, "Mobile App", products[0].Name)
}

func TestSubmit_SendsBodyAndDecodesFeedback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/customer/feedback", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		require.Equal(t, http.MethodPost, r.Method)
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, float64(5), raw["rating"])
		assert.Equal(t, "compliment", raw["feedbackType"])

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Feedback submitted successfully",
			"feedback": map[string]interface{}{
				"id":           "f1",
				"customerName": "Alice",
				"email":        "alice@example.com",
				"productId":    nil,
				"productName":  nil,
				"rating":       5,
				"feedbackType": "compliment",
				"message":      "Great",
				"suggestions":  "",
				"status":       "pending",
				"submittedAt":  "2026-03-01T09:30:00Z",
				"updatedAt":    "2026-03-01T09:30:00Z",
			},
		})
	})
	c, session := newTestClient(t, mux)
	session.Token = testToken

	fb, err := c.Submit(t.Context(), models.SubmissionRequest{
		Rating:       models.NewRatingInput(5),
		FeedbackType: "compliment",
		Message:      "Great",
	})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusPending, fb.Status)
	assert.False(t, fb.ProductID.Valid)
	assert.Equal(t, "General", fb.DisplayProduct())
}

func TestSubmit_ValidationErrorIsDecoded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/customer/feedback", func(w http.ResponseWriter, r *http.Request) {
		writeAppError(w, http.StatusBadRequest, contextutils.NewValidationError("Rating and message are required", ""))
	})
	c, session := newTestClient(t, mux)
	session.Token = testToken

	_, err := c.Submit(t.Context(), models.SubmissionRequest{})
	require.Error(t, err)
	var appErr *contextutils.AppError
	require.True(t, contextutils.AsError(err, &appErr))
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, appErr.Code)
	assert.Equal(t, "Rating and message are required", appErr.Message)
}

func TestTriage_PassesFilters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/manager/feedback", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "dark mode", r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, []models.Feedback{})
	})
	c, _ := newTestClient(t, mux)

	list, err := c.Triage(t.Context(), "pending", "dark mode")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTriage_ForbiddenForCustomer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/manager/feedback", func(w http.ResponseWriter, r *http.Request) {
		writeAppError(w, http.StatusForbidden, contextutils.NewAuthorizationError("Access denied. Manager role required."))
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Triage(t.Context(), "", "")
	assert.True(t, contextutils.IsError(err, contextutils.ErrForbidden))
}

func TestSetStatus_UsesPatchAndPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/manager/feedback/f1/status", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var req models.StatusUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, models.SubmissionResponse{
			Message:  "Status updated successfully",
			Feedback: &models.Feedback{ID: "f1", Status: models.FeedbackStatus(req.Status)},
		})
	})
	c, _ := newTestClient(t, mux)

	fb, err := c.SetStatus(t.Context(), "f1", "resolved")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusResolved, fb.Status)
}

func TestStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/manager/feedback/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.FeedbackStats{Total: 3, Pending: 2, Resolved: 1})
	})
	c, _ := newTestClient(t, mux)

	stats, err := c.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Pending)
}

func TestErrorWithoutBody_FallsBackToStatusCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/customer/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Profile(t.Context())
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestLogout_ClearsSessionEvenWhenServerFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c, session := newTestClient(t, mux)
	session.Token = testToken
	require.NoError(t, session.Save())

	require.NoError(t, c.Logout(t.Context()))
	assert.False(t, session.Authenticated())
	assert.NoFileExists(t, session.Path())
}
