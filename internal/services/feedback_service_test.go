package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedbackColumns = []string{
	"id", "customer_name", "email", "product_id", "name", "rating", "feedback_type",
	"message", "suggestions", "status", "submitted_at", "updated_at",
}

func newTestFeedbackService(t *testing.T) (*FeedbackService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		mock.ExpectClose()
		require.NoError(t, db.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	}
	return NewFeedbackService(db, observability.NewNopLogger()), mock, cleanup
}

func TestFeedbackService_CreateFeedbackResolvesProductName(t *testing.T) {
	service, mock, cleanup := newTestFeedbackService(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(feedbackColumns).
		AddRow(testFeedbackID, "Ada", "ada@example.com", testProductID, "Laptop Pro", 5, "compliment", "Great", "", "pending", now, now)
	mock.ExpectQuery("WITH inserted AS").
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", testProductID, 5, "compliment", "Great", "", "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	fb, err := service.CreateFeedback(context.Background(), &models.Feedback{
		CustomerName: "Ada",
		Email:        "ada@example.com",
		ProductID:    sql.NullString{String: testProductID, Valid: true},
		Rating:       5,
		FeedbackType: models.FeedbackTypeCompliment,
		Message:      "Great",
	})

	require.NoError(t, err)
	assert.Equal(t, testFeedbackID, fb.ID)
	assert.Equal(t, "Laptop Pro", fb.DisplayProduct())
	assert.Equal(t, models.FeedbackStatusPending, fb.Status)
}

func TestFeedbackService_CreateFeedbackStorageError(t *testing.T) {
	service, mock, cleanup := newTestFeedbackService(t)
	defer cleanup()

	mock.ExpectQuery("WITH inserted AS").WillReturnError(errors.New("connection reset"))

	_, err := service.CreateFeedback(context.Background(), &models.Feedback{Rating: 3, Message: "x", FeedbackType: models.FeedbackTypeGeneral})

	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeDatabaseQuery, contextutils.GetErrorCode(err))
}

func TestFeedbackService_CreateFeedbackCheckViolation(t *testing.T) {
	service, mock, cleanup := newTestFeedbackService(t)
	defer cleanup()

	mock.ExpectQuery("WITH inserted AS").WillReturnError(&pq.Error{Code: "23514", Message: "violates check constraint"})

	_, err := service.CreateFeedback(context.Background(), &models.Feedback{Rating: 9, Message: "x", FeedbackType: models.FeedbackTypeGeneral})

	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))
}

func TestFeedbackService_GetFeedbackByID(t *testing.T) {
	t.Run("malformed id is not found without querying", func(t *testing.T) {
		service, _, cleanup := newTestFeedbackService(t)
		defer cleanup()

		_, err := service.GetFeedbackByID(context.Background(), "not-a-uuid")
		assert.Equal(t, contextutils.ErrorCodeRecordNotFound, contextutils.GetErrorCode(err))
	})

	t.Run("no rows", func(t *testing.T) {
		service, mock, cleanup := newTestFeedbackService(t)
		defer cleanup()

		mock.ExpectQuery("SELECT f.id").WithArgs(testFeedbackID).WillReturnError(sql.ErrNoRows)

		_, err := service.GetFeedbackByID(context.Background(), testFeedbackID)
		assert.Equal(t, contextutils.ErrorCodeRecordNotFound, contextutils.GetErrorCode(err))
	})

	t.Run("general feedback has null product", func(t *testing.T) {
		service, mock, cleanup := newTestFeedbackService(t)
		defer cleanup()

		now := time.Now().UTC()
		mock.ExpectQuery("SELECT f.id").WithArgs(testFeedbackID).WillReturnRows(sqlmock.NewRows(feedbackColumns).
			AddRow(testFeedbackID, "Ada", "ada@example.com", nil, nil, 2, "complaint", "Slow", "faster", "reviewed", now, now))

		fb, err := service.GetFeedbackByID(context.Background(), testFeedbackID)
		require.NoError(t, err)
		assert.False(t, fb.ProductID.Valid)
		assert.Equal(t, "General", fb.DisplayProduct())
		assert.Equal(t, models.FeedbackStatusReviewed, fb.Status)
	})
}

func TestFeedbackService_ListFeedbackByEmail(t *testing.T) {
	service, mock, cleanup := newTestFeedbackService(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery("WHERE f.email = \\$1 ORDER BY f.submitted_at DESC").
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(feedbackColumns).
			AddRow("b", "Ada", "ada@example.com", nil, nil, 4, "general", "second", "", "pending", now, now).
			AddRow("a", "Ada", "ada@example.com", nil, nil, 3, "general", "first", "", "resolved", now.Add(-time.Hour), now))

	list, err := service.ListFeedbackByEmail(context.Background(), "ada@example.com")

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestFeedbackService_ListAllFeedbackEmpty(t *testing.T) {
	service, mock, cleanup := newTestFeedbackService(t)
	defer cleanup()

	mock.ExpectQuery("ORDER BY f.submitted_at DESC").WillReturnRows(sqlmock.NewRows(feedbackColumns))

	list, err := service.ListAllFeedback(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFeedbackService_ListAllFeedbackRowsError(t *testing.T) {
	service, mock, cleanup := newTestFeedbackService(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(feedbackColumns).
		AddRow("a", "Ada", "ada@example.com", nil, nil, 3, "general", "first", "", "pending", now, now).
		RowError(0, errors.New("iteration failed"))
	mock.ExpectQuery("ORDER BY f.submitted_at DESC").WillReturnRows(rows)

	_, err := service.ListAllFeedback(context.Background())

	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeDatabaseQuery, contextutils.GetErrorCode(err))
}

func TestFeedbackService_UpdateFeedbackStatus(t *testing.T) {
	t.Run("updates and returns row", func(t *testing.T) {
		service, mock, cleanup := newTestFeedbackService(t)
		defer cleanup()

		now := time.Now().UTC()
		mock.ExpectQuery("WITH updated AS").
			WithArgs("resolved", sqlmock.AnyArg(), testFeedbackID).
			WillReturnRows(sqlmock.NewRows(feedbackColumns).
				AddRow(testFeedbackID, "Ada", "ada@example.com", nil, nil, 5, "compliment", "Great", "", "resolved", now.Add(-time.Hour), now))

		fb, err := service.UpdateFeedbackStatus(context.Background(), testFeedbackID, models.FeedbackStatusResolved)

		require.NoError(t, err)
		assert.Equal(t, models.FeedbackStatusResolved, fb.Status)
		assert.True(t, fb.UpdatedAt.After(fb.SubmittedAt))
	})

	t.Run("missing row", func(t *testing.T) {
		service, mock, cleanup := newTestFeedbackService(t)
		defer cleanup()

		mock.ExpectQuery("WITH updated AS").WillReturnRows(sqlmock.NewRows(feedbackColumns))

		_, err := service.UpdateFeedbackStatus(context.Background(), testFeedbackID, models.FeedbackStatusResolved)
		assert.Equal(t, contextutils.ErrorCodeRecordNotFound, contextutils.GetErrorCode(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		service, _, cleanup := newTestFeedbackService(t)
		defer cleanup()

		_, err := service.UpdateFeedbackStatus(context.Background(), "42", models.FeedbackStatusResolved)
		assert.Equal(t, contextutils.ErrorCodeRecordNotFound, contextutils.GetErrorCode(err))
	})
}

func TestNewFeedbackService_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewFeedbackService(nil, observability.NewNopLogger()) })
}
