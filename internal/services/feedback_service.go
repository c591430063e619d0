package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"feedbackapp/internal/database"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/google/uuid"
)

// FeedbackService implements serviceinterfaces.FeedbackStore on PostgreSQL.
type FeedbackService struct {
	db     *sql.DB
	logger *observability.Logger
}

// feedbackSelectFields reads a feedback row aliased f joined to its product p.
const feedbackSelectFields = `f.id, f.customer_name, f.email, f.product_id, p.name, f.rating, f.feedback_type, f.message, f.suggestions, f.status, f.submitted_at, f.updated_at`

// NewFeedbackService creates a new FeedbackService instance.
func NewFeedbackService(db *sql.DB, logger *observability.Logger) *FeedbackService {
	if db == nil {
		panic("NewFeedbackService: db is nil")
	}
	if logger == nil {
		panic("NewFeedbackService: logger is nil")
	}
	return &FeedbackService{db: db, logger: logger}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(row rowScanner) (*models.Feedback, error) {
	var fb models.Feedback
	var feedbackType, status string
	err := row.Scan(&fb.ID, &fb.CustomerName, &fb.Email, &fb.ProductID, &fb.ProductName, &fb.Rating,
		&feedbackType, &fb.Message, &fb.Suggestions, &status, &fb.SubmittedAt, &fb.UpdatedAt)
	if err != nil {
		return nil, err
	}
	fb.FeedbackType = models.FeedbackType(feedbackType)
	fb.Status = models.FeedbackStatus(status)
	return &fb, nil
}

// CreateFeedback inserts a feedback record and returns it with the product name resolved.
// A missing id is generated, and zero timestamps are set to the current time.
func (s *FeedbackService) CreateFeedback(ctx context.Context, fb *models.Feedback) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "create_feedback",
		observability.AttributeFeedbackType(string(fb.FeedbackType)),
		observability.AttributeRating(fb.Rating),
	)
	defer observability.FinishSpan(span, &err)

	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.Status == "" {
		fb.Status = models.FeedbackStatusPending
	}
	now := time.Now().UTC()
	if fb.SubmittedAt.IsZero() {
		fb.SubmittedAt = now
	}
	if fb.UpdatedAt.IsZero() {
		fb.UpdatedAt = fb.SubmittedAt
	}

	query := `WITH inserted AS (
		INSERT INTO feedback (id, customer_name, email, product_id, rating, feedback_type, message, suggestions, status, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *
	)
	SELECT ` + feedbackSelectFields + ` FROM inserted f LEFT JOIN products p ON p.id = f.product_id`

	row := s.db.QueryRowContext(ctx, query, fb.ID, fb.CustomerName, fb.Email, fb.ProductID, fb.Rating,
		string(fb.FeedbackType), fb.Message, fb.Suggestions, string(fb.Status), fb.SubmittedAt, fb.UpdatedAt)
	created, err := scanFeedback(row)
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeValidationFailed, contextutils.SeverityWarn,
				"Feedback violates a field constraint", err.Error(), err)
		}
		return nil, contextutils.NewStorageError("failed to insert feedback", err)
	}

	s.logger.Info(ctx, "Stored feedback", map[string]interface{}{
		"feedback_id":   created.ID,
		"feedback_type": string(created.FeedbackType),
		"rating":        created.Rating,
	})
	return created, nil
}

// GetFeedbackByID fetches a single feedback record. Ids that are not UUIDs are reported as not found.
func (s *FeedbackService) GetFeedbackByID(ctx context.Context, id string) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_feedback_by_id", observability.AttributeFeedbackID(id))
	defer observability.FinishSpan(span, &err)

	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return nil, contextutils.NewNotFoundError("Feedback not found")
	}

	query := `SELECT ` + feedbackSelectFields + ` FROM feedback f LEFT JOIN products p ON p.id = f.product_id WHERE f.id = $1`
	fb, err := scanFeedback(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contextutils.NewNotFoundError("Feedback not found")
		}
		return nil, contextutils.NewStorageError("failed to get feedback", err)
	}
	return fb, nil
}

// ListFeedbackByEmail returns every record whose snapshot email equals email, newest first.
func (s *FeedbackService) ListFeedbackByEmail(ctx context.Context, email string) (result0 []models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "list_feedback_by_email")
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + feedbackSelectFields + ` FROM feedback f LEFT JOIN products p ON p.id = f.product_id
		WHERE f.email = $1 ORDER BY f.submitted_at DESC, f.id`
	list, err := s.queryFeedback(ctx, query, email)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(observability.AttributeResultCount(len(list)))
	return list, nil
}

// ListAllFeedback returns the full collection, newest first.
func (s *FeedbackService) ListAllFeedback(ctx context.Context) (result0 []models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "list_all_feedback")
	defer observability.FinishSpan(span, &err)

	query := `SELECT ` + feedbackSelectFields + ` FROM feedback f LEFT JOIN products p ON p.id = f.product_id
		ORDER BY f.submitted_at DESC, f.id`
	list, err := s.queryFeedback(ctx, query)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(observability.AttributeResultCount(len(list)))
	return list, nil
}

func (s *FeedbackService) queryFeedback(ctx context.Context, query string, args ...interface{}) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.NewStorageError("failed to query feedback", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.Feedback{}
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, contextutils.NewStorageError("failed to scan feedback", err)
		}
		list = append(list, *fb)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.NewStorageError("failed to iterate feedback", err)
	}
	return list, nil
}

// UpdateFeedbackStatus overwrites the status of one record and refreshes updated_at.
// The write is a single statement so concurrent updates serialize per row and the last one wins.
func (s *FeedbackService) UpdateFeedbackStatus(ctx context.Context, id string, status models.FeedbackStatus) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "update_feedback_status",
		observability.AttributeFeedbackID(id),
		observability.AttributeFeedbackStatus(string(status)),
	)
	defer observability.FinishSpan(span, &err)

	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return nil, contextutils.NewNotFoundError("Feedback not found")
	}

	query := `WITH updated AS (
		UPDATE feedback SET status = $1, updated_at = $2 WHERE id = $3
		RETURNING *
	)
	SELECT ` + feedbackSelectFields + ` FROM updated f LEFT JOIN products p ON p.id = f.product_id`

	fb, err := scanFeedback(s.db.QueryRowContext(ctx, query, string(status), time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contextutils.NewNotFoundError("Feedback not found")
		}
		if database.IsCheckViolation(err) {
			return nil, contextutils.NewValidationError("Invalid status", string(status))
		}
		return nil, contextutils.NewStorageError("failed to update feedback status", err)
	}
	return fb, nil
}
