package services

import (
	"context"
	"database/sql"
	"strings"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"

	"github.com/google/uuid"
)

// SubmissionService validates customer submissions and stores them as pending feedback.
type SubmissionService struct {
	store    serviceinterfaces.FeedbackStore
	catalog  serviceinterfaces.ProductCatalog
	identity serviceinterfaces.IdentityResolver
	metrics  *observability.FeedbackMetrics
	logger   *observability.Logger
}

// NewSubmissionService creates a new SubmissionService. metrics may be nil.
func NewSubmissionService(
	store serviceinterfaces.FeedbackStore,
	catalog serviceinterfaces.ProductCatalog,
	identity serviceinterfaces.IdentityResolver,
	metrics *observability.FeedbackMetrics,
	logger *observability.Logger,
) *SubmissionService {
	if store == nil {
		panic("NewSubmissionService: store is nil")
	}
	if catalog == nil {
		panic("NewSubmissionService: catalog is nil")
	}
	if identity == nil {
		panic("NewSubmissionService: identity is nil")
	}
	if logger == nil {
		panic("NewSubmissionService: logger is nil")
	}
	return &SubmissionService{store: store, catalog: catalog, identity: identity, metrics: metrics, logger: logger}
}

// Submit validates req, snapshots the caller's name and email onto the record and stores
// it with status pending.
func (s *SubmissionService) Submit(ctx context.Context, principal auth.Principal, req *models.SubmissionRequest) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "submit_feedback", observability.AttributeUserID(principal.UserID))
	defer observability.FinishSpan(span, &err)

	if err = auth.AnyAuthenticated.Check(principal); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn,
			"Rating and message are required", "")
	}

	message := strings.TrimSpace(req.Message)
	if req.Rating.Missing() || message == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn,
			"Rating and message are required", "")
	}

	rating, ok := req.Rating.Int()
	if !ok {
		return nil, contextutils.NewValidationError("Rating must be a number", "rating")
	}
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, contextutils.NewValidationError("Rating must be between 1 and 5", "rating")
	}

	feedbackType := models.FeedbackTypeGeneral
	if req.FeedbackType != "" {
		feedbackType = models.FeedbackType(req.FeedbackType)
		if !feedbackType.IsValid() {
			return nil, contextutils.NewValidationError("Invalid feedback type", req.FeedbackType)
		}
	}

	var productID sql.NullString
	if trimmed := strings.TrimSpace(req.ProductID); trimmed != "" {
		productID, err = s.resolveProduct(ctx, trimmed)
		if err != nil {
			return nil, err
		}
	}

	user, err := s.identity.GetUserByID(ctx, principal.UserID)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return nil, contextutils.NewNotFoundError("User not found")
		}
		return nil, err
	}

	fb := &models.Feedback{
		CustomerName: strings.TrimSpace(user.Name),
		Email:        contextutils.NormalizeEmail(user.Email),
		ProductID:    productID,
		Rating:       rating,
		FeedbackType: feedbackType,
		Message:      message,
		Suggestions:  strings.TrimSpace(req.Suggestions),
		Status:       models.FeedbackStatusPending,
	}

	created, err := s.store.CreateFeedback(ctx, fb)
	if err != nil {
		s.logger.Error(ctx, "Failed to store feedback", err, map[string]interface{}{"user_id": principal.UserID})
		return nil, err
	}

	s.metrics.RecordSubmission(ctx, string(created.FeedbackType))
	span.SetAttributes(observability.AttributeFeedbackID(created.ID))
	return created, nil
}

func (s *SubmissionService) resolveProduct(ctx context.Context, id string) (sql.NullString, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return sql.NullString{}, contextutils.NewValidationError("Invalid product", id)
	}
	product, err := s.catalog.GetProductByID(ctx, parsed.String())
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return sql.NullString{}, contextutils.NewValidationError("Invalid product", id)
		}
		return sql.NullString{}, err
	}
	return sql.NullString{String: product.ID, Valid: true}, nil
}
