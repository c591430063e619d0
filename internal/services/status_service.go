package services

import (
	"context"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"
)

// StatusService lets managers move feedback between triage states. Any status may be set
// from any other, including the current one.
type StatusService struct {
	store   serviceinterfaces.FeedbackStore
	metrics *observability.FeedbackMetrics
	logger  *observability.Logger
}

// NewStatusService creates a new StatusService. metrics may be nil.
func NewStatusService(store serviceinterfaces.FeedbackStore, metrics *observability.FeedbackMetrics, logger *observability.Logger) *StatusService {
	if store == nil {
		panic("NewStatusService: store is nil")
	}
	if logger == nil {
		panic("NewStatusService: logger is nil")
	}
	return &StatusService{store: store, metrics: metrics, logger: logger}
}

// UpdateStatus overwrites the status of feedback id and returns the updated record.
func (s *StatusService) UpdateStatus(ctx context.Context, principal auth.Principal, id, status string) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "update_status",
		observability.AttributeFeedbackID(id),
		observability.AttributeFeedbackStatus(status),
		observability.AttributeUserID(principal.UserID),
	)
	defer observability.FinishSpan(span, &err)

	if err = auth.ManagerOnly.Check(principal); err != nil {
		return nil, err
	}

	target := models.FeedbackStatus(status)
	if !target.IsValid() {
		return nil, contextutils.NewValidationError("Invalid status", status)
	}

	updated, err := s.store.UpdateFeedbackStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStatusTransition(ctx, string(target))
	s.logger.Info(ctx, "Feedback status updated", map[string]interface{}{
		"feedback_id": updated.ID,
		"status":      string(updated.Status),
		"manager_id":  principal.UserID,
	})
	return updated, nil
}
