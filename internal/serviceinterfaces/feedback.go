// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/models"
)

// FeedbackStore is the persisted collection of feedback records and the only source of truth
// for them. Every read resolves ProductName from the catalog.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) (*models.Feedback, error)
	GetFeedbackByID(ctx context.Context, id string) (*models.Feedback, error)
	// ListFeedbackByEmail returns rows owned by email, newest first.
	ListFeedbackByEmail(ctx context.Context, email string) ([]models.Feedback, error)
	// ListAllFeedback returns the full collection, newest first.
	ListAllFeedback(ctx context.Context) ([]models.Feedback, error)
	// UpdateFeedbackStatus overwrites the status in a single statement; the last writer wins.
	UpdateFeedbackStatus(ctx context.Context, id string, status models.FeedbackStatus) (*models.Feedback, error)
}

// SubmissionServiceInterface validates and stores new feedback.
type SubmissionServiceInterface interface {
	Submit(ctx context.Context, principal auth.Principal, req *models.SubmissionRequest) (*models.Feedback, error)
}

// QueryServiceInterface reads feedback either scoped to the caller or, for managers, in full.
type QueryServiceInterface interface {
	ListOwn(ctx context.Context, principal auth.Principal) ([]models.Feedback, error)
	ListAll(ctx context.Context, principal auth.Principal) ([]models.Feedback, error)
}

// StatusServiceInterface moves feedback between triage states.
type StatusServiceInterface interface {
	UpdateStatus(ctx context.Context, principal auth.Principal, id, status string) (*models.Feedback, error)
}
