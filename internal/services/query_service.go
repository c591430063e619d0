package services

import (
	"context"

	"feedbackapp/internal/auth"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"
)

// QueryService reads feedback for the history and triage views.
type QueryService struct {
	store    serviceinterfaces.FeedbackStore
	identity serviceinterfaces.IdentityResolver
	logger   *observability.Logger
}

// NewQueryService creates a new QueryService instance.
func NewQueryService(store serviceinterfaces.FeedbackStore, identity serviceinterfaces.IdentityResolver, logger *observability.Logger) *QueryService {
	if store == nil {
		panic("NewQueryService: store is nil")
	}
	if identity == nil {
		panic("NewQueryService: identity is nil")
	}
	if logger == nil {
		panic("NewQueryService: logger is nil")
	}
	return &QueryService{store: store, identity: identity, logger: logger}
}

// ListOwn returns the caller's feedback, matched by their current email, newest first.
func (s *QueryService) ListOwn(ctx context.Context, principal auth.Principal) (result0 []models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "list_own_feedback", observability.AttributeUserID(principal.UserID))
	defer observability.FinishSpan(span, &err)

	if err = auth.AnyAuthenticated.Check(principal); err != nil {
		return nil, err
	}

	user, err := s.identity.GetUserByID(ctx, principal.UserID)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return nil, contextutils.NewNotFoundError("User not found")
		}
		return nil, err
	}

	return s.store.ListFeedbackByEmail(ctx, contextutils.NormalizeEmail(user.Email))
}

// ListAll returns the full collection, newest first. Only managers may call it.
func (s *QueryService) ListAll(ctx context.Context, principal auth.Principal) (result0 []models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "list_all_feedback",
		observability.AttributeUserID(principal.UserID),
		observability.AttributeRole(string(principal.Role)),
	)
	defer observability.FinishSpan(span, &err)

	if err = auth.ManagerOnly.Check(principal); err != nil {
		return nil, err
	}
	return s.store.ListAllFeedback(ctx)
}
