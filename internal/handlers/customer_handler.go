package handlers

import (
	"net/http"

	"feedbackapp/internal/middleware"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// CustomerHandler serves the customer-facing feedback endpoints
type CustomerHandler struct {
	catalog    serviceinterfaces.ProductCatalog
	identity   serviceinterfaces.IdentityResolver
	submission serviceinterfaces.SubmissionServiceInterface
	query      serviceinterfaces.QueryServiceInterface
	logger     *observability.Logger
}

// NewCustomerHandler creates a new CustomerHandler instance
func NewCustomerHandler(
	catalog serviceinterfaces.ProductCatalog,
	identity serviceinterfaces.IdentityResolver,
	submission serviceinterfaces.SubmissionServiceInterface,
	query serviceinterfaces.QueryServiceInterface,
	logger *observability.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		catalog:    catalog,
		identity:   identity,
		submission: submission,
		query:      query,
		logger:     logger,
	}
}

// ListProducts returns the catalog as id/name pairs for the product picker
func (h *CustomerHandler) ListProducts(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_products")
	var err error
	defer observability.FinishSpan(span, &err)

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	summaries := make([]models.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, products[i].Summary())
	}
	span.SetAttributes(observability.AttributeResultCount(len(summaries)))
	c.JSON(http.StatusOK, summaries)
}

// SubmitFeedback stores a new feedback record for the calling customer
func (h *CustomerHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_feedback")
	var err error
	defer observability.FinishSpan(span, &err)

	var req models.SubmissionRequest
	if err = bindJSON(c, &req); err != nil {
		HandleAppError(c, err)
		return
	}

	principal := middleware.PrincipalFrom(c)
	feedback, err := h.submission.Submit(ctx, principal, &req)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(
		observability.AttributeFeedbackID(feedback.ID),
		observability.AttributeFeedbackType(string(feedback.FeedbackType)),
	)
	c.JSON(http.StatusCreated, models.SubmissionResponse{
		Message:  "Feedback submitted successfully",
		Feedback: feedback,
	})
}

// ListOwnFeedback returns the caller's submission history, newest first
func (h *CustomerHandler) ListOwnFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_own_feedback")
	var err error
	defer observability.FinishSpan(span, &err)

	feedback, err := h.query.ListOwn(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeResultCount(len(feedback)))
	c.JSON(http.StatusOK, feedback)
}

// GetProfile returns the caller's account details
func (h *CustomerHandler) GetProfile(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_profile")
	var err error
	defer observability.FinishSpan(span, &err)

	principal := middleware.PrincipalFrom(c)
	user, err := h.identity.GetUserByID(ctx, principal.UserID)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			err = contextutils.NewNotFoundError("User not found")
		}
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}
