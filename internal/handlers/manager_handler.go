package handlers

import (
	"net/http"

	"feedbackapp/internal/middleware"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	"feedbackapp/internal/triage"

	"github.com/gin-gonic/gin"
)

// ManagerHandler serves the triage endpoints
type ManagerHandler struct {
	query  serviceinterfaces.QueryServiceInterface
	status serviceinterfaces.StatusServiceInterface
	logger *observability.Logger
}

// NewManagerHandler creates a new ManagerHandler instance
func NewManagerHandler(
	query serviceinterfaces.QueryServiceInterface,
	status serviceinterfaces.StatusServiceInterface,
	logger *observability.Logger,
) *ManagerHandler {
	return &ManagerHandler{
		query:  query,
		status: status,
		logger: logger,
	}
}

// ListFeedback returns the whole collection, optionally narrowed by ?status= and ?search=
func (h *ManagerHandler) ListFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_all_feedback")
	var err error
	defer observability.FinishSpan(span, &err)

	statusParam := c.Query("status")
	search := c.Query("search")
	span.SetAttributes(
		observability.AttributeStatusFilter(statusParam),
		observability.AttributeSearch(search),
	)

	filter, err := triage.ParseStatusFilter(statusParam)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	all, err := h.query.ListAll(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		HandleAppError(c, err)
		return
	}

	result := triage.Apply(all, triage.Query{Status: filter, Search: search})
	span.SetAttributes(observability.AttributeResultCount(len(result)))
	c.JSON(http.StatusOK, result)
}

// GetStats returns per-status counts over the unfiltered collection
func (h *ManagerHandler) GetStats(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "feedback_stats")
	var err error
	defer observability.FinishSpan(span, &err)

	all, err := h.query.ListAll(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, triage.ComputeStats(all))
}

// UpdateStatus moves a feedback record to a new triage status
func (h *ManagerHandler) UpdateStatus(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "update_feedback_status")
	var err error
	defer observability.FinishSpan(span, &err)

	id := c.Param("id")
	span.SetAttributes(observability.AttributeFeedbackID(id))

	var req models.StatusUpdateRequest
	if err = bindJSON(c, &req); err != nil {
		HandleAppError(c, err)
		return
	}
	span.SetAttributes(observability.AttributeFeedbackStatus(req.Status))

	feedback, err := h.status.UpdateStatus(ctx, middleware.PrincipalFrom(c), id, req.Status)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SubmissionResponse{
		Message:  "Status updated successfully",
		Feedback: feedback,
	})
}
