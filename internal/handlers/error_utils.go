package handlers

import (
	"errors"
	"io"

	"feedbackapp/internal/middleware"
	contextutils "feedbackapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// HandleAppError sends err as a structured JSON error with the status mapped from its code.
func HandleAppError(c *gin.Context, err error) {
	middleware.HandleAppError(c, err)
}

// bindJSON decodes the request body into dst. An empty body leaves dst at its zero value
// so the service reports which fields are missing.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			err.Error(),
			err,
		)
	}
	return nil
}
